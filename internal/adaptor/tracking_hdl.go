package adaptor

import (
	"net/http"

	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

type TrackingHandler struct {
	service usecase.TrackingService
	log     *zap.Logger
}

func NewTrackingHandler(service usecase.TrackingService, log *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		service: service,
		log:     log.With(zap.String("handler", "tracking")),
	}
}

// UpdateLocation handles POST /api/drones/location (API key)
func (h *TrackingHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req request.LocationUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	telemetry, err := h.service.UpdateLocation(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update drone location")
		return
	}

	utils.ResponseSuccess(w, "Drone location updated", telemetry)
}

// GetLocations handles GET /api/drones/locations
func (h *TrackingHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.Locations(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list drone locations")
		return
	}

	utils.ResponseSuccess(w, "Drone locations retrieved successfully", locations)
}
