package adaptor

import (
	"net/http"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

type DroneHandler struct {
	service usecase.DroneService
	log     *zap.Logger
}

func NewDroneHandler(service usecase.DroneService, log *zap.Logger) *DroneHandler {
	return &DroneHandler{
		service: service,
		log:     log.With(zap.String("handler", "drone")),
	}
}

// GetDrones handles GET /api/drones?status=&page=&per_page=
func (h *DroneHandler) GetDrones(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.DroneListRequest{
		PaginatedRequest: request.PageFromQuery(query),
		Status: query.Get("status"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	drones, err := h.service.List(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list drones")
		return
	}

	utils.ResponseSuccess(w, "Drones retrieved successfully", drones)
}

// GetDroneByID handles GET /api/drones/{id}
func (h *DroneHandler) GetDroneByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "drone")
	if !ok {
		return
	}

	drone, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get drone")
		return
	}

	utils.ResponseSuccess(w, "Drone retrieved successfully", drone)
}

// GetAvailable handles GET /api/drones/available?weight=
func (h *DroneHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	weight := utils.ParseFloat(r.URL.Query().Get("weight"), 0)

	drones, err := h.service.Available(r.Context(), weight)
	if err != nil {
		handleServiceError(w, h.log, err, "list available drones")
		return
	}

	utils.ResponseSuccess(w, "Available drones retrieved successfully", drones)
}

// GetActive handles GET /api/drones/active
func (h *DroneHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	drones, err := h.service.Active(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list active drones")
		return
	}

	utils.ResponseSuccess(w, "Active drones retrieved successfully", drones)
}

// CreateDrone handles POST /api/drones (admin)
func (h *DroneHandler) CreateDrone(w http.ResponseWriter, r *http.Request) {
	var req request.CreateDroneRequest
	if !decodeBody(w, r, &req) {
		return
	}

	drone, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create drone")
		return
	}

	utils.ResponseCreated(w, "Drone created successfully", drone)
}

// UpdateDrone handles PUT /api/drones/{id} (admin)
func (h *DroneHandler) UpdateDrone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "drone")
	if !ok {
		return
	}

	var req request.UpdateDroneRequest
	if !decodeBody(w, r, &req) {
		return
	}

	drone, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update drone")
		return
	}

	utils.ResponseSuccess(w, "Drone updated successfully", drone)
}

// UpdateDroneStatus handles PATCH /api/drones/{id}/status (admin)
func (h *DroneHandler) UpdateDroneStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "drone")
	if !ok {
		return
	}

	var req request.UpdateDroneStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	drone, err := h.service.UpdateStatus(r.Context(), id, entity.DroneStatus(req.Status))
	if err != nil {
		handleServiceError(w, h.log, err, "update drone status")
		return
	}

	utils.ResponseSuccess(w, "Drone status updated successfully", drone)
}

// DeleteDrone handles DELETE /api/drones/{id} (admin)
func (h *DroneHandler) DeleteDrone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "drone")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete drone")
		return
	}

	utils.ResponseSuccess(w, "Drone deleted successfully", nil)
}
