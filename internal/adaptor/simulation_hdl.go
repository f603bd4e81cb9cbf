package adaptor

import (
	"net/http"

	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

type SimulationHandler struct {
	service usecase.SimulationService
	log     *zap.Logger
}

func NewSimulationHandler(service usecase.SimulationService, log *zap.Logger) *SimulationHandler {
	return &SimulationHandler{
		service: service,
		log:     log.With(zap.String("handler", "simulation")),
	}
}

// GetCurrent handles GET /api/simulation
func (h *SimulationHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Current(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get simulation")
		return
	}

	utils.ResponseSuccess(w, "Simulation retrieved successfully", snapshot)
}

// Start handles POST /api/simulation/start (API key)
func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.StartSimulationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	snapshot, err := h.service.Start(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "start simulation")
		return
	}

	utils.ResponseCreated(w, "Simulation started", snapshot)
}

// Push handles POST /api/simulation/push (API key)
func (h *SimulationHandler) Push(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Push(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "push simulation")
		return
	}

	utils.ResponseSuccess(w, "Simulation pushed", snapshot)
}
