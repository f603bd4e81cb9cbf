package adaptor

import (
	"net/http"

	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

type DashboardHandler struct {
	service usecase.DashboardService
	log     *zap.Logger
}

func NewDashboardHandler(service usecase.DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     log.With(zap.String("handler", "dashboard")),
	}
}

// GetStats handles GET /api/admin/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get dashboard stats")
		return
	}

	utils.ResponseSuccess(w, "Dashboard stats retrieved successfully", stats)
}
