package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth       *AuthHandler
	Drone      *DroneHandler
	Order      *OrderHandler
	Dashboard  *DashboardHandler
	Simulation *SimulationHandler
	Tracking   *TrackingHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(service.Auth, config.App.FrontendURL, log),
		Drone:      NewDroneHandler(service.Drone, log),
		Order:      NewOrderHandler(service.Order, log),
		Dashboard:  NewDashboardHandler(service.Dashboard, log),
		Simulation: NewSimulationHandler(service.Simulation, log),
		Tracking:   NewTrackingHandler(service.Tracking, log),
	}
}

// handleServiceError maps usecase failure classes onto HTTP responses.
// Anything unclassified is logged and hidden behind a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrUnavailable):
		log.Warn(operation+" failed - unavailable", zap.Error(err))
		utils.ResponseServiceUnavailable(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeBody decodes and validates a JSON body, writing the 400 itself.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+name+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// actorFrom reads the identity AuthJWT put on the context.
func actorFrom(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Unauthorized")
		return usecase.Actor{}, false
	}

	role, _ := utils.GetRoleFromContext(r.Context())
	email, _ := utils.GetEmailFromContext(r.Context())

	return usecase.Actor{
		UserID: userID,
		Email:  email,
		Role:   entity.UserRole(role),
	}, true
}
