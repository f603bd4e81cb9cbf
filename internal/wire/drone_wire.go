package wire

import (
	"drone-delivery/internal/adaptor"
	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/middleware"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireDrone(
	r chi.Router,
	droneHandler *adaptor.DroneHandler,
	trackingHandler *adaptor.TrackingHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/drones", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		// Read side feeds the tracking map and the assignment picker
		r.Get("/", droneHandler.GetDrones)
		r.Get("/available", droneHandler.GetAvailable)
		r.Get("/active", droneHandler.GetActive)
		r.Get("/locations", trackingHandler.GetLocations)
		r.Get("/{id}", droneHandler.GetDroneByID)

		// ==================== DEVICE ROUTES ====================
		// Telemetry from drones or the simulator
		r.With(middleware.APIKey(config.App.ExternalAPIKey, log)).
			Post("/location", trackingHandler.UpdateLocation)

		// ==================== ADMIN ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(config.JWT.Secret, repo.Token, log))
			r.Use(middleware.Admin(repo.User, log))

			r.Post("/", droneHandler.CreateDrone)
			r.Put("/{id}", droneHandler.UpdateDrone)
			r.Patch("/{id}/status", droneHandler.UpdateDroneStatus)
			r.Delete("/{id}", droneHandler.DeleteDrone)
		})
	})
}
