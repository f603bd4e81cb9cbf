package wire

import (
	"drone-delivery/internal/adaptor"
	"drone-delivery/pkg/middleware"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSimulation(
	r chi.Router,
	simulationHandler *adaptor.SimulationHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/simulation", func(r chi.Router) {
		r.Get("/", simulationHandler.GetCurrent)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKey(config.App.ExternalAPIKey, log))

			r.Post("/start", simulationHandler.Start)
			r.Post("/push", simulationHandler.Push)
		})
	})
}
