package wire

import (
	"drone-delivery/internal/adaptor"
	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/middleware"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireOrder(
	r chi.Router,
	orderHandler *adaptor.OrderHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/orders", func(r chi.Router) {
		// ==================== API KEY ROUTES ====================
		// Storefront checkout and simulator progress reports
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKey(config.App.ExternalAPIKey, log))

			r.Post("/external", orderHandler.CreateExternalOrder)
			r.Patch("/{id}/progress", orderHandler.UpdateProgress)
		})

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(config.JWT.Secret, repo.Token, log))

			// Ownership is checked in the service
			r.Get("/", orderHandler.GetOrders)
			r.Post("/", orderHandler.CreateOrder)
			r.Get("/{id}", orderHandler.GetOrderByID)
			r.Patch("/{id}/cancel", orderHandler.CancelOrder)

			// ==================== ADMIN ROUTES ====================
			r.Group(func(r chi.Router) {
				r.Use(middleware.Admin(repo.User, log))

				r.Patch("/{id}/status", orderHandler.UpdateOrderStatus)
				r.Patch("/{id}/assign-drone", orderHandler.AssignDrone)
				r.Delete("/{id}", orderHandler.DeleteOrder)
			})
		})
	})
}
