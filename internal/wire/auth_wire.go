package wire

import (
	"drone-delivery/internal/adaptor"
	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/middleware"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	limiter *middleware.RateLimiter,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(limiter.Handler)

		// ==================== PUBLIC ROUTES ====================
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/google", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)

		// ==================== PROTECTED ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(config.JWT.Secret, repo.Token, log))

			r.Get("/profile", authHandler.Profile)
			r.Post("/logout", authHandler.Logout)
		})
	})
}
