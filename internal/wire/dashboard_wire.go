package wire

import (
	"drone-delivery/internal/adaptor"
	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/middleware"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireDashboard(
	r chi.Router,
	dashboardHandler *adaptor.DashboardHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AuthJWT(config.JWT.Secret, repo.Token, log))
		r.Use(middleware.Admin(repo.User, log))

		r.Get("/stats", dashboardHandler.GetStats)
	})
}
