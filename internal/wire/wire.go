package wire

import (
	"context"
	"net/http"
	"time"

	"drone-delivery/internal/adaptor"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/dto/response"
	"drone-delivery/internal/realtime"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/middleware"
	"drone-delivery/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds what main needs after wiring
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the infrastructure clients built in main
type Deps struct {
	Repo     *repository.Repository
	Events   usecase.EventPublisher
	Hub      *realtime.Hub
	Provider usecase.OAuthProvider
}

// Wiring builds services, handlers and the router. ctx bounds the
// background work started here (rate limiter sweeper).
func Wiring(ctx context.Context, deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.Events, deps.Hub, deps.Provider, config, logger)
	handler := adaptor.NewHandler(service, config, logger)

	router := setupRouter(ctx, handler, deps, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	ctx context.Context,
	handler *adaptor.Handler,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	if len(config.RateLimit.TrustedProxies) > 0 {
		r.Use(middleware.RealIP(config.RateLimit.TrustedProxies, logger))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigin))

	limiter := middleware.NewRateLimiter(ctx, config.RateLimit.RPS, config.RateLimit.Burst, logger)

	wireAuth(r, handler.Auth, deps.Repo, limiter, config, logger)
	wireDrone(r, handler.Drone, handler.Tracking, deps.Repo, config, logger)
	wireOrder(r, handler.Order, deps.Repo, config, logger)
	wireDashboard(r, handler.Dashboard, deps.Repo, config, logger)
	wireSimulation(r, handler.Simulation, config, logger)
	wireTracking(r, deps.Hub)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, "OK", response.HealthResponse{
			Status:    "OK",
			Timestamp: time.Now(),
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseMethodNotAllowed(w, "Method not allowed")
	})

	return r
}
