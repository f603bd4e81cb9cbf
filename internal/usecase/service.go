package usecase

import (
	"context"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/oauth"
	"drone-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher ships domain events to the message bus.
type EventPublisher interface {
	PublishOrderStatus(ctx context.Context, event *entity.OrderStatusChanged) error
	PublishDispatch(ctx context.Context, event *entity.DroneDispatch) error
}

// Broadcaster pushes an event to every connected tracking client.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// OAuthProvider is the Google login client.
type OAuthProvider interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.GoogleUser, error)
}

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   entity.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

type Service struct {
	Auth       AuthService
	Drone      DroneService
	Order      OrderService
	Tracking   TrackingService
	Dashboard  DashboardService
	Simulation SimulationService
}

func NewService(
	repo *repository.Repository,
	events EventPublisher,
	hub Broadcaster,
	provider OAuthProvider,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(repo, provider, config, log),
		Drone:      NewDroneService(repo, log),
		Order:      NewOrderService(repo, events, log),
		Tracking:   NewTrackingService(repo, hub, log),
		Dashboard:  NewDashboardService(repo, log),
		Simulation: NewSimulationService(repo.Simulation, log),
	}
}
