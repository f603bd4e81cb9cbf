package usecase

import (
	"context"
	"fmt"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/dto/response"

	"go.uber.org/zap"
)

type DashboardService interface {
	Stats(ctx context.Context) (*response.DashboardStats, error)
}

type dashboardService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewDashboardService(repo *repository.Repository, log *zap.Logger) DashboardService {
	return &dashboardService{
		repo: repo,
		log:  log.With(zap.String("service", "dashboard")),
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*response.DashboardStats, error) {
	drones, err := s.repo.Drone.CountByStatus(ctx)
	if err != nil {
		s.log.Error("Failed to count drones", zap.Error(err))
		return nil, fmt.Errorf("count drones: %w", err)
	}

	orders, err := s.repo.Order.CountByStatus(ctx)
	if err != nil {
		s.log.Error("Failed to count orders", zap.Error(err))
		return nil, fmt.Errorf("count orders: %w", err)
	}

	stats := &response.DashboardStats{
		DronesByStatus:   make(map[string]int64, len(entity.DroneStatuses())),
		ActiveDeliveries: orders[entity.OrderStatusInTransit],
		PendingOrders:    orders[entity.OrderStatusPending],
		CompletedOrders:  orders[entity.OrderStatusDelivered],
	}

	// Every status is reported, zero included
	for _, status := range entity.DroneStatuses() {
		stats.DronesByStatus[string(status)] = drones[status]
		stats.TotalDrones += drones[status]
	}
	for _, n := range orders {
		stats.TotalOrders += n
	}

	return stats, nil
}
