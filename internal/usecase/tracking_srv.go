package usecase

import (
	"context"
	"fmt"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/dto/request"
	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

// EventDroneLocation is the socket event name for position broadcasts.
const EventDroneLocation = "droneLocationUpdate"

type TrackingService interface {
	UpdateLocation(ctx context.Context, req *request.LocationUpdateRequest) (*entity.Telemetry, error)
	Locations(ctx context.Context) ([]*entity.Telemetry, error)
}

type trackingService struct {
	repo *repository.Repository
	hub  Broadcaster
	log  *zap.Logger
}

func NewTrackingService(repo *repository.Repository, hub Broadcaster, log *zap.Logger) TrackingService {
	return &trackingService{
		repo: repo,
		hub:  hub,
		log:  log.With(zap.String("service", "tracking")),
	}
}

// UpdateLocation stores a position report, caches it and re-emits it to socket clients.
// Coordinates are passed through as reported.
func (s *trackingService) UpdateLocation(ctx context.Context, req *request.LocationUpdateRequest) (*entity.Telemetry, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	update := repository.TelemetryUpdate{
		SerialNumber:    req.SerialNumber,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		BatteryCapacity: req.BatteryCapacity,
	}
	if req.DroneStatus != "" {
		status := entity.NormalizeDroneStatus(req.DroneStatus)
		if !status.Valid() {
			return nil, newError(ErrValidation, "invalid drone status: %s", req.DroneStatus)
		}
		update.Status = &status
	}

	drone, err := s.repo.Drone.UpdateTelemetry(ctx, update)
	if err != nil {
		s.log.Error("Failed to store telemetry", zap.Error(err), zap.String("serial_number", req.SerialNumber))
		return nil, fmt.Errorf("store telemetry: %w", err)
	}
	if drone == nil {
		return nil, newError(ErrNotFound, "Drone not found")
	}

	at := time.Now().UTC()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	telemetry := &entity.Telemetry{
		DroneID:         drone.ID.String(),
		SerialNumber:    drone.SerialNumber,
		Latitude:        drone.Latitude,
		Longitude:       drone.Longitude,
		BatteryCapacity: drone.BatteryCapacity,
		Status:          drone.Status,
		Timestamp:       at,
	}

	// The cache only serves the last-known snapshot, the row above is authoritative
	if err := s.repo.Telemetry.Save(ctx, telemetry); err != nil {
		s.log.Warn("Failed to cache telemetry", zap.Error(err), zap.String("serial_number", drone.SerialNumber))
	}

	s.hub.Broadcast(EventDroneLocation, telemetry)
	return telemetry, nil
}

// Locations returns the last cached position of every reporting drone.
func (s *trackingService) Locations(ctx context.Context) ([]*entity.Telemetry, error) {
	positions, err := s.repo.Telemetry.All(ctx)
	if err != nil {
		s.log.Error("Failed to read telemetry cache", zap.Error(err))
		return nil, fmt.Errorf("read telemetry: %w", err)
	}
	return positions, nil
}
