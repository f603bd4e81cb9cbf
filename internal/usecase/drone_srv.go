package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/dto/response"
	"drone-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxActiveDrones bounds the active-drone listing; a fleet larger than this
// needs pagination on that endpoint.
const maxActiveDrones = 1000

type DroneService interface {
	List(ctx context.Context, req *request.DroneListRequest) (*response.PaginatedResponse[response.DroneResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*response.DroneResponse, error)
	Available(ctx context.Context, weight float64) ([]response.DroneResponse, error)
	Active(ctx context.Context) ([]response.ActiveDroneResponse, error)
	Create(ctx context.Context, req *request.CreateDroneRequest) (*response.DroneResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *request.UpdateDroneRequest) (*response.DroneResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DroneStatus) (*response.DroneResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type droneService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewDroneService(repo *repository.Repository, log *zap.Logger) DroneService {
	return &droneService{
		repo: repo,
		log:  log.With(zap.String("service", "drone")),
	}
}

func (s *droneService) List(ctx context.Context, req *request.DroneListRequest) (*response.PaginatedResponse[response.DroneResponse], error) {
	filter := entity.DroneFilter{Status: entity.DroneStatus(req.Status)}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, newError(ErrValidation, "invalid drone status: %s", req.Status)
	}

	drones, err := s.repo.Drone.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list drones", zap.Error(err))
		return nil, fmt.Errorf("list drones: %w", err)
	}

	total, err := s.repo.Drone.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count drones", zap.Error(err))
		return nil, fmt.Errorf("count drones: %w", err)
	}

	return response.NewPaginatedResponse(response.DronesToResponse(drones), req.Page, req.Limit(), total), nil
}

func (s *droneService) Get(ctx context.Context, id uuid.UUID) (*response.DroneResponse, error) {
	drone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.DroneToResponse(drone)
	return &resp, nil
}

// Available applies the assignment filter: idle drones rated for at least weight.
func (s *droneService) Available(ctx context.Context, weight float64) ([]response.DroneResponse, error) {
	if weight < 0 {
		return nil, newError(ErrValidation, "weight must not be negative")
	}

	drones, err := s.repo.Drone.FindAvailable(ctx, weight)
	if err != nil {
		s.log.Error("Failed to find available drones", zap.Error(err), zap.Float64("weight", weight))
		return nil, fmt.Errorf("find available drones: %w", err)
	}

	return response.DronesToResponse(drones), nil
}

// Active lists delivering drones with the order each one is flying.
func (s *droneService) Active(ctx context.Context) ([]response.ActiveDroneResponse, error) {
	drones, err := s.repo.Drone.FindAll(ctx, entity.DroneFilter{Status: entity.DroneStatusDelivering}, maxActiveDrones, 0)
	if err != nil {
		s.log.Error("Failed to list active drones", zap.Error(err))
		return nil, fmt.Errorf("list active drones: %w", err)
	}

	inFlight, err := s.repo.Order.FindInFlight(ctx)
	if err != nil {
		s.log.Error("Failed to load in-flight orders", zap.Error(err))
		return nil, fmt.Errorf("load in-flight orders: %w", err)
	}

	out := make([]response.ActiveDroneResponse, 0, len(drones))
	for _, drone := range drones {
		item := response.ActiveDroneResponse{DroneResponse: response.DroneToResponse(drone)}
		if order, ok := inFlight[drone.ID]; ok {
			o := response.OrderToResponse(order)
			item.Order = &o
		}
		out = append(out, item)
	}

	return out, nil
}

func (s *droneService) Create(ctx context.Context, req *request.CreateDroneRequest) (*response.DroneResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create drone validation failed", zap.Any("errors", errs))
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	drone := &entity.Drone{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:            strings.TrimSpace(req.Name),
		Model:           strings.TrimSpace(req.Model),
		SerialNumber:    strings.TrimSpace(req.SerialNumber),
		BatteryCapacity: req.BatteryCapacity,
		WeightLimit:     req.WeightLimit,
		Status:          entity.DroneStatusIdle,
	}

	if err := s.repo.Drone.Create(ctx, drone); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "Drone with serial number %s already exists", drone.SerialNumber)
		}
		s.log.Error("Failed to create drone", zap.Error(err))
		return nil, fmt.Errorf("create drone: %w", err)
	}

	s.log.Info("Drone created",
		zap.String("drone_id", drone.ID.String()),
		zap.String("serial_number", drone.SerialNumber))

	resp := response.DroneToResponse(drone)
	return &resp, nil
}

func (s *droneService) Update(ctx context.Context, id uuid.UUID, req *request.UpdateDroneRequest) (*response.DroneResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	drone, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		drone.Name = strings.TrimSpace(*req.Name)
	}
	if req.Model != nil {
		drone.Model = strings.TrimSpace(*req.Model)
	}
	if req.BatteryCapacity != nil {
		drone.BatteryCapacity = *req.BatteryCapacity
	}
	if req.WeightLimit != nil {
		drone.WeightLimit = *req.WeightLimit
	}
	drone.UpdatedAt = time.Now()

	if err := s.repo.Drone.Update(ctx, drone); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "Drone not found")
		}
		s.log.Error("Failed to update drone", zap.Error(err), zap.String("drone_id", id.String()))
		return nil, fmt.Errorf("update drone: %w", err)
	}

	resp := response.DroneToResponse(drone)
	return &resp, nil
}

func (s *droneService) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DroneStatus) (*response.DroneResponse, error) {
	if !status.Valid() {
		return nil, newError(ErrValidation, "invalid drone status: %s", status)
	}

	drone, err := s.repo.Drone.UpdateStatus(ctx, id, status)
	if err != nil {
		s.log.Error("Failed to update drone status", zap.Error(err), zap.String("drone_id", id.String()))
		return nil, fmt.Errorf("update drone status: %w", err)
	}
	if drone == nil {
		return nil, newError(ErrNotFound, "Drone not found")
	}

	s.log.Info("Drone status updated",
		zap.String("drone_id", id.String()),
		zap.String("status", string(status)))

	resp := response.DroneToResponse(drone)
	return &resp, nil
}

// Delete refuses while the drone still carries an assigned or in-transit order.
func (s *droneService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	order, err := s.repo.Order.FindInFlightByDrone(ctx, id)
	if err != nil {
		return fmt.Errorf("check in-flight order: %w", err)
	}
	if order != nil {
		return newError(ErrConflict, "Drone is assigned to order %s", order.ID.String())
	}

	if err := s.repo.Drone.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "Drone not found")
		}
		s.log.Error("Failed to delete drone", zap.Error(err), zap.String("drone_id", id.String()))
		return fmt.Errorf("delete drone: %w", err)
	}

	return nil
}

func (s *droneService) find(ctx context.Context, id uuid.UUID) (*entity.Drone, error) {
	drone, err := s.repo.Drone.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find drone", zap.Error(err), zap.String("drone_id", id.String()))
		return nil, fmt.Errorf("find drone: %w", err)
	}
	if drone == nil {
		return nil, newError(ErrNotFound, "Drone not found")
	}
	return drone, nil
}
