package usecase

import (
	"context"
	"fmt"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/data/repository"
	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/dto/response"

	"go.uber.org/zap"
)

// SimulationService keeps the single snapshot exchanged with the flight simulator.
type SimulationService interface {
	Current(ctx context.Context) (*response.SimulationResponse, error)
	Start(ctx context.Context, req *request.StartSimulationRequest) (*response.SimulationResponse, error)
	Push(ctx context.Context) (*response.SimulationResponse, error)
}

type simulationService struct {
	repo repository.SimulationRepository
	log  *zap.Logger
}

func NewSimulationService(repo repository.SimulationRepository, log *zap.Logger) SimulationService {
	return &simulationService{
		repo: repo,
		log:  log.With(zap.String("service", "simulation")),
	}
}

func (s *simulationService) Current(ctx context.Context) (*response.SimulationResponse, error) {
	sim, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if sim == nil {
		return nil, newError(ErrNotFound, "No simulation data available")
	}
	return toSimulationResponse(sim), nil
}

func (s *simulationService) Start(ctx context.Context, req *request.StartSimulationRequest) (*response.SimulationResponse, error) {
	if len(req.Order) == 0 || len(req.Drone) == 0 {
		return nil, newError(ErrValidation, "order and drone are required")
	}

	sim := &entity.Simulation{
		Order:     req.Order,
		Drone:     req.Drone,
		StartedAt: time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, sim); err != nil {
		s.log.Error("Failed to store simulation", zap.Error(err))
		return nil, fmt.Errorf("store simulation: %w", err)
	}

	s.log.Info("Simulation started")
	return toSimulationResponse(sim), nil
}

// Push hands the current snapshot to the simulator; it is an error to push nothing.
func (s *simulationService) Push(ctx context.Context) (*response.SimulationResponse, error) {
	sim, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if sim == nil {
		return nil, newError(ErrValidation, "No simulation data to push")
	}
	return toSimulationResponse(sim), nil
}

func (s *simulationService) load(ctx context.Context) (*entity.Simulation, error) {
	sim, err := s.repo.Get(ctx)
	if err != nil {
		s.log.Error("Failed to load simulation", zap.Error(err))
		return nil, fmt.Errorf("load simulation: %w", err)
	}
	return sim, nil
}

func toSimulationResponse(sim *entity.Simulation) *response.SimulationResponse {
	return &response.SimulationResponse{
		Order:     sim.Order,
		Drone:     sim.Drone,
		StartedAt: sim.StartedAt,
	}
}
