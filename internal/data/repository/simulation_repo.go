package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"drone-delivery/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SimulationRepository holds the single active simulation snapshot.
type SimulationRepository interface {
	Save(ctx context.Context, sim *entity.Simulation) error
	Get(ctx context.Context) (*entity.Simulation, error)
}

const simulationKey = "simulation:current"

type simulationRepository struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewSimulationRepository(rdb *redis.Client, log *zap.Logger) SimulationRepository {
	return &simulationRepository{
		rdb: rdb,
		log: log.With(zap.String("repository", "simulation")),
	}
}

// Save replaces the current snapshot.
func (r *simulationRepository) Save(ctx context.Context, sim *entity.Simulation) error {
	payload, err := json.Marshal(sim)
	if err != nil {
		return fmt.Errorf("marshal simulation: %w", err)
	}

	if err := r.rdb.Set(ctx, simulationKey, payload, 0).Err(); err != nil {
		r.log.Error("Failed to store simulation", zap.Error(err))
		return fmt.Errorf("store simulation: %w", err)
	}

	return nil
}

// Get returns nil, nil when no simulation was started.
func (r *simulationRepository) Get(ctx context.Context) (*entity.Simulation, error) {
	raw, err := r.rdb.Get(ctx, simulationKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load simulation: %w", err)
	}

	var sim entity.Simulation
	if err := json.Unmarshal(raw, &sim); err != nil {
		return nil, fmt.Errorf("decode simulation: %w", err)
	}

	return &sim, nil
}
