package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"drone-delivery/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TelemetryRepository caches the last reported position per drone.
type TelemetryRepository interface {
	Save(ctx context.Context, telemetry *entity.Telemetry) error
	All(ctx context.Context) ([]*entity.Telemetry, error)
}

const (
	telemetryKey = "drones:telemetry"
	telemetryTTL = 24 * time.Hour
)

type telemetryRepository struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewTelemetryRepository(rdb *redis.Client, log *zap.Logger) TelemetryRepository {
	return &telemetryRepository{
		rdb: rdb,
		log: log.With(zap.String("repository", "telemetry")),
	}
}

func (r *telemetryRepository) Save(ctx context.Context, telemetry *entity.Telemetry) error {
	payload, err := json.Marshal(telemetry)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, telemetryKey, telemetry.SerialNumber, payload)
	pipe.Expire(ctx, telemetryKey, telemetryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to cache telemetry",
			zap.Error(err),
			zap.String("serial_number", telemetry.SerialNumber),
		)
		return fmt.Errorf("cache telemetry for %s: %w", telemetry.SerialNumber, err)
	}

	return nil
}

// All returns every cached position ordered by serial number.
func (r *telemetryRepository) All(ctx context.Context) ([]*entity.Telemetry, error) {
	values, err := r.rdb.HGetAll(ctx, telemetryKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list telemetry: %w", err)
	}

	out := make([]*entity.Telemetry, 0, len(values))
	for serial, raw := range values {
		var telemetry entity.Telemetry
		if err := json.Unmarshal([]byte(raw), &telemetry); err != nil {
			r.log.Warn("Skipping unreadable telemetry entry",
				zap.Error(err),
				zap.String("serial_number", serial),
			)
			continue
		}
		out = append(out, &telemetry)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SerialNumber < out[j].SerialNumber
	})

	return out, nil
}
