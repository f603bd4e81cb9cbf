package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"drone-delivery/internal/data/entity"
	"drone-delivery/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DroneRepository interface {
	Create(ctx context.Context, drone *entity.Drone) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Drone, error)
	FindBySerial(ctx context.Context, serial string) (*entity.Drone, error)
	FindAll(ctx context.Context, filter entity.DroneFilter, limit, offset int) ([]*entity.Drone, error)
	Count(ctx context.Context, filter entity.DroneFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.DroneStatus]int64, error)
	FindAvailable(ctx context.Context, minWeight float64) ([]*entity.Drone, error)
	Update(ctx context.Context, drone *entity.Drone) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DroneStatus) (*entity.Drone, error)
	UpdateTelemetry(ctx context.Context, update TelemetryUpdate) (*entity.Drone, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TelemetryUpdate carries a position report. Nil fields are left untouched.
type TelemetryUpdate struct {
	SerialNumber    string
	Latitude        float64
	Longitude       float64
	BatteryCapacity *float64
	Status          *entity.DroneStatus
}

type droneRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewDroneRepository(db database.PgxIface, log *zap.Logger) DroneRepository {
	return &droneRepository{
		db:  db,
		log: log.With(zap.String("repository", "drone")),
	}
}

const droneColumns = `id, name, model, serial_number, battery_capacity, weight_limit,
	status, latitude, longitude, created_at, updated_at`

func scanDrone(row rowScanner) (*entity.Drone, error) {
	var drone entity.Drone
	err := row.Scan(
		&drone.ID,
		&drone.Name,
		&drone.Model,
		&drone.SerialNumber,
		&drone.BatteryCapacity,
		&drone.WeightLimit,
		&drone.Status,
		&drone.Latitude,
		&drone.Longitude,
		&drone.CreatedAt,
		&drone.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &drone, nil
}

func (r *droneRepository) collect(rows pgx.Rows) ([]*entity.Drone, error) {
	defer rows.Close()

	var drones []*entity.Drone
	for rows.Next() {
		drone, err := scanDrone(rows)
		if err != nil {
			r.log.Error("Failed to scan drone row", zap.Error(err))
			return nil, fmt.Errorf("scan drone row: %w", err)
		}
		drones = append(drones, drone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drone rows: %w", err)
	}

	return drones, nil
}

func droneWhere(filter entity.DroneFilter) (string, []any) {
	if filter.Status == "" {
		return "", nil
	}
	return " WHERE status = $1", []any{filter.Status}
}

func (r *droneRepository) Create(ctx context.Context, drone *entity.Drone) error {
	query := `
		INSERT INTO drones (` + droneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		drone.ID,
		drone.Name,
		drone.Model,
		drone.SerialNumber,
		drone.BatteryCapacity,
		drone.WeightLimit,
		drone.Status,
		drone.Latitude,
		drone.Longitude,
		drone.CreatedAt,
		drone.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("create drone %s: %w", drone.SerialNumber, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create drone",
			zap.Error(err),
			zap.String("serial_number", drone.SerialNumber),
		)
		return fmt.Errorf("create drone %s: %w", drone.SerialNumber, err)
	}

	return nil
}

func (r *droneRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Drone, error) {
	query := `SELECT ` + droneColumns + ` FROM drones WHERE id = $1`

	drone, err := scanDrone(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find drone by ID",
			zap.Error(err),
			zap.String("drone_id", id.String()),
		)
		return nil, fmt.Errorf("find drone by ID %s: %w", id.String(), err)
	}

	return drone, nil
}

func (r *droneRepository) FindBySerial(ctx context.Context, serial string) (*entity.Drone, error) {
	query := `SELECT ` + droneColumns + ` FROM drones WHERE serial_number = $1`

	drone, err := scanDrone(r.db.QueryRow(ctx, query, serial))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find drone by serial",
			zap.Error(err),
			zap.String("serial_number", serial),
		)
		return nil, fmt.Errorf("find drone by serial %s: %w", serial, err)
	}

	return drone, nil
}

func (r *droneRepository) FindAll(ctx context.Context, filter entity.DroneFilter, limit, offset int) ([]*entity.Drone, error) {
	where, args := droneWhere(filter)
	n := len(args)
	query := `SELECT ` + droneColumns + ` FROM drones` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list drones",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list drones: %w", err)
	}

	return r.collect(rows)
}

func (r *droneRepository) Count(ctx context.Context, filter entity.DroneFilter) (int64, error) {
	where, args := droneWhere(filter)
	query := `SELECT COUNT(*) FROM drones` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count drones", zap.Error(err))
		return 0, fmt.Errorf("count drones: %w", err)
	}

	return count, nil
}

func (r *droneRepository) CountByStatus(ctx context.Context) (map[entity.DroneStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM drones GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to count drones by status", zap.Error(err))
		return nil, fmt.Errorf("count drones by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.DroneStatus]int64)
	for rows.Next() {
		var status entity.DroneStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan drone status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drone status counts: %w", err)
	}

	return counts, nil
}

// FindAvailable lists idle drones able to carry minWeight, smallest adequate first.
func (r *droneRepository) FindAvailable(ctx context.Context, minWeight float64) ([]*entity.Drone, error) {
	query := `
		SELECT ` + droneColumns + `
		FROM drones
		WHERE status = 'idle' AND weight_limit >= $1
		ORDER BY weight_limit, battery_capacity DESC
	`

	rows, err := r.db.Query(ctx, query, minWeight)
	if err != nil {
		r.log.Error("Failed to find available drones",
			zap.Error(err),
			zap.Float64("min_weight", minWeight),
		)
		return nil, fmt.Errorf("find available drones: %w", err)
	}

	return r.collect(rows)
}

func (r *droneRepository) Update(ctx context.Context, drone *entity.Drone) error {
	query := `
		UPDATE drones
		SET name = $2, model = $3, battery_capacity = $4, weight_limit = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		drone.ID,
		drone.Name,
		drone.Model,
		drone.BatteryCapacity,
		drone.WeightLimit,
		drone.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update drone",
			zap.Error(err),
			zap.String("drone_id", drone.ID.String()),
		)
		return fmt.Errorf("update drone %s: %w", drone.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("drone %s: %w", drone.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *droneRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DroneStatus) (*entity.Drone, error) {
	query := `
		UPDATE drones SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + droneColumns

	drone, err := scanDrone(r.db.QueryRow(ctx, query, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to update drone status",
			zap.Error(err),
			zap.String("drone_id", id.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("update drone %s status to %s: %w", id.String(), status, err)
	}

	return drone, nil
}

// UpdateTelemetry applies a position report by serial number. Returns nil when the serial is unknown.
func (r *droneRepository) UpdateTelemetry(ctx context.Context, update TelemetryUpdate) (*entity.Drone, error) {
	query := `
		UPDATE drones
		SET latitude = $2,
		    longitude = $3,
		    battery_capacity = COALESCE($4, battery_capacity),
		    status = COALESCE($5, status),
		    updated_at = NOW()
		WHERE serial_number = $1
		RETURNING ` + droneColumns

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	drone, err := scanDrone(r.db.QueryRow(ctx, query,
		update.SerialNumber,
		update.Latitude,
		update.Longitude,
		update.BatteryCapacity,
		status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to update drone telemetry",
			zap.Error(err),
			zap.String("serial_number", update.SerialNumber),
		)
		return nil, fmt.Errorf("update telemetry for %s: %w", update.SerialNumber, err)
	}

	return drone, nil
}

func (r *droneRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM drones WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete drone",
			zap.Error(err),
			zap.String("drone_id", id.String()),
		)
		return fmt.Errorf("delete drone %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("drone %s: %w", id.String(), ErrNotFound)
	}

	r.log.Info("Drone deleted", zap.String("drone_id", id.String()))
	return nil
}
