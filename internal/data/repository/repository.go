package repository

import (
	"errors"

	"drone-delivery/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a conditional write lost against the current state.
	ErrConflict = errors.New("record changed concurrently")
)

type Repository struct {
	User       UserRepository
	Drone      DroneRepository
	Order      OrderRepository
	Token      TokenRepository
	Telemetry  TelemetryRepository
	Simulation SimulationRepository
}

func NewRepository(db database.PgxIface, rdb *redis.Client, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewUserRepository(db, log),
		Drone:      NewDroneRepository(db, log),
		Order:      NewOrderRepository(db, log),
		Token:      NewTokenRepository(rdb, log),
		Telemetry:  NewTelemetryRepository(rdb, log),
		Simulation: NewSimulationRepository(rdb, log),
	}
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
