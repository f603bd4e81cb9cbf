package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"drone-delivery/internal/data/entity"
	"drone-delivery/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	FindAll(ctx context.Context, filter entity.OrderFilter, limit, offset int) ([]*entity.Order, error)
	Count(ctx context.Context, filter entity.OrderFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Business queries
	FindInFlightByDrone(ctx context.Context, droneID uuid.UUID) (*entity.Order, error)
	FindInFlight(ctx context.Context) (map[uuid.UUID]*entity.Order, error)
	Save(ctx context.Context, order *entity.Order, from entity.OrderStatus) error
	SaveWithDrone(ctx context.Context, order *entity.Order, from entity.OrderStatus, droneStatus entity.DroneStatus) error
	AssignDrone(ctx context.Context, order *entity.Order, drone *entity.Drone) error
}

type orderRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOrderRepository(db database.PgxIface, log *zap.Logger) OrderRepository {
	return &orderRepository{
		db:  db,
		log: log.With(zap.String("repository", "order")),
	}
}

const orderColumns = `id, customer_id, customer_name, customer_email, items, total_weight,
	pickup_address, delivery_address, status, assigned_drone_id, status_history,
	progress, estimated_time_remaining, created_at, updated_at`

func scanOrder(row rowScanner) (*entity.Order, error) {
	var order entity.Order
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.Items,
		&order.TotalWeight,
		&order.PickupAddress,
		&order.DeliveryAddress,
		&order.Status,
		&order.AssignedDroneID,
		&order.StatusHistory,
		&order.Progress,
		&order.EstimatedTimeRemaining,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// jsonb columns are NOT NULL, nil slices would encode as SQL NULL
func orderDocuments(order *entity.Order) ([]entity.OrderItem, []entity.StatusEntry) {
	items := order.Items
	if items == nil {
		items = []entity.OrderItem{}
	}
	history := order.StatusHistory
	if history == nil {
		history = []entity.StatusEntry{}
	}
	return items, history
}

func orderWhere(filter entity.OrderFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.CustomerEmail != "" {
		args = append(args, filter.CustomerEmail)
		clauses = append(clauses, "LOWER(customer_email) = LOWER($"+strconv.Itoa(len(args))+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	items, history := orderDocuments(order)
	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		order.CustomerName,
		order.CustomerEmail,
		items,
		order.TotalWeight,
		order.PickupAddress,
		order.DeliveryAddress,
		order.Status,
		order.AssignedDroneID,
		history,
		order.Progress,
		order.EstimatedTimeRemaining,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create order",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
			zap.String("customer_email", order.CustomerEmail),
		)
		return fmt.Errorf("create order %s: %w", order.ID.String(), err)
	}

	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find order by ID",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return nil, fmt.Errorf("find order by ID %s: %w", id.String(), err)
	}

	return order, nil
}

func (r *orderRepository) FindAll(ctx context.Context, filter entity.OrderFilter, limit, offset int) ([]*entity.Order, error) {
	where, args := orderWhere(filter)
	n := len(args)
	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list orders",
			zap.Error(err),
			zap.String("status", string(filter.Status)),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Error("Failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) Count(ctx context.Context, filter entity.OrderFilter) (int64, error) {
	where, args := orderWhere(filter)
	query := `SELECT COUNT(*) FROM orders` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count orders", zap.Error(err))
		return 0, fmt.Errorf("count orders: %w", err)
	}

	return count, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM orders GROUP BY status`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to count orders by status", zap.Error(err))
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.OrderStatus]int64)
	for rows.Next() {
		var status entity.OrderStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan order status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order status counts: %w", err)
	}

	return counts, nil
}

// FindInFlightByDrone returns the assigned or in-transit order carried by the drone, if any.
func (r *orderRepository) FindInFlightByDrone(ctx context.Context, droneID uuid.UUID) (*entity.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE assigned_drone_id = $1 AND status IN ('assigned', 'in-transit')
		ORDER BY updated_at DESC
		LIMIT 1
	`

	order, err := scanOrder(r.db.QueryRow(ctx, query, droneID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find in-flight order",
			zap.Error(err),
			zap.String("drone_id", droneID.String()),
		)
		return nil, fmt.Errorf("find in-flight order for drone %s: %w", droneID.String(), err)
	}

	return order, nil
}

// FindInFlight returns every assigned or in-transit order keyed by its drone,
// the newest one when a drone somehow carries several.
func (r *orderRepository) FindInFlight(ctx context.Context) (map[uuid.UUID]*entity.Order, error) {
	query := `
		SELECT DISTINCT ON (assigned_drone_id) ` + orderColumns + `
		FROM orders
		WHERE assigned_drone_id IS NOT NULL AND status IN ('assigned', 'in-transit')
		ORDER BY assigned_drone_id, updated_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list in-flight orders", zap.Error(err))
		return nil, fmt.Errorf("list in-flight orders: %w", err)
	}
	defer rows.Close()

	orders := make(map[uuid.UUID]*entity.Order)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Error("Failed to scan in-flight order", zap.Error(err))
			return nil, fmt.Errorf("scan in-flight order: %w", err)
		}
		orders[*order.AssignedDroneID] = order
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate in-flight orders: %w", err)
	}

	return orders, nil
}

const saveOrderQuery = `
	UPDATE orders
	SET status = $3,
	    assigned_drone_id = $4,
	    status_history = $5,
	    progress = $6,
	    estimated_time_remaining = $7,
	    updated_at = $8
	WHERE id = $1 AND status = $2
`

func saveOrderArgs(order *entity.Order, from entity.OrderStatus) []any {
	_, history := orderDocuments(order)
	return []any{
		order.ID,
		from,
		order.Status,
		order.AssignedDroneID,
		history,
		order.Progress,
		order.EstimatedTimeRemaining,
		order.UpdatedAt,
	}
}

// Save writes the mutable order fields, provided the stored status is still from.
// ErrConflict when another writer moved the order first.
func (r *orderRepository) Save(ctx context.Context, order *entity.Order, from entity.OrderStatus) error {
	result, err := r.db.Exec(ctx, saveOrderQuery, saveOrderArgs(order, from)...)
	if err != nil {
		r.log.Error("Failed to save order",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
		)
		return fmt.Errorf("save order %s: %w", order.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s no longer %s: %w", order.ID.String(), from, ErrConflict)
	}

	return nil
}

// SaveWithDrone saves the order and sets its assigned drone's status in one transaction.
func (r *orderRepository) SaveWithDrone(ctx context.Context, order *entity.Order, from entity.OrderStatus, droneStatus entity.DroneStatus) error {
	if order.AssignedDroneID == nil {
		return r.Save(ctx, order, from)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, saveOrderQuery, saveOrderArgs(order, from)...)
	if err != nil {
		r.log.Error("Failed to save order",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
		return fmt.Errorf("save order %s: %w", order.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s no longer %s: %w", order.ID.String(), from, ErrConflict)
	}

	_, err = tx.Exec(ctx,
		`UPDATE drones SET status = $2, updated_at = $3 WHERE id = $1`,
		*order.AssignedDroneID, droneStatus, order.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update drone status",
			zap.Error(err),
			zap.String("drone_id", order.AssignedDroneID.String()),
		)
		return fmt.Errorf("set drone %s to %s: %w", order.AssignedDroneID.String(), droneStatus, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %s: %w", order.ID.String(), err)
	}

	return nil
}

// AssignDrone claims an idle drone for an approved order. The drone flips to
// delivering and the order to assigned atomically; ErrConflict if either moved.
// The order must already carry the assigned status and drone id.
func (r *orderRepository) AssignDrone(ctx context.Context, order *entity.Order, drone *entity.Drone) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE drones SET status = 'delivering', updated_at = $3
		WHERE id = $1 AND status = 'idle' AND weight_limit >= $2
	`, drone.ID, order.TotalWeight, order.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to claim drone",
			zap.Error(err),
			zap.String("drone_id", drone.ID.String()),
		)
		return fmt.Errorf("claim drone %s: %w", drone.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("drone %s not available: %w", drone.ID.String(), ErrConflict)
	}

	result, err = tx.Exec(ctx, saveOrderQuery, saveOrderArgs(order, entity.OrderStatusApproved)...)
	if err != nil {
		r.log.Error("Failed to assign order",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
		)
		return fmt.Errorf("assign order %s: %w", order.ID.String(), err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s no longer approved: %w", order.ID.String(), ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit assignment %s: %w", order.ID.String(), err)
	}

	drone.Status = entity.DroneStatusDelivering
	r.log.Info("Drone assigned",
		zap.String("order_id", order.ID.String()),
		zap.String("drone_id", drone.ID.String()),
	)
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete order",
			zap.Error(err),
			zap.String("order_id", id.String()),
		)
		return fmt.Errorf("delete order %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id.String(), ErrNotFound)
	}

	return nil
}
