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

type OrderService interface {
	List(ctx context.Context, actor Actor, req *request.OrderListRequest) (*response.PaginatedResponse[response.OrderResponse], error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*response.OrderResponse, error)
	Create(ctx context.Context, actor Actor, req *request.CreateOrderRequest) (*response.OrderResponse, error)
	CreateExternal(ctx context.Context, req *request.ExternalOrderRequest) (*response.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*response.OrderResponse, error)
	AssignDrone(ctx context.Context, id, droneID uuid.UUID) (*response.OrderResponse, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, req *request.OrderProgressRequest) (*response.OrderResponse, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*response.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	repo   *repository.Repository
	events EventPublisher
	log    *zap.Logger
}

func NewOrderService(repo *repository.Repository, events EventPublisher, log *zap.Logger) OrderService {
	return &orderService{
		repo:   repo,
		events: events,
		log:    log.With(zap.String("service", "order")),
	}
}

// List scopes customers to their own orders; admins may filter by email.
func (s *orderService) List(ctx context.Context, actor Actor, req *request.OrderListRequest) (*response.PaginatedResponse[response.OrderResponse], error) {
	filter := entity.OrderFilter{
		Status:        entity.OrderStatus(req.Status),
		CustomerEmail: req.CustomerEmail,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, newError(ErrValidation, "invalid order status: %s", req.Status)
	}
	if !actor.IsAdmin() {
		filter.CustomerEmail = actor.Email
	}

	orders, err := s.repo.Order.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}

	total, err := s.repo.Order.Count(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count orders", zap.Error(err))
		return nil, fmt.Errorf("count orders: %w", err)
	}

	return response.NewPaginatedResponse(response.OrdersToResponse(orders), req.Page, req.Limit(), total), nil
}

func (s *orderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*response.OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, order) {
		s.log.Warn("Order access denied",
			zap.String("order_id", id.String()),
			zap.String("user_id", actor.UserID.String()))
		return nil, newError(ErrForbidden, "You can only view your own orders")
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) Create(ctx context.Context, actor Actor, req *request.CreateOrderRequest) (*response.OrderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create order validation failed", zap.Any("errors", errs))
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if user == nil {
		return nil, newError(ErrUnauthorized, "User no longer exists")
	}

	order := newOrder(user, req)
	return s.place(ctx, order)
}

// CreateExternal places a storefront checkout, registering the customer on first sight.
func (s *orderService) CreateExternal(ctx context.Context, req *request.ExternalOrderRequest) (*response.OrderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("External order validation failed", zap.Any("errors", errs))
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.findOrCreateCustomer(ctx, req.CustomerName, req.CustomerEmail)
	if err != nil {
		return nil, err
	}

	order := newOrder(user, &req.CreateOrderRequest)
	order.CustomerName = strings.TrimSpace(req.CustomerName)
	return s.place(ctx, order)
}

// UpdateStatus is the admin review step: pending orders become approved or denied.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.OrderStatus) (*response.OrderResponse, error) {
	if status != entity.OrderStatusApproved && status != entity.OrderStatusDenied {
		return nil, newError(ErrValidation, "status must be one of: approved, denied")
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := s.transition(order, status); err != nil {
		return nil, err
	}

	if err := s.repo.Order.Save(ctx, order, from); err != nil {
		return nil, s.saveError(err, order)
	}

	s.publishStatus(ctx, order, from)
	resp := response.OrderToResponse(order)
	return &resp, nil
}

// AssignDrone binds an idle drone with enough capacity to an approved order.
func (s *orderService) AssignDrone(ctx context.Context, id, droneID uuid.UUID) (*response.OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderStatusApproved {
		return nil, newError(ErrConflict, "Order must be approved before assigning a drone (current status: %s)", order.Status)
	}

	drone, err := s.repo.Drone.FindByID(ctx, droneID)
	if err != nil {
		return nil, fmt.Errorf("find drone: %w", err)
	}
	if drone == nil {
		return nil, newError(ErrNotFound, "Drone not found")
	}
	if drone.Status != entity.DroneStatusIdle {
		return nil, newError(ErrConflict, "Drone is not available (current status: %s)", drone.Status)
	}
	if !drone.CanCarry(order.TotalWeight) {
		return nil, newError(ErrConflict, "Drone weight limit %.2fkg is below order weight %.2fkg", drone.WeightLimit, order.TotalWeight)
	}

	from := order.Status
	order.AssignedDroneID = &drone.ID
	order.SetStatus(entity.OrderStatusAssigned, time.Now())

	if err := s.repo.Order.AssignDrone(ctx, order, drone); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.log.Warn("Drone assignment lost a race",
				zap.String("order_id", id.String()),
				zap.String("drone_id", droneID.String()))
			return nil, newError(ErrConflict, "Order or drone changed while assigning, retry")
		}
		s.log.Error("Failed to assign drone", zap.Error(err), zap.String("order_id", id.String()))
		return nil, fmt.Errorf("assign drone: %w", err)
	}

	s.log.Info("Drone assigned",
		zap.String("order_id", id.String()),
		zap.String("drone_id", droneID.String()))

	s.publishStatus(ctx, order, from)
	s.publishDispatch(ctx, order, drone)

	resp := response.OrderToResponse(order)
	return &resp, nil
}

// UpdateProgress records simulator progress. Delivery sends the drone home.
func (s *orderService) UpdateProgress(ctx context.Context, id uuid.UUID, req *request.OrderProgressRequest) (*response.OrderResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, newError(ErrValidation, "validation failed: %s", utils.FormatValidationErrors(errs))
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	next := entity.OrderStatus(req.Status)
	if next != "" && next != from {
		if err := s.transition(order, next); err != nil {
			return nil, err
		}
	} else if from != entity.OrderStatusInTransit && from != entity.OrderStatusAssigned {
		return nil, newError(ErrConflict, "Cannot report progress for a %s order", from)
	}

	order.Progress = *req.Progress
	order.EstimatedTimeRemaining = req.EstimatedTimeRemaining
	if order.Status == entity.OrderStatusDelivered {
		order.Progress = 100
		zero := 0
		order.EstimatedTimeRemaining = &zero
	}
	order.UpdatedAt = time.Now()

	if order.Status == entity.OrderStatusDelivered && from != entity.OrderStatusDelivered {
		err = s.repo.Order.SaveWithDrone(ctx, order, from, entity.DroneStatusReturning)
	} else {
		err = s.repo.Order.Save(ctx, order, from)
	}
	if err != nil {
		return nil, s.saveError(err, order)
	}

	if order.Status != from {
		s.publishStatus(ctx, order, from)
	}

	resp := response.OrderToResponse(order)
	return &resp, nil
}

// Cancel is open to the owner and admins; an assigned drone goes back to idle.
func (s *orderService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*response.OrderResponse, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, order) {
		return nil, newError(ErrForbidden, "You can only cancel your own orders")
	}

	from := order.Status
	if err := s.transition(order, entity.OrderStatusCancelled); err != nil {
		return nil, err
	}

	if from == entity.OrderStatusAssigned {
		err = s.repo.Order.SaveWithDrone(ctx, order, from, entity.DroneStatusIdle)
	} else {
		err = s.repo.Order.Save(ctx, order, from)
	}
	if err != nil {
		return nil, s.saveError(err, order)
	}

	s.log.Info("Order cancelled",
		zap.String("order_id", id.String()),
		zap.String("by", actor.UserID.String()))

	s.publishStatus(ctx, order, from)
	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Order.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "Order not found")
		}
		s.log.Error("Failed to delete order", zap.Error(err), zap.String("order_id", id.String()))
		return fmt.Errorf("delete order: %w", err)
	}

	s.log.Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *orderService) find(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.repo.Order.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find order", zap.Error(err), zap.String("order_id", id.String()))
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order == nil {
		return nil, newError(ErrNotFound, "Order not found")
	}
	return order, nil
}

func (s *orderService) transition(order *entity.Order, next entity.OrderStatus) error {
	if !order.Status.CanTransitionTo(next) {
		return newError(ErrConflict, "Cannot change order status from %s to %s", order.Status, next)
	}
	order.SetStatus(next, time.Now())
	return nil
}

func (s *orderService) saveError(err error, order *entity.Order) error {
	if errors.Is(err, repository.ErrConflict) {
		s.log.Warn("Order changed concurrently", zap.String("order_id", order.ID.String()))
		return newError(ErrConflict, "Order was modified concurrently, retry")
	}
	s.log.Error("Failed to save order", zap.Error(err), zap.String("order_id", order.ID.String()))
	return fmt.Errorf("save order: %w", err)
}

func (s *orderService) place(ctx context.Context, order *entity.Order) (*response.OrderResponse, error) {
	if err := s.repo.Order.Create(ctx, order); err != nil {
		s.log.Error("Failed to create order", zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_email", order.CustomerEmail),
		zap.Float64("total_weight", order.TotalWeight))

	s.publishStatus(ctx, order, "")
	resp := response.OrderToResponse(order)
	return &resp, nil
}

func (s *orderService) findOrCreateCustomer(ctx context.Context, name, email string) (*entity.User, error) {
	email = normalizeEmail(email)

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if user != nil {
		return s.customerOnly(user)
	}

	now := time.Now()
	user = &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:  strings.TrimSpace(name),
		Email: email,
		Role:  entity.RoleCustomer,
	}

	err = s.repo.User.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		// Registered concurrently, use theirs
		user, err = s.repo.User.FindByEmail(ctx, email)
		if err == nil && user == nil {
			err = fmt.Errorf("customer %s vanished after duplicate insert", email)
		}
	}
	if err != nil {
		s.log.Error("Failed to create external customer", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return s.customerOnly(user)
}

// customerOnly keeps external orders off staff accounts.
func (s *orderService) customerOnly(user *entity.User) (*entity.User, error) {
	if user.Role != entity.RoleCustomer {
		s.log.Warn("External order targeted a non-customer account",
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(user.Role)))
		return nil, newError(ErrConflict, "Email %s belongs to a non-customer account", user.Email)
	}
	return user, nil
}

func (s *orderService) publishStatus(ctx context.Context, order *entity.Order, from entity.OrderStatus) {
	event := &entity.OrderStatusChanged{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		From:          from,
		To:            order.Status,
		DroneID:       order.AssignedDroneID,
		At:            order.UpdatedAt,
	}

	if err := s.events.PublishOrderStatus(ctx, event); err != nil {
		s.log.Warn("Failed to publish order status event",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)))
	}
}

func (s *orderService) publishDispatch(ctx context.Context, order *entity.Order, drone *entity.Drone) {
	event := &entity.DroneDispatch{
		OrderID:         order.ID,
		DroneID:         drone.ID,
		SerialNumber:    drone.SerialNumber,
		PickupAddress:   order.PickupAddress,
		DeliveryAddress: order.DeliveryAddress,
		TotalWeight:     order.TotalWeight,
		Latitude:        drone.Latitude,
		Longitude:       drone.Longitude,
		At:              order.UpdatedAt,
	}

	if err := s.events.PublishDispatch(ctx, event); err != nil {
		s.log.Warn("Failed to publish dispatch request",
			zap.Error(err),
			zap.String("order_id", order.ID.String()),
			zap.String("drone_id", drone.ID.String()))
	}
}

func newOrder(user *entity.User, req *request.CreateOrderRequest) *entity.Order {
	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, entity.OrderItem{Name: strings.TrimSpace(it.Name), Quantity: it.Quantity})
	}

	now := time.Now()
	customerID := user.ID
	order := &entity.Order{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CustomerID:      &customerID,
		CustomerName:    user.Name,
		CustomerEmail:   user.Email,
		Items:           items,
		TotalWeight:     req.TotalWeight,
		PickupAddress:   strings.TrimSpace(req.PickupAddress),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Status:          entity.OrderStatusPending,
		StatusHistory:   []entity.StatusEntry{{Status: entity.OrderStatusPending, Timestamp: now}},
	}
	return order
}

func canSee(actor Actor, order *entity.Order) bool {
	if actor.IsAdmin() {
		return true
	}
	if order.CustomerID != nil && *order.CustomerID == actor.UserID {
		return true
	}
	return strings.EqualFold(order.CustomerEmail, actor.Email)
}
