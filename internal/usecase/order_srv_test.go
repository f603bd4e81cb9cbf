package usecase

import (
	"context"
	"testing"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validOrderRequest() request.CreateOrderRequest {
	return request.CreateOrderRequest{
		Items:           []request.OrderItemRequest{{Name: "Medicine", Quantity: 2}},
		TotalWeight:     3.5,
		PickupAddress:   "Warehouse 1",
		DeliveryAddress: "12 Main St",
	}
}

func TestOrderService_Create(t *testing.T) {
	f := newFixture()
	customer := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)

	req := validOrderRequest()
	order, err := f.service.Order.Create(context.Background(), actorOf(customer), &req)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, "Ada", order.CustomerName)
	assert.Equal(t, "ada@example.com", order.CustomerEmail)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, entity.OrderStatusPending, order.StatusHistory[0].Status)

	require.Len(t, f.events.statuses, 1)
	assert.Equal(t, entity.OrderStatusPending, f.events.statuses[0].To)

	bad := request.CreateOrderRequest{TotalWeight: 1, PickupAddress: "a", DeliveryAddress: "b"}
	_, err = f.service.Order.Create(context.Background(), actorOf(customer), &bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_CreateExternal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := &request.ExternalOrderRequest{
		CustomerName:       "Grace",
		CustomerEmail:      "Grace@Example.com",
		CreateOrderRequest: validOrderRequest(),
	}

	first, err := f.service.Order.CreateExternal(ctx, req)
	require.NoError(t, err)
	second, err := f.service.Order.CreateExternal(ctx, req)
	require.NoError(t, err)

	// One customer, two orders
	assert.Len(t, f.users.users, 1)
	require.NotNil(t, first.CustomerID)
	assert.Equal(t, *first.CustomerID, *second.CustomerID)
	assert.Equal(t, "grace@example.com", first.CustomerEmail)

	for _, u := range f.users.users {
		assert.Nil(t, u.PasswordHash)
		assert.Equal(t, entity.RoleCustomer, u.Role)
	}
}

func TestOrderService_CreateExternalRejectsStaffEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addUser("Boss", "boss@example.com", entity.RoleAdmin)

	req := &request.ExternalOrderRequest{
		CustomerName:       "Mallory",
		CustomerEmail:      "BOSS@example.com",
		CreateOrderRequest: validOrderRequest(),
	}

	order, err := f.service.Order.CreateExternal(ctx, req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, order)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.events.statuses)
}

func TestOrderService_ListScopesCustomers(t *testing.T) {
	f := newFixture()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
	bob := f.addUser("Bob", "bob@example.com", entity.RoleCustomer)
	admin := f.addUser("Admin", "admin@example.com", entity.RoleAdmin)
	f.addOrder(ada, 1, entity.OrderStatusPending)
	f.addOrder(ada, 1, entity.OrderStatusApproved)
	f.addOrder(bob, 1, entity.OrderStatusPending)

	page := request.PaginatedRequest{Page: 1, PerPage: 10}

	// A customer asking for someone else's email still only sees their own
	resp, err := f.service.Order.List(context.Background(), actorOf(ada),
		&request.OrderListRequest{PaginatedRequest: page, CustomerEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total)

	resp, err = f.service.Order.List(context.Background(), actorOf(admin),
		&request.OrderListRequest{PaginatedRequest: page})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Pagination.Total)

	resp, err = f.service.Order.List(context.Background(), actorOf(admin),
		&request.OrderListRequest{PaginatedRequest: page, Status: "pending", CustomerEmail: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestOrderService_GetForbidden(t *testing.T) {
	f := newFixture()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
	bob := f.addUser("Bob", "bob@example.com", entity.RoleCustomer)
	order := f.addOrder(ada, 1, entity.OrderStatusPending)

	_, err := f.service.Order.Get(context.Background(), actorOf(bob), order.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.service.Order.Get(context.Background(), actorOf(ada), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), got.ID)

	_, err = f.service.Order.Get(context.Background(), actorOf(ada), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_ReviewTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)

	pending := f.addOrder(ada, 1, entity.OrderStatusPending)
	approved, err := f.service.Order.UpdateStatus(ctx, pending.ID, entity.OrderStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusApproved, approved.Status)
	require.Len(t, approved.StatusHistory, 2)
	assert.Equal(t, entity.OrderStatusApproved, approved.StatusHistory[1].Status)

	// approved -> denied is not a legal move
	_, err = f.service.Order.UpdateStatus(ctx, pending.ID, entity.OrderStatusDenied)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.service.Order.UpdateStatus(ctx, pending.ID, entity.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Order.UpdateStatus(ctx, uuid.New(), entity.OrderStatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_AssignDrone(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns an idle drone with capacity", func(t *testing.T) {
		f := newFixture()
		ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
		order := f.addOrder(ada, 4, entity.OrderStatusApproved)
		drone := f.addDrone("SN-1", 5, entity.DroneStatusIdle)

		resp, err := f.service.Order.AssignDrone(ctx, order.ID, drone.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusAssigned, resp.Status)
		require.NotNil(t, resp.AssignedDroneID)
		assert.Equal(t, drone.ID.String(), *resp.AssignedDroneID)
		assert.Equal(t, entity.DroneStatusDelivering, f.drones.drones[drone.ID].Status)

		require.Len(t, f.events.dispatches, 1)
		assert.Equal(t, "SN-1", f.events.dispatches[0].SerialNumber)
		assert.Equal(t, entity.OrderStatusAssigned, f.events.statuses[len(f.events.statuses)-1].To)
	})

	t.Run("rejects", func(t *testing.T) {
		f := newFixture()
		ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
		approved := f.addOrder(ada, 4, entity.OrderStatusApproved)
		pending := f.addOrder(ada, 4, entity.OrderStatusPending)
		small := f.addDrone("SN-small", 3, entity.DroneStatusIdle)
		busy := f.addDrone("SN-busy", 10, entity.DroneStatusCharging)
		idle := f.addDrone("SN-idle", 10, entity.DroneStatusIdle)

		_, err := f.service.Order.AssignDrone(ctx, approved.ID, small.ID)
		assert.ErrorIs(t, err, ErrConflict, "over weight limit")

		_, err = f.service.Order.AssignDrone(ctx, approved.ID, busy.ID)
		assert.ErrorIs(t, err, ErrConflict, "drone not idle")

		_, err = f.service.Order.AssignDrone(ctx, pending.ID, idle.ID)
		assert.ErrorIs(t, err, ErrConflict, "order not approved")

		_, err = f.service.Order.AssignDrone(ctx, approved.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Empty(t, f.events.dispatches)
		assert.Equal(t, entity.DroneStatusIdle, f.drones.drones[idle.ID].Status)
	})
}

func TestOrderService_ProgressToDelivery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
	drone := f.addDrone("SN-1", 5, entity.DroneStatusIdle)
	order := f.addOrder(ada, 2, entity.OrderStatusApproved)

	_, err := f.service.Order.AssignDrone(ctx, order.ID, drone.ID)
	require.NoError(t, err)

	resp, err := f.service.Order.UpdateProgress(ctx, order.ID, &request.OrderProgressRequest{
		Status:                 "in-transit",
		Progress:               intPtr(40),
		EstimatedTimeRemaining: intPtr(6),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInTransit, resp.Status)
	assert.Equal(t, 40, resp.Progress)

	resp, err = f.service.Order.UpdateProgress(ctx, order.ID, &request.OrderProgressRequest{Progress: intPtr(70)})
	require.NoError(t, err)
	assert.Equal(t, 70, resp.Progress)

	resp, err = f.service.Order.UpdateProgress(ctx, order.ID, &request.OrderProgressRequest{
		Status:   "delivered",
		Progress: intPtr(95),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, resp.Status)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, entity.DroneStatusReturning, f.drones.drones[drone.ID].Status)

	var history []entity.OrderStatus
	for _, h := range resp.StatusHistory {
		history = append(history, h.Status)
	}
	assert.Equal(t, []entity.OrderStatus{
		entity.OrderStatusApproved,
		entity.OrderStatusAssigned,
		entity.OrderStatusInTransit,
		entity.OrderStatusDelivered,
	}, history)

	_, err = f.service.Order.UpdateProgress(ctx, order.ID, &request.OrderProgressRequest{Progress: intPtr(100)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_ProgressSkippingTransitIsRejected(t *testing.T) {
	f := newFixture()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
	order := f.addOrder(ada, 2, entity.OrderStatusAssigned)

	_, err := f.service.Order.UpdateProgress(context.Background(), order.ID, &request.OrderProgressRequest{
		Status:   "delivered",
		Progress: intPtr(100),
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels an assigned order and frees the drone", func(t *testing.T) {
		f := newFixture()
		ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
		drone := f.addDrone("SN-1", 5, entity.DroneStatusIdle)
		order := f.addOrder(ada, 2, entity.OrderStatusApproved)
		_, err := f.service.Order.AssignDrone(ctx, order.ID, drone.ID)
		require.NoError(t, err)

		resp, err := f.service.Order.Cancel(ctx, actorOf(ada), order.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.OrderStatusCancelled, resp.Status)
		assert.Equal(t, entity.DroneStatusIdle, f.drones.drones[drone.ID].Status)
	})

	t.Run("another customer may not cancel", func(t *testing.T) {
		f := newFixture()
		ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
		bob := f.addUser("Bob", "bob@example.com", entity.RoleCustomer)
		order := f.addOrder(ada, 2, entity.OrderStatusPending)

		_, err := f.service.Order.Cancel(ctx, actorOf(bob), order.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("in-transit orders cannot be cancelled", func(t *testing.T) {
		f := newFixture()
		admin := f.addUser("Admin", "admin@example.com", entity.RoleAdmin)
		ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
		order := f.addOrder(ada, 2, entity.OrderStatusInTransit)

		_, err := f.service.Order.Cancel(ctx, actorOf(admin), order.ID)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestOrderService_Delete(t *testing.T) {
	f := newFixture()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
	order := f.addOrder(ada, 2, entity.OrderStatusPending)

	require.NoError(t, f.service.Order.Delete(context.Background(), order.ID))
	assert.ErrorIs(t, f.service.Order.Delete(context.Background(), order.ID), ErrNotFound)
}
