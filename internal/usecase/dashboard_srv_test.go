package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Stats(t *testing.T) {
	f := newFixture()
	ada := f.addUser("Ada", "ada@example.com", entity.RoleCustomer)
	f.addDrone("SN-1", 5, entity.DroneStatusIdle)
	f.addDrone("SN-2", 5, entity.DroneStatusIdle)
	f.addDrone("SN-3", 5, entity.DroneStatusDelivering)
	f.addOrder(ada, 1, entity.OrderStatusPending)
	f.addOrder(ada, 1, entity.OrderStatusInTransit)
	f.addOrder(ada, 1, entity.OrderStatusDelivered)
	f.addOrder(ada, 1, entity.OrderStatusDelivered)

	stats, err := f.service.Dashboard.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalDrones)
	assert.Equal(t, int64(2), stats.DronesByStatus["idle"])
	assert.Equal(t, int64(0), stats.DronesByStatus["maintenance"])
	assert.Len(t, stats.DronesByStatus, 5)
	assert.Equal(t, int64(1), stats.ActiveDeliveries)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(2), stats.CompletedOrders)
	assert.Equal(t, int64(4), stats.TotalOrders)
}

func TestSimulationService_Lifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.Simulation.Current(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.service.Simulation.Push(ctx)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Simulation.Start(ctx, &request.StartSimulationRequest{Order: json.RawMessage(`{"id":"o1"}`)})
	assert.ErrorIs(t, err, ErrValidation)

	started, err := f.service.Simulation.Start(ctx, &request.StartSimulationRequest{
		Order: json.RawMessage(`{"id":"o1"}`),
		Drone: json.RawMessage(`{"id":"d1"}`),
	})
	require.NoError(t, err)
	assert.False(t, started.StartedAt.IsZero())

	current, err := f.service.Simulation.Current(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"o1"}`, string(current.Order))

	pushed, err := f.service.Simulation.Push(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d1"}`, string(pushed.Drone))
}
