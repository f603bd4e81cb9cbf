package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/dto/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestTrackingService_UpdateLocation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	drone := f.addDrone("SN-1", 5, entity.DroneStatusIdle)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	telemetry, err := f.service.Tracking.UpdateLocation(ctx, &request.LocationUpdateRequest{
		SerialNumber:    "SN-1",
		Latitude:        floatPtr(6.5244),
		Longitude:       floatPtr(3.3792),
		BatteryCapacity: floatPtr(77),
		DroneStatus:     "active",
		Timestamp:       &at,
	})
	require.NoError(t, err)

	assert.Equal(t, drone.ID.String(), telemetry.DroneID)
	assert.Equal(t, entity.DroneStatusDelivering, telemetry.Status)
	assert.Equal(t, at, telemetry.Timestamp)

	stored := f.drones.drones[drone.ID]
	assert.Equal(t, 6.5244, stored.Latitude)
	assert.Equal(t, 77.0, stored.BatteryCapacity)

	require.Len(t, f.hub.sent, 1)
	assert.Equal(t, EventDroneLocation, f.hub.sent[0].event)

	payload, err := json.Marshal(f.hub.sent[0].data)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"droneId": "`+drone.ID.String()+`",
		"serialNumber": "SN-1",
		"latitude": 6.5244,
		"longitude": 3.3792,
		"batteryCapacity": 77,
		"status": "delivering",
		"timestamp": "2024-05-01T12:00:00Z"
	}`, string(payload))

	positions, err := f.service.Tracking.Locations(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "SN-1", positions[0].SerialNumber)
}

func TestTrackingService_UpdateLocationErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addDrone("SN-1", 5, entity.DroneStatusIdle)

	_, err := f.service.Tracking.UpdateLocation(ctx, &request.LocationUpdateRequest{
		SerialNumber: "SN-404",
		Latitude:     floatPtr(1),
		Longitude:    floatPtr(1),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.service.Tracking.UpdateLocation(ctx, &request.LocationUpdateRequest{
		SerialNumber: "SN-1",
		Latitude:     floatPtr(120),
		Longitude:    floatPtr(1),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Tracking.UpdateLocation(ctx, &request.LocationUpdateRequest{SerialNumber: "SN-1"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, f.hub.sent)
}
