package request

import "time"

type CreateDroneRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Model           string  `json:"model" validate:"required,max=100"`
	SerialNumber    string  `json:"serialNumber" validate:"required,max=64"`
	BatteryCapacity float64 `json:"batteryCapacity" validate:"gte=0,lte=100"`
	WeightLimit     float64 `json:"weightLimit" validate:"gt=0"`
}

// UpdateDroneRequest is a partial update; nil fields are kept.
type UpdateDroneRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Model           *string  `json:"model" validate:"omitempty,min=1,max=100"`
	BatteryCapacity *float64 `json:"batteryCapacity" validate:"omitempty,gte=0,lte=100"`
	WeightLimit     *float64 `json:"weightLimit" validate:"omitempty,gt=0"`
}

type UpdateDroneStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=idle delivering returning charging maintenance"`
}

type DroneListRequest struct {
	PaginatedRequest
	Status string `validate:"omitempty,oneof=idle delivering returning charging maintenance"`
}

// LocationUpdateRequest is a telemetry report from a drone or the simulator.
// DroneStatus accepts "active" as an alias for delivering.
type LocationUpdateRequest struct {
	SerialNumber    string     `json:"serialNumber" validate:"required"`
	Latitude        *float64   `json:"latitude" validate:"required,latitude"`
	Longitude       *float64   `json:"longitude" validate:"required,longitude"`
	BatteryCapacity *float64   `json:"batteryCapacity" validate:"omitempty,gte=0,lte=100"`
	DroneStatus     string     `json:"droneStatus" validate:"omitempty,oneof=active idle delivering returning charging maintenance"`
	Timestamp       *time.Time `json:"timestamp"`
}
