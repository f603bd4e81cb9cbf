package entity

import (
	"encoding/json"
	"time"
)

// Simulation is the latest snapshot handed over by the simulation service.
// Order and drone are kept verbatim as the simulator sent them.
type Simulation struct {
	Order     json.RawMessage `json:"order"`
	Drone     json.RawMessage `json:"drone"`
	StartedAt time.Time       `json:"startedAt"`
}

// Telemetry is the last reported position of a drone.
type Telemetry struct {
	DroneID         string      `json:"droneId"`
	SerialNumber    string      `json:"serialNumber"`
	Latitude        float64     `json:"latitude"`
	Longitude       float64     `json:"longitude"`
	BatteryCapacity float64     `json:"batteryCapacity"`
	Status          DroneStatus `json:"status"`
	Timestamp       time.Time   `json:"timestamp"`
}
