package entity

type DroneStatus string

const (
	DroneStatusIdle        DroneStatus = "idle"
	DroneStatusDelivering  DroneStatus = "delivering"
	DroneStatusReturning   DroneStatus = "returning"
	DroneStatusCharging    DroneStatus = "charging"
	DroneStatusMaintenance DroneStatus = "maintenance"
)

var droneStatuses = []DroneStatus{
	DroneStatusIdle,
	DroneStatusDelivering,
	DroneStatusReturning,
	DroneStatusCharging,
	DroneStatusMaintenance,
}

func DroneStatuses() []DroneStatus {
	out := make([]DroneStatus, len(droneStatuses))
	copy(out, droneStatuses)
	return out
}

func (s DroneStatus) Valid() bool {
	for _, st := range droneStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// NormalizeDroneStatus maps telemetry vocabulary onto drone statuses.
// Simulators report "active" for a drone that is out delivering.
func NormalizeDroneStatus(raw string) DroneStatus {
	if raw == "active" {
		return DroneStatusDelivering
	}
	return DroneStatus(raw)
}

type Drone struct {
	Base
	Name            string      `db:"name"`
	Model           string      `db:"model"`
	SerialNumber    string      `db:"serial_number"`
	BatteryCapacity float64     `db:"battery_capacity"` // percent
	WeightLimit     float64     `db:"weight_limit"`     // kg
	Status          DroneStatus `db:"status"`
	Latitude        float64     `db:"latitude"`
	Longitude       float64     `db:"longitude"`
}

// CanCarry is the assignment filter: the drone must be idle and rated for the load.
func (d *Drone) CanCarry(weight float64) bool {
	return d.Status == DroneStatusIdle && d.WeightLimit >= weight
}
