package response

import (
	"time"

	"drone-delivery/internal/data/entity"
)

type DroneResponse struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Model           string             `json:"model"`
	SerialNumber    string             `json:"serialNumber"`
	BatteryCapacity float64            `json:"batteryCapacity"`
	WeightLimit     float64            `json:"weightLimit"`
	Status          entity.DroneStatus `json:"status"`
	Latitude        float64            `json:"latitude"`
	Longitude       float64            `json:"longitude"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// ActiveDroneResponse is a delivering drone with the order it carries, if known.
type ActiveDroneResponse struct {
	DroneResponse
	Order *OrderResponse `json:"order"`
}

func DroneToResponse(drone *entity.Drone) DroneResponse {
	return DroneResponse{
		ID:              drone.ID.String(),
		Name:            drone.Name,
		Model:           drone.Model,
		SerialNumber:    drone.SerialNumber,
		BatteryCapacity: drone.BatteryCapacity,
		WeightLimit:     drone.WeightLimit,
		Status:          drone.Status,
		Latitude:        drone.Latitude,
		Longitude:       drone.Longitude,
		CreatedAt:       drone.CreatedAt,
		UpdatedAt:       drone.UpdatedAt,
	}
}

func DronesToResponse(drones []*entity.Drone) []DroneResponse {
	out := make([]DroneResponse, 0, len(drones))
	for _, d := range drones {
		out = append(out, DroneToResponse(d))
	}
	return out
}
