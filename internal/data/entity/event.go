package entity

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusChanged is emitted for every recorded status transition.
type OrderStatusChanged struct {
	OrderID       uuid.UUID   `json:"orderId"`
	CustomerEmail string      `json:"customerEmail"`
	From          OrderStatus `json:"from"`
	To            OrderStatus `json:"to"`
	DroneID       *uuid.UUID  `json:"droneId,omitempty"`
	At            time.Time   `json:"at"`
}

// DroneDispatch asks the flight simulator to fly an assigned order.
type DroneDispatch struct {
	OrderID         uuid.UUID `json:"orderId"`
	DroneID         uuid.UUID `json:"droneId"`
	SerialNumber    string    `json:"serialNumber"`
	PickupAddress   string    `json:"pickupAddress"`
	DeliveryAddress string    `json:"deliveryAddress"`
	TotalWeight     float64   `json:"totalWeight"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	At              time.Time `json:"at"`
}
