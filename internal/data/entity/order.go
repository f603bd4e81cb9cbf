package entity

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusDenied    OrderStatus = "denied"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusInTransit OrderStatus = "in-transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusApproved, OrderStatusDenied, OrderStatusCancelled},
	OrderStatusApproved:  {OrderStatusAssigned, OrderStatusCancelled},
	OrderStatusAssigned:  {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit: {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusDenied, OrderStatusAssigned,
		OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, st := range orderTransitions[s] {
		if st == next {
			return true
		}
	}
	return false
}

// Terminal statuses have no successors.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

type Order struct {
	Base
	CustomerID             *uuid.UUID    `db:"customer_id"`
	CustomerName           string        `db:"customer_name"`
	CustomerEmail          string        `db:"customer_email"`
	Items                  []OrderItem   `db:"items"`
	TotalWeight            float64       `db:"total_weight"`
	PickupAddress          string        `db:"pickup_address"`
	DeliveryAddress        string        `db:"delivery_address"`
	Status                 OrderStatus   `db:"status"`
	AssignedDroneID        *uuid.UUID    `db:"assigned_drone_id"`
	StatusHistory          []StatusEntry `db:"status_history"`
	Progress               int           `db:"progress"`
	EstimatedTimeRemaining *int          `db:"estimated_time_remaining"` // minutes
}

// SetStatus moves the order to next and appends the history entry.
// Callers check CanTransitionTo first.
func (o *Order) SetStatus(next OrderStatus, at time.Time) StatusEntry {
	entry := StatusEntry{Status: next, Timestamp: at}
	o.Status = next
	o.StatusHistory = append(o.StatusHistory, entry)
	o.UpdatedAt = at
	return entry
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	Status        OrderStatus
	CustomerEmail string
}

// DroneFilter narrows drone listings. Zero values mean "any".
type DroneFilter struct {
	Status DroneStatus
}
