package response

import (
	"time"

	"drone-delivery/internal/data/entity"
)

type OrderResponse struct {
	ID                     string               `json:"id"`
	CustomerID             *string              `json:"customerId"`
	CustomerName           string               `json:"customerName"`
	CustomerEmail          string               `json:"customerEmail"`
	Items                  []entity.OrderItem   `json:"items"`
	TotalWeight            float64              `json:"totalWeight"`
	PickupAddress          string               `json:"pickupAddress"`
	DeliveryAddress        string               `json:"deliveryAddress"`
	Status                 entity.OrderStatus   `json:"status"`
	AssignedDroneID        *string              `json:"assignedDrone"`
	StatusHistory          []entity.StatusEntry `json:"statusHistory"`
	Progress               int                  `json:"progress"`
	EstimatedTimeRemaining *int                 `json:"estimatedTimeRemaining"`
	CreatedAt              time.Time            `json:"createdAt"`
	UpdatedAt              time.Time            `json:"updatedAt"`
}

func OrderToResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:                     order.ID.String(),
		CustomerName:           order.CustomerName,
		CustomerEmail:          order.CustomerEmail,
		Items:                  order.Items,
		TotalWeight:            order.TotalWeight,
		PickupAddress:          order.PickupAddress,
		DeliveryAddress:        order.DeliveryAddress,
		Status:                 order.Status,
		StatusHistory:          order.StatusHistory,
		Progress:               order.Progress,
		EstimatedTimeRemaining: order.EstimatedTimeRemaining,
		CreatedAt:              order.CreatedAt,
		UpdatedAt:              order.UpdatedAt,
	}

	if order.CustomerID != nil {
		id := order.CustomerID.String()
		resp.CustomerID = &id
	}
	if order.AssignedDroneID != nil {
		id := order.AssignedDroneID.String()
		resp.AssignedDroneID = &id
	}

	return resp
}

func OrdersToResponse(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderToResponse(o))
	}
	return out
}
