package request

type OrderItemRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalWeight     float64            `json:"totalWeight" validate:"gt=0"`
	PickupAddress   string             `json:"pickupAddress" validate:"required"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required"`
}

// ExternalOrderRequest is a storefront checkout that names its customer.
type ExternalOrderRequest struct {
	CustomerName  string `json:"customerName" validate:"required,max=100"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	CreateOrderRequest
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved denied"`
}

type AssignDroneRequest struct {
	DroneID string `json:"droneId" validate:"required,uuid"`
}

type OrderProgressRequest struct {
	Status                 string `json:"status" validate:"omitempty,oneof=in-transit delivered"`
	Progress               *int   `json:"progress" validate:"required,gte=0,lte=100"`
	EstimatedTimeRemaining *int   `json:"estimatedTimeRemaining" validate:"omitempty,gte=0"`
}

type OrderListRequest struct {
	PaginatedRequest
	Status        string `validate:"omitempty,oneof=pending approved denied assigned in-transit delivered cancelled"`
	CustomerEmail string `validate:"omitempty,email"`
}
