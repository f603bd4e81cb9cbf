package adaptor

import (
	"net/http"

	"drone-delivery/internal/data/entity"
	"drone-delivery/internal/dto/request"
	"drone-delivery/internal/usecase"
	"drone-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service usecase.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service usecase.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log.With(zap.String("handler", "order")),
	}
}

// GetOrders handles GET /api/orders?status=&customerEmail=&page=&per_page=
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.OrderListRequest{
		PaginatedRequest: request.PageFromQuery(query),
		Status:        query.Get("status"),
		CustomerEmail: query.Get("customerEmail"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	orders, err := h.service.List(r.Context(), actor, req)
	if err != nil {
		handleServiceError(w, h.log, err, "list orders")
		return
	}

	utils.ResponseSuccess(w, "Orders retrieved successfully", orders)
}

// GetOrderByID handles GET /api/orders/{id}
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.log, err, "get order")
		return
	}

	utils.ResponseSuccess(w, "Order retrieved successfully", order)
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create order")
		return
	}

	utils.ResponseCreated(w, "Order created successfully", order)
}

// CreateExternalOrder handles POST /api/orders/external (API key)
func (h *OrderHandler) CreateExternalOrder(w http.ResponseWriter, r *http.Request) {
	var req request.ExternalOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.service.CreateExternal(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create external order")
		return
	}

	utils.ResponseCreated(w, "Order created successfully", order)
}

// UpdateOrderStatus handles PATCH /api/orders/{id}/status (admin)
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	var req request.UpdateOrderStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, entity.OrderStatus(req.Status))
	if err != nil {
		handleServiceError(w, h.log, err, "update order status")
		return
	}

	utils.ResponseSuccess(w, "Order status updated successfully", order)
}

// AssignDrone handles PATCH /api/orders/{id}/assign-drone (admin)
func (h *OrderHandler) AssignDrone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	var req request.AssignDroneRequest
	if !decodeBody(w, r, &req) {
		return
	}

	droneID, err := uuid.Parse(req.DroneID)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid drone ID", nil)
		return
	}

	order, err := h.service.AssignDrone(r.Context(), id, droneID)
	if err != nil {
		handleServiceError(w, h.log, err, "assign drone")
		return
	}

	utils.ResponseSuccess(w, "Drone assigned successfully", order)
}

// UpdateProgress handles PATCH /api/orders/{id}/progress (API key)
func (h *OrderHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	var req request.OrderProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.service.UpdateProgress(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update order progress")
		return
	}

	utils.ResponseSuccess(w, "Order progress updated successfully", order)
}

// CancelOrder handles PATCH /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	order, err := h.service.Cancel(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel order")
		return
	}

	utils.ResponseSuccess(w, "Order cancelled successfully", order)
}

// DeleteOrder handles DELETE /api/orders/{id} (admin)
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "order")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete order")
		return
	}

	utils.ResponseSuccess(w, "Order deleted successfully", nil)
}
