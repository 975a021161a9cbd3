// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

// OrderService is the order workflow used by OrderHandler
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uint) (*order.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) (*order.Order, error)
	GetOrderForUser(ctx context.Context, orderID, userID uint, isAdmin bool) (*order.Order, error)
	GetOrdersOfUser(ctx context.Context, userID uint) ([]order.Order, error)
	GetAllOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, order.Pagination, error)
	CountUniqueCustomers(ctx context.Context) (int64, error)
	GetOrderItemByID(ctx context.Context, itemID uint) (*order.OrderItem, error)
	GetHistory(ctx context.Context, orderID uint) ([]order.StatusHistory, error)
	Receipt(ctx context.Context, orderID, userID uint, isAdmin bool) ([]byte, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// UpdateStatusRequest is the body of PUT /orders/:id/status
type UpdateStatusRequest struct {
	OrderStatus string `json:"orderStatus" binding:"required"`
}

// PlaceOrder handles POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Order placed successfully", placed)
}

// GetMyOrders handles GET /orders/mine
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.GetOrdersOfUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Orders retrieved successfully", orders)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "order ID")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrderForUser(c.Request.Context(), orderID, userID, middleware.IsAdminFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order retrieved successfully", o)
}

// GetReceipt handles GET /orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "order ID")
	if !ok {
		return
	}

	doc, err := h.orderService.Receipt(c.Request.Context(), orderID, userID, middleware.IsAdminFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%d.pdf"`, orderID))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// GetOrderItem handles GET /orders/items/:itemId
func (h *OrderHandler) GetOrderItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId", "order item ID")
	if !ok {
		return
	}

	item, err := h.orderService.GetOrderItemByID(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order item retrieved successfully", item)
}

// ListOrders handles GET /orders?status=&page=&size= (admin)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var filter order.ListFilter

	if raw := c.Query("status"); raw != "" {
		status, ok := order.ParseOrderStatus(raw)
		if !ok {
			response.Fail(c, http.StatusBadRequest, "Invalid order status: "+raw)
			return
		}
		filter.Status = &status
	}

	var err error
	if filter.Page, err = queryInt(c, "page", 0); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid page")
		return
	}
	if filter.Size, err = queryInt(c, "size", 10); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid size")
		return
	}

	orders, pagination, err := h.orderService.GetAllOrders(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "Orders retrieved successfully", orders, pagination)
}

// UpdateOrderStatus handles PUT /orders/:id/status (admin)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order ID")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.OrderStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order status updated successfully", o)
}

// GetOrderHistory handles GET /orders/:id/history (admin)
func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	orderID, ok := idParam(c, "id", "order ID")
	if !ok {
		return
	}

	history, err := h.orderService.GetHistory(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order history retrieved successfully", history)
}

// CountUniqueCustomers handles GET /orders/unique-customers (admin)
func (h *OrderHandler) CountUniqueCustomers(c *gin.Context) {
	count, err := h.orderService.CountUniqueCustomers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Unique customers counted successfully", count)
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
