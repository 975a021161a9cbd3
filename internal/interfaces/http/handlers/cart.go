// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/domain/cart"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

// CartService is the cart behaviour used by CartHandler
type CartService interface {
	AddItem(ctx context.Context, userID, menuID uint, quantity int) error
	IncrementItem(ctx context.Context, userID, menuID uint) error
	DecrementItem(ctx context.Context, userID, menuID uint) error
	RemoveItem(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
	View(ctx context.Context, userID uint) (*cart.Cart, error)
}

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := h.cartService.View(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart retrieved successfully", view)
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	if err := h.cartService.AddItem(c.Request.Context(), userID, req.MenuID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added to cart successfully", nil)
}

// IncrementItem handles PUT /cart/items/:menuId/increment
func (h *CartHandler) IncrementItem(c *gin.Context) {
	h.adjust(c, h.cartService.IncrementItem, "Item quantity increased")
}

// DecrementItem handles PUT /cart/items/:menuId/decrement
func (h *CartHandler) DecrementItem(c *gin.Context) {
	h.adjust(c, h.cartService.DecrementItem, "Item quantity decreased")
}

func (h *CartHandler) adjust(c *gin.Context, op func(ctx context.Context, userID, menuID uint) error, message string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	menuID, ok := idParam(c, "menuId", "menu ID")
	if !ok {
		return
	}

	if err := op(c.Request.Context(), userID, menuID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, nil)
}

// RemoveItem handles DELETE /cart/items/:lineId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lineID, ok := idParam(c, "lineId", "cart item ID")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), userID, lineID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed from cart", nil)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared successfully", nil)
}
