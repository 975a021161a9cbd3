// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/handlers"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/middleware"
)

// Handlers groups every handler mounted under /api
type Handlers struct {
	Catalog *handlers.CatalogHandler
	Cart    *handlers.CartHandler
	Order   *handlers.OrderHandler
	Payment *handlers.PaymentHandler
}

// SetupRoutes mounts all API routes on rg. authenticate must reject
// anonymous requests.
func SetupRoutes(rg *gin.RouterGroup, h Handlers, authenticate gin.HandlerFunc) {
	SetupCatalogRoutes(rg, h.Catalog)
	SetupCartRoutes(rg, h.Cart, authenticate)
	SetupOrderRoutes(rg, h.Order, authenticate)
	SetupPaymentRoutes(rg, h.Payment, authenticate)
}

// SetupCatalogRoutes sets up public catalog routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	rg.GET("/categories", h.ListCategories)

	menus := rg.Group("/menus")
	{
		menus.GET("", h.ListMenus)
		menus.GET("/:id", h.GetMenu)
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, authenticate gin.HandlerFunc) {
	cart := rg.Group("/cart")
	cart.Use(authenticate)
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:menuId/increment", h.IncrementItem)
		cart.PUT("/items/:menuId/decrement", h.DecrementItem)
		cart.DELETE("/items/:lineId", h.RemoveItem)
	}
}

// SetupOrderRoutes sets up order routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, authenticate gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.Use(authenticate)
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("/mine", h.GetMyOrders)
		orders.GET("/items/:itemId", h.GetOrderItem)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/receipt", h.GetReceipt)

		admin := orders.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("", h.ListOrders)
			admin.GET("/unique-customers", h.CountUniqueCustomers)
			admin.GET("/:id/history", h.GetOrderHistory)
			admin.PUT("/:id/status", h.UpdateOrderStatus)
		}
	}
}

// SetupPaymentRoutes sets up payment routes. The webhook is authenticated by
// its Stripe signature instead of a bearer token.
func SetupPaymentRoutes(rg *gin.RouterGroup, h *handlers.PaymentHandler, authenticate gin.HandlerFunc) {
	payments := rg.Group("/payments")
	payments.POST("/webhook", h.Webhook)

	protected := payments.Group("")
	protected.Use(authenticate)
	{
		protected.POST("/init", h.InitializePayment)
		protected.PUT("/update", h.UpdatePayment)

		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("", h.ListPayments)
			admin.GET("/:id", h.GetPayment)
		}
	}
}
