// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/your-org/foodiehub-backend/internal/domain/payment"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

// maxWebhookBody bounds the Stripe event payload read into memory
const maxWebhookBody = 64 << 10

// PaymentService is the payment behaviour used by PaymentHandler
type PaymentService interface {
	InitializePayment(ctx context.Context, orderID uint, amount *decimal.Decimal) (*payment.InitializeResponse, error)
	ReportSettlement(ctx context.Context, userID uint, isAdmin bool, req payment.SettlementRequest) (*payment.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ListAll(ctx context.Context) ([]payment.Payment, error)
	GetByID(ctx context.Context, id uint) (*payment.Payment, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	paymentService PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitializePayment handles POST /payments/init
func (h *PaymentHandler) InitializePayment(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	var req payment.InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	resp, err := h.paymentService.InitializePayment(c.Request.Context(), req.OrderID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "success", resp)
}

// UpdatePayment handles PUT /payments/update, the client callback carrying
// the settlement result
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req payment.SettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}
	p, err := h.paymentService.ReportSettlement(c.Request.Context(), userID, middleware.IsAdminFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment updated successfully", p)
}

// Webhook handles POST /payments/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Unable to read request body")
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Webhook received", nil)
}

// ListPayments handles GET /payments (admin)
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payments retrieved successfully", payments)
}

// GetPayment handles GET /payments/:id (admin)
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := idParam(c, "id", "payment ID")
	if !ok {
		return
	}

	p, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment retrieved successfully", p)
}
