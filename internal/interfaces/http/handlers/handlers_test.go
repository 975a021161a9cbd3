package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodiehub-backend/internal/apperror"
	"github.com/your-org/foodiehub-backend/internal/domain/cart"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/domain/payment"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/middleware"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware
func asUser(userID uint, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextIsAdmin, admin)
		c.Next()
	}
}

func do(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, response.Envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

type fakeCart struct {
	added struct {
		userID, menuID uint
		quantity       int
	}
	err error
}

func (f *fakeCart) AddItem(ctx context.Context, userID, menuID uint, quantity int) error {
	f.added.userID, f.added.menuID, f.added.quantity = userID, menuID, quantity
	return f.err
}
func (f *fakeCart) IncrementItem(ctx context.Context, userID, menuID uint) error { return f.err }
func (f *fakeCart) DecrementItem(ctx context.Context, userID, menuID uint) error { return f.err }
func (f *fakeCart) RemoveItem(ctx context.Context, userID, itemID uint) error    { return f.err }
func (f *fakeCart) Clear(ctx context.Context, userID uint) error                 { return f.err }
func (f *fakeCart) View(ctx context.Context, userID uint) (*cart.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cart.Cart{ID: 1, UserID: userID, TotalAmount: decimal.RequireFromString("20.00")}, nil
}

func TestCartHandler(t *testing.T) {
	svc := &fakeCart{}
	h := NewCartHandler(svc)
	r := gin.New()
	r.Use(asUser(5, false))
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddToCart)
	r.PUT("/cart/items/:menuId/increment", h.IncrementItem)

	w, env := do(r, http.MethodPost, "/cart/items", gin.H{"menuId": 3, "quantity": 2})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, env.StatusCode)
	assert.Equal(t, uint(5), svc.added.userID)
	assert.Equal(t, uint(3), svc.added.menuID)
	assert.Equal(t, 2, svc.added.quantity)

	w, _ = do(r, http.MethodPost, "/cart/items", gin.H{"menuId": 3, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(r, http.MethodPut, "/cart/items/abc/increment", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid menu ID", env.Message)

	svc.err = apperror.NotFound("Cart not found")
	w, env = do(r, http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Cart not found", env.Message)
}

type fakeOrders struct {
	OrderService
	filter order.ListFilter
	err    error
}

func (f *fakeOrders) PlaceOrder(ctx context.Context, userID uint) (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &order.Order{ID: 9, UserID: userID, OrderStatus: order.OrderStatusInitialized}, nil
}

func (f *fakeOrders) GetAllOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, order.Pagination, error) {
	f.filter = filter
	return []order.Order{{ID: 2}, {ID: 1}}, order.NewPagination(filter.Page, filter.Size, 2), nil
}

func (f *fakeOrders) Receipt(ctx context.Context, orderID, userID uint, isAdmin bool) ([]byte, error) {
	return []byte("%PDF"), nil
}

func TestOrderHandler(t *testing.T) {
	svc := &fakeOrders{}
	h := NewOrderHandler(svc)
	r := gin.New()
	r.Use(asUser(5, true))
	r.POST("/orders", h.PlaceOrder)
	r.GET("/orders", h.ListOrders)
	r.GET("/orders/:id/receipt", h.GetReceipt)

	w, env := do(r, http.MethodPost, "/orders", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Order placed successfully", env.Message)

	svc.err = apperror.BadRequest("Cart is empty")
	w, env = do(r, http.MethodPost, "/orders", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", env.Message)

	w, env = do(r, http.MethodGet, "/orders?status=confirmed&page=1&size=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.filter.Status)
	assert.Equal(t, order.OrderStatusConfirmed, *svc.filter.Status)
	assert.Equal(t, 1, svc.filter.Page)
	assert.Equal(t, 5, svc.filter.Size)
	assert.NotNil(t, env.Meta)

	w, _ = do(r, http.MethodGet, "/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodGet, "/orders/9/receipt", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-9.pdf")
}

type fakePayments struct {
	PaymentService
	settlement payment.SettlementRequest
	reporter   uint
	webhookSig string
	err        error
}

func (f *fakePayments) InitializePayment(ctx context.Context, orderID uint, amount *decimal.Decimal) (*payment.InitializeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &payment.InitializeResponse{OrderID: orderID, ClientSecret: "secret"}, nil
}

func (f *fakePayments) ReportSettlement(ctx context.Context, userID uint, isAdmin bool, req payment.SettlementRequest) (*payment.Payment, error) {
	f.reporter = userID
	f.settlement = req
	return &payment.Payment{ID: 1, OrderID: req.OrderID}, nil
}

func (f *fakePayments) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	f.webhookSig = signature
	return f.err
}

func TestPaymentHandler(t *testing.T) {
	svc := &fakePayments{}
	h := NewPaymentHandler(svc)
	r := gin.New()
	r.POST("/payments/webhook", h.Webhook)
	authed := r.Group("", asUser(5, false))
	authed.POST("/payments/init", h.InitializePayment)
	authed.PUT("/payments/update", h.UpdatePayment)

	w, env := do(r, http.MethodPost, "/payments/init", gin.H{"orderId": 9, "amount": "20.00"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"orderId": float64(9), "paymentIntentId": "", "clientSecret": "secret"}, env.Data)

	w, _ = do(r, http.MethodPost, "/payments/init", gin.H{"amount": "20.00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodPut, "/payments/update", gin.H{"orderId": 9, "transactionId": "pi_1", "success": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(5), svc.reporter)
	assert.Equal(t, "pi_1", svc.settlement.TransactionID)
	assert.True(t, svc.settlement.Success)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBufferString(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t=1,v1=abc", svc.webhookSig)

	svc.err = apperror.BadRequest("Invalid webhook payload")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
