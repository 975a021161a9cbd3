package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/handlers"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/response"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/routes"
	"github.com/your-org/foodiehub-backend/internal/pkg/auth"
)

type tokens map[string]*auth.Claims

func (t tokens) ValidateAccessToken(token string) (*auth.Claims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

type countingOrders struct {
	handlers.OrderService
}

func (countingOrders) CountUniqueCustomers(ctx context.Context) (int64, error) {
	return 4, nil
}

func (countingOrders) GetOrderForUser(ctx context.Context, orderID, userID uint, isAdmin bool) (*order.Order, error) {
	return &order.Order{ID: orderID, UserID: userID}, nil
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "FoodieHub", Version: "test", Environment: "test"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: []string{"*"},
			CORSAllowedMethods: []string{"GET"},
		},
	}

	srv := NewServer(cfg, Dependencies{
		Handlers: routes.Handlers{Order: handlers.NewOrderHandler(countingOrders{})},
		Tokens: tokens{
			"customer": {UserID: 1, Role: "CUSTOMER"},
			"admin":    {UserID: 2, Role: "ADMIN"},
		},
		HealthChecks: checks,
		Logger:       logrus.FieldLogger(logger),
	})
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, path, token string) (int, response.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestServer_Health(t *testing.T) {
	healthy := newTestServer(t, map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	})
	code, env := get(t, healthy, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Service healthy", env.Message)

	failing := newTestServer(t, map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	code, env = get(t, failing, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	data := env.Data.(map[string]any)
	assert.Equal(t, map[string]any{"database": "healthy", "redis": "unhealthy"}, data["checks"])

	code, _ = get(t, healthy, "/ready", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_RoutesAndGuards(t *testing.T) {
	h := newTestServer(t, nil)

	code, env := get(t, h, "/api/orders/unique-customers", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header required", env.Message)

	code, _ = get(t, h, "/api/orders/unique-customers", "forged")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = get(t, h, "/api/orders/unique-customers", "customer")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Admin access required", env.Message)

	code, env = get(t, h, "/api/orders/unique-customers", "admin")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(4), env.Data)

	code, _ = get(t, h, "/api/orders/3", "customer")
	assert.Equal(t, http.StatusOK, code)

	code, env = get(t, h, "/api/nowhere", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Route not found", env.Message)
}
