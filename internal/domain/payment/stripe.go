// internal/domain/payment/stripe.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/your-org/foodiehub-backend/internal/config"
)

var (
	// ErrGatewayNotConfigured is returned when no Stripe secret key is set
	ErrGatewayNotConfigured = errors.New("stripe is not configured")
	// ErrInvalidWebhook is returned when a webhook payload fails verification
	ErrInvalidWebhook = errors.New("invalid stripe webhook")
)

// Intent is a payment intent created at the provider
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway talks to the payment provider
type Gateway interface {
	CreateIntent(ctx context.Context, orderID uint, amount decimal.Decimal) (*Intent, error)
	// ParseWebhook verifies a provider callback. It returns nil when the
	// event carries no settlement.
	ParseWebhook(payload []byte, signature string) (*SettlementRequest, error)
}

// StripeGateway creates PaymentIntents through the Stripe API. Each attempt is
// bounded by the configured timeout and a failed attempt is retried once when
// the failure is transient.
type StripeGateway struct {
	intents       paymentintent.Client
	currency      string
	webhookSecret string
	backoff       time.Duration
	breaker       *gobreaker.CircuitBreaker[*stripe.PaymentIntent]
	logger        logrus.FieldLogger
}

// NewStripeGateway creates a Stripe gateway from configuration
func NewStripeGateway(cfg config.StripeConfig, logger logrus.FieldLogger) *StripeGateway {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger,
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Millisecond
	}

	g := &StripeGateway{
		intents: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: cfg.SecretKey,
		},
		currency:      cfg.Currency,
		webhookSecret: cfg.WebhookSecret,
		backoff:       backoff,
		logger:        logger,
	}

	g.breaker = gobreaker.NewCircuitBreaker[*stripe.PaymentIntent](gobreaker.Settings{
		Name:    "stripe",
		Timeout: cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// Declined cards and bad requests say nothing about provider health
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Payment gateway circuit breaker changed state")
		},
	})

	return g
}

// CreateIntent creates a PaymentIntent for amount in the configured currency
func (g *StripeGateway) CreateIntent(ctx context.Context, orderID uint, amount decimal.Decimal) (*Intent, error) {
	if g.intents.Key == "" {
		return nil, ErrGatewayNotConfigured
	}

	pi, err := g.breaker.Execute(func() (*stripe.PaymentIntent, error) {
		var created *stripe.PaymentIntent
		err := retry.Do(ctx, retry.WithMaxRetries(1, retry.NewConstant(g.backoff)), func(ctx context.Context) error {
			params := &stripe.PaymentIntentParams{
				Amount:   stripe.Int64(amount.Mul(decimal.NewFromInt(100)).IntPart()),
				Currency: stripe.String(g.currency),
				AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
					Enabled: stripe.Bool(true),
				},
			}
			params.Context = ctx
			params.AddMetadata("orderId", strconv.FormatUint(uint64(orderID), 10))

			pi, err := g.intents.New(params)
			if err != nil {
				if ctx.Err() == nil && isTransient(err) {
					g.logger.WithError(err).WithField("order_id", orderID).Warn("Stripe call failed, retrying")
					return retry.RetryableError(err)
				}
				return err
			}
			created = pi
			return nil
		})
		return created, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps payment intent
// events to settlements
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*SettlementRequest, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	var success bool
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		success = true
	case stripe.EventTypePaymentIntentPaymentFailed:
		success = false
	default:
		return nil, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	orderID, err := strconv.ParseUint(pi.Metadata["orderId"], 10, 64)
	if err != nil || orderID == 0 {
		return nil, fmt.Errorf("%w: payment intent %s has no order id", ErrInvalidWebhook, pi.ID)
	}

	amount := decimal.New(pi.Amount, -2)
	req := &SettlementRequest{
		OrderID:       uint(orderID),
		Amount:        &amount,
		TransactionID: pi.ID,
		Success:       success,
		Source:        SourceWebhook,
	}
	if !success {
		req.FailureReason = "Payment failed"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			req.FailureReason = pi.LastPaymentError.Msg
		}
	}
	return req, nil
}

// isTransient reports whether err is worth retrying: transport failures,
// provider side errors and rate limiting
func isTransient(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode >= http.StatusInternalServerError ||
			stripeErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}
