// Package events defines the order lifecycle events published to the
// message broker.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
	TypePaymentCompleted   = "payment.completed"
	TypePaymentFailed      = "payment.failed"
)

// Event is the envelope written to the broker
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// OrderPayload describes an order at the moment of the event
type OrderPayload struct {
	OrderID       uint            `json:"orderId"`
	UserID        uint            `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	OrderStatus   string          `json:"orderStatus"`
	PaymentStatus string          `json:"paymentStatus"`
}

// PaymentPayload describes a recorded settlement
type PaymentPayload struct {
	PaymentID     uint            `json:"paymentId"`
	OrderID       uint            `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
}

// Publisher delivers events to subscribers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// New stamps an event with the current time
func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
