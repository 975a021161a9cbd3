// internal/domain/payment/entity.go
package payment

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/domain/user"
	"gorm.io/datatypes"
)

// GatewayStripe identifies payments settled through Stripe
const GatewayStripe = "STRIPE"

// Payment records one settlement attempt for an order. Stripe reports every
// attempt on a PaymentIntent under the same id, so a transaction id is unique
// per outcome: a decline may be followed by a success on the same intent.
type Payment struct {
	ID             uint                `gorm:"primaryKey" json:"id"`
	OrderID        uint                `gorm:"not null;index" json:"orderId"`
	UserID         uint                `gorm:"not null;index" json:"userId"`
	Amount         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentGateway string              `gorm:"size:20;not null" json:"paymentGateway"`
	TransactionID  *string             `gorm:"size:255;uniqueIndex:idx_payments_transaction_outcome,priority:1" json:"transactionId"`
	PaymentStatus  order.PaymentStatus `gorm:"size:20;not null;index;uniqueIndex:idx_payments_transaction_outcome,priority:2" json:"paymentStatus"`
	FailureReason  string              `gorm:"size:500" json:"failureReason,omitempty"`
	PaymentDate    time.Time           `gorm:"not null" json:"paymentDate"`
	Metadata       datatypes.JSON      `json:"metadata,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`

	Order *order.Order `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"order,omitempty"`
	User  *user.User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user,omitempty"`
}

// TableName overrides the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// InitializeRequest asks for a payment intent covering an order
type InitializeRequest struct {
	OrderID uint             `json:"orderId" binding:"required"`
	Amount  *decimal.Decimal `json:"amount"`
}

// InitializeResponse carries the client secret used by the frontend to
// confirm the payment
type InitializeResponse struct {
	OrderID         uint   `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

// SettlementRequest is the outcome of a payment attempt reported by the
// client or the Stripe webhook
type SettlementRequest struct {
	OrderID       uint             `json:"orderId" binding:"required"`
	Amount        *decimal.Decimal `json:"amount"`
	TransactionID string           `json:"transactionId"`
	Success       bool             `json:"success"`
	FailureReason string           `json:"failureReason"`

	// Source names the channel that reported the outcome
	Source string `json:"-"`
}

// Settlement sources
const (
	SourceClient  = "client"
	SourceWebhook = "webhook"
)
