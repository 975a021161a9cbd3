// internal/domain/order/entity.go
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
	"github.com/your-org/foodiehub-backend/internal/domain/user"
)

// OrderStatus represents the delivery lifecycle of an order
type OrderStatus string

const (
	OrderStatusInitialized OrderStatus = "INITIALIZED"
	OrderStatusConfirmed   OrderStatus = "CONFIRMED"
	OrderStatusOnTheWay    OrderStatus = "ON_THE_WAY"
	OrderStatusDelivered   OrderStatus = "DELIVERED"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
	OrderStatusFailed      OrderStatus = "FAILED"
)

// PaymentStatus represents the payment state of an order or payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusInitialized: {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusConfirmed:   {OrderStatusOnTheWay, OrderStatusCancelled},
	OrderStatusOnTheWay:    {OrderStatusDelivered},
}

// ParseOrderStatus parses a status name, ignoring case
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case OrderStatusInitialized, OrderStatusConfirmed, OrderStatusOnTheWay,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusFailed:
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether an administrative move from s to next is allowed
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status change is possible
func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Order is an immutable snapshot of a cart at placement time. Only the
// status fields change afterwards.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"userId"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	OrderDate     time.Time       `gorm:"not null;index" json:"orderDate"`
	OrderStatus   OrderStatus     `gorm:"size:20;not null;index" json:"orderStatus"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null" json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	User       *user.User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"orderItems,omitempty"`
}

// OrderItem is a line copied from the cart when the order was placed
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"orderId"`
	MenuID       uint            `gorm:"not null;index" json:"menuId"`
	MenuName     string          `gorm:"size:255;not null" json:"menuName"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"pricePerUnit"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt    time.Time       `json:"createdAt"`

	Menu *catalog.Menu `gorm:"foreignKey:MenuID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"menu,omitempty"`
}

// StatusHistory records every status change of an order
type StatusHistory struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderID       uint          `gorm:"not null;index" json:"orderId"`
	FromStatus    OrderStatus   `gorm:"size:20" json:"fromStatus"`
	ToStatus      OrderStatus   `gorm:"size:20;not null" json:"toStatus"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null" json:"paymentStatus"`
	Reason        string        `gorm:"size:500" json:"reason"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// TableName overrides the table name for StatusHistory
func (StatusHistory) TableName() string {
	return "order_status_histories"
}

// ListFilter selects a page of orders for the admin listing. Page is zero based.
type ListFilter struct {
	Status *OrderStatus
	Page   int
	Size   int
}

// Pagination describes a page of results
type Pagination struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPagination computes page metadata for total rows
func NewPagination(page, size int, total int64) Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Pagination{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page+1 < totalPages,
		HasPrev:    page > 0,
	}
}
