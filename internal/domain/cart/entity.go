// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
)

// Cart is the per-user basket. It is created on the first add and kept
// (emptied) after an order is placed.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CartItems   []CartItem      `gorm:"foreignKey:CartID" json:"cartItems"`
	TotalAmount decimal.Decimal `gorm:"-" json:"totalAmount"`
}

// CartItem is one menu line in a cart. PricePerUnit is the catalog price
// captured when the line was first added.
type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CartID       uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_menu" json:"cartId"`
	MenuID       uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_menu" json:"menuId"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"pricePerUnit"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	Menu *catalog.Menu `gorm:"foreignKey:MenuID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"menu,omitempty"`
}

// TableName overrides the table name for Cart
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// Recalculate sets Subtotal from Quantity and PricePerUnit
func (i *CartItem) Recalculate() {
	i.Subtotal = i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the subtotals of items
func Total(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
