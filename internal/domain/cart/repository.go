package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/gorm"
)

var (
	// ErrCartNotFound is returned when the user has no cart yet
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when no cart line matches
	ErrItemNotFound = errors.New("cart item not found")
)

// Repository persists carts and their lines. Lines are added, updated and
// removed with explicit calls.
type Repository interface {
	FindByUserID(ctx context.Context, userID uint) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	FindItems(ctx context.Context, cartID uint) ([]CartItem, error)
	FindItemByMenu(ctx context.Context, cartID, menuID uint) (*CartItem, error)
	FindItemByID(ctx context.Context, itemID uint) (*CartItem, error)
	AddItem(ctx context.Context, item *CartItem) error
	UpdateItem(ctx context.Context, item *CartItem) error
	RemoveItem(ctx context.Context, itemID uint) error
	ClearItems(ctx context.Context, cartID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed cart repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID uint) (*Cart, error) {
	var c Cart
	result := txn.DB(ctx, r.db).Where("user_id = ?", userID).First(&c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to retrieve cart for user %d: %w", userID, result.Error)
	}
	return &c, nil
}

func (r *gormRepository) Create(ctx context.Context, c *Cart) error {
	if err := txn.DB(ctx, r.db).Omit("CartItems").Create(c).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *gormRepository) FindItems(ctx context.Context, cartID uint) ([]CartItem, error) {
	var items []CartItem
	err := txn.DB(ctx, r.db).
		Preload("Menu").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart items: %w", err)
	}
	return items, nil
}

func (r *gormRepository) FindItemByMenu(ctx context.Context, cartID, menuID uint) (*CartItem, error) {
	var item CartItem
	result := txn.DB(ctx, r.db).Where("cart_id = ? AND menu_id = ?", cartID, menuID).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to retrieve cart item: %w", result.Error)
	}
	return &item, nil
}

func (r *gormRepository) FindItemByID(ctx context.Context, itemID uint) (*CartItem, error) {
	var item CartItem
	result := txn.DB(ctx, r.db).First(&item, itemID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to retrieve cart item %d: %w", itemID, result.Error)
	}
	return &item, nil
}

func (r *gormRepository) AddItem(ctx context.Context, item *CartItem) error {
	if err := txn.DB(ctx, r.db).Omit("Menu").Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateItem(ctx context.Context, item *CartItem) error {
	err := txn.DB(ctx, r.db).Model(&CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity": item.Quantity,
			"subtotal": item.Subtotal,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update cart item %d: %w", item.ID, err)
	}
	return nil
}

func (r *gormRepository) RemoveItem(ctx context.Context, itemID uint) error {
	if err := txn.DB(ctx, r.db).Delete(&CartItem{}, itemID).Error; err != nil {
		return fmt.Errorf("failed to remove cart item %d: %w", itemID, err)
	}
	return nil
}

func (r *gormRepository) ClearItems(ctx context.Context, cartID uint) error {
	if err := txn.DB(ctx, r.db).Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %d: %w", cartID, err)
	}
	return nil
}
