package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when no order matches
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderItemNotFound is returned when no order line matches
	ErrOrderItemNotFound = errors.New("order item not found")
	// ErrOrderAlreadyPaid is returned when a settlement targets a paid order
	ErrOrderAlreadyPaid = errors.New("order already paid")
)

// Repository persists orders, their lines and their status history
type Repository interface {
	Create(ctx context.Context, o *Order) error
	AddItems(ctx context.Context, items []OrderItem) error
	AddHistory(ctx context.Context, h *StatusHistory) error
	FindByID(ctx context.Context, id uint) (*Order, error)
	FindByUserID(ctx context.Context, userID uint) ([]Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	UpdateStatuses(ctx context.Context, id uint, orderStatus OrderStatus, paymentStatus PaymentStatus) error
	SettleUnlessPaid(ctx context.Context, id uint, orderStatus OrderStatus, paymentStatus PaymentStatus) error
	CountDistinctCustomers(ctx context.Context) (int64, error)
	FindItemByID(ctx context.Context, id uint) (*OrderItem, error)
	History(ctx context.Context, orderID uint) ([]StatusHistory, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed order repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, o *Order) error {
	if err := txn.DB(ctx, r.db).Omit("User", "OrderItems").Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *gormRepository) AddItems(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := txn.DB(ctx, r.db).Omit("Menu").Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *gormRepository) AddHistory(ctx context.Context, h *StatusHistory) error {
	if err := txn.DB(ctx, r.db).Create(h).Error; err != nil {
		return fmt.Errorf("failed to record status history: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	result := txn.DB(ctx, r.db).
		Preload("User").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("OrderItems.Menu").
		First(&o, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order %d: %w", id, result.Error)
	}
	return &o, nil
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := txn.DB(ctx, r.db).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("OrderItems.Menu").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders for user %d: %w", userID, err)
	}
	return orders, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Order, int64, error) {
	query := txn.DB(ctx, r.db).Model(&Order{})
	if filter.Status != nil {
		query = query.Where("order_status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("User").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("OrderItems.Menu").
		Order("id DESC").
		Offset(filter.Page * filter.Size).
		Limit(filter.Size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormRepository) UpdateStatuses(ctx context.Context, id uint, orderStatus OrderStatus, paymentStatus PaymentStatus) error {
	err := txn.DB(ctx, r.db).Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"order_status":   orderStatus,
			"payment_status": paymentStatus,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update order %d status: %w", id, err)
	}
	return nil
}

// SettleUnlessPaid sets both statuses in a single conditional UPDATE so that
// concurrent settlements cannot both land on an order. The row lock taken by
// the UPDATE makes a competing settlement wait and then re-check the paid
// condition.
func (r *gormRepository) SettleUnlessPaid(ctx context.Context, id uint, orderStatus OrderStatus, paymentStatus PaymentStatus) error {
	db := txn.DB(ctx, r.db)
	result := db.Model(&Order{}).
		Where("id = ? AND payment_status <> ?", id, PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"order_status":   orderStatus,
			"payment_status": paymentStatus,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to settle order %d: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// MySQL counts changed rows only, so zero may also mean the values were
	// already in place
	var current Order
	if err := db.Select("id", "payment_status").First(&current, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to retrieve order %d: %w", id, err)
	}
	if current.PaymentStatus == PaymentStatusCompleted {
		return ErrOrderAlreadyPaid
	}
	return nil
}

func (r *gormRepository) CountDistinctCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := txn.DB(ctx, r.db).Model(&Order{}).Distinct("user_id").Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

func (r *gormRepository) FindItemByID(ctx context.Context, id uint) (*OrderItem, error) {
	var item OrderItem
	result := txn.DB(ctx, r.db).Preload("Menu").First(&item, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order item %d: %w", id, result.Error)
	}
	return &item, nil
}

func (r *gormRepository) History(ctx context.Context, orderID uint) ([]StatusHistory, error) {
	var history []StatusHistory
	err := txn.DB(ctx, r.db).Where("order_id = ?", orderID).Order("id ASC").Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve history for order %d: %w", orderID, err)
	}
	return history, nil
}
