package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/gorm"
)

var (
	// ErrPaymentNotFound is returned when no payment matches
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrDuplicateTransaction is returned when a transaction id was already
	// recorded with the same outcome
	ErrDuplicateTransaction = errors.New("payment transaction already recorded")
)

// Repository persists payments
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id uint) (*Payment, error)
	FindByTransaction(ctx context.Context, transactionID string, status order.PaymentStatus) (*Payment, error)
	List(ctx context.Context) ([]Payment, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed payment repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, p *Payment) error {
	if err := txn.DB(ctx, r.db).Omit("Order", "User").Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Payment, error) {
	var p Payment
	result := txn.DB(ctx, r.db).
		Preload("User").
		Preload("Order").
		Preload("Order.OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Order.OrderItems.Menu").
		First(&p, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to retrieve payment %d: %w", id, result.Error)
	}
	return &p, nil
}

func (r *gormRepository) FindByTransaction(ctx context.Context, transactionID string, status order.PaymentStatus) (*Payment, error) {
	var p Payment
	result := txn.DB(ctx, r.db).Where("transaction_id = ?", transactionID).First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to retrieve payment by transaction: %w", result.Error)
	}
	return &p, nil
}

func (r *gormRepository) List(ctx context.Context) ([]Payment, error) {
	var payments []Payment
	if err := txn.DB(ctx, r.db).Order("id DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payments: %w", err)
	}
	return payments, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
