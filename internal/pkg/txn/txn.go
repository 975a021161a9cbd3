// Package txn scopes repository calls to a single database transaction
// carried in the context.
package txn

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type txKey struct{}

// Manager runs fn inside a transaction. Repositories called with the ctx
// passed to fn join that transaction.
type Manager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GormManager implements Manager on top of gorm
type GormManager struct {
	db *gorm.DB
}

// NewGormManager creates a transaction manager for db
func NewGormManager(db *gorm.DB) *GormManager {
	return &GormManager{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// A nested call joins the outer transaction.
func (m *GormManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DB returns the transaction bound to ctx, or db scoped to ctx when there is none
func DB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
