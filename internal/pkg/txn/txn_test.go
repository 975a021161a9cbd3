package txn

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Text string
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&note{}))
	return db
}

func countNotes(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&note{}).Count(&n).Error)
	return n
}

func TestWithinTransactionCommits(t *testing.T) {
	db := setupDB(t)
	m := NewGormManager(db)

	err := m.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return DB(ctx, db).Create(&note{Text: "kept"}).Error
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	db := setupDB(t)
	m := NewGormManager(db)
	boom := errors.New("boom")

	err := m.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if err := DB(ctx, db).Create(&note{Text: "discarded"}).Error; err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countNotes(t, db))
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	db := setupDB(t)
	m := NewGormManager(db)

	err := m.WithinTransaction(context.Background(), func(ctx context.Context) error {
		outer := DB(ctx, db)
		return m.WithinTransaction(ctx, func(inner context.Context) error {
			assert.Same(t, outer, DB(inner, db))
			return errors.New("inner failure")
		})
	})

	require.Error(t, err)
	assert.Equal(t, int64(0), countNotes(t, db))
}
