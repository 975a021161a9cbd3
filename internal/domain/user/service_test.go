package user

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodiehub-backend/internal/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&User{}))
	return NewService(NewRepository(db)), db
}

func TestGetCurrentUser(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	address := "12 Market Street"
	active := User{Name: "Ada", Email: "Ada@Example.com", Password: "x", Address: &address, Role: RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&active).Error)

	got, err := svc.GetCurrentUser(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.True(t, got.HasAddress())
	assert.False(t, got.IsAdmin())

	_, err = svc.GetCurrentUser(ctx, 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestGetCurrentUserRejectsInactive(t *testing.T) {
	svc, db := setupService(t)

	inactive := User{Name: "Bob", Email: "bob@example.com", Password: "x", Role: RoleCustomer, IsActive: true}
	require.NoError(t, db.Create(&inactive).Error)
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	_, err := svc.GetCurrentUser(context.Background(), inactive.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestExistsByEmail(t *testing.T) {
	svc, db := setupService(t)
	require.NoError(t, db.Create(&User{Name: "Cy", Email: "cy@example.com", Password: "x", IsActive: true}).Error)

	exists, err := svc.ExistsByEmail(context.Background(), "CY@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ExistsByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHasAddress(t *testing.T) {
	blank := "   "
	assert.False(t, (&User{}).HasAddress())
	assert.False(t, (&User{Address: &blank}).HasAddress())
}
