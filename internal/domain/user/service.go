// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/foodiehub-backend/internal/apperror"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/gorm"
)

// ErrNotFound is returned by the repository when no user matches
var ErrNotFound = errors.New("user not found")

// Repository reads users
type Repository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed user repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	var u User
	result := txn.DB(ctx, r.db).First(&u, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %d: %w", id, result.Error)
	}
	return &u, nil
}

func (r *gormRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := txn.DB(ctx, r.db).Model(&User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Service resolves identities for the ordering workflows
type Service struct {
	repo Repository
}

// NewService creates a new user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetCurrentUser loads the caller identified by userID. Inactive accounts
// are treated as missing.
func (s *Service) GetCurrentUser(ctx context.Context, userID uint) (*User, error) {
	u, err := s.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperror.NotFound("User not found")
	}
	return u, nil
}

// FindByID loads a user regardless of status
func (s *Service) FindByID(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal("Failed to load user", err)
	}
	return u, nil
}

// ExistsByEmail reports whether an account uses email
func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, apperror.Internal("Failed to check email", err)
	}
	return exists, nil
}
