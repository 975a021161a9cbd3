// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"

	"github.com/your-org/foodiehub-backend/internal/apperror"
)

// Service exposes the read-only catalog
type Service struct {
	repo Repository
}

// NewService creates a new catalog service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindMenuByID returns a menu item or a NotFound error
func (s *Service) FindMenuByID(ctx context.Context, id uint) (*Menu, error) {
	menu, err := s.repo.FindMenuByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			return nil, apperror.NotFound("Menu Not Found")
		}
		return nil, apperror.Internal("Failed to load menu", err)
	}
	return menu, nil
}

// ListMenus returns menus matching filter, newest first
func (s *Service) ListMenus(ctx context.Context, filter MenuFilter) ([]Menu, error) {
	menus, err := s.repo.ListMenus(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("Failed to load menus", err)
	}
	return menus, nil
}

// ListCategories returns all categories by name
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load categories", err)
	}
	return categories, nil
}
