package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/gorm"
)

// ErrMenuNotFound is returned when no menu matches the id
var ErrMenuNotFound = errors.New("menu not found")

// Repository reads catalog data
type Repository interface {
	FindMenuByID(ctx context.Context, id uint) (*Menu, error)
	ListMenus(ctx context.Context, filter MenuFilter) ([]Menu, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm backed catalog repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindMenuByID(ctx context.Context, id uint) (*Menu, error) {
	var menu Menu
	result := txn.DB(ctx, r.db).Preload("Category").First(&menu, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("failed to retrieve menu %d: %w", id, result.Error)
	}
	return &menu, nil
}

func (r *gormRepository) ListMenus(ctx context.Context, filter MenuFilter) ([]Menu, error) {
	query := txn.DB(ctx, r.db).Model(&Menu{}).Preload("Category")

	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		search := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}

	var menus []Menu
	if err := query.Order("id DESC").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve menus: %w", err)
	}
	return menus, nil
}

func (r *gormRepository) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := txn.DB(ctx, r.db).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}
