// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"

	"github.com/your-org/foodiehub-backend/internal/apperror"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
)

// MenuFinder looks up catalog items. It returns an apperror NotFound for
// unknown ids.
type MenuFinder interface {
	FindMenuByID(ctx context.Context, id uint) (*catalog.Menu, error)
}

// Service handles cart business logic. Every call acts on the cart of the
// given user; callers resolve that identity before calling in.
type Service struct {
	repo  Repository
	menus MenuFinder
	tx    txn.Manager
}

// NewService creates a new cart service
func NewService(repo Repository, menus MenuFinder, tx txn.Manager) *Service {
	return &Service{
		repo:  repo,
		menus: menus,
		tx:    tx,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	MenuID   uint `json:"menuId" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// AddItem adds quantity of a menu item to the user's cart, creating the cart
// on first use. An existing line keeps its original unit price.
func (s *Service) AddItem(ctx context.Context, userID, menuID uint, quantity int) error {
	if quantity < 1 {
		return apperror.BadRequest("Quantity must be at least 1")
	}

	menu, err := s.menus.FindMenuByID(ctx, menuID)
	if err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.FindByUserID(ctx, userID)
		if errors.Is(err, ErrCartNotFound) {
			c = &Cart{UserID: userID}
			if err := s.repo.Create(ctx, c); err != nil {
				return apperror.Internal("Failed to create cart", err)
			}
		} else if err != nil {
			return apperror.Internal("Failed to load cart", err)
		}

		item, err := s.repo.FindItemByMenu(ctx, c.ID, menu.ID)
		switch {
		case err == nil:
			item.Quantity += quantity
			item.Recalculate()
			if err := s.repo.UpdateItem(ctx, item); err != nil {
				return apperror.Internal("Failed to update cart item", err)
			}
		case errors.Is(err, ErrItemNotFound):
			item = &CartItem{
				CartID:       c.ID,
				MenuID:       menu.ID,
				Quantity:     quantity,
				PricePerUnit: menu.Price,
			}
			item.Recalculate()
			if err := s.repo.AddItem(ctx, item); err != nil {
				return apperror.Internal("Failed to add cart item", err)
			}
		default:
			return apperror.Internal("Failed to load cart item", err)
		}
		return nil
	})
}

// IncrementItem raises the quantity of the line for menuID by one
func (s *Service) IncrementItem(ctx context.Context, userID, menuID uint) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.itemForMenu(ctx, userID, menuID)
		if err != nil {
			return err
		}

		item.Quantity++
		item.Recalculate()
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return apperror.Internal("Failed to update cart item", err)
		}
		return nil
	})
}

// DecrementItem lowers the quantity of the line for menuID by one and
// removes the line when nothing is left.
func (s *Service) DecrementItem(ctx context.Context, userID, menuID uint) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.itemForMenu(ctx, userID, menuID)
		if err != nil {
			return err
		}

		item.Quantity--
		if item.Quantity <= 0 {
			if err := s.repo.RemoveItem(ctx, item.ID); err != nil {
				return apperror.Internal("Failed to remove cart item", err)
			}
			return nil
		}

		item.Recalculate()
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return apperror.Internal("Failed to update cart item", err)
		}
		return nil
	})
}

// RemoveItem deletes a line, provided it belongs to the user's cart
func (s *Service) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.cartOf(ctx, userID)
		if err != nil {
			return err
		}

		item, err := s.repo.FindItemByID(ctx, itemID)
		if errors.Is(err, ErrItemNotFound) || (err == nil && item.CartID != c.ID) {
			return apperror.NotFound("Cart item not found")
		}
		if err != nil {
			return apperror.Internal("Failed to load cart item", err)
		}

		if err := s.repo.RemoveItem(ctx, item.ID); err != nil {
			return apperror.Internal("Failed to remove cart item", err)
		}
		return nil
	})
}

// Clear removes every line and keeps the cart itself
func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.cartOf(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.repo.ClearItems(ctx, c.ID); err != nil {
			return apperror.Internal("Failed to clear cart", err)
		}
		return nil
	})
}

// View returns the cart with its lines and the sum of their subtotals
func (s *Service) View(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.cartOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindItems(ctx, c.ID)
	if err != nil {
		return nil, apperror.Internal("Failed to load cart items", err)
	}

	c.CartItems = items
	c.TotalAmount = Total(items)
	return c, nil
}

func (s *Service) cartOf(ctx context.Context, userID uint) (*Cart, error) {
	c, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, apperror.NotFound("Cart not found")
		}
		return nil, apperror.Internal("Failed to load cart", err)
	}
	return c, nil
}

func (s *Service) itemForMenu(ctx context.Context, userID, menuID uint) (*CartItem, error) {
	c, err := s.cartOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByMenu(ctx, c.ID, menuID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, apperror.NotFound("Menu item not found in cart")
		}
		return nil, apperror.Internal("Failed to load cart item", err)
	}
	return item, nil
}
