// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/apperror"
	"github.com/your-org/foodiehub-backend/internal/domain/cart"
	"github.com/your-org/foodiehub-backend/internal/domain/user"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
	"github.com/your-org/foodiehub-backend/internal/pkg/events"
	"github.com/your-org/foodiehub-backend/internal/pkg/pdf"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
)

// DisplayTimeLayout formats dates shown to customers
const DisplayTimeLayout = "Jan 02, 2006 03:04 PM"

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CartStore is the part of the cart repository used to place orders
type CartStore interface {
	FindByUserID(ctx context.Context, userID uint) (*cart.Cart, error)
	FindItems(ctx context.Context, cartID uint) ([]cart.CartItem, error)
	ClearItems(ctx context.Context, cartID uint) error
}

// UserFinder resolves the caller
type UserFinder interface {
	GetCurrentUser(ctx context.Context, userID uint) (*user.User, error)
}

// Notifier queues an email for background delivery
type Notifier interface {
	Dispatch(msg *email.Email)
}

// ReceiptRenderer renders a receipt document
type ReceiptRenderer interface {
	GenerateReceipt(data pdf.ReceiptData) ([]byte, error)
}

// Deps are the collaborators of the order service
type Deps struct {
	Repo            Repository
	Carts           CartStore
	Users           UserFinder
	Tx              txn.Manager
	Composer        *email.Composer
	Notifier        Notifier
	Events          events.Publisher
	Receipts        ReceiptRenderer
	Logger          logrus.FieldLogger
	SiteName        string
	PaymentLinkBase string
}

// Service runs the order workflow
type Service struct {
	Deps
	now func() time.Time
}

// NewService creates a new order service
func NewService(deps Deps) *Service {
	if deps.Events == nil {
		deps.Events = events.NoopPublisher{}
	}
	return &Service{Deps: deps, now: time.Now}
}

// PlaceOrder turns the user's cart into an order and empties the cart.
// The confirmation email carries the payment link.
func (s *Service) PlaceOrder(ctx context.Context, userID uint) (*Order, error) {
	customer, err := s.Users.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !customer.HasAddress() {
		return nil, apperror.NotFound("Delivery address not found")
	}

	var placed *Order
	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.Carts.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, cart.ErrCartNotFound) {
				return apperror.NotFound("Cart not found for user")
			}
			return apperror.Internal("Failed to load cart", err)
		}

		cartItems, err := s.Carts.FindItems(ctx, c.ID)
		if err != nil {
			return apperror.Internal("Failed to load cart items", err)
		}
		if len(cartItems) == 0 {
			return apperror.BadRequest("Cart is empty")
		}

		o := &Order{
			UserID:        userID,
			TotalAmount:   cart.Total(cartItems),
			OrderDate:     s.now().UTC(),
			OrderStatus:   OrderStatusInitialized,
			PaymentStatus: PaymentStatusPending,
		}
		if err := s.Repo.Create(ctx, o); err != nil {
			return apperror.Internal("Failed to create order", err)
		}

		o.OrderItems = snapshotItems(o.ID, cartItems)
		if err := s.Repo.AddItems(ctx, o.OrderItems); err != nil {
			return apperror.Internal("Failed to create order items", err)
		}

		if err := s.Repo.AddHistory(ctx, &StatusHistory{
			OrderID:       o.ID,
			ToStatus:      o.OrderStatus,
			PaymentStatus: o.PaymentStatus,
			Reason:        "order placed",
		}); err != nil {
			return apperror.Internal("Failed to record order history", err)
		}

		if err := s.Carts.ClearItems(ctx, c.ID); err != nil {
			return apperror.Internal("Failed to clear cart", err)
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	placed.User = customer
	s.sendOrderConfirmation(placed, customer)
	s.publish(ctx, events.TypeOrderPlaced, placed)

	s.Logger.WithFields(logrus.Fields{
		"order_id": placed.ID,
		"user_id":  userID,
		"total":    placed.TotalAmount.StringFixed(2),
	}).Info("Order placed")

	return placed, nil
}

// UpdateStatus moves an order to a new status. Only forward moves along the
// delivery lifecycle are accepted.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, statusName string) (*Order, error) {
	next, ok := ParseOrderStatus(statusName)
	if !ok {
		return nil, apperror.BadRequest("Invalid order status: %s", statusName)
	}

	o, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.OrderStatus.CanTransitionTo(next) {
		return nil, apperror.BadRequest("Cannot change order status from %s to %s", o.OrderStatus, next)
	}

	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repo.UpdateStatuses(ctx, o.ID, next, o.PaymentStatus); err != nil {
			return apperror.Internal("Failed to update order status", err)
		}
		if err := s.Repo.AddHistory(ctx, &StatusHistory{
			OrderID:       o.ID,
			FromStatus:    o.OrderStatus,
			ToStatus:      next,
			PaymentStatus: o.PaymentStatus,
			Reason:        "updated by admin",
		}); err != nil {
			return apperror.Internal("Failed to record order history", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.OrderStatus = next
	s.sendStatusUpdate(o)
	s.publish(ctx, events.TypeOrderStatusChanged, o)
	return o, nil
}

// GetByID loads an order with its user and lines
func (s *Service) GetByID(ctx context.Context, orderID uint) (*Order, error) {
	o, err := s.Repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperror.NotFound("Order Not Found")
		}
		return nil, apperror.Internal("Failed to load order", err)
	}
	return o, nil
}

// GetOrderForUser loads an order on behalf of a caller. Customers only see
// their own orders; admins see every order.
func (s *Service) GetOrderForUser(ctx context.Context, orderID, userID uint, isAdmin bool) (*Order, error) {
	o, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, apperror.NotFound("Order Not Found")
	}
	return o, nil
}

// GetOrdersOfUser lists the caller's orders, newest first
func (s *Service) GetOrdersOfUser(ctx context.Context, userID uint) ([]Order, error) {
	orders, err := s.Repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to load orders", err)
	}
	return orders, nil
}

// GetAllOrders lists a page of orders, newest id first
func (s *Service) GetAllOrders(ctx context.Context, filter ListFilter) ([]Order, Pagination, error) {
	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.Size <= 0 {
		filter.Size = defaultPageSize
	}
	if filter.Size > maxPageSize {
		filter.Size = maxPageSize
	}

	orders, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, apperror.Internal("Failed to load orders", err)
	}
	return orders, NewPagination(filter.Page, filter.Size, total), nil
}

// CountUniqueCustomers counts users with at least one order
func (s *Service) CountUniqueCustomers(ctx context.Context) (int64, error) {
	count, err := s.Repo.CountDistinctCustomers(ctx)
	if err != nil {
		return 0, apperror.Internal("Failed to count customers", err)
	}
	return count, nil
}

// GetOrderItemByID loads a single order line
func (s *Service) GetOrderItemByID(ctx context.Context, itemID uint) (*OrderItem, error) {
	item, err := s.Repo.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrOrderItemNotFound) {
			return nil, apperror.NotFound("Order Item Not Found")
		}
		return nil, apperror.Internal("Failed to load order item", err)
	}
	return item, nil
}

// GetHistory lists the status changes of an order, oldest first
func (s *Service) GetHistory(ctx context.Context, orderID uint) ([]StatusHistory, error) {
	if _, err := s.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	history, err := s.Repo.History(ctx, orderID)
	if err != nil {
		return nil, apperror.Internal("Failed to load order history", err)
	}
	return history, nil
}

// Receipt renders the PDF receipt of an order visible to the caller
func (s *Service) Receipt(ctx context.Context, orderID, userID uint, isAdmin bool) ([]byte, error) {
	o, err := s.GetOrderForUser(ctx, orderID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	data := pdf.ReceiptData{
		SiteName:      s.SiteName,
		OrderID:       o.ID,
		OrderDate:     o.OrderDate.Format(DisplayTimeLayout),
		OrderStatus:   string(o.OrderStatus),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.StringFixed(2),
	}
	if o.User != nil {
		data.CustomerName = o.User.Name
		data.CustomerEmail = o.User.Email
		data.DeliveryAddress = o.User.DeliveryAddress()
	}
	for _, item := range o.OrderItems {
		data.Items = append(data.Items, pdf.ReceiptLine{
			Name:         item.MenuName,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit.StringFixed(2),
			Subtotal:     item.Subtotal.StringFixed(2),
		})
	}

	doc, err := s.Receipts.GenerateReceipt(data)
	if err != nil {
		return nil, apperror.Internal("Failed to generate receipt", err)
	}
	return doc, nil
}

// PaymentLink is the link customers follow to pay for o
func (s *Service) PaymentLink(o *Order) string {
	return fmt.Sprintf("%s%d&amount=%s", s.PaymentLinkBase, o.ID, o.TotalAmount.StringFixed(2))
}

func snapshotItems(orderID uint, cartItems []cart.CartItem) []OrderItem {
	items := make([]OrderItem, len(cartItems))
	for i, ci := range cartItems {
		name := ""
		if ci.Menu != nil {
			name = ci.Menu.Name
		}
		items[i] = OrderItem{
			OrderID:      orderID,
			MenuID:       ci.MenuID,
			MenuName:     name,
			Quantity:     ci.Quantity,
			PricePerUnit: ci.PricePerUnit,
			Subtotal:     ci.Subtotal,
		}
	}
	return items
}

func (s *Service) sendOrderConfirmation(o *Order, customer *user.User) {
	lines := make([]email.OrderLine, len(o.OrderItems))
	for i, item := range o.OrderItems {
		lines[i] = email.OrderLine{
			Name:     item.MenuName,
			Quantity: item.Quantity,
			Price:    item.PricePerUnit.StringFixed(2),
			Subtotal: item.Subtotal.StringFixed(2),
		}
	}

	msg, err := s.Composer.OrderConfirmation(customer.Email, email.OrderConfirmationData{
		EmailTemplateData: email.EmailTemplateData{CustomerName: customer.Name},
		OrderID:           o.ID,
		OrderDate:         o.OrderDate.Format(DisplayTimeLayout),
		TotalAmount:       o.TotalAmount.StringFixed(2),
		DeliveryAddress:   customer.DeliveryAddress(),
		PaymentLink:       s.PaymentLink(o),
		Items:             lines,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Error("Failed to compose order confirmation")
		return
	}
	s.Notifier.Dispatch(msg)
}

func (s *Service) sendStatusUpdate(o *Order) {
	if o.User == nil {
		return
	}

	msg, err := s.Composer.OrderStatusUpdate(o.User.Email, email.OrderStatusUpdateData{
		EmailTemplateData: email.EmailTemplateData{CustomerName: o.User.Name},
		OrderID:           o.ID,
		OrderStatus:       string(o.OrderStatus),
		PaymentStatus:     string(o.PaymentStatus),
	})
	if err != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Error("Failed to compose status update")
		return
	}
	s.Notifier.Dispatch(msg)
}

func (s *Service) publish(ctx context.Context, eventType string, o *Order) {
	event := events.New(eventType, events.OrderPayload{
		OrderID:       o.ID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		OrderStatus:   string(o.OrderStatus),
		PaymentStatus: string(o.PaymentStatus),
	})
	if err := s.Events.Publish(ctx, event); err != nil {
		s.Logger.WithError(err).WithField("event", eventType).Warn("Failed to publish order event")
	}
}
