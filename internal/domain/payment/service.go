// internal/domain/payment/service.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/apperror"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
	"github.com/your-org/foodiehub-backend/internal/pkg/events"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/datatypes"
)

const msgAmountMismatch = "Payment Amount Does Not Tally. Please Contact Our Customer Support Agent"

// OrderStore is the part of the order repository touched by settlement
type OrderStore interface {
	FindByID(ctx context.Context, id uint) (*order.Order, error)
	SettleUnlessPaid(ctx context.Context, id uint, orderStatus order.OrderStatus, paymentStatus order.PaymentStatus) error
	AddHistory(ctx context.Context, h *order.StatusHistory) error
}

// Deps are the collaborators of the payment service
type Deps struct {
	Repo     Repository
	Orders   OrderStore
	Gateway  Gateway
	Tx       txn.Manager
	Composer *email.Composer
	Notifier order.Notifier
	Events   events.Publisher
	Logger   logrus.FieldLogger
}

// Service creates payment intents and records their outcome
type Service struct {
	Deps
	now func() time.Time
}

// NewService creates a new payment service
func NewService(deps Deps) *Service {
	if deps.Events == nil {
		deps.Events = events.NoopPublisher{}
	}
	return &Service{Deps: deps, now: time.Now}
}

// InitializePayment creates a payment intent for an unpaid order. The amount
// must match the order total exactly.
func (s *Service) InitializePayment(ctx context.Context, orderID uint, amount *decimal.Decimal) (*InitializeResponse, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.PaymentStatus == order.PaymentStatusCompleted {
		return nil, apperror.BadRequest("Payment Already Made For This Order")
	}
	if amount == nil {
		return nil, apperror.BadRequest("Amount Is Required")
	}
	if !amount.Equal(o.TotalAmount) {
		return nil, apperror.BadRequest(msgAmountMismatch)
	}

	intent, err := s.Gateway.CreateIntent(ctx, o.ID, o.TotalAmount)
	if err != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Error("Failed to create payment intent")
		return nil, apperror.Internal("Error creating payment unique transaction id", err)
	}

	return &InitializeResponse{
		OrderID:         o.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
	}, nil
}

// RecordSettlement stores the outcome of a payment attempt and moves the
// order accordingly. Reporting an outcome already recorded for the same
// transaction id returns the stored payment without side effects.
func (s *Service) RecordSettlement(ctx context.Context, req SettlementRequest) (*Payment, error) {
	return s.settle(ctx, req, nil)
}

// ReportSettlement records an outcome reported by the paying customer's
// client. Orders of other customers are reported as missing; admins may
// report for any order.
func (s *Service) ReportSettlement(ctx context.Context, userID uint, isAdmin bool, req SettlementRequest) (*Payment, error) {
	req.Source = SourceClient
	return s.settle(ctx, req, &caller{userID: userID, isAdmin: isAdmin})
}

type caller struct {
	userID  uint
	isAdmin bool
}

func (c *caller) owns(userID uint) bool {
	return c == nil || c.isAdmin || c.userID == userID
}

func (s *Service) settle(ctx context.Context, req SettlementRequest, by *caller) (*Payment, error) {
	outcome := order.PaymentStatusFailed
	if req.Success {
		outcome = order.PaymentStatusCompleted
	}

	if req.TransactionID != "" {
		existing, err := s.Repo.FindByTransaction(ctx, req.TransactionID, outcome)
		if err == nil {
			if !by.owns(existing.UserID) {
				return nil, apperror.NotFound("Order Not Found")
			}
			return existing, nil
		}
		if !errors.Is(err, ErrPaymentNotFound) {
			return nil, apperror.Internal("Failed to load payment", err)
		}
	}

	o, err := s.loadOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !by.owns(o.UserID) {
		return nil, apperror.NotFound("Order Not Found")
	}
	if o.PaymentStatus == order.PaymentStatusCompleted {
		return nil, apperror.BadRequest("Payment Already Made For This Order")
	}
	if req.Amount != nil && !req.Amount.Equal(o.TotalAmount) {
		return nil, apperror.BadRequest(msgAmountMismatch)
	}

	p := s.newPayment(o, req)
	nextOrder := order.OrderStatusCancelled
	if req.Success {
		nextOrder = order.OrderStatusConfirmed
	}

	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.Repo.Create(ctx, p); err != nil {
			return err
		}
		// repeat the paid check under the row lock
		if err := s.Orders.SettleUnlessPaid(ctx, o.ID, nextOrder, outcome); err != nil {
			return err
		}
		return s.Orders.AddHistory(ctx, &order.StatusHistory{
			OrderID:       o.ID,
			FromStatus:    o.OrderStatus,
			ToStatus:      nextOrder,
			PaymentStatus: outcome,
			Reason:        "payment " + string(outcome) + " via " + settlementSource(req.Source),
		})
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateTransaction):
			// lost a race with a concurrent report of the same outcome
			existing, findErr := s.Repo.FindByTransaction(ctx, req.TransactionID, outcome)
			if findErr != nil {
				return nil, apperror.Internal("Failed to load payment", findErr)
			}
			return existing, nil
		case errors.Is(err, order.ErrOrderAlreadyPaid):
			return nil, apperror.BadRequest("Payment Already Made For This Order")
		}
		return nil, apperror.Internal("Failed to record payment", err)
	}

	o.OrderStatus, o.PaymentStatus = nextOrder, outcome
	s.notifySettlement(o, p)
	s.publish(ctx, p)

	s.Logger.WithFields(logrus.Fields{
		"order_id":       o.ID,
		"payment_id":     p.ID,
		"payment_status": p.PaymentStatus,
	}).Info("Payment recorded")

	return p, nil
}

// HandleWebhook verifies a Stripe callback and records the settlement it
// carries. Settlements rejected by business rules are acknowledged so the
// provider stops redelivering them.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	req, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.Logger.WithError(err).Warn("Rejected payment webhook")
		return apperror.BadRequest("Invalid webhook payload")
	}
	if req == nil {
		return nil
	}

	if _, err := s.RecordSettlement(ctx, *req); err != nil {
		if apperror.Is(err, apperror.KindInternal) {
			return err
		}
		s.Logger.WithError(err).WithField("order_id", req.OrderID).Warn("Ignored payment webhook")
	}
	return nil
}

// ListAll lists every payment, newest first
func (s *Service) ListAll(ctx context.Context) ([]Payment, error) {
	payments, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to load payments", err)
	}
	return payments, nil
}

// GetByID loads a payment with its user and order
func (s *Service) GetByID(ctx context.Context, id uint) (*Payment, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, apperror.NotFound("Payment Not Found")
		}
		return nil, apperror.Internal("Failed to load payment", err)
	}
	return p, nil
}

func (s *Service) loadOrder(ctx context.Context, orderID uint) (*order.Order, error) {
	o, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return nil, apperror.NotFound("Order Not Found")
		}
		return nil, apperror.Internal("Failed to load order", err)
	}
	return o, nil
}

func (s *Service) newPayment(o *order.Order, req SettlementRequest) *Payment {
	p := &Payment{
		OrderID:        o.ID,
		UserID:         o.UserID,
		Amount:         o.TotalAmount,
		PaymentGateway: GatewayStripe,
		PaymentStatus:  order.PaymentStatusFailed,
		PaymentDate:    s.now().UTC(),
	}
	if req.TransactionID != "" {
		id := req.TransactionID
		p.TransactionID = &id
	}
	if req.Success {
		p.PaymentStatus = order.PaymentStatusCompleted
	} else {
		p.FailureReason = req.FailureReason
		if p.FailureReason == "" {
			p.FailureReason = "Payment failed"
		}
	}

	meta, err := json.Marshal(map[string]string{"source": settlementSource(req.Source)})
	if err == nil {
		p.Metadata = datatypes.JSON(meta)
	}
	return p
}

func settlementSource(source string) string {
	if source == "" {
		return SourceClient
	}
	return source
}

func (s *Service) notifySettlement(o *order.Order, p *Payment) {
	if o.User == nil {
		return
	}

	data := email.PaymentNotificationData{
		EmailTemplateData: email.EmailTemplateData{CustomerName: o.User.Name},
		OrderID:           o.ID,
		Amount:            p.Amount.StringFixed(2),
		PaymentDate:       p.PaymentDate.Format(order.DisplayTimeLayout),
		FailureReason:     p.FailureReason,
	}
	if p.TransactionID != nil {
		data.TransactionID = *p.TransactionID
	}

	var (
		msg *email.Email
		err error
	)
	if p.PaymentStatus == order.PaymentStatusCompleted {
		msg, err = s.Composer.PaymentSuccess(o.User.Email, data)
	} else {
		msg, err = s.Composer.PaymentFailed(o.User.Email, data)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Error("Failed to compose payment email")
		return
	}
	s.Notifier.Dispatch(msg)
}

func (s *Service) publish(ctx context.Context, p *Payment) {
	eventType := events.TypePaymentFailed
	if p.PaymentStatus == order.PaymentStatusCompleted {
		eventType = events.TypePaymentCompleted
	}

	payload := events.PaymentPayload{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		FailureReason: p.FailureReason,
	}
	if p.TransactionID != nil {
		payload.TransactionID = *p.TransactionID
	}

	if err := s.Events.Publish(ctx, events.New(eventType, payload)); err != nil {
		s.Logger.WithError(err).WithField("event", eventType).Warn("Failed to publish payment event")
	}
}
