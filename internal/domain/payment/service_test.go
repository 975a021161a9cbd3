package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/foodiehub-backend/internal/apperror"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/domain/user"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
	"github.com/your-org/foodiehub-backend/internal/pkg/events"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeGateway struct {
	calls      int
	lastAmount decimal.Decimal
	err        error
	webhook    *SettlementRequest
	webhookErr error
}

func (g *fakeGateway) CreateIntent(ctx context.Context, orderID uint, amount decimal.Decimal) (*Intent, error) {
	g.calls++
	g.lastAmount = amount
	if g.err != nil {
		return nil, g.err
	}
	return &Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*SettlementRequest, error) {
	return g.webhook, g.webhookErr
}

type outbox struct {
	mu       sync.Mutex
	subjects []string
}

func (o *outbox) Dispatch(msg *email.Email) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subjects = append(o.subjects, msg.Subject)
}

type eventLog struct {
	types []string
}

func (l *eventLog) Publish(ctx context.Context, event events.Event) error {
	l.types = append(l.types, event.Type)
	return nil
}

type testEnv struct {
	db      *gorm.DB
	svc     *Service
	orders  order.Repository
	gateway *fakeGateway
	outbox  *outbox
	events  *eventLog
	order   *order.Order
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&user.User{}, &catalog.Category{}, &catalog.Menu{},
		&order.Order{}, &order.OrderItem{}, &order.StatusHistory{}, &Payment{},
	))

	address := "12 Market Street"
	customer := user.User{Name: "Ada", Email: "ada@example.com", Password: "x", Address: &address, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	other := user.User{Name: "Bob", Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	category := catalog.Category{Name: "Pizza"}
	require.NoError(t, db.Create(&category).Error)
	menu := catalog.Menu{Name: "Margherita", Price: decimal.RequireFromString("10.00"), CategoryID: category.ID}
	require.NoError(t, db.Create(&menu).Error)

	orders := order.NewRepository(db)
	placed := &order.Order{
		UserID:        customer.ID,
		TotalAmount:   decimal.RequireFromString("20.00"),
		OrderDate:     time.Now().UTC(),
		OrderStatus:   order.OrderStatusInitialized,
		PaymentStatus: order.PaymentStatusPending,
	}
	require.NoError(t, orders.Create(context.Background(), placed))
	require.NoError(t, orders.AddItems(context.Background(), []order.OrderItem{{
		OrderID:      placed.ID,
		MenuID:       menu.ID,
		MenuName:     menu.Name,
		Quantity:     2,
		PricePerUnit: menu.Price,
		Subtotal:     decimal.RequireFromString("20.00"),
	}}))

	composer, err := email.NewComposer(config.EmailConfig{FromName: "FoodieHub"})
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	env := &testEnv{
		db:      db,
		orders:  orders,
		gateway: &fakeGateway{},
		outbox:  &outbox{},
		events:  &eventLog{},
		order:   placed,
	}
	env.svc = NewService(Deps{
		Repo:     NewRepository(db),
		Orders:   orders,
		Gateway:  env.gateway,
		Tx:       txn.NewGormManager(db),
		Composer: composer,
		Notifier: env.outbox,
		Events:   env.events,
		Logger:   log,
	})
	return env
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestInitializePayment(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	resp, err := env.svc.InitializePayment(ctx, env.order.ID, amount("20.00"))
	require.NoError(t, err)
	assert.Equal(t, "pi_test_secret", resp.ClientSecret)
	assert.Equal(t, env.order.ID, resp.OrderID)
	assert.True(t, env.gateway.lastAmount.Equal(decimal.RequireFromString("20")))
}

func TestInitializePayment_Rejections(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		orderID uint
		amount  *decimal.Decimal
		kind    apperror.Kind
	}{
		{"missing order", 999, amount("20.00"), apperror.KindNotFound},
		{"missing amount", env.order.ID, nil, apperror.KindBadRequest},
		{"amount too low", env.order.ID, amount("19.99"), apperror.KindBadRequest},
		{"amount too high", env.order.ID, amount("20.01"), apperror.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.InitializePayment(ctx, tt.orderID, tt.amount)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
	assert.Zero(t, env.gateway.calls)
}

func TestInitializePayment_GatewayFailureIsInternal(t *testing.T) {
	env := setupEnv(t)
	env.gateway.err = errors.New("connection reset")

	_, err := env.svc.InitializePayment(context.Background(), env.order.ID, amount("20"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
}

func TestRecordSettlement_Success(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	p, err := env.svc.RecordSettlement(ctx, SettlementRequest{
		OrderID:       env.order.ID,
		Amount:        amount("20.00"),
		TransactionID: "pi_test",
		Success:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusCompleted, p.PaymentStatus)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, GatewayStripe, p.PaymentGateway)

	stored, err := env.orders.FindByID(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusConfirmed, stored.OrderStatus)
	assert.Equal(t, order.PaymentStatusCompleted, stored.PaymentStatus)

	assert.Equal(t, []string{"Payment Successful - Order #1"}, env.outbox.subjects)
	assert.Equal(t, []string{events.TypePaymentCompleted}, env.events.types)

	_, err = env.svc.InitializePayment(ctx, env.order.ID, amount("20.00"))
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestRecordSettlement_DuplicateTransactionIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	req := SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_test", Success: true}

	first, err := env.svc.RecordSettlement(ctx, req)
	require.NoError(t, err)
	second, err := env.svc.RecordSettlement(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	all, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, env.outbox.subjects, 1)
}

func TestRecordSettlement_SecondSuccessIsRejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_a", Success: true})
	require.NoError(t, err)
	_, err = env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_b", Success: true})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestRecordSettlement_FailuresThenSuccess(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	failed, err := env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, Success: false, FailureReason: "Card declined"})
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, "Card declined", failed.FailureReason)

	stored, err := env.orders.FindByID(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, stored.OrderStatus)
	assert.Equal(t, order.PaymentStatusFailed, stored.PaymentStatus)

	_, err = env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, Success: false})
	require.NoError(t, err)
	_, err = env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_ok", Success: true})
	require.NoError(t, err)

	all, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID)
	assert.Equal(t, order.PaymentStatusCompleted, all[0].PaymentStatus)
	assert.Equal(t, "Payment Failed - Order #1", env.outbox.subjects[0])

	history, err := env.orders.History(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestRecordSettlement_DeclineThenSuccessOnSameIntent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	declined, err := env.svc.RecordSettlement(ctx, SettlementRequest{
		OrderID: env.order.ID, TransactionID: "pi_same", Success: false, FailureReason: "Card declined", Source: SourceWebhook,
	})
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusFailed, declined.PaymentStatus)

	paid, err := env.svc.RecordSettlement(ctx, SettlementRequest{
		OrderID: env.order.ID, Amount: amount("20.00"), TransactionID: "pi_same", Success: true, Source: SourceWebhook,
	})
	require.NoError(t, err)
	assert.NotEqual(t, declined.ID, paid.ID)
	assert.Equal(t, order.PaymentStatusCompleted, paid.PaymentStatus)

	stored, err := env.orders.FindByID(ctx, env.order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusConfirmed, stored.OrderStatus)
	assert.Equal(t, order.PaymentStatusCompleted, stored.PaymentStatus)

	// redelivery of either event changes nothing
	again, err := env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_same", Success: true})
	require.NoError(t, err)
	assert.Equal(t, paid.ID, again.ID)
	again, err = env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_same", Success: false})
	require.NoError(t, err)
	assert.Equal(t, declined.ID, again.ID)

	all, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"Payment Failed - Order #1", "Payment Successful - Order #1"}, env.outbox.subjects)
}

func TestReportSettlement_Ownership(t *testing.T) {
	const owner, stranger = uint(1), uint(2)
	ctx := context.Background()

	t.Run("stranger cannot settle", func(t *testing.T) {
		env := setupEnv(t)

		_, err := env.svc.ReportSettlement(ctx, stranger, false, SettlementRequest{OrderID: env.order.ID, Success: false})
		assert.True(t, apperror.Is(err, apperror.KindNotFound))

		stored, err := env.orders.FindByID(ctx, env.order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusInitialized, stored.OrderStatus)
		assert.Equal(t, order.PaymentStatusPending, stored.PaymentStatus)
		assert.Empty(t, env.outbox.subjects)
	})

	t.Run("stranger cannot replay a known transaction", func(t *testing.T) {
		env := setupEnv(t)
		req := SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_owner", Success: true}

		_, err := env.svc.ReportSettlement(ctx, owner, false, req)
		require.NoError(t, err)
		_, err = env.svc.ReportSettlement(ctx, stranger, false, req)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})

	t.Run("admin may settle any order", func(t *testing.T) {
		env := setupEnv(t)

		p, err := env.svc.ReportSettlement(ctx, stranger, true, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_admin", Success: true})
		require.NoError(t, err)
		assert.Equal(t, owner, p.UserID)
		assert.JSONEq(t, `{"source":"client"}`, string(p.Metadata))
	})
}

// staleOrders serves an order as it was before a concurrent settlement landed
type staleOrders struct {
	order.Repository
	snapshot order.Order
}

func (s staleOrders) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o := s.snapshot
	return &o, nil
}

func TestRecordSettlement_ConcurrentSuccessIsRejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	before, err := env.orders.FindByID(ctx, env.order.ID)
	require.NoError(t, err)
	_, err = env.svc.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_a", Success: true})
	require.NoError(t, err)

	deps := env.svc.Deps
	deps.Orders = staleOrders{Repository: env.orders, snapshot: *before}
	racer := NewService(deps)

	_, err = racer.RecordSettlement(ctx, SettlementRequest{OrderID: env.order.ID, TransactionID: "pi_b", Success: true})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	all, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "pi_a", *all[0].TransactionID)
	assert.Len(t, env.outbox.subjects, 1)
}

func TestRecordSettlement_AmountMismatch(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.RecordSettlement(context.Background(), SettlementRequest{
		OrderID: env.order.ID,
		Amount:  amount("5.00"),
		Success: true,
	})
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
}

func TestHandleWebhook(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.gateway.webhookErr = ErrInvalidWebhook
	err := env.svc.HandleWebhook(ctx, []byte("{}"), "bad")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	env.gateway.webhookErr = nil
	require.NoError(t, env.svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	env.gateway.webhook = &SettlementRequest{OrderID: 999, TransactionID: "pi_x", Success: true, Source: SourceWebhook}
	require.NoError(t, env.svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	env.gateway.webhook = &SettlementRequest{OrderID: env.order.ID, Amount: amount("20.00"), TransactionID: "pi_wh", Success: true, Source: SourceWebhook}
	require.NoError(t, env.svc.HandleWebhook(ctx, []byte("{}"), "sig"))

	all, err := env.svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	p, err := env.svc.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	require.NotNil(t, p.Order)
	require.NotNil(t, p.User)
	assert.Len(t, p.Order.OrderItems, 1)
	assert.JSONEq(t, `{"source":"webhook"}`, string(p.Metadata))

	_, err = env.svc.GetByID(ctx, 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
