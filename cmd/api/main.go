// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/config"
	"github.com/your-org/foodiehub-backend/internal/domain/cart"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/domain/payment"
	"github.com/your-org/foodiehub-backend/internal/domain/user"
	"github.com/your-org/foodiehub-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/foodiehub-backend/internal/infrastructure/database/redis"
	"github.com/your-org/foodiehub-backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/handlers"
	"github.com/your-org/foodiehub-backend/internal/interfaces/http/routes"
	"github.com/your-org/foodiehub-backend/internal/pkg/auth"
	"github.com/your-org/foodiehub-backend/internal/pkg/email"
	"github.com/your-org/foodiehub-backend/internal/pkg/events"
	"github.com/your-org/foodiehub-backend/internal/pkg/logger"
	"github.com/your-org/foodiehub-backend/internal/pkg/notification"
	"github.com/your-org/foodiehub-backend/internal/pkg/pdf"
	"github.com/your-org/foodiehub-backend/internal/pkg/txn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting")

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	passwords := auth.NewPasswordManager(cfg.Security.BcryptCost)
	migration := postgres.NewMigration(db.GetDB(), passwords, log)
	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}
	migration.CreateIndexes(db.Driver())

	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
	}

	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()

	composer, err := email.NewComposer(cfg.External.Email)
	if err != nil {
		log.WithError(err).Fatal("Failed to load email templates")
	}
	sender, err := email.NewSender(cfg.External.Email, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create email sender")
	}
	dispatcher := notification.NewDispatcher(sender, cfg.Notification, log)
	dispatcher.Start()

	tx := txn.NewGormManager(db.GetDB())

	menuCache := catalog.NewCachedRepository(catalog.NewRepository(db.GetDB()), redisClient.GetClient(), cfg.Catalog.CacheTTL, log)
	// menus cached by a previous run may predate this run's migrations or seed
	if removed, err := menuCache.Purge(context.Background()); err != nil {
		log.WithError(err).Warn("Failed to purge menu cache")
	} else {
		log.WithField("entries", removed).Info("Menu cache purged")
	}
	catalogService := catalog.NewService(menuCache)
	userService := user.NewService(user.NewRepository(db.GetDB()))
	cartRepo := cart.NewRepository(db.GetDB())
	cartService := cart.NewService(cartRepo, catalogService, tx)

	orderRepo := order.NewRepository(db.GetDB())
	orderService := order.NewService(order.Deps{
		Repo:            orderRepo,
		Carts:           cartRepo,
		Users:           userService,
		Tx:              tx,
		Composer:        composer,
		Notifier:        dispatcher,
		Events:          publisher,
		Receipts:        pdf.NewService(),
		Logger:          log,
		SiteName:        cfg.App.Name,
		PaymentLinkBase: cfg.External.Email.PaymentLinkBase,
	})

	paymentService := payment.NewService(payment.Deps{
		Repo:     payment.NewRepository(db.GetDB()),
		Orders:   orderRepo,
		Gateway:  payment.NewStripeGateway(cfg.External.Stripe, log),
		Tx:       tx,
		Composer: composer,
		Notifier: dispatcher,
		Events:   publisher,
		Logger:   log,
	})

	server := http.NewServer(cfg, http.Dependencies{
		Handlers: routes.Handlers{
			Catalog: handlers.NewCatalogHandler(catalogService),
			Cart:    handlers.NewCartHandler(cartService),
			Order:   handlers.NewOrderHandler(orderService),
			Payment: handlers.NewPaymentHandler(paymentService),
		},
		Tokens: auth.NewJWTManager(cfg.JWT, cfg.App.Name),
		Redis:  redisClient.GetClient(),
		HealthChecks: map[string]http.HealthCheck{
			"database": db.Health,
			"redis":    redisClient.Health,
		},
		Logger: log,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}
	// drain queued emails after the last request has finished
	if err := dispatcher.Close(ctx); err != nil {
		log.WithError(err).Warn("Pending notifications were dropped")
	}

	log.Info("Server shutdown completed")
}

// newPublisher returns the RabbitMQ event publisher, or a no-op publisher
// when no broker is configured
func newPublisher(cfg *config.Config, log logrus.FieldLogger) (events.Publisher, func()) {
	mq := cfg.External.RabbitMQ
	if mq.URL == "" {
		log.Info("RABBITMQ_URL not set, domain events are disabled")
		return events.NoopPublisher{}, func() {}
	}

	pool, err := rabbitmq.NewChannelPool(mq.URL, mq.Queue, mq.PoolSize, log)
	if err != nil {
		log.WithError(err).Warn("RabbitMQ unavailable, domain events are disabled")
		return events.NoopPublisher{}, func() {}
	}
	return rabbitmq.NewPublisher(pool), pool.Close
}
