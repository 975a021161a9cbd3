// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/foodiehub-backend/internal/domain/cart"
	"github.com/your-org/foodiehub-backend/internal/domain/catalog"
	"github.com/your-org/foodiehub-backend/internal/domain/order"
	"github.com/your-org/foodiehub-backend/internal/domain/payment"
	"github.com/your-org/foodiehub-backend/internal/domain/user"
	"github.com/your-org/foodiehub-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Seeded development accounts
const (
	SeedAdminEmail    = "admin@foodiehub.local"
	SeedCustomerEmail = "customer@foodiehub.local"
	seedPassword      = "Password123!"
)

// Migration handles database migrations
type Migration struct {
	db        *gorm.DB
	passwords *auth.PasswordManager
	logger    logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, passwords *auth.PasswordManager, logger logrus.FieldLogger) *Migration {
	return &Migration{db: db, passwords: passwords, logger: logger}
}

// RunAutoMigrations migrates every model in dependency order
func (m *Migration) RunAutoMigrations() error {
	models := []interface{}{
		&user.User{},
		&catalog.Category{},
		&catalog.Menu{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
		&payment.Payment{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.WithField("models", len(models)).Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes adds composite indexes that struct tags cannot express.
// They use Postgres syntax and are skipped for other drivers. A failed index
// is logged and does not abort startup.
func (m *Migration) CreateIndexes(driver string) {
	if driver != "postgres" {
		return
	}

	indexes := []string{
		// transaction ids are unique per outcome, see payment.Payment
		"DROP INDEX IF EXISTS idx_payments_transaction_id",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_date ON orders(user_id, order_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_id ON orders(order_status, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_menu ON cart_items(cart_id, menu_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_order_date ON payments(order_id, payment_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_menus_name_lower ON menus(LOWER(name))",
	}

	failed := 0
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			m.logger.WithError(err).WithField("statement", stmt).Warn("Failed to create index")
			failed++
		}
	}
	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("Additional indexes processed")
}

// SeedInitialData inserts development accounts and a starter menu. Existing
// rows are left alone so the seed can run on every start.
func (m *Migration) SeedInitialData() error {
	if err := m.seedUser("Admin", SeedAdminEmail, user.RoleAdmin, nil); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	address := "221B Baker Street, London"
	if err := m.seedUser("Test Customer", SeedCustomerEmail, user.RoleCustomer, &address); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	m.logger.Info("Initial data seeded")
	return nil
}

func (m *Migration) seedUser(name, email string, role user.Role, address *string) error {
	var existing user.User
	err := m.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := m.passwords.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	return m.db.Create(&user.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
		Address:  address,
		IsActive: true,
	}).Error
}

type seedMenu struct {
	name, description, price string
}

func (m *Migration) seedCatalog() error {
	starter := []struct {
		category catalog.Category
		menus    []seedMenu
	}{
		{
			category: catalog.Category{Name: "Pizza", Description: "Stone baked pizzas"},
			menus: []seedMenu{
				{"Margherita", "Tomato, mozzarella and basil", "9.50"},
				{"Pepperoni", "Tomato, mozzarella and pepperoni", "11.00"},
			},
		},
		{
			category: catalog.Category{Name: "Burgers", Description: "Grilled to order"},
			menus: []seedMenu{
				{"Classic Burger", "Beef patty, cheddar and pickles", "10.25"},
				{"Veggie Burger", "Chickpea patty with avocado", "9.75"},
			},
		},
		{
			category: catalog.Category{Name: "Drinks", Description: "Cold drinks"},
			menus: []seedMenu{
				{"Lemonade", "Fresh squeezed", "3.00"},
			},
		},
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		for _, group := range starter {
			category := group.category
			if err := tx.Where(catalog.Category{Name: category.Name}).FirstOrCreate(&category).Error; err != nil {
				return err
			}

			for _, item := range group.menus {
				menu := catalog.Menu{
					Name:        item.name,
					Description: item.description,
					Price:       decimal.RequireFromString(item.price),
					CategoryID:  category.ID,
				}
				err := tx.Where("name = ? AND category_id = ?", menu.Name, category.ID).
					Attrs(menu).
					FirstOrCreate(&menu).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}
