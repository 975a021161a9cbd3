// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App          AppConfig
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Security     SecurityConfig
	External     ExternalConfig
	Notification NotificationConfig
	Catalog      CatalogConfig
	Logging      LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"FoodieHub"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Debug       bool   `env:"APP_DEBUG" envDefault:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string        `env:"APP_PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig contains database connection configuration.
// Driver is either "postgres" or "mysql".
type DatabaseConfig struct {
	Driver       string        `env:"DB_DRIVER" envDefault:"postgres"`
	Host         string        `env:"DB_HOST" envDefault:"localhost"`
	Port         string        `env:"DB_PORT" envDefault:"5432"`
	Name         string        `env:"DB_NAME" envDefault:"foodiehub_db"`
	User         string        `env:"DB_USER" envDefault:"foodiehub_user"`
	Password     string        `env:"DB_PASSWORD" envDefault:"foodiehub_password"`
	SSLMode      string        `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxLifetime  time.Duration `env:"DB_MAX_LIFETIME" envDefault:"300s"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string `env:"REDIS_HOST" envDefault:"localhost"`
	Port         string `env:"REDIS_PORT" envDefault:"6379"`
	Password     string `env:"REDIS_PASSWORD"`
	DB           int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"5"`
}

// JWTConfig contains JWT token configuration
type JWTConfig struct {
	Secret            string        `env:"JWT_SECRET" envDefault:"your-super-secret-jwt-key-change-in-production"`
	AccessTokenExpiry time.Duration `env:"JWT_ACCESS_EXPIRE" envDefault:"24h"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	BcryptCost         int      `env:"BCRYPT_COST" envDefault:"12"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE" envDefault:"100"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173"`
	CORSAllowedMethods []string `env:"CORS_ALLOWED_METHODS" envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envDefault:"Origin,Content-Type,Accept,Authorization,Stripe-Signature"`
	TrustedProxies     []string `env:"TRUSTED_PROXIES"`
}

// ExternalConfig contains external service configurations
type ExternalConfig struct {
	Stripe   StripeConfig
	Email    EmailConfig
	RabbitMQ RabbitMQConfig
}

// StripeConfig contains Stripe payment configuration
type StripeConfig struct {
	SecretKey        string        `env:"STRIPE_SECRET_KEY"`
	PublishableKey   string        `env:"STRIPE_PUBLISHABLE_KEY"`
	WebhookSecret    string        `env:"STRIPE_WEBHOOK_SECRET"`
	Currency         string        `env:"STRIPE_CURRENCY" envDefault:"usd"`
	APIURL           string        `env:"STRIPE_API_URL"`
	Timeout          time.Duration `env:"STRIPE_TIMEOUT" envDefault:"10s"`
	RetryBackoff     time.Duration `env:"STRIPE_RETRY_BACKOFF" envDefault:"500ms"`
	BreakerFailures  uint32        `env:"STRIPE_BREAKER_FAILURES" envDefault:"5"`
	BreakerOpenDelay time.Duration `env:"STRIPE_BREAKER_OPEN_DELAY" envDefault:"30s"`
}

// EmailConfig contains email service configuration.
// Provider is one of smtp, resend, sendgrid or log.
type EmailConfig struct {
	Provider        string `env:"EMAIL_PROVIDER" envDefault:"log"`
	APIKey          string `env:"EMAIL_API_KEY"`
	APIBaseURL      string `env:"EMAIL_API_BASE_URL"`
	FromEmail       string `env:"FROM_EMAIL" envDefault:"noreply@foodiehub.local"`
	FromName        string `env:"FROM_NAME" envDefault:"FoodieHub"`
	ReplyTo         string `env:"REPLY_TO_EMAIL"`
	SMTPHost        string `env:"SMTP_HOST"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername    string `env:"SMTP_USERNAME"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	SMTPUseTLS      bool   `env:"SMTP_USE_TLS" envDefault:"false"`
	BaseURL         string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`
	PaymentLinkBase string `env:"PAYMENT_LINK_BASE" envDefault:"http://localhost:3000/payment?orderId="`
}

// RabbitMQConfig configures the order event publisher. An empty URL disables it.
type RabbitMQConfig struct {
	URL      string `env:"RABBITMQ_URL"`
	Queue    string `env:"RABBITMQ_QUEUE" envDefault:"foodiehub.order-events"`
	PoolSize int    `env:"RABBITMQ_POOL_SIZE" envDefault:"5"`
}

// NotificationConfig sizes the background email dispatcher
type NotificationConfig struct {
	Workers     int           `env:"NOTIFICATION_WORKERS" envDefault:"2"`
	QueueSize   int           `env:"NOTIFICATION_QUEUE_SIZE" envDefault:"100"`
	SendTimeout time.Duration `env:"NOTIFICATION_SEND_TIMEOUT" envDefault:"30s"`
}

// CatalogConfig controls the menu read-through cache
type CatalogConfig struct {
	CacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"debug"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// A missing .env file is fine, the environment wins either way
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or mysql, got %q", c.Database.Driver)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}

	if c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	if c.External.Stripe.Currency == "" {
		return fmt.Errorf("STRIPE_CURRENCY is required")
	}
	if c.External.Stripe.Timeout <= 0 {
		return fmt.Errorf("STRIPE_TIMEOUT must be positive")
	}
	if c.External.Stripe.BreakerFailures < 1 {
		return fmt.Errorf("STRIPE_BREAKER_FAILURES must be at least 1")
	}
	if c.IsProduction() && c.External.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required in production")
	}

	switch c.External.Email.Provider {
	case "smtp", "resend", "sendgrid", "log":
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER: %s", c.External.Email.Provider)
	}

	if c.Notification.Workers < 1 {
		return fmt.Errorf("NOTIFICATION_WORKERS must be at least 1")
	}
	if c.Notification.QueueSize < 1 {
		return fmt.Errorf("NOTIFICATION_QUEUE_SIZE must be at least 1")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the connection string for the configured driver
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
		)
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
