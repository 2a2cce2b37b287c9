package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
// It is loaded once at startup and passed to every component that needs it.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	Pricing  PricingConfig
	Checkout CheckoutConfig
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	ReadTimeout     int      `envconfig:"READ_TIMEOUT" default:"15"`
	WriteTimeout    int      `envconfig:"WRITE_TIMEOUT" default:"15"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`
	AllowedOrigins  []string `envconfig:"CLIENT_ORIGINS" default:"http://localhost:3000"`
}

type AuthConfig struct {
	JWTSecret        string `envconfig:"JWT_SECRET" required:"true"`
	TokenTTLHours    int    `envconfig:"TOKEN_TTL_HOURS" default:"72"`
	UserCookieName   string `envconfig:"USER_COOKIE_NAME" default:"token"`
	SellerCookieName string `envconfig:"SELLER_COOKIE_NAME" default:"seller_token"`
}

// StorageConfig selects the backing store for each persistence concern.
// CouponSeedFiles are coupon files (plain or .gz) imported at startup.
type StorageConfig struct {
	Driver          string   `envconfig:"STORAGE_DRIVER" default:"memory"`
	CartDriver      string   `envconfig:"CART_DRIVER" default:"memory"`
	Notifier        string   `envconfig:"NOTIFIER_DRIVER" default:"log"`
	SeedCatalog     bool     `envconfig:"SEED_CATALOG" default:"true"`
	CouponSeedFiles []string `envconfig:"COUPON_SEED_FILES"`
}

type PostgresConfig struct {
	DSN         string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"DATABASE_AUTO_MIGRATE" default:"true"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_ORDER_TOPIC" default:"shopwise.orders"`
}

type PaymentConfig struct {
	StripeSecretKey      string `envconfig:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `envconfig:"STRIPE_PUBLISHABLE_KEY"`
	Currency             string `envconfig:"PAYMENT_CURRENCY" default:"inr"`
	Company              string `envconfig:"PAYMENT_COMPANY" default:"Shopwise"`
}

// PricingConfig amounts are in minor currency units.
type PricingConfig struct {
	FreeShippingThreshold int64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"150000"`
	ShippingFlatFee       int64 `envconfig:"SHIPPING_FLAT_FEE" default:"15000"`
}

type CheckoutConfig struct {
	SplitMode    string `envconfig:"CHECKOUT_SPLIT_MODE" default:"proportional"`
	EnforceStock bool   `envconfig:"CHECKOUT_ENFORCE_STOCK" default:"false"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverLog      = "log"
	DriverKafka    = "kafka"
)

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER: %s (must be memory or postgres)", c.Storage.Driver)
	}

	if c.Storage.CartDriver != DriverMemory && c.Storage.CartDriver != DriverRedis {
		return fmt.Errorf("invalid CART_DRIVER: %s (must be memory or redis)", c.Storage.CartDriver)
	}

	switch c.Storage.Notifier {
	case DriverLog:
	case DriverKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_ORDER_TOPIC are required when NOTIFIER_DRIVER=kafka")
		}
	default:
		return fmt.Errorf("invalid NOTIFIER_DRIVER: %s (must be log or kafka)", c.Storage.Notifier)
	}

	if c.Pricing.FreeShippingThreshold < 0 || c.Pricing.ShippingFlatFee < 0 {
		return fmt.Errorf("pricing amounts cannot be negative")
	}

	if c.Checkout.SplitMode != "proportional" && c.Checkout.SplitMode != "legacy" {
		return fmt.Errorf("invalid CHECKOUT_SPLIT_MODE: %s (must be proportional or legacy)", c.Checkout.SplitMode)
	}

	return nil
}
