package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, DriverMemory, cfg.Storage.CartDriver)
	assert.Equal(t, DriverLog, cfg.Storage.Notifier)
	assert.True(t, cfg.Storage.SeedCatalog)
	assert.Empty(t, cfg.Storage.CouponSeedFiles)
	assert.Equal(t, int64(150000), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, int64(15000), cfg.Pricing.ShippingFlatFee)
	assert.Equal(t, "proportional", cfg.Checkout.SplitMode)
	assert.False(t, cfg.Checkout.EnforceStock)
	assert.Equal(t, "token", cfg.Auth.UserCookieName)
	assert.Equal(t, "seller_token", cfg.Auth.SellerCookieName)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: "8080"},
			Auth:     AuthConfig{JWTSecret: "s"},
			Storage:  StorageConfig{Driver: DriverMemory, CartDriver: DriverMemory, Notifier: DriverLog},
			Kafka:    KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "orders"},
			Checkout: CheckoutConfig{SplitMode: "proportional"},
			LogLevel: "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *Config) {
			c.Storage.Driver = DriverPostgres
			c.Postgres.DSN = "postgres://localhost/shop"
		}},
		{name: "unknown cart driver", mutate: func(c *Config) { c.Storage.CartDriver = "mongo" }, wantErr: true},
		{name: "kafka without topic", mutate: func(c *Config) {
			c.Storage.Notifier = DriverKafka
			c.Kafka.Topic = ""
		}, wantErr: true},
		{name: "negative fee", mutate: func(c *Config) { c.Pricing.ShippingFlatFee = -1 }, wantErr: true},
		{name: "legacy split", mutate: func(c *Config) { c.Checkout.SplitMode = "legacy" }},
		{name: "unknown split", mutate: func(c *Config) { c.Checkout.SplitMode = "even" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
