package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "redis", cfg.Cart.Store)
		assert.Equal(t, "mock", cfg.Payment.Gateway)
		assert.Equal(t, "INR", cfg.Payment.Currency)
		assert.Equal(t, 30, cfg.Checkout.RedirectAfterSeconds)
		assert.Equal(t, 5*time.Second, cfg.Catalog.SuggestionTimeout)
		assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Cart-Session")
		assert.True(t, cfg.Checkout.ShippingFee.IsZero())
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		t.Setenv("STOREFRONT_APP_NAME", "test-app")
		t.Setenv("STOREFRONT_APP_PORT", "9000")
		t.Setenv("STOREFRONT_DATABASE_HOST", "testdb.local")
		t.Setenv("STOREFRONT_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("STOREFRONT_CART_STORE", "memory")
		t.Setenv("STOREFRONT_CHECKOUT_SHIPPING_FEE", "49.50")
		t.Setenv("STOREFRONT_CHECKOUT_SESSION_TTL", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, "memory", cfg.Cart.Store)
		assert.True(t, cfg.Checkout.ShippingFee.Equal(decimal.RequireFromString("49.50")))
		assert.Equal(t, 2*time.Hour, cfg.Checkout.SessionTTL)
		assert.Equal(t, "test-app", cfg.Telemetry.ServiceName)
	})

	t.Run("rejects malformed shipping fee", func(t *testing.T) {
		t.Setenv("STOREFRONT_CHECKOUT_SHIPPING_FEE", "fifty")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout.shipping_fee")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("STOREFRONT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown cart store", func(t *testing.T) {
		t.Setenv("STOREFRONT_CART_STORE", "postgres")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("razorpay requires credentials", func(t *testing.T) {
		t.Setenv("STOREFRONT_PAYMENT_GATEWAY", "razorpay")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key_id")
	})

	t.Run("stripe gateway", func(t *testing.T) {
		t.Setenv("STOREFRONT_PAYMENT_GATEWAY", "stripe")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe gateway")

		t.Setenv("STOREFRONT_PAYMENT_KEY_ID", "pk_test_1")
		t.Setenv("STOREFRONT_PAYMENT_KEY_SECRET", "sk_test_1")
		t.Setenv("STOREFRONT_PAYMENT_CAPTURE_WAIT", "5s")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "stripe", cfg.Payment.Gateway)
		assert.Empty(t, cfg.Payment.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Payment.CaptureWait)
	})
}

func validProductionConfig() *Config {
	cfg := &Config{
		App:      AppConfig{Env: "production"},
		Database: DatabaseConfig{Password: "pw", SSLMode: "require"},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		Payment: PaymentConfig{
			Gateway:       "razorpay",
			KeyID:         "rzp_live_x",
			KeySecret:     "secret",
			WebhookSecret: "whsec",
		},
	}
	applyDefaults(cfg)
	return cfg
}

func TestValidate_Production(t *testing.T) {
	require.NoError(t, validProductionConfig().validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"default jwt secret", func(c *Config) { c.JWT.Secret = DefaultJWTSecret }, "jwt.secret"},
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }, "32 characters"},
		{"mock gateway", func(c *Config) { c.Payment.Gateway = "mock" }, "cannot be mock"},
		{"missing webhook secret", func(c *Config) { c.Payment.WebhookSecret = "" }, "webhook_secret"},
		{"ssl disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors_allow_origins"},
		{"cors origin without scheme", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"shop.example.com"} }, "must include the scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProductionConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "storefront", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/storefront?sslmode=disable", d.DSN())
}
