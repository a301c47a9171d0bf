package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.True(t, cfg.Checkout.TaxRate.Equal(decimal.RequireFromString("0.18")))
	assert.True(t, cfg.Checkout.SpendPerLoyaltyPoint.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 6, cfg.Checkout.ReceiptNumberWidth)
	assert.Equal(t, "CASH", cfg.Checkout.DefaultPaymentTypeCode)
	assert.Equal(t, "RECEIPT", cfg.Checkout.DefaultReceiptTypeCode)
	assert.Equal(t, 480*time.Minute, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("CHECKOUT_TAX_RATE", "0.10")
	t.Setenv("CHECKOUT_DEFAULT_PAYMENT_TYPE", "card")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://pos.example.com , ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.True(t, cfg.Checkout.TaxRate.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, "CARD", cfg.Checkout.DefaultPaymentTypeCode)
	assert.Equal(t, []string{"https://pos.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"tax above one", "CHECKOUT_TAX_RATE", "1.5"},
		{"tax not a number", "CHECKOUT_TAX_RATE", "eighteen"},
		{"zero spend unit", "CHECKOUT_POINTS_SPEND_UNIT", "0"},
		{"receipt width", "CHECKOUT_RECEIPT_WIDTH", "0"},
		{"attempts", "CHECKOUT_MAX_TX_ATTEMPTS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "pos", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=pos sslmode=disable", db.PostgresDSN())

	db.DSN = "postgres://u:p@db/pos"
	assert.Equal(t, "postgres://u:p@db/pos", db.PostgresDSN())
}
