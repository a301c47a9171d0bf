package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Checkout  CheckoutConfig
	Admin     AdminConfig
	Log       LogConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	LoginPerMinute int
	LoginBurst     int
}

// CheckoutConfig drives the sale workflow. The default payment and receipt
// type codes are only used to seed the application_settings table; at runtime the
// checkout reads them from there.
type CheckoutConfig struct {
	TaxRate                decimal.Decimal
	DefaultPaymentTypeCode string
	DefaultReceiptTypeCode string
	SpendPerLoyaltyPoint   decimal.Decimal
	ReceiptNumberWidth     int
	MaxTxAttempts          int
}

type AdminConfig struct {
	Username string
	Password string
	FullName string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const devJWTSecret = "dev-only-pharmacy-pos-secret-change-me"

// Load reads an optional .env file, then environment variables, falling back
// to development defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	taxRate, err := decimal.NewFromString(v.GetString("CHECKOUT_TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_TAX_RATE: %w", err)
	}
	spendUnit, err := decimal.NewFromString(v.GetString("CHECKOUT_POINTS_SPEND_UNIT"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_POINTS_SPEND_UNIT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:  v.GetString("APP_NAME"),
			Env:   v.GetString("APP_ENV"),
			Port:  v.GetString("APP_PORT"),
			Debug: v.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:          v.GetString("DB_DSN"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TTL_MINUTES")) * time.Minute,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: v.GetInt("RATE_LIMIT_LOGIN_PER_MINUTE"),
			LoginBurst:     v.GetInt("RATE_LIMIT_LOGIN_BURST"),
		},
		Checkout: CheckoutConfig{
			TaxRate:                taxRate,
			DefaultPaymentTypeCode: strings.ToUpper(v.GetString("CHECKOUT_DEFAULT_PAYMENT_TYPE")),
			DefaultReceiptTypeCode: strings.ToUpper(v.GetString("CHECKOUT_DEFAULT_RECEIPT_TYPE")),
			SpendPerLoyaltyPoint:   spendUnit,
			ReceiptNumberWidth:     v.GetInt("CHECKOUT_RECEIPT_WIDTH"),
			MaxTxAttempts:          v.GetInt("CHECKOUT_MAX_TX_ATTEMPTS"),
		},
		Admin: AdminConfig{
			Username: v.GetString("ADMIN_USERNAME"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_FULL_NAME"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "pharmacy-pos")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", false)

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "pharmacy_user")
	v.SetDefault("DB_PASSWORD", "pharmacy_password")
	v.SetDefault("DB_NAME", "pharmacy_pos")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_ACCESS_TTL_MINUTES", 480)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("RATE_LIMIT_LOGIN_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT_LOGIN_BURST", 5)

	v.SetDefault("CHECKOUT_TAX_RATE", "0.18")
	v.SetDefault("CHECKOUT_DEFAULT_PAYMENT_TYPE", "CASH")
	v.SetDefault("CHECKOUT_DEFAULT_RECEIPT_TYPE", "RECEIPT")
	v.SetDefault("CHECKOUT_POINTS_SPEND_UNIT", "10")
	v.SetDefault("CHECKOUT_RECEIPT_WIDTH", 6)
	v.SetDefault("CHECKOUT_MAX_TX_ATTEMPTS", 3)

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_FULL_NAME", "Administrator")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver))
	}
	if c.JWT.Secret == "" || (c.IsProduction() && c.JWT.Secret == devJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.JWT.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL_MINUTES must be positive"))
	}
	if c.Checkout.TaxRate.IsNegative() || c.Checkout.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("CHECKOUT_TAX_RATE must be within [0, 1], got %s", c.Checkout.TaxRate))
	}
	if !c.Checkout.SpendPerLoyaltyPoint.IsPositive() {
		errs = append(errs, errors.New("CHECKOUT_POINTS_SPEND_UNIT must be positive"))
	}
	if c.Checkout.ReceiptNumberWidth < 1 || c.Checkout.ReceiptNumberWidth > 12 {
		errs = append(errs, fmt.Errorf("CHECKOUT_RECEIPT_WIDTH must be between 1 and 12, got %d", c.Checkout.ReceiptNumberWidth))
	}
	if c.Checkout.MaxTxAttempts < 1 {
		errs = append(errs, errors.New("CHECKOUT_MAX_TX_ATTEMPTS must be at least 1"))
	}
	if c.Checkout.DefaultPaymentTypeCode == "" || c.Checkout.DefaultReceiptTypeCode == "" {
		errs = append(errs, errors.New("checkout default payment and receipt type codes are required"))
	}
	if c.RateLimit.LoginPerMinute < 1 || c.RateLimit.LoginBurst < 1 {
		errs = append(errs, errors.New("login rate limit values must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// PostgresDSN composes a lib/pq connection string unless DB_DSN was given.
func (c DatabaseConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
