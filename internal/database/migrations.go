package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// Setting keys read by the checkout.
const (
	SettingDefaultPaymentType = "checkout.default_payment_type"
	SettingDefaultReceiptType = "checkout.default_receipt_type"
)

// schema is shared by both dialects; the {{...}} tokens are replaced per driver.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS persons (
		id {{ID}},
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		document_number VARCHAR(30) UNIQUE,
		phone VARCHAR(30),
		email VARCHAR(150),
		address VARCHAR(255),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id {{ID}},
		person_id BIGINT NOT NULL UNIQUE REFERENCES persons(id),
		username VARCHAR(60) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL CHECK (role IN ('admin', 'pharmacist', 'cashier')),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id {{ID}},
		person_id BIGINT NOT NULL UNIQUE REFERENCES persons(id),
		loyalty_points BIGINT NOT NULL DEFAULT 0 CHECK (loyalty_points >= 0),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id {{ID}},
		name VARCHAR(100) NOT NULL UNIQUE,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id {{ID}},
		name VARCHAR(150) NOT NULL,
		tax_id VARCHAR(30) UNIQUE,
		phone VARCHAR(30),
		email VARCHAR(150),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id {{ID}},
		name VARCHAR(150) NOT NULL,
		description TEXT,
		category_id BIGINT REFERENCES categories(id),
		barcode VARCHAR(50) UNIQUE,
		presentation VARCHAR(100),
		requires_prescription BOOLEAN NOT NULL DEFAULT FALSE,
		sale_price {{MONEY}} NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stock_lots (
		id {{ID}},
		product_id BIGINT NOT NULL REFERENCES products(id),
		supplier_id BIGINT REFERENCES suppliers(id),
		received_by BIGINT REFERENCES employees(id),
		lot_number VARCHAR(60),
		expiration_date TIMESTAMP,
		storage_location VARCHAR(100),
		initial_quantity INTEGER NOT NULL CHECK (initial_quantity > 0),
		current_quantity INTEGER NOT NULL,
		unit_cost {{MONEY}} NOT NULL,
		status VARCHAR(20) NOT NULL CHECK (status IN ('AVAILABLE', 'DEPLETED')),
		received_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (current_quantity >= 0 AND current_quantity <= initial_quantity)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_lots_product ON stock_lots(product_id)`,
	`CREATE TABLE IF NOT EXISTS payment_types (
		id {{ID}},
		code VARCHAR(30) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS receipt_types (
		id {{ID}},
		code VARCHAR(30) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		series VARCHAR(10) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS receipt_sequences (
		prefix VARCHAR(10) PRIMARY KEY,
		last_value BIGINT NOT NULL CHECK (last_value >= 0),
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id {{ID}},
		receipt_number VARCHAR(30) NOT NULL UNIQUE,
		receipt_type_id BIGINT NOT NULL REFERENCES receipt_types(id),
		payment_type_id BIGINT NOT NULL REFERENCES payment_types(id),
		customer_id BIGINT REFERENCES customers(id),
		employee_id BIGINT NOT NULL REFERENCES employees(id),
		subtotal {{MONEY}} NOT NULL,
		tax {{MONEY}} NOT NULL,
		discount {{MONEY}} NOT NULL,
		total {{MONEY}} NOT NULL,
		loyalty_points_earned BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created_at ON sales(created_at)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id {{ID}},
		sale_id BIGINT NOT NULL REFERENCES sales(id),
		lot_id BIGINT NOT NULL REFERENCES stock_lots(id),
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price {{MONEY}} NOT NULL,
		line_total {{MONEY}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items(sale_id)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id {{ID}},
		lot_id BIGINT NOT NULL REFERENCES stock_lots(id),
		movement_type VARCHAR(20) NOT NULL CHECK (movement_type IN ('RECEIPT', 'SALE', 'ADJUSTMENT')),
		quantity_change INTEGER NOT NULL,
		quantity_after INTEGER NOT NULL,
		sale_id BIGINT REFERENCES sales(id),
		employee_id BIGINT REFERENCES employees(id),
		reason TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_lot ON stock_movements(lot_id)`,
	`CREATE TABLE IF NOT EXISTS application_settings (
		id {{ID}},
		setting_key VARCHAR(100) NOT NULL UNIQUE,
		setting_value TEXT,
		description TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

func dialect(driverName string) *strings.Replacer {
	if driverName == config.DriverPostgres {
		return strings.NewReplacer("{{ID}}", "BIGSERIAL PRIMARY KEY", "{{MONEY}}", "NUMERIC(12,2)")
	}
	// TEXT keeps decimal amounts exact; SQLite would turn NUMERIC into REAL.
	return strings.NewReplacer("{{ID}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{MONEY}}", "TEXT")
}

// Migrate creates every table the service needs. It is safe to run on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	r := dialect(db.DriverName())
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	utils.LogInfo("Database schema applied successfully", map[string]interface{}{"statements": len(schema)})
	return nil
}

// Seed inserts the lookup rows, checkout defaults and bootstrap administrator.
// Existing rows are left untouched.
func Seed(ctx context.Context, db *sqlx.DB, cfg *config.Config) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	paymentTypes := [][2]string{{"CASH", "Cash"}, {"CARD", "Card"}, {"TRANSFER", "Bank transfer"}}
	for _, pt := range paymentTypes {
		q := tx.Rebind(`INSERT INTO payment_types (code, name, is_active) VALUES (?, ?, TRUE) ON CONFLICT (code) DO NOTHING`)
		if _, err := tx.ExecContext(ctx, q, pt[0], pt[1]); err != nil {
			return fmt.Errorf("failed to seed payment type %s: %w", pt[0], err)
		}
	}

	receiptTypes := [][3]string{{"RECEIPT", "Sales receipt", "B001"}, {"INVOICE", "Invoice", "F001"}}
	for _, rt := range receiptTypes {
		q := tx.Rebind(`INSERT INTO receipt_types (code, name, series) VALUES (?, ?, ?) ON CONFLICT (code) DO NOTHING`)
		if _, err := tx.ExecContext(ctx, q, rt[0], rt[1], rt[2]); err != nil {
			return fmt.Errorf("failed to seed receipt type %s: %w", rt[0], err)
		}
	}

	now := time.Now().UTC()
	settings := [][3]string{
		{SettingDefaultPaymentType, cfg.Checkout.DefaultPaymentTypeCode, "Payment type code used when a sale does not name one"},
		{SettingDefaultReceiptType, cfg.Checkout.DefaultReceiptTypeCode, "Receipt type code whose series numbers new sales"},
	}
	for _, s := range settings {
		q := tx.Rebind(`INSERT INTO application_settings (setting_key, setting_value, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?) ON CONFLICT (setting_key) DO NOTHING`)
		if _, err := tx.ExecContext(ctx, q, s[0], s[1], s[2], now, now); err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", s[0], err)
		}
	}

	if err := seedAdmin(ctx, tx, cfg.Admin, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}

func seedAdmin(ctx context.Context, tx *sqlx.Tx, admin config.AdminConfig, now time.Time) error {
	if admin.Username == "" || admin.Password == "" {
		utils.LogWarn("ADMIN_PASSWORD not set, skipping bootstrap administrator")
		return nil
	}

	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM employees WHERE username = ?`), admin.Username); err != nil {
		return fmt.Errorf("failed to look up bootstrap administrator: %w", err)
	}
	if exists > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash administrator password: %w", err)
	}

	firstName, lastName := admin.FullName, ""
	if i := strings.LastIndex(admin.FullName, " "); i > 0 {
		firstName, lastName = admin.FullName[:i], admin.FullName[i+1:]
	}

	var personID int64
	q := tx.Rebind(`INSERT INTO persons (first_name, last_name, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := tx.QueryRowxContext(ctx, q, firstName, lastName, now, now).Scan(&personID); err != nil {
		return fmt.Errorf("failed to create administrator person: %w", err)
	}
	q = tx.Rebind(`INSERT INTO employees (person_id, username, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 'admin', TRUE, ?, ?)`)
	if _, err := tx.ExecContext(ctx, q, personID, admin.Username, string(hash), now, now); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}
	utils.LogInfo("Bootstrap administrator created", map[string]interface{}{"username": admin.Username})
	return nil
}
