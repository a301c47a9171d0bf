package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sqlx.Open(config.DriverPostgres, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen / 2)
		db.SetConnMaxLifetime(30 * time.Minute)
	case config.DriverSQLite:
		db, err = sqlx.Open(config.DriverSQLite, SQLiteDSN(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		// SQLite has a single writer; one connection also keeps an
		// in-memory database alive and serializes checkouts.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"driver": cfg.Driver})
	return db, nil
}

// SQLiteDSN appends the pragmas the schema relies on. An empty dsn opens a
// private in-memory database.
func SQLiteDSN(dsn string) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// ForUpdate returns the row-lock clause for the driver. SQLite locks the
// whole database for a write transaction, so it needs none.
func ForUpdate(driverName string) string {
	if driverName == config.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}
