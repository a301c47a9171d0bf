package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// StockLotRepository is the data access for the lot ledger.
type StockLotRepository interface {
	CreateLot(ctx context.Context, executor SQLExecutor, lot *models.StockLot) (int64, error)
	GetLotByID(ctx context.Context, id int64) (*models.StockLot, error)
	GetLotForUpdate(ctx context.Context, executor SQLExecutor, id int64) (*models.StockLot, error)
	GetLots(ctx context.Context, filters models.StockLotFilters) ([]models.StockLot, int, error)
	DecrementLot(ctx context.Context, executor SQLExecutor, id int64, quantity int) (int, error)
	SetLotQuantity(ctx context.Context, executor SQLExecutor, id int64, quantity int) error
}

type stockLotRepository struct {
	db *sqlx.DB
}

func NewStockLotRepository(db *sqlx.DB) StockLotRepository {
	return &stockLotRepository{db: db}
}

const lotSelect = `SELECT l.id, l.product_id, pr.name AS product_name, l.supplier_id, l.received_by, l.lot_number,
	l.expiration_date, l.storage_location, l.initial_quantity, l.current_quantity, l.unit_cost, l.status,
	l.received_at, l.updated_at
	FROM stock_lots l JOIN products pr ON pr.id = l.product_id`

// CreateLot inserts a freshly received lot. Current quantity and status are derived from the initial quantity.
func (r *stockLotRepository) CreateLot(ctx context.Context, executor SQLExecutor, lot *models.StockLot) (int64, error) {
	now := time.Now().UTC()
	lot.CurrentQuantity = lot.InitialQuantity
	lot.Status = models.LotStatusFor(lot.CurrentQuantity)
	lot.ReceivedAt, lot.UpdatedAt = now, now

	query := executor.Rebind(`INSERT INTO stock_lots (product_id, supplier_id, received_by, lot_number, expiration_date,
		storage_location, initial_quantity, current_quantity, unit_cost, status, received_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		lot.ProductID, lot.SupplierID, lot.ReceivedBy, lot.LotNumber, lot.ExpirationDate,
		lot.StorageLocation, lot.InitialQuantity, lot.CurrentQuantity, lot.UnitCost, lot.Status, now, now,
	).Scan(&lot.ID)
	if err != nil {
		return 0, wrapError(err, "creating stock lot")
	}
	return lot.ID, nil
}

func (r *stockLotRepository) GetLotByID(ctx context.Context, id int64) (*models.StockLot, error) {
	return r.getLot(ctx, r.db, id, "")
}

// GetLotForUpdate re-reads a lot inside the caller's transaction and locks it
// on PostgreSQL so no concurrent checkout can sell from it until commit.
func (r *stockLotRepository) GetLotForUpdate(ctx context.Context, executor SQLExecutor, id int64) (*models.StockLot, error) {
	lock := database.ForUpdate(executor.DriverName())
	if lock != "" {
		lock += " OF l"
	}
	return r.getLot(ctx, executor, id, lock)
}

func (r *stockLotRepository) getLot(ctx context.Context, executor SQLExecutor, id int64, lock string) (*models.StockLot, error) {
	lot := &models.StockLot{}
	if err := executor.GetContext(ctx, lot, executor.Rebind(lotSelect+` WHERE l.id = ?`+lock), id); err != nil {
		return nil, wrapError(err, "getting stock lot")
	}
	return lot, nil
}

// GetLots lists lots, soonest expiry first.
func (r *stockLotRepository) GetLots(ctx context.Context, filters models.StockLotFilters) ([]models.StockLot, int, error) {
	var conditions []string
	var args []interface{}

	if filters.ProductID != nil {
		conditions = append(conditions, `l.product_id = ?`)
		args = append(args, *filters.ProductID)
	}
	if filters.AvailableOnly {
		conditions = append(conditions, `l.status = ?`)
		args = append(args, models.LotStatusAvailable)
	}
	if filters.ExpiringBefore != nil {
		conditions = append(conditions, `l.expiration_date IS NOT NULL AND l.expiration_date < ?`)
		args = append(args, filters.ExpiringBefore.UTC())
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM stock_lots l`+where), args...); err != nil {
		return nil, 0, wrapError(err, "counting stock lots")
	}

	lots := []models.StockLot{}
	query := r.db.Rebind(lotSelect + where + ` ORDER BY CASE WHEN l.expiration_date IS NULL THEN 1 ELSE 0 END, l.expiration_date, l.id LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &lots, query, append(args, filters.PageSize, filters.Offset())...); err != nil {
		return nil, 0, wrapError(err, "listing stock lots")
	}
	return lots, total, nil
}

// DecrementLot subtracts quantity only if that much is still on hand, marking the
// lot DEPLETED when it reaches zero. It returns the remaining quantity.
func (r *stockLotRepository) DecrementLot(ctx context.Context, executor SQLExecutor, id int64, quantity int) (int, error) {
	query := executor.Rebind(`UPDATE stock_lots
		SET current_quantity = current_quantity - ?,
			status = CASE WHEN current_quantity - ? = 0 THEN ? ELSE ? END,
			updated_at = ?
		WHERE id = ? AND current_quantity >= ?
		RETURNING current_quantity`)

	var remaining int
	err := executor.QueryRowxContext(ctx, query,
		quantity, quantity, models.LotStatusDepleted, models.LotStatusAvailable, time.Now().UTC(), id, quantity,
	).Scan(&remaining)
	if err != nil {
		if err = wrapError(err, "decrementing stock lot"); errors.Is(err, ErrNotFound) {
			return 0, ErrStockConflict
		}
		return 0, err
	}
	return remaining, nil
}

// SetLotQuantity overwrites the quantity on hand and recomputes the status.
func (r *stockLotRepository) SetLotQuantity(ctx context.Context, executor SQLExecutor, id int64, quantity int) error {
	query := executor.Rebind(`UPDATE stock_lots SET current_quantity = ?, status = ?, updated_at = ? WHERE id = ?`)
	result, err := executor.ExecContext(ctx, query, quantity, models.LotStatusFor(quantity), time.Now().UTC(), id)
	if err != nil {
		return wrapError(err, "setting stock lot quantity")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
