package repositories

import (
	"context"
	"time"

	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// StockMovementRepository records and reads the lot ledger history.
type StockMovementRepository interface {
	CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error)
	GetMovementsByLot(ctx context.Context, lotID int64) ([]models.StockMovement, error)
}

type stockMovementRepository struct {
	db *sqlx.DB
}

func NewStockMovementRepository(db *sqlx.DB) StockMovementRepository {
	return &stockMovementRepository{db: db}
}

func (r *stockMovementRepository) CreateMovement(ctx context.Context, executor SQLExecutor, movement *models.StockMovement) (int64, error) {
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}
	query := executor.Rebind(`INSERT INTO stock_movements (lot_id, movement_type, quantity_change, quantity_after, sale_id, employee_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		movement.LotID, movement.MovementType, movement.QuantityChange, movement.QuantityAfter,
		movement.SaleID, movement.EmployeeID, movement.Reason, movement.CreatedAt,
	).Scan(&movement.ID)
	if err != nil {
		return 0, wrapError(err, "creating stock movement")
	}
	return movement.ID, nil
}

// GetMovementsByLot returns a lot's history, oldest first.
func (r *stockMovementRepository) GetMovementsByLot(ctx context.Context, lotID int64) ([]models.StockMovement, error) {
	movements := []models.StockMovement{}
	query := r.db.Rebind(`SELECT id, lot_id, movement_type, quantity_change, quantity_after, sale_id, employee_id, reason, created_at
		FROM stock_movements WHERE lot_id = ? ORDER BY created_at, id`)
	if err := r.db.SelectContext(ctx, &movements, query, lotID); err != nil {
		return nil, wrapError(err, "listing stock movements")
	}
	return movements, nil
}
