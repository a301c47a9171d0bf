package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// StockLotService owns the lot ledger outside of checkout: goods receipts and
// manual corrections, each recorded as a stock movement.
type StockLotService interface {
	ReceiveLot(ctx context.Context, employeeID int64, payload models.ReceiveLotPayload) (*models.StockLot, error)
	AdjustLot(ctx context.Context, employeeID int64, lotID int64, payload models.AdjustLotPayload) (*models.StockLot, error)
	GetLot(ctx context.Context, id int64) (*models.StockLot, error)
	ListLots(ctx context.Context, filters models.StockLotFilters) ([]models.StockLot, int, error)
	ListMovements(ctx context.Context, lotID int64) ([]models.StockMovement, error)
}

type stockLotService struct {
	db           *sqlx.DB
	lotRepo      repositories.StockLotRepository
	movementRepo repositories.StockMovementRepository
	productRepo  repositories.ProductRepository
	maxAttempts  int
}

func NewStockLotService(
	db *sqlx.DB,
	lr repositories.StockLotRepository,
	mr repositories.StockMovementRepository,
	pr repositories.ProductRepository,
	maxAttempts int,
) StockLotService {
	return &stockLotService{db: db, lotRepo: lr, movementRepo: mr, productRepo: pr, maxAttempts: maxAttempts}
}

// ReceiveLot registers a goods receipt as a new AVAILABLE lot.
func (s *stockLotService) ReceiveLot(ctx context.Context, employeeID int64, payload models.ReceiveLotPayload) (*models.StockLot, error) {
	if payload.InitialQuantity <= 0 {
		return nil, fmt.Errorf("%w: initialQuantity must be greater than zero", ErrValidation)
	}
	if payload.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unitCost must not be negative", ErrValidation)
	}

	if _, err := s.productRepo.GetProductByID(ctx, payload.ProductID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: product ID %d", ErrProductNotFound, payload.ProductID)
		}
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if payload.SupplierID != nil {
		ok, err := s.productRepo.SupplierExists(ctx, *payload.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("failed to check supplier: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: supplier ID %d", ErrSupplierNotFound, *payload.SupplierID)
		}
	}

	lot := &models.StockLot{
		ProductID:       payload.ProductID,
		SupplierID:      payload.SupplierID,
		ReceivedBy:      &employeeID,
		LotNumber:       trimmedOrNil(payload.LotNumber),
		ExpirationDate:  payload.ExpirationDate,
		StorageLocation: trimmedOrNil(payload.StorageLocation),
		InitialQuantity: payload.InitialQuantity,
		UnitCost:        payload.UnitCost.Round(2),
	}
	if lot.ExpirationDate != nil {
		utc := lot.ExpirationDate.UTC()
		lot.ExpirationDate = &utc
	}

	err := runInTx(ctx, s.db, s.maxAttempts, ErrConcurrentUpdate, func(tx *sqlx.Tx) error {
		if _, err := s.lotRepo.CreateLot(ctx, tx, lot); err != nil {
			return fmt.Errorf("failed to create stock lot: %w", err)
		}
		movement := models.StockMovement{
			LotID:          lot.ID,
			MovementType:   models.MovementReceipt,
			QuantityChange: lot.InitialQuantity,
			QuantityAfter:  lot.CurrentQuantity,
			EmployeeID:     &employeeID,
			Reason:         utils.NewNullString("Goods receipt"),
			CreatedAt:      lot.ReceivedAt,
		}
		if _, err := s.movementRepo.CreateMovement(ctx, tx, &movement); err != nil {
			return fmt.Errorf("failed to record receipt movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Stock lot received", map[string]interface{}{
		"lot_id": lot.ID, "product_id": lot.ProductID, "quantity": lot.InitialQuantity,
	})
	return s.GetLot(ctx, lot.ID)
}

// AdjustLot sets a lot's quantity on hand after a physical count. The new
// quantity must stay within [0, initialQuantity].
func (s *stockLotService) AdjustLot(ctx context.Context, employeeID int64, lotID int64, payload models.AdjustLotPayload) (*models.StockLot, error) {
	if payload.Quantity == nil || *payload.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be zero or greater", ErrValidation)
	}
	reason := strings.TrimSpace(payload.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required", ErrValidation)
	}
	target := *payload.Quantity

	err := runInTx(ctx, s.db, s.maxAttempts, ErrConcurrentUpdate, func(tx *sqlx.Tx) error {
		lot, err := s.lotRepo.GetLotForUpdate(ctx, tx, lotID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return &LotNotFoundError{LotID: lotID}
			}
			return fmt.Errorf("failed to load stock lot %d: %w", lotID, err)
		}
		if target > lot.InitialQuantity {
			return fmt.Errorf("%w: quantity %d exceeds the initial quantity %d", ErrValidation, target, lot.InitialQuantity)
		}
		if target == lot.CurrentQuantity {
			return nil
		}

		if err := s.lotRepo.SetLotQuantity(ctx, tx, lotID, target); err != nil {
			return fmt.Errorf("failed to adjust stock lot %d: %w", lotID, err)
		}
		movement := models.StockMovement{
			LotID:          lotID,
			MovementType:   models.MovementAdjustment,
			QuantityChange: target - lot.CurrentQuantity,
			QuantityAfter:  target,
			EmployeeID:     &employeeID,
			Reason:         &reason,
		}
		if _, err := s.movementRepo.CreateMovement(ctx, tx, &movement); err != nil {
			return fmt.Errorf("failed to record adjustment movement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Stock lot adjusted", map[string]interface{}{
		"lot_id": lotID, "quantity": target, "employee_id": employeeID,
	})
	return s.GetLot(ctx, lotID)
}

func (s *stockLotService) GetLot(ctx context.Context, id int64) (*models.StockLot, error) {
	lot, err := s.lotRepo.GetLotByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &LotNotFoundError{LotID: id}
		}
		return nil, fmt.Errorf("failed to get stock lot %d: %w", id, err)
	}
	return lot, nil
}

func (s *stockLotService) ListLots(ctx context.Context, filters models.StockLotFilters) ([]models.StockLot, int, error) {
	filters.Normalize()
	lots, total, err := s.lotRepo.GetLots(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stock lots: %w", err)
	}
	return lots, total, nil
}

func (s *stockLotService) ListMovements(ctx context.Context, lotID int64) ([]models.StockMovement, error) {
	if _, err := s.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.GetMovementsByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of lot %d: %w", lotID, err)
	}
	return movements, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NewNullString(*s)
}
