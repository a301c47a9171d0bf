package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"pharmacy_pos_backend/internal/config"
	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SaleService runs the checkout and reads completed sales.
type SaleService interface {
	Checkout(ctx context.Context, employeeID int64, req models.CheckoutRequest) (*models.Sale, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	ListSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error)
	ExportSales(ctx context.Context, filters models.SaleFilters, w io.Writer) error
}

type saleService struct {
	db           *sqlx.DB
	saleRepo     repositories.SaleRepository
	lotRepo      repositories.StockLotRepository
	movementRepo repositories.StockMovementRepository
	customerRepo repositories.CustomerRepository
	lookupRepo   repositories.LookupRepository
	settingRepo  repositories.SettingRepository
	sequenceRepo repositories.ReceiptSequenceRepository
	cfg          config.CheckoutConfig
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	db *sqlx.DB,
	sr repositories.SaleRepository,
	lr repositories.StockLotRepository,
	mr repositories.StockMovementRepository,
	cr repositories.CustomerRepository,
	lkr repositories.LookupRepository,
	str repositories.SettingRepository,
	seq repositories.ReceiptSequenceRepository,
	cfg config.CheckoutConfig,
) SaleService {
	return &saleService{
		db:           db,
		saleRepo:     sr,
		lotRepo:      lr,
		movementRepo: mr,
		customerRepo: cr,
		lookupRepo:   lkr,
		settingRepo:  str,
		sequenceRepo: seq,
		cfg:          cfg,
	}
}

// Totals are the money figures of one sale.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals prices a cart: tax is taxRate of the subtotal rounded to cents,
// and total = subtotal + tax - discount.
func ComputeTotals(items []models.CheckoutItem, discount, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(lineTotal(item))
	}
	tax := subtotal.Mul(taxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// LoyaltyPointsFor awards one point per full spendUnit of total.
func LoyaltyPointsFor(total, spendUnit decimal.Decimal) int64 {
	if !total.IsPositive() || !spendUnit.IsPositive() {
		return 0
	}
	return total.Div(spendUnit).Floor().IntPart()
}

func lineTotal(item models.CheckoutItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// validateCart rejects malformed carts before any transaction is opened.
func (s *saleService) validateCart(req models.CheckoutRequest) (Totals, error) {
	if len(req.Items) == 0 {
		return Totals{}, ErrEmptyCart
	}
	for i, item := range req.Items {
		if item.LotID <= 0 {
			return Totals{}, fmt.Errorf("%w: item %d: lotId must be positive", ErrValidation, i+1)
		}
		if item.Quantity <= 0 {
			return Totals{}, fmt.Errorf("%w: item %d: quantity must be greater than zero", ErrValidation, i+1)
		}
		if item.UnitPrice.IsNegative() {
			return Totals{}, fmt.Errorf("%w: item %d: unitPrice must not be negative", ErrValidation, i+1)
		}
		if !item.UnitPrice.Equal(item.UnitPrice.Round(2)) {
			return Totals{}, fmt.Errorf("%w: item %d: unitPrice has more than two decimal places", ErrValidation, i+1)
		}
	}

	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}
	if discount.IsNegative() {
		return Totals{}, fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if !discount.Equal(discount.Round(2)) {
		return Totals{}, fmt.Errorf("%w: discount has more than two decimal places", ErrValidation)
	}

	totals := ComputeTotals(req.Items, discount, s.cfg.TaxRate)
	if totals.Total.IsNegative() {
		return Totals{}, fmt.Errorf("%w: discount %s exceeds subtotal plus tax %s", ErrValidation,
			discount.StringFixed(2), totals.Subtotal.Add(totals.Tax).StringFixed(2))
	}
	return totals, nil
}

// Checkout turns a cart into one persisted sale. Stock is re-read and locked
// inside the transaction; any failure leaves no trace. Resubmitting the same
// cart creates a second sale.
func (s *saleService) Checkout(ctx context.Context, employeeID int64, req models.CheckoutRequest) (*models.Sale, error) {
	totals, err := s.validateCart(req)
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = runInTx(ctx, s.db, s.cfg.MaxTxAttempts, ErrCheckoutConflict, func(tx *sqlx.Tx) error {
		var txErr error
		sale, txErr = s.checkoutInTx(ctx, tx, employeeID, req, totals)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Sale completed", map[string]interface{}{
		"sale_id":        sale.ID,
		"receipt_number": sale.ReceiptNumber,
		"total":          sale.Total.StringFixed(2),
		"employee_id":    employeeID,
		"items":          len(sale.Items),
	})
	return sale, nil
}

func (s *saleService) checkoutInTx(ctx context.Context, tx *sqlx.Tx, employeeID int64, req models.CheckoutRequest, totals Totals) (*models.Sale, error) {
	paymentType, err := s.resolvePaymentType(ctx, tx, req.PaymentTypeID)
	if err != nil {
		return nil, err
	}
	receiptType, err := s.resolveReceiptType(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Lock order is customer, lots by ascending id, then the receipt sequence,
	// the same for every checkout.
	if req.CustomerID != nil {
		if _, err := s.customerRepo.GetCustomerForUpdate(ctx, tx, *req.CustomerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: customer ID %d", ErrCustomerNotFound, *req.CustomerID)
			}
			return nil, fmt.Errorf("failed to load customer %d: %w", *req.CustomerID, err)
		}
	}

	lots, err := s.lockLots(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	// A cart may list the same lot more than once; check against what is left.
	remaining := make(map[int64]int, len(lots))
	for id, lot := range lots {
		remaining[id] = lot.CurrentQuantity
	}
	for _, item := range req.Items {
		lot := lots[item.LotID]
		if item.Quantity > remaining[item.LotID] {
			return nil, &InsufficientStockError{
				LotID:       item.LotID,
				ProductName: lot.ProductName,
				Available:   remaining[item.LotID],
				Requested:   item.Quantity,
			}
		}
		remaining[item.LotID] -= item.Quantity
	}

	receiptNumber, err := s.nextReceiptNumber(ctx, tx, receiptType.Series)
	if err != nil {
		return nil, err
	}

	var points int64
	if req.CustomerID != nil {
		points = LoyaltyPointsFor(totals.Total, s.cfg.SpendPerLoyaltyPoint)
	}

	sale := &models.Sale{
		ReceiptNumber:       receiptNumber,
		ReceiptTypeID:       receiptType.ID,
		PaymentTypeID:       paymentType.ID,
		PaymentTypeCode:     paymentType.Code,
		CustomerID:          req.CustomerID,
		EmployeeID:          employeeID,
		Subtotal:            totals.Subtotal,
		Tax:                 totals.Tax,
		Discount:            totals.Discount,
		Total:               totals.Total,
		LoyaltyPointsEarned: points,
		CreatedAt:           time.Now().UTC(),
	}
	if _, err := s.saleRepo.CreateSale(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("failed to create sale record: %w", err)
	}

	sale.Items = make([]models.SaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		lot := lots[item.LotID]
		saleItem := models.SaleItem{
			SaleID:      sale.ID,
			LotID:       item.LotID,
			ProductID:   lot.ProductID,
			ProductName: lot.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal(item),
		}
		if _, err := s.saleRepo.CreateSaleItem(ctx, tx, &saleItem); err != nil {
			return nil, fmt.Errorf("failed to create sale item for lot %d: %w", item.LotID, err)
		}
		sale.Items = append(sale.Items, saleItem)

		left, err := s.lotRepo.DecrementLot(ctx, tx, item.LotID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to update stock for lot %d: %w", item.LotID, err)
		}

		saleID := sale.ID
		movement := models.StockMovement{
			LotID:          item.LotID,
			MovementType:   models.MovementSale,
			QuantityChange: -item.Quantity,
			QuantityAfter:  left,
			SaleID:         &saleID,
			EmployeeID:     &employeeID,
			CreatedAt:      sale.CreatedAt,
		}
		if _, err := s.movementRepo.CreateMovement(ctx, tx, &movement); err != nil {
			return nil, fmt.Errorf("failed to record stock movement for lot %d: %w", item.LotID, err)
		}
	}

	if req.CustomerID != nil && points > 0 {
		if err := s.customerRepo.AddLoyaltyPoints(ctx, tx, *req.CustomerID, points); err != nil {
			return nil, fmt.Errorf("failed to award loyalty points: %w", err)
		}
	}

	return sale, nil
}

func (s *saleService) resolvePaymentType(ctx context.Context, tx *sqlx.Tx, id *int64) (*models.PaymentType, error) {
	if id != nil {
		pt, err := s.lookupRepo.GetPaymentTypeByID(ctx, tx, *id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: payment type ID %d", ErrPaymentTypeNotFound, *id)
			}
			return nil, fmt.Errorf("failed to load payment type %d: %w", *id, err)
		}
		if !pt.IsActive {
			return nil, fmt.Errorf("%w: payment type %s is disabled", ErrValidation, pt.Code)
		}
		return pt, nil
	}

	code, err := s.settingValue(ctx, tx, database.SettingDefaultPaymentType)
	if err != nil {
		return nil, err
	}
	pt, err := s.lookupRepo.GetPaymentTypeByCode(ctx, tx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: default payment type %q does not exist", ErrConfiguration, code)
		}
		return nil, fmt.Errorf("failed to load default payment type: %w", err)
	}
	if !pt.IsActive {
		return nil, fmt.Errorf("%w: default payment type %s is disabled", ErrConfiguration, pt.Code)
	}
	return pt, nil
}

func (s *saleService) resolveReceiptType(ctx context.Context, tx *sqlx.Tx) (*models.ReceiptType, error) {
	code, err := s.settingValue(ctx, tx, database.SettingDefaultReceiptType)
	if err != nil {
		return nil, err
	}
	rt, err := s.lookupRepo.GetReceiptTypeByCode(ctx, tx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: default receipt type %q does not exist", ErrConfiguration, code)
		}
		return nil, fmt.Errorf("failed to load default receipt type: %w", err)
	}
	return rt, nil
}

func (s *saleService) settingValue(ctx context.Context, tx *sqlx.Tx, key string) (string, error) {
	setting, err := s.settingRepo.GetSettingByKey(ctx, tx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("%w: setting %s is missing", ErrConfiguration, key)
		}
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	if setting.SettingValue == nil || utils.IsEmpty(*setting.SettingValue) {
		return "", fmt.Errorf("%w: setting %s is empty", ErrConfiguration, key)
	}
	return utils.NormalizeCode(*setting.SettingValue), nil
}

// lockLots re-reads every distinct lot of the cart under lock, in ascending id order.
func (s *saleService) lockLots(ctx context.Context, tx *sqlx.Tx, items []models.CheckoutItem) (map[int64]*models.StockLot, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.LotID] {
			seen[item.LotID] = true
			ids = append(ids, item.LotID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lots := make(map[int64]*models.StockLot, len(ids))
	for _, id := range ids {
		lot, err := s.lotRepo.GetLotForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, &LotNotFoundError{LotID: id}
			}
			return nil, fmt.Errorf("failed to load stock lot %d: %w", id, err)
		}
		lots[id] = lot
	}
	return lots, nil
}

// nextReceiptNumber advances the per-series counter under the transaction's
// row lock. A series without a counter row starts after the highest receipt
// number already issued under it.
func (s *saleService) nextReceiptNumber(ctx context.Context, tx *sqlx.Tx, prefix string) (string, error) {
	last, err := s.sequenceRepo.LockSequence(ctx, tx, prefix)
	if errors.Is(err, repositories.ErrNotFound) {
		if err = s.createSequence(ctx, tx, prefix); err != nil {
			return "", err
		}
		last, err = s.sequenceRepo.LockSequence(ctx, tx, prefix)
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock receipt sequence %s: %w", prefix, err)
	}

	next := last + 1
	number, err := FormatReceiptNumber(prefix, next, s.cfg.ReceiptNumberWidth)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := s.sequenceRepo.AdvanceSequence(ctx, tx, prefix, next); err != nil {
		return "", fmt.Errorf("failed to advance receipt sequence %s: %w", prefix, err)
	}
	return number, nil
}

func (s *saleService) createSequence(ctx context.Context, tx *sqlx.Tx, prefix string) error {
	highest, err := s.saleRepo.GetHighestReceiptNumber(ctx, tx, prefix)
	if err != nil {
		return fmt.Errorf("failed to read receipt history: %w", err)
	}
	var start int64
	if highest != "" {
		if start, err = ParseReceiptNumber(prefix, highest); err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	if err := s.sequenceRepo.EnsureSequence(ctx, tx, prefix, start); err != nil {
		return fmt.Errorf("failed to create receipt sequence: %w", err)
	}
	return nil
}

func (s *saleService) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale %d: %w", id, err)
	}
	items, err := s.saleRepo.GetSaleItems(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of sale %d: %w", id, err)
	}
	sale.Items = items
	return sale, nil
}

func (s *saleService) ListSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error) {
	filters.Normalize()
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return nil, 0, fmt.Errorf("%w: dateTo is before dateFrom", ErrValidation)
	}
	sales, total, err := s.saleRepo.GetSales(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, total, nil
}
