package repositories

import (
	"context"
	"strings"

	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// SaleRepository persists completed sales and their line items.
type SaleRepository interface {
	CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItem(ctx context.Context, executor SQLExecutor, item *models.SaleItem) (int64, error)
	GetSaleByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Sale, error)
	GetSaleItems(ctx context.Context, executor SQLExecutor, saleID int64) ([]models.SaleItem, error)
	GetSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error)
	GetLatestSaleID(ctx context.Context) (int64, error)
	GetSalesBefore(ctx context.Context, filters models.SaleFilters, beforeID int64, limit int) ([]models.Sale, error)
	GetHighestReceiptNumber(ctx context.Context, executor SQLExecutor, prefix string) (string, error)
}

type saleRepository struct {
	db *sqlx.DB
}

func NewSaleRepository(db *sqlx.DB) SaleRepository {
	return &saleRepository{db: db}
}

const saleSelect = `SELECT s.id, s.receipt_number, s.receipt_type_id, s.payment_type_id, pt.code AS payment_type_code,
	s.customer_id, s.employee_id, e.username AS employee_username, s.subtotal, s.tax, s.discount, s.total,
	s.loyalty_points_earned, s.created_at
	FROM sales s
	JOIN payment_types pt ON pt.id = s.payment_type_id
	JOIN employees e ON e.id = s.employee_id`

func (r *saleRepository) CreateSale(ctx context.Context, executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := executor.Rebind(`INSERT INTO sales (receipt_number, receipt_type_id, payment_type_id, customer_id, employee_id,
		subtotal, tax, discount, total, loyalty_points_earned, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		sale.ReceiptNumber, sale.ReceiptTypeID, sale.PaymentTypeID, sale.CustomerID, sale.EmployeeID,
		sale.Subtotal, sale.Tax, sale.Discount, sale.Total, sale.LoyaltyPointsEarned, sale.CreatedAt,
	).Scan(&sale.ID)
	if err != nil {
		return 0, wrapError(err, "creating sale")
	}
	return sale.ID, nil
}

func (r *saleRepository) CreateSaleItem(ctx context.Context, executor SQLExecutor, item *models.SaleItem) (int64, error) {
	query := executor.Rebind(`INSERT INTO sale_items (sale_id, lot_id, product_id, quantity, unit_price, line_total)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		item.SaleID, item.LotID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal,
	).Scan(&item.ID)
	if err != nil {
		return 0, wrapError(err, "creating sale item")
	}
	return item.ID, nil
}

func (r *saleRepository) GetSaleByID(ctx context.Context, executor SQLExecutor, id int64) (*models.Sale, error) {
	sale := &models.Sale{}
	if err := executor.GetContext(ctx, sale, executor.Rebind(saleSelect+` WHERE s.id = ?`), id); err != nil {
		return nil, wrapError(err, "getting sale by ID")
	}
	return sale, nil
}

func (r *saleRepository) GetSaleItems(ctx context.Context, executor SQLExecutor, saleID int64) ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	query := executor.Rebind(`SELECT si.id, si.sale_id, si.lot_id, si.product_id, pr.name AS product_name,
		si.quantity, si.unit_price, si.line_total
		FROM sale_items si JOIN products pr ON pr.id = si.product_id
		WHERE si.sale_id = ? ORDER BY si.id`)
	if err := executor.SelectContext(ctx, &items, query, saleID); err != nil {
		return nil, wrapError(err, "listing sale items")
	}
	return items, nil
}

// saleConditions builds the WHERE clause shared by the sale listings.
// DateTo is inclusive of the whole day.
func saleConditions(filters models.SaleFilters) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filters.DateFrom != nil {
		conditions = append(conditions, `s.created_at >= ?`)
		args = append(args, filters.DateFrom.UTC())
	}
	if filters.DateTo != nil {
		conditions = append(conditions, `s.created_at < ?`)
		args = append(args, filters.DateTo.UTC().AddDate(0, 0, 1))
	}
	if filters.CustomerID != nil {
		conditions = append(conditions, `s.customer_id = ?`)
		args = append(args, *filters.CustomerID)
	}
	if filters.EmployeeID != nil {
		conditions = append(conditions, `s.employee_id = ?`)
		args = append(args, *filters.EmployeeID)
	}
	if filters.PaymentTypeID != nil {
		conditions = append(conditions, `s.payment_type_id = ?`)
		args = append(args, *filters.PaymentTypeID)
	}
	return conditions, args
}

// GetSales lists sales newest first.
func (r *saleRepository) GetSales(ctx context.Context, filters models.SaleFilters) ([]models.Sale, int, error) {
	conditions, args := saleConditions(filters)
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM sales s`+where), args...); err != nil {
		return nil, 0, wrapError(err, "counting sales")
	}

	sales := []models.Sale{}
	query := r.db.Rebind(saleSelect + where + ` ORDER BY s.created_at DESC, s.id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &sales, query, append(args, filters.PageSize, filters.Offset())...); err != nil {
		return nil, 0, wrapError(err, "listing sales")
	}
	return sales, total, nil
}

// GetLatestSaleID returns the highest sale id, or 0 when no sale exists.
func (r *saleRepository) GetLatestSaleID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT COALESCE(MAX(id), 0) FROM sales`); err != nil {
		return 0, wrapError(err, "reading latest sale id")
	}
	return id, nil
}

// GetSalesBefore returns up to limit sales with id < beforeID, highest id first.
// Paging by id keeps later pages stable while new sales are committed.
func (r *saleRepository) GetSalesBefore(ctx context.Context, filters models.SaleFilters, beforeID int64, limit int) ([]models.Sale, error) {
	conditions, args := saleConditions(filters)
	conditions = append(conditions, `s.id < ?`)
	args = append(args, beforeID, limit)

	sales := []models.Sale{}
	query := r.db.Rebind(saleSelect + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY s.id DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, wrapError(err, "listing sales page")
	}
	return sales, nil
}

// GetHighestReceiptNumber returns the greatest receipt number issued under prefix,
// or "" when there is none. Numbers are fixed width, so text order is numeric order.
func (r *saleRepository) GetHighestReceiptNumber(ctx context.Context, executor SQLExecutor, prefix string) (string, error) {
	var numbers []string
	query := executor.Rebind(`SELECT receipt_number FROM sales WHERE receipt_number LIKE ?
		ORDER BY LENGTH(receipt_number) DESC, receipt_number DESC LIMIT 1`)
	if err := executor.SelectContext(ctx, &numbers, query, prefix+"-%"); err != nil {
		return "", wrapError(err, "reading highest receipt number")
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}
