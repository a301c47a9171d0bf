package repositories

import (
	"context"
	"strings"
	"time"

	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(ctx context.Context, executor SQLExecutor, product *models.Product) error
	CategoryExists(ctx context.Context, id int64) (bool, error)
	SupplierExists(ctx context.Context, id int64) (bool, error)
}

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

// Stock on hand is summed over the product's lots; depleted lots add zero.
const productSelect = `SELECT pr.id, pr.name, pr.description, pr.category_id, cat.name AS category_name, pr.barcode,
	pr.presentation, pr.requires_prescription, pr.sale_price, pr.is_active, pr.created_at, pr.updated_at,
	COALESCE((SELECT SUM(l.current_quantity) FROM stock_lots l WHERE l.product_id = pr.id), 0) AS stock_on_hand
	FROM products pr LEFT JOIN categories cat ON cat.id = pr.category_id`

func (r *productRepository) CreateProduct(ctx context.Context, executor SQLExecutor, product *models.Product) (int64, error) {
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now

	query := executor.Rebind(`INSERT INTO products (name, description, category_id, barcode, presentation, requires_prescription,
		sale_price, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		product.Name, product.Description, product.CategoryID, product.Barcode, product.Presentation,
		product.RequiresPrescription, product.SalePrice, product.IsActive, now, now,
	).Scan(&product.ID)
	if err != nil {
		return 0, wrapError(err, "creating product")
	}
	return product.ID, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	if err := r.db.GetContext(ctx, product, r.db.Rebind(productSelect+` WHERE pr.id = ?`), id); err != nil {
		return nil, wrapError(err, "getting product by ID")
	}
	return product, nil
}

// GetProducts retrieves a page of products, optionally filtered by search term, category and active flag.
func (r *productRepository) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	var conditions []string
	var args []interface{}

	if strings.TrimSpace(filters.Search) != "" {
		pattern := likePattern(filters.Search)
		conditions = append(conditions, `(LOWER(pr.name) LIKE ? OR LOWER(COALESCE(pr.barcode, '')) LIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if filters.CategoryID != nil {
		conditions = append(conditions, `pr.category_id = ?`)
		args = append(args, *filters.CategoryID)
	}
	if filters.ActiveOnly {
		conditions = append(conditions, `pr.is_active = TRUE`)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM products pr`+where), args...); err != nil {
		return nil, 0, wrapError(err, "counting products")
	}

	products := []models.Product{}
	query := r.db.Rebind(productSelect + where + ` ORDER BY pr.name, pr.id LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &products, query, append(args, filters.PageSize, filters.Offset())...); err != nil {
		return nil, 0, wrapError(err, "listing products")
	}
	return products, total, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, executor SQLExecutor, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	query := executor.Rebind(`UPDATE products SET name = ?, description = ?, category_id = ?, barcode = ?, presentation = ?,
		requires_prescription = ?, sale_price = ?, is_active = ?, updated_at = ? WHERE id = ?`)
	result, err := executor.ExecContext(ctx, query,
		product.Name, product.Description, product.CategoryID, product.Barcode, product.Presentation,
		product.RequiresPrescription, product.SalePrice, product.IsActive, product.UpdatedAt, product.ID)
	if err != nil {
		return wrapError(err, "updating product")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) CategoryExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM categories WHERE id = ?`, id)
}

func (r *productRepository) SupplierExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM suppliers WHERE id = ?`, id)
}

func (r *productRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), id); err != nil {
		return false, wrapError(err, "checking reference")
	}
	return n > 0, nil
}
