package repositories

import (
	"context"
	"strings"
	"time"

	"pharmacy_pos_backend/internal/database"
	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// CustomerRepository defines the interface for customer-related database operations.
type CustomerRepository interface {
	CreateCustomer(ctx context.Context, executor SQLExecutor, payload models.CreateCustomerPayload) (int64, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomerForUpdate(ctx context.Context, executor SQLExecutor, id int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error)
	UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) error
	AddLoyaltyPoints(ctx context.Context, executor SQLExecutor, id int64, points int64) error
}

type customerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `c.id, c.person_id, p.first_name, p.last_name, p.document_number, p.phone, p.email, p.address,
	c.loyalty_points, c.created_at, c.updated_at`

// CreateCustomer inserts the person row and the customer row that owns it.
func (r *customerRepository) CreateCustomer(ctx context.Context, executor SQLExecutor, payload models.CreateCustomerPayload) (int64, error) {
	now := time.Now().UTC()

	var personID int64
	query := executor.Rebind(`INSERT INTO persons (first_name, last_name, document_number, phone, email, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		strings.TrimSpace(payload.FirstName), strings.TrimSpace(payload.LastName),
		optionalText(payload.DocumentNumber), optionalText(payload.Phone), optionalText(payload.Email), optionalText(payload.Address), now, now,
	).Scan(&personID)
	if err != nil {
		return 0, wrapError(err, "creating customer person")
	}

	var customerID int64
	query = executor.Rebind(`INSERT INTO customers (person_id, loyalty_points, created_at, updated_at)
		VALUES (?, 0, ?, ?) RETURNING id`)
	if err := executor.QueryRowxContext(ctx, query, personID, now, now).Scan(&customerID); err != nil {
		return 0, wrapError(err, "creating customer")
	}
	return customerID, nil
}

// GetCustomerByID retrieves a customer by ID.
func (r *customerRepository) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	return r.getCustomer(ctx, r.db, id, "")
}

// GetCustomerForUpdate reads a customer and, on PostgreSQL, locks the row
// until the surrounding transaction ends.
func (r *customerRepository) GetCustomerForUpdate(ctx context.Context, executor SQLExecutor, id int64) (*models.Customer, error) {
	return r.getCustomer(ctx, executor, id, database.ForUpdate(executor.DriverName()))
}

func (r *customerRepository) getCustomer(ctx context.Context, executor SQLExecutor, id int64, lock string) (*models.Customer, error) {
	lockClause := ""
	if lock != "" {
		lockClause = lock + " OF c"
	}
	customer := &models.Customer{}
	query := executor.Rebind(`SELECT ` + customerColumns + `
		FROM customers c JOIN persons p ON p.id = c.person_id
		WHERE c.id = ?` + lockClause)
	if err := executor.GetContext(ctx, customer, query, id); err != nil {
		return nil, wrapError(err, "getting customer by ID")
	}
	return customer, nil
}

// GetCustomers retrieves a page of customers with optional search over name, document and phone.
func (r *customerRepository) GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + customerColumns + `, COUNT(*) OVER() AS total_count
		FROM customers c JOIN persons p ON p.id = c.person_id`)

	var args []interface{}
	if strings.TrimSpace(filters.Search) != "" {
		pattern := likePattern(filters.Search)
		queryBuilder.WriteString(` WHERE (LOWER(p.first_name) LIKE ? OR LOWER(p.last_name) LIKE ?
			OR LOWER(COALESCE(p.document_number, '')) LIKE ? OR LOWER(COALESCE(p.phone, '')) LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	queryBuilder.WriteString(` ORDER BY p.last_name, p.first_name, c.id LIMIT ? OFFSET ?`)
	args = append(args, filters.PageSize, filters.Offset())

	var rows []struct {
		models.Customer
		TotalCount int `db:"total_count"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(queryBuilder.String()), args...); err != nil {
		return nil, 0, wrapError(err, "listing customers")
	}

	customers := make([]models.Customer, 0, len(rows))
	total := 0
	for _, row := range rows {
		customers = append(customers, row.Customer)
		total = row.TotalCount
	}
	return customers, total, nil
}

// UpdateCustomer writes the person fields of an existing customer.
func (r *customerRepository) UpdateCustomer(ctx context.Context, executor SQLExecutor, customer *models.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	query := executor.Rebind(`UPDATE persons SET first_name = ?, last_name = ?, document_number = ?, phone = ?, email = ?, address = ?, updated_at = ?
		WHERE id = ?`)
	result, err := executor.ExecContext(ctx, query,
		customer.FirstName, customer.LastName, optionalText(customer.DocumentNumber), optionalText(customer.Phone),
		optionalText(customer.Email), optionalText(customer.Address), customer.UpdatedAt, customer.PersonID)
	if err != nil {
		return wrapError(err, "updating customer")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	query = executor.Rebind(`UPDATE customers SET updated_at = ? WHERE id = ?`)
	if _, err := executor.ExecContext(ctx, query, customer.UpdatedAt, customer.ID); err != nil {
		return wrapError(err, "updating customer")
	}
	return nil
}

// AddLoyaltyPoints increments a customer's balance. Points are never subtracted here.
func (r *customerRepository) AddLoyaltyPoints(ctx context.Context, executor SQLExecutor, id int64, points int64) error {
	query := executor.Rebind(`UPDATE customers SET loyalty_points = loyalty_points + ?, updated_at = ? WHERE id = ?`)
	result, err := executor.ExecContext(ctx, query, points, time.Now().UTC(), id)
	if err != nil {
		return wrapError(err, "adding loyalty points")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapError(err, "adding loyalty points")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// optionalText stores blank contact fields as NULL so UNIQUE columns admit many of them.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.NewNullString(*s)
}
