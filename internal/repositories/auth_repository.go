package repositories

import (
	"context"
	"time"

	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// AuthRepository defines the interface for employee account operations.
type AuthRepository interface {
	CreateEmployee(ctx context.Context, executor SQLExecutor, payload models.RegistrationPayload, passwordHash string) (int64, error)
	GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error)
	GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error)
}

type authRepository struct {
	db *sqlx.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sqlx.DB) AuthRepository {
	return &authRepository{db: db}
}

const employeeSelect = `SELECT e.id, e.person_id, p.first_name, p.last_name, p.email, e.username, e.password_hash,
	e.role, e.is_active, e.created_at, e.updated_at
	FROM employees e JOIN persons p ON p.id = e.person_id`

// CreateEmployee inserts the person and employee rows for a new account.
func (r *authRepository) CreateEmployee(ctx context.Context, executor SQLExecutor, payload models.RegistrationPayload, passwordHash string) (int64, error) {
	now := time.Now().UTC()

	var personID int64
	query := executor.Rebind(`INSERT INTO persons (first_name, last_name, document_number, phone, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := executor.QueryRowxContext(ctx, query,
		payload.FirstName, payload.LastName, payload.DocumentNumber, payload.Phone, payload.Email, now, now,
	).Scan(&personID)
	if err != nil {
		return 0, wrapError(err, "creating employee person")
	}

	var employeeID int64
	query = executor.Rebind(`INSERT INTO employees (person_id, username, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, TRUE, ?, ?) RETURNING id`)
	err = executor.QueryRowxContext(ctx, query, personID, payload.Username, passwordHash, payload.Role, now, now).Scan(&employeeID)
	if err != nil {
		return 0, wrapError(err, "creating employee")
	}
	return employeeID, nil
}

// GetEmployeeByUsername retrieves an employee by username, including the password hash.
func (r *authRepository) GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error) {
	employee := &models.Employee{}
	if err := r.db.GetContext(ctx, employee, r.db.Rebind(employeeSelect+` WHERE e.username = ?`), username); err != nil {
		return nil, wrapError(err, "getting employee by username")
	}
	return employee, nil
}

func (r *authRepository) GetEmployeeByID(ctx context.Context, id int64) (*models.Employee, error) {
	employee := &models.Employee{}
	if err := r.db.GetContext(ctx, employee, r.db.Rebind(employeeSelect+` WHERE e.id = ?`), id); err != nil {
		return nil, wrapError(err, "getting employee by ID")
	}
	return employee, nil
}
