package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"

	"github.com/jmoiron/sqlx"
)

// CustomerService manages loyalty customers. Customers are never deleted
// because sales reference them.
type CustomerService interface {
	CreateCustomer(ctx context.Context, payload models.CreateCustomerPayload) (*models.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error)
	UpdateCustomer(ctx context.Context, id int64, payload models.UpdateCustomerPayload) (*models.Customer, error)
}

type customerService struct {
	repo repositories.CustomerRepository
	db   *sqlx.DB
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(repo repositories.CustomerRepository, db *sqlx.DB) CustomerService {
	return &customerService{repo: repo, db: db}
}

func (s *customerService) CreateCustomer(ctx context.Context, payload models.CreateCustomerPayload) (*models.Customer, error) {
	if strings.TrimSpace(payload.FirstName) == "" || strings.TrimSpace(payload.LastName) == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}

	var id int64
	err := runInTx(ctx, s.db, 1, ErrConcurrentUpdate, func(tx *sqlx.Tx) error {
		var txErr error
		id, txErr = s.repo.CreateCustomer(ctx, tx, payload)
		return txErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: a person with this document number is already registered", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return s.GetCustomerByID(ctx, id)
}

func (s *customerService) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(ctx context.Context, filters models.CustomerFilters) ([]models.Customer, int, error) {
	filters.Normalize()
	customers, total, err := s.repo.GetCustomers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// UpdateCustomer changes contact details. Loyalty points only move through checkout.
func (s *customerService) UpdateCustomer(ctx context.Context, id int64, payload models.UpdateCustomerPayload) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.FirstName != nil {
		customer.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if payload.LastName != nil {
		customer.LastName = strings.TrimSpace(*payload.LastName)
	}
	if payload.DocumentNumber != nil {
		customer.DocumentNumber = payload.DocumentNumber
	}
	if payload.Phone != nil {
		customer.Phone = payload.Phone
	}
	if payload.Email != nil {
		customer.Email = payload.Email
	}
	if payload.Address != nil {
		customer.Address = payload.Address
	}
	if customer.FirstName == "" || customer.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name must not be empty", ErrValidation)
	}

	err = runInTx(ctx, s.db, 1, ErrConcurrentUpdate, func(tx *sqlx.Tx) error {
		return s.repo.UpdateCustomer(ctx, tx, customer)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: a person with this document number is already registered", ErrDuplicate)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", id, err)
	}
	return s.GetCustomerByID(ctx, id)
}
