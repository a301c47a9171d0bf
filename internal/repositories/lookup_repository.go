package repositories

import (
	"context"

	"pharmacy_pos_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// LookupRepository reads payment and receipt types.
type LookupRepository interface {
	GetPaymentTypeByID(ctx context.Context, executor SQLExecutor, id int64) (*models.PaymentType, error)
	GetPaymentTypeByCode(ctx context.Context, executor SQLExecutor, code string) (*models.PaymentType, error)
	GetPaymentTypes(ctx context.Context) ([]models.PaymentType, error)
	GetReceiptTypeByCode(ctx context.Context, executor SQLExecutor, code string) (*models.ReceiptType, error)
	GetReceiptTypes(ctx context.Context) ([]models.ReceiptType, error)
}

type lookupRepository struct {
	db *sqlx.DB
}

func NewLookupRepository(db *sqlx.DB) LookupRepository {
	return &lookupRepository{db: db}
}

func (r *lookupRepository) GetPaymentTypeByID(ctx context.Context, executor SQLExecutor, id int64) (*models.PaymentType, error) {
	pt := &models.PaymentType{}
	query := executor.Rebind(`SELECT id, code, name, is_active FROM payment_types WHERE id = ?`)
	if err := executor.GetContext(ctx, pt, query, id); err != nil {
		return nil, wrapError(err, "getting payment type by ID")
	}
	return pt, nil
}

func (r *lookupRepository) GetPaymentTypeByCode(ctx context.Context, executor SQLExecutor, code string) (*models.PaymentType, error) {
	pt := &models.PaymentType{}
	query := executor.Rebind(`SELECT id, code, name, is_active FROM payment_types WHERE code = ?`)
	if err := executor.GetContext(ctx, pt, query, code); err != nil {
		return nil, wrapError(err, "getting payment type by code")
	}
	return pt, nil
}

func (r *lookupRepository) GetPaymentTypes(ctx context.Context) ([]models.PaymentType, error) {
	types := []models.PaymentType{}
	if err := r.db.SelectContext(ctx, &types, `SELECT id, code, name, is_active FROM payment_types ORDER BY id`); err != nil {
		return nil, wrapError(err, "listing payment types")
	}
	return types, nil
}

func (r *lookupRepository) GetReceiptTypeByCode(ctx context.Context, executor SQLExecutor, code string) (*models.ReceiptType, error) {
	rt := &models.ReceiptType{}
	query := executor.Rebind(`SELECT id, code, name, series FROM receipt_types WHERE code = ?`)
	if err := executor.GetContext(ctx, rt, query, code); err != nil {
		return nil, wrapError(err, "getting receipt type by code")
	}
	return rt, nil
}

func (r *lookupRepository) GetReceiptTypes(ctx context.Context) ([]models.ReceiptType, error) {
	types := []models.ReceiptType{}
	if err := r.db.SelectContext(ctx, &types, `SELECT id, code, name, series FROM receipt_types ORDER BY id`); err != nil {
		return nil, wrapError(err, "listing receipt types")
	}
	return types, nil
}
