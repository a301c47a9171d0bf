package services

import (
	"context"
	"fmt"

	"pharmacy_pos_backend/internal/models"
	"pharmacy_pos_backend/internal/repositories"
)

type LookupService interface {
	ListPaymentTypes(ctx context.Context) ([]models.PaymentType, error)
	ListReceiptTypes(ctx context.Context) ([]models.ReceiptType, error)
}

type lookupService struct {
	repo repositories.LookupRepository
}

func NewLookupService(repo repositories.LookupRepository) LookupService {
	return &lookupService{repo: repo}
}

func (s *lookupService) ListPaymentTypes(ctx context.Context) ([]models.PaymentType, error) {
	types, err := s.repo.GetPaymentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment types: %w", err)
	}
	return types, nil
}

func (s *lookupService) ListReceiptTypes(ctx context.Context) ([]models.ReceiptType, error) {
	types, err := s.repo.GetReceiptTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipt types: %w", err)
	}
	return types, nil
}
