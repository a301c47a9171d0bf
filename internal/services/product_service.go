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

type ProductService interface {
	CreateProduct(ctx context.Context, payload models.CreateProductPayload) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(ctx context.Context, id int64, payload models.UpdateProductPayload) (*models.Product, error)
}

type productService struct {
	repo repositories.ProductRepository
	db   *sqlx.DB
}

func NewProductService(repo repositories.ProductRepository, db *sqlx.DB) ProductService {
	return &productService{repo: repo, db: db}
}

func (s *productService) CreateProduct(ctx context.Context, payload models.CreateProductPayload) (*models.Product, error) {
	product := &models.Product{
		Name:                 strings.TrimSpace(payload.Name),
		Description:          payload.Description,
		CategoryID:           payload.CategoryID,
		Barcode:              payload.Barcode,
		Presentation:         payload.Presentation,
		RequiresPrescription: payload.RequiresPrescription,
		SalePrice:            payload.SalePrice,
		IsActive:             true,
	}
	if err := s.validate(ctx, product); err != nil {
		return nil, err
	}

	if _, err := s.repo.CreateProduct(ctx, s.db, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: barcode is already in use", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return s.GetProductByID(ctx, product.ID)
}

func (s *productService) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

func (s *productService) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	filters.Normalize()
	products, total, err := s.repo.GetProducts(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, payload models.UpdateProductPayload) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		product.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		product.Description = payload.Description
	}
	if payload.CategoryID != nil {
		product.CategoryID = payload.CategoryID
	}
	if payload.Barcode != nil {
		product.Barcode = payload.Barcode
	}
	if payload.Presentation != nil {
		product.Presentation = payload.Presentation
	}
	if payload.RequiresPrescription != nil {
		product.RequiresPrescription = *payload.RequiresPrescription
	}
	if payload.SalePrice != nil {
		product.SalePrice = *payload.SalePrice
	}
	if payload.IsActive != nil {
		product.IsActive = *payload.IsActive
	}
	if err := s.validate(ctx, product); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, s.db, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: barcode is already in use", ErrDuplicate)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return s.GetProductByID(ctx, id)
}

func (s *productService) validate(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if product.SalePrice.IsNegative() {
		return fmt.Errorf("%w: salePrice must not be negative", ErrValidation)
	}
	if product.CategoryID != nil {
		ok, err := s.repo.CategoryExists(ctx, *product.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: category ID %d", ErrCategoryNotFound, *product.CategoryID)
		}
	}
	return nil
}
