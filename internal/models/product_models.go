package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products by active ingredient.
type Category struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
}

type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TaxID     *string   `json:"taxId,omitempty" db:"tax_id"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Product is a catalog entry; stock lives on its lots.
type Product struct {
	ID                   int64           `json:"id" db:"id"`
	Name                 string          `json:"name" db:"name"`
	Description          *string         `json:"description,omitempty" db:"description"`
	CategoryID           *int64          `json:"categoryId,omitempty" db:"category_id"`
	CategoryName         *string         `json:"categoryName,omitempty" db:"category_name"`
	Barcode              *string         `json:"barcode,omitempty" db:"barcode"`
	Presentation         *string         `json:"presentation,omitempty" db:"presentation"`
	RequiresPrescription bool            `json:"requiresPrescription" db:"requires_prescription"`
	SalePrice            decimal.Decimal `json:"salePrice" db:"sale_price"`
	IsActive             bool            `json:"isActive" db:"is_active"`
	StockOnHand          int64           `json:"stockOnHand" db:"stock_on_hand"`
	CreatedAt            time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time       `json:"updatedAt" db:"updated_at"`
}

type CreateProductPayload struct {
	Name                 string          `json:"name" binding:"required,max=150"`
	Description          *string         `json:"description,omitempty"`
	CategoryID           *int64          `json:"categoryId,omitempty" binding:"omitempty,gt=0"`
	Barcode              *string         `json:"barcode,omitempty" binding:"omitempty,max=50"`
	Presentation         *string         `json:"presentation,omitempty" binding:"omitempty,max=100"`
	RequiresPrescription bool            `json:"requiresPrescription"`
	SalePrice            decimal.Decimal `json:"salePrice" binding:"gte=0"`
}

type UpdateProductPayload struct {
	Name                 *string          `json:"name,omitempty" binding:"omitempty,min=1,max=150"`
	Description          *string          `json:"description,omitempty"`
	CategoryID           *int64           `json:"categoryId,omitempty" binding:"omitempty,gt=0"`
	Barcode              *string          `json:"barcode,omitempty" binding:"omitempty,max=50"`
	Presentation         *string          `json:"presentation,omitempty" binding:"omitempty,max=100"`
	RequiresPrescription *bool            `json:"requiresPrescription,omitempty"`
	SalePrice            *decimal.Decimal `json:"salePrice,omitempty" binding:"omitempty,gte=0"`
	IsActive             *bool            `json:"isActive,omitempty"`
}

type ProductFilters struct {
	Search     string `form:"search"`
	CategoryID *int64 `form:"categoryId" binding:"omitempty,gt=0"`
	ActiveOnly bool   `form:"activeOnly"`
	Pagination
}
