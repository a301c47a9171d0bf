package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go out as JSON numbers, e.g. 12.98 rather than "12.98".
	decimal.MarshalJSONWithoutQuotes = true
}

// Person holds the identity fields shared by customers and employees.
type Person struct {
	ID             int64     `json:"id" db:"id"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	DocumentNumber *string   `json:"documentNumber,omitempty" db:"document_number"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	Email          *string   `json:"email,omitempty" db:"email"`
	Address        *string   `json:"address,omitempty" db:"address"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// Pagination is embedded in list filters.
type Pagination struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

// Normalize fills in defaults.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}

// Offset is the number of rows to skip for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginatedResponse wraps a page of results.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalItems int         `json:"totalItems"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse computes the page count for total rows.
func NewPaginatedResponse(data interface{}, p Pagination, total int) PaginatedResponse {
	pages := 0
	if p.PageSize > 0 {
		pages = (total + p.PageSize - 1) / p.PageSize
	}
	return PaginatedResponse{Data: data, Page: p.Page, PageSize: p.PageSize, TotalItems: total, TotalPages: pages}
}
