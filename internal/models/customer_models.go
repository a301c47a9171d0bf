package models

import "time"

// Customer is a registered buyer who accumulates loyalty points.
type Customer struct {
	ID             int64     `json:"id" db:"id"`
	PersonID       int64     `json:"personId" db:"person_id"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	DocumentNumber *string   `json:"documentNumber,omitempty" db:"document_number"`
	Phone          *string   `json:"phone,omitempty" db:"phone"`
	Email          *string   `json:"email,omitempty" db:"email"`
	Address        *string   `json:"address,omitempty" db:"address"`
	LoyaltyPoints  int64     `json:"loyaltyPoints" db:"loyalty_points"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type CreateCustomerPayload struct {
	FirstName      string  `json:"firstName" binding:"required,max=100"`
	LastName       string  `json:"lastName" binding:"required,max=100"`
	DocumentNumber *string `json:"documentNumber,omitempty" binding:"omitempty,max=30"`
	Phone          *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	Email          *string `json:"email,omitempty" binding:"omitempty,email"`
	Address        *string `json:"address,omitempty" binding:"omitempty,max=255"`
}

// UpdateCustomerPayload only touches the fields that are set.
type UpdateCustomerPayload struct {
	FirstName      *string `json:"firstName,omitempty" binding:"omitempty,min=1,max=100"`
	LastName       *string `json:"lastName,omitempty" binding:"omitempty,min=1,max=100"`
	DocumentNumber *string `json:"documentNumber,omitempty" binding:"omitempty,max=30"`
	Phone          *string `json:"phone,omitempty" binding:"omitempty,max=30"`
	Email          *string `json:"email,omitempty" binding:"omitempty,email"`
	Address        *string `json:"address,omitempty" binding:"omitempty,max=255"`
}

type CustomerFilters struct {
	Search string `form:"search"`
	Pagination
}
