package models

import "time"

// Employee roles.
const (
	RoleAdmin      = "admin"
	RolePharmacist = "pharmacist"
	RoleCashier    = "cashier"
)

// Employee is a person who can sign in and sell.
type Employee struct {
	ID           int64     `json:"id" db:"id"`
	PersonID     int64     `json:"personId" db:"person_id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Credentials for login request
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegistrationPayload for employee registration
type RegistrationPayload struct {
	Username       string  `json:"username" binding:"required,min=3,max=60"`
	Password       string  `json:"password" binding:"required,min=8"`
	FirstName      string  `json:"firstName" binding:"required"`
	LastName       string  `json:"lastName" binding:"required"`
	Role           string  `json:"role" binding:"required,oneof=admin pharmacist cashier"`
	DocumentNumber *string `json:"documentNumber,omitempty"`
	Email          *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ExpiresIn   int64     `json:"expiresIn"` // seconds
	Employee    *Employee `json:"employee"`
}
