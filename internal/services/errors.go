package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")

	// Checkout
	ErrEmptyCart           = errors.New("cart has no items")
	ErrLotNotFound         = errors.New("stock lot not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrPaymentTypeNotFound = errors.New("payment type not found")
	ErrConfiguration       = errors.New("checkout is not configured")
	ErrCheckoutConflict    = errors.New("checkout conflicted with a concurrent sale, please retry")
	ErrSaleNotFound        = errors.New("sale not found")

	// Catalog and ledger
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrDuplicate        = errors.New("record already exists")
	ErrConcurrentUpdate = errors.New("record was changed concurrently, please retry")

	// Auth
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("account is disabled")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrUsernameTaken      = errors.New("username already exists")

	ErrSettingNotFound = errors.New("setting not found")
)

// InsufficientStockError names the product that cannot cover a cart line.
// errors.Is(err, ErrInsufficientStock) holds for it.
type InsufficientStockError struct {
	LotID       int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// LotNotFoundError reports a cart line pointing at a lot that does not exist.
type LotNotFoundError struct {
	LotID int64
}

func (e *LotNotFoundError) Error() string {
	return fmt.Sprintf("stock lot %d not found", e.LotID)
}

func (e *LotNotFoundError) Is(target error) bool {
	return target == ErrLotNotFound
}
