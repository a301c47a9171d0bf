package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one completed checkout. It is never modified after insert.
type Sale struct {
	ID                  int64           `json:"id" db:"id"`
	ReceiptNumber       string          `json:"receiptNumber" db:"receipt_number"`
	ReceiptTypeID       int64           `json:"receiptTypeId" db:"receipt_type_id"`
	PaymentTypeID       int64           `json:"paymentTypeId" db:"payment_type_id"`
	PaymentTypeCode     string          `json:"paymentTypeCode,omitempty" db:"payment_type_code"`
	CustomerID          *int64          `json:"customerId,omitempty" db:"customer_id"`
	EmployeeID          int64           `json:"employeeId" db:"employee_id"`
	EmployeeUsername    string          `json:"employeeUsername,omitempty" db:"employee_username"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax                 decimal.Decimal `json:"tax" db:"tax"`
	Discount            decimal.Decimal `json:"discount" db:"discount"`
	Total               decimal.Decimal `json:"total" db:"total"`
	LoyaltyPointsEarned int64           `json:"loyaltyPointsEarned" db:"loyalty_points_earned"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	Items               []SaleItem      `json:"items,omitempty" db:"-"`
}

// SaleItem is one lot allocation within a sale.
type SaleItem struct {
	ID          int64           `json:"id" db:"id"`
	SaleID      int64           `json:"saleId" db:"sale_id"`
	LotID       int64           `json:"lotId" db:"lot_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"productName,omitempty" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	LineTotal   decimal.Decimal `json:"lineTotal" db:"line_total"`
}

// CheckoutItem is one cart line as sent by the point of sale.
type CheckoutItem struct {
	LotID     int64           `json:"lotId" binding:"required,gt=0"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"gte=0"`
}

// CheckoutRequest is the body of POST /sales.
type CheckoutRequest struct {
	Items         []CheckoutItem   `json:"items" binding:"dive"`
	CustomerID    *int64           `json:"customerId,omitempty" binding:"omitempty,gt=0"`
	PaymentTypeID *int64           `json:"paymentTypeId,omitempty" binding:"omitempty,gt=0"`
	Discount      *decimal.Decimal `json:"discount,omitempty" binding:"omitempty,gte=0"`
}

// CheckoutResponse is returned with 201 Created.
type CheckoutResponse struct {
	SaleID              int64           `json:"saleId"`
	ReceiptNumber       string          `json:"receiptNumber"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Tax                 decimal.Decimal `json:"tax"`
	Discount            decimal.Decimal `json:"discount"`
	Total               decimal.Decimal `json:"total"`
	LoyaltyPointsEarned int64           `json:"loyaltyPointsEarned"`
	CustomerID          *int64          `json:"customerId,omitempty"`
	PaymentTypeID       int64           `json:"paymentTypeId"`
	CreatedAt           time.Time       `json:"createdAt"`
	Items               []SaleItem      `json:"items"`
}

// NewCheckoutResponse shapes a persisted sale for the checkout endpoint.
func NewCheckoutResponse(s *Sale) CheckoutResponse {
	return CheckoutResponse{
		SaleID:              s.ID,
		ReceiptNumber:       s.ReceiptNumber,
		Subtotal:            s.Subtotal,
		Tax:                 s.Tax,
		Discount:            s.Discount,
		Total:               s.Total,
		LoyaltyPointsEarned: s.LoyaltyPointsEarned,
		CustomerID:          s.CustomerID,
		PaymentTypeID:       s.PaymentTypeID,
		CreatedAt:           s.CreatedAt,
		Items:               s.Items,
	}
}

type SaleFilters struct {
	DateFrom      *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo        *time.Time `form:"dateTo" time_format:"2006-01-02"`
	CustomerID    *int64     `form:"customerId" binding:"omitempty,gt=0"`
	EmployeeID    *int64     `form:"employeeId" binding:"omitempty,gt=0"`
	PaymentTypeID *int64     `form:"paymentTypeId" binding:"omitempty,gt=0"`
	Pagination
}
