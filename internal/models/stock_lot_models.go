package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot statuses. A lot is DEPLETED exactly when its current quantity is zero.
const (
	LotStatusAvailable = "AVAILABLE"
	LotStatusDepleted  = "DEPLETED"
)

// Stock movement types.
const (
	MovementReceipt    = "RECEIPT"
	MovementSale       = "SALE"
	MovementAdjustment = "ADJUSTMENT"
)

// LotStatusFor derives the status from the quantity on hand.
func LotStatusFor(currentQuantity int) string {
	if currentQuantity == 0 {
		return LotStatusDepleted
	}
	return LotStatusAvailable
}

// StockLot is a received batch of one product.
type StockLot struct {
	ID              int64           `json:"id" db:"id"`
	ProductID       int64           `json:"productId" db:"product_id"`
	ProductName     string          `json:"productName" db:"product_name"`
	SupplierID      *int64          `json:"supplierId,omitempty" db:"supplier_id"`
	ReceivedBy      *int64          `json:"receivedBy,omitempty" db:"received_by"`
	LotNumber       *string         `json:"lotNumber,omitempty" db:"lot_number"`
	ExpirationDate  *time.Time      `json:"expirationDate,omitempty" db:"expiration_date"`
	StorageLocation *string         `json:"storageLocation,omitempty" db:"storage_location"`
	InitialQuantity int             `json:"initialQuantity" db:"initial_quantity"`
	CurrentQuantity int             `json:"currentQuantity" db:"current_quantity"`
	UnitCost        decimal.Decimal `json:"unitCost" db:"unit_cost"`
	Status          string          `json:"status" db:"status"`
	ReceivedAt      time.Time       `json:"receivedAt" db:"received_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// ReceiveLotPayload registers a goods receipt.
type ReceiveLotPayload struct {
	ProductID       int64           `json:"productId" binding:"required,gt=0"`
	SupplierID      *int64          `json:"supplierId,omitempty" binding:"omitempty,gt=0"`
	LotNumber       *string         `json:"lotNumber,omitempty" binding:"omitempty,max=60"`
	ExpirationDate  *time.Time      `json:"expirationDate,omitempty"`
	StorageLocation *string         `json:"storageLocation,omitempty" binding:"omitempty,max=100"`
	InitialQuantity int             `json:"initialQuantity" binding:"required,gt=0"`
	UnitCost        decimal.Decimal `json:"unitCost" binding:"gte=0"`
}

// AdjustLotPayload sets a lot's quantity on hand after a physical count.
type AdjustLotPayload struct {
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Reason   string `json:"reason" binding:"required,max=500"`
}

type StockLotFilters struct {
	ProductID      *int64     `form:"productId" binding:"omitempty,gt=0"`
	AvailableOnly  bool       `form:"availableOnly"`
	ExpiringBefore *time.Time `form:"expiringBefore" time_format:"2006-01-02"`
	Pagination
}

// StockMovement is one ledger entry against a lot.
type StockMovement struct {
	ID             int64     `json:"id" db:"id"`
	LotID          int64     `json:"lotId" db:"lot_id"`
	MovementType   string    `json:"movementType" db:"movement_type"`
	QuantityChange int       `json:"quantityChange" db:"quantity_change"`
	QuantityAfter  int       `json:"quantityAfter" db:"quantity_after"`
	SaleID         *int64    `json:"saleId,omitempty" db:"sale_id"`
	EmployeeID     *int64    `json:"employeeId,omitempty" db:"employee_id"`
	Reason         *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
