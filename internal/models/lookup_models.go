package models

type PaymentType struct {
	ID       int64  `json:"id" db:"id"`
	Code     string `json:"code" db:"code"`
	Name     string `json:"name" db:"name"`
	IsActive bool   `json:"isActive" db:"is_active"`
}

// ReceiptType numbers its sales within Series, e.g. B001-000001.
type ReceiptType struct {
	ID     int64  `json:"id" db:"id"`
	Code   string `json:"code" db:"code"`
	Name   string `json:"name" db:"name"`
	Series string `json:"series" db:"series"`
}
