// internal/domain/entity/expense.go
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is one cost item attributed to a shift (charge)
type Expense struct {
	ID              uint            `json:"id"`
	ShiftID         uint            `json:"shift_id"`
	Category        string          `json:"category"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	PaymentMethodID *uint           `json:"payment_method_id,omitempty"`
	ReceiptRef      string          `json:"receipt_ref,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
