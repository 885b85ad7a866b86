package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cashbook entry directions and payment methods.
const (
	DirectionInflow  = "inflow"
	DirectionOutflow = "outflow"

	MethodCash         = "cash"
	MethodBankTransfer = "bank_transfer"
)

// CashbookEntry is one immutable line of the shop cashbook. Entries are
// NEVER modified or deleted after creation — corrections are new inverse
// entries. Amount is always positive; Direction carries the sign.
type CashbookEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date      time.Time       `gorm:"not null;index"`
	Direction string          `gorm:"type:varchar(10);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Method    string          `gorm:"type:varchar(20);not null"`
	Note      string          `gorm:"not null"`
	// OrderCode links payment inflows back to their order; nil for manual entries.
	OrderCode *string `gorm:"index"`
	CreatedAt time.Time
}
