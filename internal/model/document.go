package model

import (
	"time"

	"github.com/google/uuid"
)

// Document kinds and render states.
// Kind: "quote" | "delivery_note"
// Status: "pending" | "rendered" | "error"
const (
	DocQuote        = "quote"
	DocDeliveryNote = "delivery_note"

	DocPending  = "pending"
	DocRendered = "rendered"
	DocError    = "error"
)

// Document records one printable artifact requested for an order. Rendering
// happens asynchronously; PDFPath is set once the worker has written the
// file under PDF_STORAGE_PATH.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderCode string    `gorm:"index;not null"`
	Kind      string    `gorm:"type:varchar(20);not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PDFPath   *string   `gorm:"column:pdf_path"`
	// EmailTo, when set, makes the worker mail the rendered PDF to the customer.
	EmailTo *string
	// Retry fields — used by the retry cron to re-attempt failed renders
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
