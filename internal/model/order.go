package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/finance"
)

// Customer is the buyer block stored inside the order row. Phone doubles as
// the best-effort dedup key for prefilling repeat customers — no uniqueness
// is enforced.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineItem is one free-form row of an order. Items are typed per order, not
// drawn from a catalog.
type LineItem struct {
	Name    string          `json:"name"`
	Unit    string          `json:"unit"`
	Qty     decimal.Decimal `json:"qty"`
	Cost    decimal.Decimal `json:"cost"`
	Price   decimal.Decimal `json:"price"`
	VATRate decimal.Decimal `json:"vat_rate"`
}

// UnmarshalJSON tolerates legacy rows where numeric fields were written as
// formatted strings (or left empty). Bad values coerce to zero with a logged
// warning instead of failing the whole record.
func (it *LineItem) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name    string          `json:"name"`
		Unit    string          `json:"unit"`
		Qty     json.RawMessage `json:"qty"`
		Cost    json.RawMessage `json:"cost"`
		Price   json.RawMessage `json:"price"`
		VATRate json.RawMessage `json:"vat_rate"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.Name = raw.Name
	it.Unit = raw.Unit
	it.Qty = finance.CoerceDecimal(raw.Qty)
	it.Cost = finance.CoerceDecimal(raw.Cost)
	it.Price = finance.CoerceDecimal(raw.Price)
	it.VATRate = finance.CoerceDecimal(raw.VATRate)
	return nil
}

// Line converts the item to calculator input.
func (it LineItem) Line() finance.Line {
	return finance.Line{Qty: it.Qty, Cost: it.Cost, Price: it.Price, VATRate: it.VATRate}
}

// LineItems is stored as a JSONB blob, mirroring the original flat-row
// layout where nested structures live as JSON inside a single cell.
type LineItems []LineItem

func (li LineItems) Value() (driver.Value, error) { return json.Marshal(li) }

func (li *LineItems) Scan(value interface{}) error {
	return scanJSONB(value, li)
}

// Lines converts all items to calculator input.
func (li LineItems) Lines() []finance.Line {
	lines := make([]finance.Line, len(li))
	for i, it := range li {
		lines[i] = it.Line()
	}
	return lines
}

// Financial is the derived money snapshot embedded in an order. It is fully
// recomputed on create/edit; payments mutate only Paid and Debt. The
// invariant Debt = Total − Paid holds after every operation.
type Financial struct {
	Total            decimal.Decimal  `json:"total"`
	Paid             decimal.Decimal  `json:"paid"`
	Debt             decimal.Decimal  `json:"debt"`
	Staff            string           `json:"staff"`
	TotalProfit      decimal.Decimal  `json:"total_profit"`
	TotalCommission  decimal.Decimal  `json:"total_comm"`
	CommissionStatus CommissionStatus `json:"commission_status"`
}

func (f Financial) Value() (driver.Value, error) { return json.Marshal(f) }

func (f *Financial) Scan(value interface{}) error { return scanJSONB(value, f) }

func (c Customer) Value() (driver.Value, error) { return json.Marshal(c) }

func (c *Customer) Scan(value interface{}) error { return scanJSONB(value, c) }

func scanJSONB(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("model: cannot scan %T into JSONB field", value)
	}
}

// Order is a print job moving through the pipeline. Code is the
// human-facing identifier ("003/DH.25": zero-padded sequence within the
// two-digit year), unique and immutable once assigned.
type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string        `gorm:"uniqueIndex;not null"`
	Date          time.Time     `gorm:"not null"`
	Status        Status        `gorm:"type:varchar(20);not null;index;default:'quote'"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Customer      Customer      `gorm:"type:jsonb;not null"`
	Items         LineItems     `gorm:"type:jsonb;not null"`
	Financial     Financial     `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderCodeFormat renders the yearly sequence as an order code.
func OrderCodeFormat(seq int64, yearSuffix string) string {
	return fmt.Sprintf("%03d/DH.%s", seq, yearSuffix)
}

// CheckBooks verifies Debt = Total − Paid. Returns an error naming the
// drift; used as a guard before persisting financial mutations.
func (o *Order) CheckBooks() error {
	if !o.Financial.Debt.Equal(o.Financial.Total.Sub(o.Financial.Paid)) {
		return errors.New("financial snapshot out of balance: debt != total - paid")
	}
	return nil
}
