// Package finance derives all money figures of an order from its line items.
// Every function here is pure and total: out-of-range or nonsensical numeric
// input is computed with as-is, never rejected — the HTTP layer is the place
// for validation, and legacy records must stay loadable.
package finance

import "github.com/shopspring/decimal"

// Line carries the numeric inputs of a single order row.
type Line struct {
	Qty     decimal.Decimal
	Cost    decimal.Decimal // unit cost
	Price   decimal.Decimal // unit sale price
	VATRate decimal.Decimal // percentage, 0–100
}

// Figures are the derived amounts of one line.
type Figures struct {
	Subtotal decimal.Decimal // qty * price
	VAT      decimal.Decimal // subtotal * vat_rate / 100
	Total    decimal.Decimal // subtotal + vat
	Profit   decimal.Decimal // subtotal - qty * cost
}

// Totals is the order-level aggregation over all lines.
type Totals struct {
	Total       decimal.Decimal
	TotalProfit decimal.Decimal
	Commission  decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// ComputeLine derives subtotal, VAT, total and profit for one line.
func ComputeLine(l Line) Figures {
	subtotal := l.Qty.Mul(l.Price)
	vat := subtotal.Mul(l.VATRate).Div(oneHundred)
	return Figures{
		Subtotal: subtotal,
		VAT:      vat,
		Total:    subtotal.Add(vat),
		Profit:   subtotal.Sub(l.Qty.Mul(l.Cost)),
	}
}

// ComputeTotals sums line totals and profits and derives the salesperson
// commission: max(0, total profit) × rate(staff). A loss never produces a
// negative commission.
func ComputeTotals(lines []Line, staff string, rates RateTable) Totals {
	total := decimal.Zero
	profit := decimal.Zero
	for _, l := range lines {
		f := ComputeLine(l)
		total = total.Add(f.Total)
		profit = profit.Add(f.Profit)
	}

	base := profit
	if base.IsNegative() {
		base = decimal.Zero
	}
	return Totals{
		Total:       total,
		TotalProfit: profit,
		Commission:  base.Mul(rates.Rate(staff)),
	}
}

// RateTable maps salesperson names to commission rates. Unknown names fall
// back to the lowest tier.
type RateTable struct {
	rates    map[string]decimal.Decimal
	fallback decimal.Decimal
}

// NewRateTable builds a RateTable from config values.
func NewRateTable(rates map[string]float64, fallback float64) RateTable {
	t := RateTable{
		rates:    make(map[string]decimal.Decimal, len(rates)),
		fallback: decimal.NewFromFloat(fallback),
	}
	for name, rate := range rates {
		t.rates[name] = decimal.NewFromFloat(rate)
	}
	return t
}

// Rate returns the commission rate for staff, or the fallback tier.
func (t RateTable) Rate(staff string) decimal.Decimal {
	if r, ok := t.rates[staff]; ok {
		return r
	}
	return t.fallback
}
