package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testRates() RateTable {
	return NewRateTable(map[string]float64{
		"Nam":  0.6,
		"Vạn":  0.5,
	}, 0.3)
}

func TestComputeLine(t *testing.T) {
	// 2 units at 100000, cost 60000, VAT 10%
	f := ComputeLine(Line{
		Qty:     dec("2"),
		Cost:    dec("60000"),
		Price:   dec("100000"),
		VATRate: dec("10"),
	})
	assert.True(t, f.Subtotal.Equal(dec("200000")), "subtotal = %s", f.Subtotal)
	assert.True(t, f.VAT.Equal(dec("20000")), "vat = %s", f.VAT)
	assert.True(t, f.Total.Equal(dec("220000")), "total = %s", f.Total)
	assert.True(t, f.Profit.Equal(dec("80000")), "profit = %s", f.Profit)
}

func TestComputeLine_ZeroVAT(t *testing.T) {
	f := ComputeLine(Line{Qty: dec("3"), Cost: dec("10"), Price: dec("15"), VATRate: decimal.Zero})
	assert.True(t, f.VAT.IsZero())
	assert.True(t, f.Total.Equal(dec("45")))
	assert.True(t, f.Profit.Equal(dec("15")))
}

func TestComputeLine_FractionalQty(t *testing.T) {
	// Square-metre jobs use fractional quantities; the math stays exact.
	f := ComputeLine(Line{Qty: dec("2.5"), Cost: dec("40000"), Price: dec("100000"), VATRate: dec("8")})
	assert.True(t, f.Subtotal.Equal(dec("250000")))
	assert.True(t, f.VAT.Equal(dec("20000")))
	assert.True(t, f.Profit.Equal(dec("150000")))
}

func TestComputeLine_LossMakingLine(t *testing.T) {
	f := ComputeLine(Line{Qty: dec("1"), Cost: dec("200"), Price: dec("100"), VATRate: decimal.Zero})
	assert.True(t, f.Profit.Equal(dec("-100")))
}

func TestComputeTotals_Commission(t *testing.T) {
	lines := []Line{
		{Qty: dec("2"), Cost: dec("60000"), Price: dec("100000"), VATRate: dec("10")},
	}
	totals := ComputeTotals(lines, "Nam", testRates())
	assert.True(t, totals.Total.Equal(dec("220000")), "total = %s", totals.Total)
	assert.True(t, totals.TotalProfit.Equal(dec("80000")))
	// 80000 × 0.6
	assert.True(t, totals.Commission.Equal(dec("48000")), "commission = %s", totals.Commission)
}

func TestComputeTotals_UnknownStaffFallsBack(t *testing.T) {
	lines := []Line{
		{Qty: dec("1"), Cost: decimal.Zero, Price: dec("1000"), VATRate: decimal.Zero},
	}
	totals := ComputeTotals(lines, "Người mới", testRates())
	// 1000 profit × 0.3 fallback
	assert.True(t, totals.Commission.Equal(dec("300")))
}

func TestComputeTotals_NegativeProfitClampsCommission(t *testing.T) {
	lines := []Line{
		{Qty: dec("10"), Cost: dec("500"), Price: dec("300"), VATRate: decimal.Zero},
	}
	totals := ComputeTotals(lines, "Nam", testRates())
	assert.True(t, totals.TotalProfit.IsNegative())
	assert.True(t, totals.Commission.IsZero(), "commission = %s", totals.Commission)
}

func TestComputeTotals_MixedLinesNetProfit(t *testing.T) {
	// One loss line, one profitable line; commission applies to the net.
	lines := []Line{
		{Qty: dec("1"), Cost: dec("1000"), Price: dec("500"), VATRate: decimal.Zero},  // -500
		{Qty: dec("1"), Cost: dec("1000"), Price: dec("2500"), VATRate: decimal.Zero}, // +1500
	}
	totals := ComputeTotals(lines, "Vạn", testRates())
	assert.True(t, totals.TotalProfit.Equal(dec("1000")))
	assert.True(t, totals.Commission.Equal(dec("500")))
}

func TestComputeTotals_NoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style inputs must not accumulate binary float error.
	lines := []Line{
		{Qty: dec("3"), Cost: decimal.Zero, Price: dec("0.1"), VATRate: decimal.Zero},
		{Qty: dec("1"), Cost: decimal.Zero, Price: dec("0.2"), VATRate: decimal.Zero},
	}
	totals := ComputeTotals(lines, "Nam", testRates())
	assert.Equal(t, "0.5", totals.Total.String())
}
