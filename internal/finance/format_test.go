package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"500", "500"},
		{"1234", "1.234"},
		{"1234567", "1.234.567"},
		{"1000000000", "1.000.000.000"},
		{"1234.5", "1.234,50"},
		{"0.25", "0,25"},
		{"-500", "-500"},
		{"-1234567", "-1.234.567"},
		{"-1234.5", "-1.234,50"},
	}
	for _, c := range cases {
		got := FormatAmount(dec(c.in))
		assert.Equal(t, c.want, got, "FormatAmount(%s)", c.in)
	}
}

func TestCoerceDecimal(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain number", `42`, "42"},
		{"plain decimal", `42.5`, "42.5"},
		{"quoted number", `"1500"`, "1500"},
		{"vi formatted", `"1.234,5"`, "1234.5"},
		{"dot grouped integer", `"60.000"`, "60000"},
		{"dot grouped millions", `"1.234.567"`, "1234567"},
		{"vi grouped integer", `"1.234.567,00"`, "1234567"},
		{"comma decimal only", `"12,5"`, "12.5"},
		{"null", `null`, "0"},
		{"empty string", `""`, "0"},
		{"garbage", `"abc"`, "0"},
		{"whitespace", `"  "`, "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := CoerceDecimal([]byte(c.raw))
			assert.True(t, got.Equal(decimal.RequireFromString(c.want)),
				"CoerceDecimal(%s) = %s, want %s", c.raw, got, c.want)
		})
	}
}
