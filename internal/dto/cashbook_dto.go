package dto

import "github.com/shopspring/decimal"

// CashbookFilter is bound from the query string of GET /v1/cashbook.
type CashbookFilter struct {
	Month string `form:"month"` // YYYY-MM; empty = all
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type AppendEntryRequest struct {
	Direction string          `json:"direction" validate:"required,oneof=inflow outflow"`
	Amount    decimal.Decimal `json:"amount"    validate:"required"`
	Method    string          `json:"method"    validate:"required,oneof=cash bank_transfer"`
	Note      string          `json:"note"      validate:"required"`
}

type CashbookEntryResponse struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"`
	Direction string          `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Note      string          `json:"note"`
	OrderCode *string         `json:"order_code,omitempty"`
}

type CashbookListResponse struct {
	Data  []CashbookEntryResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// CashbookSummaryResponse is the running balance broken down by method.
type CashbookSummaryResponse struct {
	Inflow  decimal.Decimal            `json:"inflow"`
	Outflow decimal.Decimal            `json:"outflow"`
	Balance decimal.Decimal            `json:"balance"`
	Methods map[string]decimal.Decimal `json:"methods"`
}
