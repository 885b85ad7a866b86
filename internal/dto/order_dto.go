package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	Status string `form:"status"` // pipeline stage; empty = all
	Staff  string `form:"staff"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type LineItemRequest struct {
	Name    string          `json:"name"     validate:"required"`
	Unit    string          `json:"unit"`
	Qty     decimal.Decimal `json:"qty"      validate:"min=0"`
	Cost    decimal.Decimal `json:"cost"     validate:"min=0"`
	Price   decimal.Decimal `json:"price"    validate:"min=0"`
	VATRate decimal.Decimal `json:"vat_rate" validate:"min=0,max=100"`
}

type CreateOrderRequest struct {
	Customer CustomerRequest   `json:"customer" validate:"required"`
	Items    []LineItemRequest `json:"items"    validate:"required,min=1,dive"`
	Staff    string            `json:"staff"    validate:"required"`
}

// EditOrderRequest replaces customer, items and staff wholesale; the
// financial snapshot is recomputed from scratch except for the amount
// already paid.
type EditOrderRequest struct {
	Customer CustomerRequest   `json:"customer" validate:"required"`
	Items    []LineItemRequest `json:"items"    validate:"required,min=1,dive"`
	Staff    string            `json:"staff"    validate:"required"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required,oneof=cash bank_transfer"`
	Note   string          `json:"note"`
}

type SetCommissionRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineItemResponse struct {
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Qty       decimal.Decimal `json:"qty"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	VATRate   decimal.Decimal `json:"vat_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	VAT       decimal.Decimal `json:"vat"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type FinancialResponse struct {
	Total            decimal.Decimal `json:"total"`
	Paid             decimal.Decimal `json:"paid"`
	Debt             decimal.Decimal `json:"debt"`
	Staff            string          `json:"staff"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalCommission  decimal.Decimal `json:"total_comm"`
	CommissionStatus string          `json:"commission_status"`
	// Display strings in the shop's separator convention
	TotalDisplay string `json:"total_display"`
	DebtDisplay  string `json:"debt_display"`
}

type CustomerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderResponse struct {
	ID            string             `json:"id"`
	Code          string             `json:"code"`
	Date          string             `json:"date"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	Customer      CustomerResponse   `json:"customer"`
	Items         []LineItemResponse `json:"items"`
	Financial     FinancialResponse  `json:"financial"`
	CreatedAt     string             `json:"created_at"`
}
