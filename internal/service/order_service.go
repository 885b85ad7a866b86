package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/finance"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
)

type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, code string) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Advance(ctx context.Context, code string) (*dto.OrderResponse, error)
	RecordPayment(ctx context.Context, code string, req dto.RecordPaymentRequest) (*dto.OrderResponse, error)
	Edit(ctx context.Context, code string, req dto.EditOrderRequest) (*dto.OrderResponse, error)
	Delete(ctx context.Context, code string) error
	SetCommissionPaid(ctx context.Context, code string, paid bool) (*dto.OrderResponse, error)
	LookupCustomer(ctx context.Context, phone string) (*dto.CustomerResponse, error)
}

type orderService struct {
	repo     repository.OrderRepository
	cashbook repository.CashbookRepository
	seq      repository.SequenceRepository
	rates    finance.RateTable
}

func NewOrderService(
	repo repository.OrderRepository,
	cashbook repository.CashbookRepository,
	seq repository.SequenceRepository,
	rates finance.RateTable,
) OrderService {
	return &orderService{
		repo:     repo,
		cashbook: cashbook,
		seq:      seq,
		rates:    rates,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// New orders always start as quotes. The code is allocated from the yearly
// sequence before insert; a failed insert therefore leaves a gap in the
// numbering, which the shop accepts (codes must be unique, not dense).

func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	now := time.Now()

	yearSuffix := now.Format("06")
	seq, err := s.seq.NextOrderSeq(ctx, yearSuffix)
	if err != nil {
		return nil, err
	}

	items := requestItems(req.Items)
	totals := finance.ComputeTotals(items.Lines(), req.Staff, s.rates)

	order := &model.Order{
		Code:          model.OrderCodeFormat(seq, yearSuffix),
		Date:          now,
		Status:        model.StatusQuote,
		PaymentStatus: model.PaymentUnpaid,
		Customer: model.Customer{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
		},
		Items: items,
		Financial: model.Financial{
			Total:            totals.Total,
			Paid:             decimal.Zero,
			Debt:             totals.Total,
			Staff:            req.Staff,
			TotalProfit:      totals.TotalProfit,
			TotalCommission:  totals.Commission,
			CommissionStatus: model.CommissionNotPaid,
		},
	}

	if err := order.CheckBooks(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	return orderToResponse(order), nil
}

func (s *orderService) Get(ctx context.Context, code string) (*dto.OrderResponse, error) {
	order, err := s.findOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.OrderListResponse{
		Data:  make([]dto.OrderResponse, 0, len(orders)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range orders {
		resp.Data = append(resp.Data, *orderToResponse(&orders[i]))
	}
	return resp, nil
}

// ── Advance ───────────────────────────────────────────────────────────────────
// Moves the order one stage forward. The debt stage has no plain successor:
// it resolves only through RecordPayment settling the balance.

func (s *orderService) Advance(ctx context.Context, code string) (*dto.OrderResponse, error) {
	order, err := s.findOrder(ctx, code)
	if err != nil {
		return nil, err
	}

	if order.Status.Terminal() {
		return nil, ErrTerminalStatus
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, ErrSettlementRequired
	}

	// Guarded write: two operators advancing the same order must not push it
	// two stages forward. Whoever loses the race reloads and retries.
	if err := s.repo.UpdateStatus(ctx, code, order.Status, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderModified
		}
		return nil, err
	}

	order.Status = next
	return orderToResponse(order), nil
}

// ── RecordPayment ─────────────────────────────────────────────────────────────
// The financial update and the cashbook inflow commit in one transaction so
// the ledger can never disagree with the order snapshot. Overpayment is
// rejected outright: change is handled at the counter, not in the books.

func (s *orderService) RecordPayment(ctx context.Context, code string, req dto.RecordPaymentRequest) (*dto.OrderResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	order, err := s.findOrder(ctx, code)
	if err != nil {
		return nil, err
	}
	if !order.Status.AcceptsPayment() {
		return nil, ErrPaymentNotAllowed
	}
	if req.Amount.GreaterThan(order.Financial.Debt) {
		return nil, ErrOverpayment
	}

	fin := order.Financial
	fin.Paid = fin.Paid.Add(req.Amount)
	fin.Debt = fin.Total.Sub(fin.Paid)

	status := order.Status
	switch {
	case fin.Debt.IsZero():
		// Full settlement finishes the pipeline.
		order.PaymentStatus = model.PaymentPaid
		status = model.StatusDone
	case order.Status == model.StatusDelivery:
		// Partial payment at delivery parks the remainder as debt.
		order.PaymentStatus = model.PaymentPartial
		status = model.StatusDebt
	default:
		order.PaymentStatus = model.PaymentPartial
	}

	now := time.Now()
	entry := &model.CashbookEntry{
		Date:      now,
		Direction: model.DirectionInflow,
		Amount:    req.Amount,
		Method:    req.Method,
		Note:      paymentNote(req.Note, code),
		OrderCode: &code,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateFields(ctx, tx, code, map[string]interface{}{
			"financial":      fin,
			"payment_status": order.PaymentStatus,
			"status":         status,
			"updated_at":     now,
		}); err != nil {
			return err
		}
		if tx != nil {
			return s.cashbook.AppendTx(tx, entry)
		}
		return s.cashbook.Append(ctx, entry)
	})
	if txErr != nil {
		return nil, txErr
	}

	order.Financial = fin
	order.Status = status
	return orderToResponse(order), nil
}

func paymentNote(note, code string) string {
	if note != "" {
		return note
	}
	return "Thu tiền đơn " + code
}

// ── Edit ──────────────────────────────────────────────────────────────────────
// Replaces customer, items and staff wholesale and recomputes the snapshot.
// Paid survives; Debt and the payment status follow from the new total.
// Works at every pipeline stage, done included: correcting a settled order
// never touches its status, but a price change can reopen a debt that the
// operator then collects as a normal payment. Commission is recomputed even
// when it was already marked paid; the operator sees the delta and settles
// it outside the system.

func (s *orderService) Edit(ctx context.Context, code string, req dto.EditOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.findOrder(ctx, code)
	if err != nil {
		return nil, err
	}

	items := requestItems(req.Items)
	totals := finance.ComputeTotals(items.Lines(), req.Staff, s.rates)

	fin := order.Financial
	fin.Total = totals.Total
	fin.Debt = totals.Total.Sub(fin.Paid)
	fin.Staff = req.Staff
	fin.TotalProfit = totals.TotalProfit
	fin.TotalCommission = totals.Commission

	paymentStatus := order.PaymentStatus
	switch {
	case fin.Paid.IsZero():
		paymentStatus = model.PaymentUnpaid
	case fin.Debt.IsPositive():
		paymentStatus = model.PaymentPartial
	default:
		paymentStatus = model.PaymentPaid
	}

	customer := model.Customer{
		Name:    req.Customer.Name,
		Phone:   req.Customer.Phone,
		Address: req.Customer.Address,
	}

	if err := s.repo.UpdateFields(ctx, nil, code, map[string]interface{}{
		"customer":       customer,
		"items":          items,
		"financial":      fin,
		"payment_status": paymentStatus,
		"updated_at":     time.Now(),
	}); err != nil {
		return nil, err
	}

	order.Customer = customer
	order.Items = items
	order.Financial = fin
	order.PaymentStatus = paymentStatus
	return orderToResponse(order), nil
}

func (s *orderService) Delete(ctx context.Context, code string) error {
	order, err := s.findOrder(ctx, code)
	if err != nil {
		return err
	}
	if !order.Status.Deletable() {
		return ErrOrderNotDeletable
	}
	return s.repo.Delete(ctx, code)
}

func (s *orderService) SetCommissionPaid(ctx context.Context, code string, paid bool) (*dto.OrderResponse, error) {
	order, err := s.findOrder(ctx, code)
	if err != nil {
		return nil, err
	}

	fin := order.Financial
	if paid {
		fin.CommissionStatus = model.CommissionPaid
	} else {
		fin.CommissionStatus = model.CommissionNotPaid
	}

	if err := s.repo.UpdateFields(ctx, nil, code, map[string]interface{}{
		"financial":  fin,
		"updated_at": time.Now(),
	}); err != nil {
		return nil, err
	}

	order.Financial = fin
	return orderToResponse(order), nil
}

// LookupCustomer prefills the order form from the most recent order with a
// matching phone number. Best effort: phone is not unique.
func (s *orderService) LookupCustomer(ctx context.Context, phone string) (*dto.CustomerResponse, error) {
	order, err := s.repo.FindLatestByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	c := order.Customer
	return &dto.CustomerResponse{Name: c.Name, Phone: c.Phone, Address: c.Address}, nil
}

func (s *orderService) findOrder(ctx context.Context, code string) (*model.Order, error) {
	order, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ── Mapping helpers ───────────────────────────────────────────────────────────

func requestItems(reqs []dto.LineItemRequest) model.LineItems {
	items := make(model.LineItems, len(reqs))
	for i, r := range reqs {
		items[i] = model.LineItem{
			Name:    r.Name,
			Unit:    r.Unit,
			Qty:     r.Qty,
			Cost:    r.Cost,
			Price:   r.Price,
			VATRate: r.VATRate,
		}
	}
	return items
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.LineItemResponse, len(o.Items))
	for i, it := range o.Items {
		fig := finance.ComputeLine(it.Line())
		items[i] = dto.LineItemResponse{
			Name:      it.Name,
			Unit:      it.Unit,
			Qty:       it.Qty,
			Cost:      it.Cost,
			Price:     it.Price,
			VATRate:   it.VATRate,
			Subtotal:  fig.Subtotal,
			VAT:       fig.VAT,
			LineTotal: fig.Total,
		}
	}

	return &dto.OrderResponse{
		ID:            o.ID.String(),
		Code:          o.Code,
		Date:          o.Date.Format("2006-01-02"),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Customer: dto.CustomerResponse{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Items: items,
		Financial: dto.FinancialResponse{
			Total:            o.Financial.Total,
			Paid:             o.Financial.Paid,
			Debt:             o.Financial.Debt,
			Staff:            o.Financial.Staff,
			TotalProfit:      o.Financial.TotalProfit,
			TotalCommission:  o.Financial.TotalCommission,
			CommissionStatus: string(o.Financial.CommissionStatus),
			TotalDisplay:     finance.FormatAmount(o.Financial.Total),
			DebtDisplay:      finance.FormatAmount(o.Financial.Debt),
		},
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}
