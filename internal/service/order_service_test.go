package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/finance"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/service"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubOrderRepo is an in-memory OrderRepository.
type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order

	// beforeStatusSwap runs between the service's read and its guarded
	// status write, to stage a competing operator.
	beforeStatusSwap func()
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*model.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[o.Code]; exists {
		return fmt.Errorf("duplicate code %s", o.Code)
	}
	cp := *o
	r.orders[o.Code] = &cp
	return nil
}

func (r *stubOrderRepo) FindByCode(_ context.Context, code string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if filter.Status != "" && filter.Status != "all" && string(o.Status) != filter.Status {
			continue
		}
		if filter.Staff != "" && o.Financial.Staff != filter.Staff {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) UpdateFields(_ context.Context, _ *gorm.DB, code string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range fields {
		switch col {
		case "status":
			o.Status = v.(model.Status)
		case "payment_status":
			o.PaymentStatus = v.(model.PaymentStatus)
		case "financial":
			o.Financial = v.(model.Financial)
		case "customer":
			o.Customer = v.(model.Customer)
		case "items":
			o.Items = v.(model.LineItems)
		case "updated_at":
			o.UpdatedAt = v.(time.Time)
		}
	}
	return nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, code string, from, to model.Status) error {
	if r.beforeStatusSwap != nil {
		r.beforeStatusSwap()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok || o.Status != from {
		return gorm.ErrRecordNotFound
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	return nil
}

func (r *stubOrderRepo) FindLatestByPhone(_ context.Context, phone string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Order
	for _, o := range r.orders {
		if o.Customer.Phone != phone {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *stubOrderRepo) Delete(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, code)
	return nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// stubCashbookRepo captures appended entries for assertion.
type stubCashbookRepo struct {
	mu      sync.Mutex
	entries []model.CashbookEntry
}

func (r *stubCashbookRepo) Append(_ context.Context, e *model.CashbookEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubCashbookRepo) AppendTx(tx *gorm.DB, e *model.CashbookEntry) error {
	return r.Append(context.Background(), e)
}

func (r *stubCashbookRepo) List(_ context.Context, _ dto.CashbookFilter) ([]model.CashbookEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.CashbookEntry(nil), r.entries...), int64(len(r.entries)), nil
}

func (r *stubCashbookRepo) SumByMethod(_ context.Context) (map[string]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sums := map[string]decimal.Decimal{
		model.MethodCash:         decimal.Zero,
		model.MethodBankTransfer: decimal.Zero,
	}
	for _, e := range r.entries {
		amt := e.Amount
		if e.Direction == model.DirectionOutflow {
			amt = amt.Neg()
		}
		sums[e.Method] = sums[e.Method].Add(amt)
	}
	return sums, nil
}

func (r *stubCashbookRepo) SumDirection(_ context.Context, direction string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.Direction == direction {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

var _ repository.CashbookRepository = (*stubCashbookRepo)(nil)

// stubSeqRepo allocates sequences per year suffix, atomically.
type stubSeqRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newStubSeqRepo() *stubSeqRepo { return &stubSeqRepo{seqs: make(map[string]int64)} }

func (r *stubSeqRepo) NextOrderSeq(_ context.Context, yearSuffix string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[yearSuffix]++
	return r.seqs[yearSuffix], nil
}

var _ repository.SequenceRepository = (*stubSeqRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func testRateTable() finance.RateTable {
	return finance.NewRateTable(map[string]float64{"Nam": 0.6, "Vạn": 0.5}, 0.3)
}

func buildOrderSvc() (service.OrderService, *stubOrderRepo, *stubCashbookRepo) {
	orderRepo := newStubOrderRepo()
	cashbookRepo := &stubCashbookRepo{}
	svc := service.NewOrderService(orderRepo, cashbookRepo, newStubSeqRepo(), testRateTable())
	return svc, orderRepo, cashbookRepo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// bannerOrder: 2 units at 100000, cost 60000, VAT 10% → total 220000,
// profit 80000, commission for Nam 48000.
func bannerOrder() dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Customer: dto.CustomerRequest{Name: "Anh Tuấn", Phone: "0901234567", Address: "12 Lê Lợi"},
		Items: []dto.LineItemRequest{
			{Name: "Băng rôn 3x1m", Unit: "cái", Qty: dec("2"), Cost: dec("60000"), Price: dec("100000"), VATRate: dec("10")},
		},
		Staff: "Nam",
	}
}

func advanceTo(t *testing.T, svc service.OrderService, code string, target model.Status) {
	t.Helper()
	for {
		resp, err := svc.Get(context.Background(), code)
		require.NoError(t, err)
		if resp.Status == string(target) {
			return
		}
		_, err = svc.Advance(context.Background(), code)
		require.NoError(t, err)
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCreateOrder_Snapshot(t *testing.T) {
	svc, _, _ := buildOrderSvc()

	resp, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	yy := time.Now().Format("06")
	assert.Equal(t, fmt.Sprintf("001/DH.%s", yy), resp.Code)
	assert.Equal(t, "quote", resp.Status)
	assert.Equal(t, "unpaid", resp.PaymentStatus)

	fin := resp.Financial
	assert.True(t, fin.Total.Equal(dec("220000")), "total = %s", fin.Total)
	assert.True(t, fin.Paid.IsZero())
	assert.True(t, fin.Debt.Equal(dec("220000")))
	assert.True(t, fin.TotalProfit.Equal(dec("80000")))
	assert.True(t, fin.TotalCommission.Equal(dec("48000")), "commission = %s", fin.TotalCommission)
	assert.Equal(t, "not_paid", fin.CommissionStatus)
	assert.Equal(t, "220.000", fin.TotalDisplay)

	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].LineTotal.Equal(dec("220000")))
}

func TestCreateOrder_SerialCodes(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	yy := time.Now().Format("06")
	for i := 1; i <= 3; i++ {
		resp, err := svc.Create(context.Background(), bannerOrder())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%03d/DH.%s", i, yy), resp.Code)
	}
}

func TestCreateOrder_ConcurrentCodesUnique(t *testing.T) {
	svc, repo, _ := buildOrderSvc()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), bannerOrder())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	// The stub repo rejects duplicate codes, so n stored orders proves
	// n distinct codes.
	assert.Len(t, repo.orders, n)
}

func TestAdvance_WalksThePipeline(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	want := []string{"design", "production", "delivery", "debt"}
	for _, expected := range want {
		resp, err := svc.Advance(context.Background(), created.Code)
		require.NoError(t, err)
		assert.Equal(t, expected, resp.Status)
	}

	// debt does not advance without settlement
	_, err = svc.Advance(context.Background(), created.Code)
	assert.ErrorIs(t, err, service.ErrSettlementRequired)
}

func TestAdvance_LosesRaceToConcurrentOperator(t *testing.T) {
	svc, repo, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	// A second operator advances the order between our read and our write.
	repo.beforeStatusSwap = func() {
		repo.mu.Lock()
		repo.orders[created.Code].Status = model.StatusDesign
		repo.mu.Unlock()
		repo.beforeStatusSwap = nil
	}

	_, err = svc.Advance(context.Background(), created.Code)
	assert.ErrorIs(t, err, service.ErrOrderModified)

	// The order moved exactly one stage, not two.
	stored, _ := repo.FindByCode(context.Background(), created.Code)
	assert.Equal(t, model.StatusDesign, stored.Status)

	// Reloading picks up the fresh stage and the retry goes through.
	resp, err := svc.Advance(context.Background(), created.Code)
	require.NoError(t, err)
	assert.Equal(t, "production", resp.Status)
}

func TestAdvance_DoneIsTerminal(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	advanceTo(t, svc, created.Code, model.StatusDelivery)

	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("220000"), Method: "cash",
	})
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), created.Code)
	assert.ErrorIs(t, err, service.ErrTerminalStatus)
}

func TestRecordPayment_FullSettlementFinishes(t *testing.T) {
	svc, repo, cashbook := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	advanceTo(t, svc, created.Code, model.StatusDelivery)

	resp, err := svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("220000"), Method: "bank_transfer", Note: "CK toàn bộ",
	})
	require.NoError(t, err)

	assert.Equal(t, "done", resp.Status)
	assert.Equal(t, "paid", resp.PaymentStatus)
	assert.True(t, resp.Financial.Debt.IsZero())

	// Ledger entry written with the order code attached
	require.Len(t, cashbook.entries, 1)
	e := cashbook.entries[0]
	assert.Equal(t, model.DirectionInflow, e.Direction)
	assert.True(t, e.Amount.Equal(dec("220000")))
	assert.Equal(t, "bank_transfer", e.Method)
	require.NotNil(t, e.OrderCode)
	assert.Equal(t, created.Code, *e.OrderCode)

	stored, _ := repo.FindByCode(context.Background(), created.Code)
	assert.NoError(t, stored.CheckBooks())
}

func TestRecordPayment_PartialAtDeliveryParksDebt(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	advanceTo(t, svc, created.Code, model.StatusDelivery)

	resp, err := svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("100000"), Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "debt", resp.Status)
	assert.Equal(t, "partially_paid", resp.PaymentStatus)
	assert.True(t, resp.Financial.Debt.Equal(dec("120000")))

	// Second payment settles the remainder and finishes the order
	resp, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("120000"), Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Status)
	assert.Equal(t, "paid", resp.PaymentStatus)
	assert.True(t, resp.Financial.Paid.Equal(dec("220000")))
	assert.True(t, resp.Financial.Debt.IsZero())
}

func TestRecordPayment_IdenticalPaymentsDoubleCount(t *testing.T) {
	svc, _, cashbook := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	advanceTo(t, svc, created.Code, model.StatusDelivery)

	// There is no idempotency dedup: the same request twice records two
	// payments and two ledger lines.
	pay := dto.RecordPaymentRequest{Amount: dec("110000"), Method: "cash"}
	_, err = svc.RecordPayment(context.Background(), created.Code, pay)
	require.NoError(t, err)
	resp, err := svc.RecordPayment(context.Background(), created.Code, pay)
	require.NoError(t, err)

	assert.True(t, resp.Financial.Paid.Equal(dec("220000")))
	assert.True(t, resp.Financial.Debt.IsZero())
	assert.Equal(t, "done", resp.Status)
	require.Len(t, cashbook.entries, 2)
	assert.True(t, cashbook.entries[0].Amount.Equal(dec("110000")))
	assert.True(t, cashbook.entries[1].Amount.Equal(dec("110000")))
}

func TestRecordPayment_Validation(t *testing.T) {
	svc, repo, cashbook := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	// Payments are not accepted while the order is still a quote
	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("1000"), Method: "cash",
	})
	assert.ErrorIs(t, err, service.ErrPaymentNotAllowed)

	advanceTo(t, svc, created.Code, model.StatusDelivery)

	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("0"), Method: "cash",
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("-5"), Method: "cash",
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("220001"), Method: "cash",
	})
	assert.ErrorIs(t, err, service.ErrOverpayment)

	// Rejected payments leave the order and the ledger untouched
	stored, _ := repo.FindByCode(context.Background(), created.Code)
	assert.True(t, stored.Financial.Paid.IsZero())
	assert.Equal(t, model.StatusDelivery, stored.Status)
	assert.Empty(t, cashbook.entries)
}

func TestRecordPayment_UnknownOrder(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	_, err := svc.RecordPayment(context.Background(), "999/DH.99", dto.RecordPaymentRequest{
		Amount: dec("1000"), Method: "cash",
	})
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestEdit_RecomputesKeepingPaid(t *testing.T) {
	svc, repo, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	advanceTo(t, svc, created.Code, model.StatusDelivery)

	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("100000"), Method: "cash",
	})
	require.NoError(t, err)

	// Reprice: 3 units at 150000, cost 50000, no VAT → total 450000,
	// profit 300000; staff switches to the 0.5 tier.
	req := dto.EditOrderRequest{
		Customer: dto.CustomerRequest{Name: "Anh Tuấn", Phone: "0901234567"},
		Items: []dto.LineItemRequest{
			{Name: "Băng rôn 3x1m", Unit: "cái", Qty: dec("3"), Cost: dec("50000"), Price: dec("150000"), VATRate: dec("0")},
		},
		Staff: "Vạn",
	}
	resp, err := svc.Edit(context.Background(), created.Code, req)
	require.NoError(t, err)

	fin := resp.Financial
	assert.True(t, fin.Total.Equal(dec("450000")))
	assert.True(t, fin.Paid.Equal(dec("100000")), "paid survives the edit")
	assert.True(t, fin.Debt.Equal(dec("350000")))
	assert.True(t, fin.TotalProfit.Equal(dec("300000")))
	assert.True(t, fin.TotalCommission.Equal(dec("150000")))
	assert.Equal(t, "Vạn", fin.Staff)
	assert.Equal(t, "partially_paid", resp.PaymentStatus)
	// The pipeline stage is not touched by an edit
	assert.Equal(t, "debt", resp.Status)

	stored, _ := repo.FindByCode(context.Background(), created.Code)
	assert.NoError(t, stored.CheckBooks())
}

func TestEdit_DoneOrderReopensDebt(t *testing.T) {
	svc, repo, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	advanceTo(t, svc, created.Code, model.StatusDelivery)
	_, err = svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("220000"), Method: "cash",
	})
	require.NoError(t, err)

	// Correcting a settled order reprices it in place: the order stays done,
	// but the unpaid difference reappears as debt.
	req := dto.EditOrderRequest{
		Customer: dto.CustomerRequest{Name: "Anh Tuấn", Phone: "0901234567"},
		Items: []dto.LineItemRequest{
			{Name: "Băng rôn 2x1m", Unit: "cái", Qty: dec("2"), Cost: dec("60000"), Price: dec("125000"), VATRate: dec("0.1")},
		},
		Staff: "Nam",
	}
	resp, err := svc.Edit(context.Background(), created.Code, req)
	require.NoError(t, err)

	assert.Equal(t, "done", resp.Status)
	assert.True(t, resp.Financial.Total.Equal(dec("275000")))
	assert.True(t, resp.Financial.Paid.Equal(dec("220000")))
	assert.True(t, resp.Financial.Debt.Equal(dec("55000")))
	assert.Equal(t, "partially_paid", resp.PaymentStatus)

	// The reopened debt is collected like any other payment.
	settled, err := svc.RecordPayment(context.Background(), created.Code, dto.RecordPaymentRequest{
		Amount: dec("55000"), Method: "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "done", settled.Status)
	assert.Equal(t, "paid", settled.PaymentStatus)
	assert.True(t, settled.Financial.Debt.IsZero())

	stored, _ := repo.FindByCode(context.Background(), created.Code)
	assert.NoError(t, stored.CheckBooks())
}

func TestDelete_OnlyQuotes(t *testing.T) {
	svc, repo, _ := buildOrderSvc()

	quote, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), quote.Code))
	assert.Empty(t, repo.orders)

	committed, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), committed.Code)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), committed.Code)
	assert.ErrorIs(t, err, service.ErrOrderNotDeletable)
	assert.Len(t, repo.orders, 1)
}

func TestSetCommissionPaid_Toggles(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	created, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	resp, err := svc.SetCommissionPaid(context.Background(), created.Code, true)
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Financial.CommissionStatus)

	resp, err = svc.SetCommissionPaid(context.Background(), created.Code, false)
	require.NoError(t, err)
	assert.Equal(t, "not_paid", resp.Financial.CommissionStatus)
}

func TestList_FiltersByStatusAndStaff(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	a, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	other := bannerOrder()
	other.Staff = "Vạn"
	_, err = svc.Create(context.Background(), other)
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), a.Code)
	require.NoError(t, err)

	byStatus, err := svc.List(context.Background(), dto.OrderFilter{Status: "design", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, byStatus.Data, 1)
	assert.Equal(t, a.Code, byStatus.Data[0].Code)

	byStaff, err := svc.List(context.Background(), dto.OrderFilter{Staff: "Vạn", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, byStaff.Data, 1)
	assert.Equal(t, "Vạn", byStaff.Data[0].Financial.Staff)
}

func TestLookupCustomer(t *testing.T) {
	svc, _, _ := buildOrderSvc()
	_, err := svc.Create(context.Background(), bannerOrder())
	require.NoError(t, err)

	c, err := svc.LookupCustomer(context.Background(), "0901234567")
	require.NoError(t, err)
	assert.Equal(t, "Anh Tuấn", c.Name)
	assert.Equal(t, "12 Lê Lợi", c.Address)

	_, err = svc.LookupCustomer(context.Background(), "0000000000")
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}
