package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
)

// CashbookRepository is append-only on purpose: the ledger has no update or
// delete methods, corrections are new inverse entries.
type CashbookRepository interface {
	Append(ctx context.Context, e *model.CashbookEntry) error
	AppendTx(tx *gorm.DB, e *model.CashbookEntry) error
	List(ctx context.Context, filter dto.CashbookFilter) ([]model.CashbookEntry, int64, error)
	SumByMethod(ctx context.Context) (map[string]decimal.Decimal, error)
	// SumDirection returns the gross total of one direction across the ledger.
	SumDirection(ctx context.Context, direction string) (decimal.Decimal, error)
}

type cashbookRepo struct{ db *gorm.DB }

func NewCashbookRepository(db *gorm.DB) CashbookRepository { return &cashbookRepo{db: db} }

func (r *cashbookRepo) Append(ctx context.Context, e *model.CashbookEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *cashbookRepo) AppendTx(tx *gorm.DB, e *model.CashbookEntry) error {
	return tx.Create(e).Error
}

func (r *cashbookRepo) List(ctx context.Context, filter dto.CashbookFilter) ([]model.CashbookEntry, int64, error) {
	var entries []model.CashbookEntry
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.CashbookEntry{})
	if filter.Month != "" {
		q = q.Where("to_char(date, 'YYYY-MM') = ?", filter.Month)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("date DESC, created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&entries).Error

	return entries, total, err
}

// SumByMethod returns signed totals per payment method (inflows positive,
// outflows negative).
func (r *cashbookRepo) SumByMethod(ctx context.Context) (map[string]decimal.Decimal, error) {
	type row struct {
		Method string
		Sum    decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.CashbookEntry{}).
		Select(`method, COALESCE(SUM(CASE WHEN direction = 'inflow' THEN amount ELSE -amount END), 0) AS sum`).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{
		model.MethodCash:         decimal.Zero,
		model.MethodBankTransfer: decimal.Zero,
	}
	for _, r := range rows {
		sums[r.Method] = r.Sum
	}
	return sums, nil
}

func (r *cashbookRepo) SumDirection(ctx context.Context, direction string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.CashbookEntry{}).
		Where("direction = ?", direction).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
