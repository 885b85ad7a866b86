package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
)

type CashbookService interface {
	Append(ctx context.Context, req dto.AppendEntryRequest) (*dto.CashbookEntryResponse, error)
	List(ctx context.Context, filter dto.CashbookFilter) (*dto.CashbookListResponse, error)
	Summary(ctx context.Context) (*dto.CashbookSummaryResponse, error)
}

type cashbookService struct {
	repo repository.CashbookRepository
}

func NewCashbookService(repo repository.CashbookRepository) CashbookService {
	return &cashbookService{repo: repo}
}

// Append records a manual ledger line. Order payments never come through
// here — they are written inside the payment transaction with the order
// code attached.
func (s *cashbookService) Append(ctx context.Context, req dto.AppendEntryRequest) (*dto.CashbookEntryResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	entry := &model.CashbookEntry{
		Date:      time.Now(),
		Direction: req.Direction,
		Amount:    req.Amount,
		Method:    req.Method,
		Note:      req.Note,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entryToResponse(entry), nil
}

func (s *cashbookService) List(ctx context.Context, filter dto.CashbookFilter) (*dto.CashbookListResponse, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.CashbookListResponse{
		Data:  make([]dto.CashbookEntryResponse, 0, len(entries)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range entries {
		resp.Data = append(resp.Data, *entryToResponse(&entries[i]))
	}
	return resp, nil
}

// Summary folds the whole ledger into per-method balances plus gross
// inflow/outflow. Method sums come signed from the repository; gross totals
// are recovered from their sign.
func (s *cashbookService) Summary(ctx context.Context) (*dto.CashbookSummaryResponse, error) {
	sums, err := s.repo.SumByMethod(ctx)
	if err != nil {
		return nil, err
	}

	inflow, err := s.repo.SumDirection(ctx, model.DirectionInflow)
	if err != nil {
		return nil, err
	}
	outflow, err := s.repo.SumDirection(ctx, model.DirectionOutflow)
	if err != nil {
		return nil, err
	}

	balance := decimal.Zero
	for _, v := range sums {
		balance = balance.Add(v)
	}

	return &dto.CashbookSummaryResponse{
		Inflow:  inflow,
		Outflow: outflow,
		Balance: balance,
		Methods: sums,
	}, nil
}

func entryToResponse(e *model.CashbookEntry) *dto.CashbookEntryResponse {
	return &dto.CashbookEntryResponse{
		ID:        e.ID.String(),
		Date:      e.Date.Format("2006-01-02"),
		Direction: e.Direction,
		Amount:    e.Amount,
		Method:    e.Method,
		Note:      e.Note,
		OrderCode: e.OrderCode,
	}
}
