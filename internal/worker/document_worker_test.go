package worker

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/infra"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
)

type memDocRepo struct {
	docs map[uuid.UUID]*model.Document
}

func (r *memDocRepo) Create(_ context.Context, d *model.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *memDocRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memDocRepo) ListByOrder(_ context.Context, code string) ([]model.Document, error) {
	var out []model.Document
	for _, d := range r.docs {
		if d.OrderCode == code {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDocRepo) Update(_ context.Context, d *model.Document) error {
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *memDocRepo) ListPendingRetries(_ context.Context, before time.Time, limit int) ([]model.Document, error) {
	var out []model.Document
	for _, d := range r.docs {
		if d.Status == model.DocPending && d.NextRetryAt != nil && d.NextRetryAt.Before(before) {
			out = append(out, *d)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ repository.DocumentRepository = (*memDocRepo)(nil)

type memOrderRepo struct {
	orders map[string]*model.Order
}

func (r *memOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.orders[o.Code] = o
	return nil
}

func (r *memOrderRepo) FindByCode(_ context.Context, code string) (*model.Order, error) {
	o, ok := r.orders[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *memOrderRepo) List(_ context.Context, _ dto.OrderFilter) ([]model.Order, int64, error) {
	return nil, 0, nil
}

func (r *memOrderRepo) UpdateFields(_ context.Context, _ *gorm.DB, _ string, _ map[string]interface{}) error {
	return nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, _ string, _, _ model.Status) error {
	return nil
}

func (r *memOrderRepo) FindLatestByPhone(_ context.Context, _ string) (*model.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) Delete(_ context.Context, _ string) error { return nil }
func (r *memOrderRepo) DB() *gorm.DB                             { return nil }

var _ repository.OrderRepository = (*memOrderRepo)(nil)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedWorker(t *testing.T) (*DocumentWorker, *memDocRepo, *memOrderRepo, string) {
	t.Helper()
	dir := t.TempDir()
	docRepo := &memDocRepo{docs: make(map[uuid.UUID]*model.Document)}
	orderRepo := &memOrderRepo{orders: make(map[string]*model.Order)}

	order := &model.Order{
		ID:     uuid.New(),
		Code:   "001/DH.25",
		Date:   time.Now(),
		Status: model.StatusQuote,
		Customer: model.Customer{
			Name:  "Chị Hoa",
			Phone: "0912345678",
		},
		Items: model.LineItems{
			{Name: "In tờ rơi A5", Unit: "tờ", Qty: dec("1000"), Cost: dec("300"), Price: dec("500"), VATRate: dec("10")},
		},
		Financial: model.Financial{
			Total: dec("550000"),
			Debt:  dec("550000"),
			Staff: "Nam",
		},
	}
	require.NoError(t, orderRepo.Create(context.Background(), order))

	w := NewDocumentWorker(docRepo, orderRepo, nil, infra.PDFConfig{
		CompanyName:    "Xưởng In Test",
		CompanyAddress: "1 Đường Số 1",
		StoragePath:    dir,
	})
	return w, docRepo, orderRepo, dir
}

func TestDocumentWorker_RendersQuote(t *testing.T) {
	w, docRepo, _, _ := seedWorker(t)

	doc := &model.Document{OrderCode: "001/DH.25", Kind: model.DocQuote, Status: model.DocPending}
	require.NoError(t, docRepo.Create(context.Background(), doc))

	payload, _ := json.Marshal(RenderJobPayload{DocumentID: doc.ID.String()})
	w.Process(context.Background(), payload)

	stored, err := docRepo.FindByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocRendered, stored.Status)
	require.NotNil(t, stored.PDFPath)
	assert.Nil(t, stored.NextRetryAt)

	info, err := os.Stat(*stored.PDFPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestDocumentWorker_RendersDeliveryNote(t *testing.T) {
	w, docRepo, _, _ := seedWorker(t)

	doc := &model.Document{OrderCode: "001/DH.25", Kind: model.DocDeliveryNote, Status: model.DocPending}
	require.NoError(t, docRepo.Create(context.Background(), doc))

	payload, _ := json.Marshal(RenderJobPayload{DocumentID: doc.ID.String()})
	w.Process(context.Background(), payload)

	stored, _ := docRepo.FindByID(context.Background(), doc.ID)
	assert.Equal(t, model.DocRendered, stored.Status)
	require.NotNil(t, stored.PDFPath)
	assert.FileExists(t, *stored.PDFPath)
}

func TestDocumentWorker_UnknownKindSchedulesRetry(t *testing.T) {
	w, docRepo, _, _ := seedWorker(t)

	doc := &model.Document{OrderCode: "001/DH.25", Kind: "poster", Status: model.DocPending}
	require.NoError(t, docRepo.Create(context.Background(), doc))

	payload, _ := json.Marshal(RenderJobPayload{DocumentID: doc.ID.String()})
	w.Process(context.Background(), payload)

	stored, _ := docRepo.FindByID(context.Background(), doc.ID)
	assert.Equal(t, model.DocPending, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	require.NotNil(t, stored.NextRetryAt)
	require.NotNil(t, stored.LastError)
	assert.Contains(t, *stored.LastError, "poster")
}

func TestDocumentWorker_MissingOrderFails(t *testing.T) {
	w, docRepo, _, _ := seedWorker(t)

	doc := &model.Document{OrderCode: "404/DH.25", Kind: model.DocQuote, Status: model.DocPending}
	require.NoError(t, docRepo.Create(context.Background(), doc))

	payload, _ := json.Marshal(RenderJobPayload{DocumentID: doc.ID.String()})
	w.Process(context.Background(), payload)

	stored, _ := docRepo.FindByID(context.Background(), doc.ID)
	assert.Equal(t, 1, stored.RetryCount)
	require.NotNil(t, stored.LastError)
}

func TestComputeRetryBackoff(t *testing.T) {
	assert.Equal(t, time.Minute, computeRetryBackoff(1))
	assert.Equal(t, 2*time.Minute, computeRetryBackoff(2))
	assert.Equal(t, 4*time.Minute, computeRetryBackoff(3))
	// capped
	assert.Equal(t, 30*time.Minute, computeRetryBackoff(10))
	assert.Equal(t, 30*time.Minute, computeRetryBackoff(40))
}
