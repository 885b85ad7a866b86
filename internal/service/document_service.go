package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/worker"
)

type DocumentService interface {
	// RequestRender queues a quote or delivery note for an order. Rendering
	// is asynchronous; poll ListByOrder (or follow the returned ID) for the
	// outcome.
	RequestRender(ctx context.Context, orderCode string, req dto.RequestDocumentRequest) (*dto.DocumentResponse, error)
	ListByOrder(ctx context.Context, orderCode string) ([]dto.DocumentResponse, error)
	// Download resolves a rendered document to its PDF path on disk.
	Download(ctx context.Context, id string) (string, error)
}

type documentService struct {
	repo       repository.DocumentRepository
	orders     repository.OrderRepository
	dispatcher *worker.Dispatcher
}

func NewDocumentService(
	repo repository.DocumentRepository,
	orders repository.OrderRepository,
	dispatcher *worker.Dispatcher,
) DocumentService {
	return &documentService{repo: repo, orders: orders, dispatcher: dispatcher}
}

func (s *documentService) RequestRender(ctx context.Context, orderCode string, req dto.RequestDocumentRequest) (*dto.DocumentResponse, error) {
	if _, err := s.orders.FindByCode(ctx, orderCode); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	doc := &model.Document{
		OrderCode: orderCode,
		Kind:      req.Kind,
		Status:    model.DocPending,
		EmailTo:   req.EmailTo,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		payload := worker.RenderJobPayload{DocumentID: doc.ID.String()}
		if err := s.dispatcher.EnqueueRender(ctx, payload); err != nil {
			// The row exists with a nil NextRetryAt; flag it for the retry
			// cron instead of failing the request.
			next := time.Now().Add(time.Minute)
			doc.NextRetryAt = &next
			_ = s.repo.Update(ctx, doc)
		}
	}

	return docToResponse(doc), nil
}

func (s *documentService) ListByOrder(ctx context.Context, orderCode string) ([]dto.DocumentResponse, error) {
	docs, err := s.repo.ListByOrder(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, len(docs))
	for i := range docs {
		out[i] = *docToResponse(&docs[i])
	}
	return out, nil
}

func (s *documentService) Download(ctx context.Context, id string) (string, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return "", ErrDocumentNotFound
	}
	doc, err := s.repo.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrDocumentNotFound
		}
		return "", err
	}
	if doc.Status != model.DocRendered || doc.PDFPath == nil {
		return "", ErrDocumentNotReady
	}
	return *doc.PDFPath, nil
}

func docToResponse(d *model.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:        d.ID.String(),
		OrderCode: d.OrderCode,
		Kind:      d.Kind,
		Status:    d.Status,
		PDFPath:   d.PDFPath,
		LastError: d.LastError,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
}
