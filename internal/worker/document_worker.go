package worker

// document_worker.go
// Processes render jobs from QueueRender: loads the document and its order,
// writes the PDF under the storage path and, when an email address was
// supplied, enqueues a delivery job with the file attached.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/finance"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/infra"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
)

// RenderJobPayload is the envelope pushed onto QueueRender.
type RenderJobPayload struct {
	DocumentID string `json:"document_id"`
}

// MaxDocumentRetries bounds the retry cron; documents past it go to the DLQ.
const MaxDocumentRetries = 5

type DocumentWorker struct {
	docRepo    repository.DocumentRepository
	orderRepo  repository.OrderRepository
	dispatcher *Dispatcher
	pdfCfg     infra.PDFConfig
}

func NewDocumentWorker(
	docRepo repository.DocumentRepository,
	orderRepo repository.OrderRepository,
	dispatcher *Dispatcher,
	pdfCfg infra.PDFConfig,
) *DocumentWorker {
	return &DocumentWorker{
		docRepo:    docRepo,
		orderRepo:  orderRepo,
		dispatcher: dispatcher,
		pdfCfg:     pdfCfg,
	}
}

// Process handles one render job end to end.
func (w *DocumentWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload RenderJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("document_worker: invalid payload")
		return
	}
	docID, err := uuid.Parse(payload.DocumentID)
	if err != nil {
		log.Error().Str("document_id", payload.DocumentID).Msg("document_worker: invalid document_id")
		return
	}

	doc, err := w.docRepo.FindByID(ctx, docID)
	if err != nil {
		log.Error().Err(err).Str("document_id", payload.DocumentID).Msg("document_worker: document not found")
		return
	}
	if doc.Status == model.DocRendered {
		// Duplicate delivery of the job; the PDF is already on disk.
		return
	}

	order, err := w.orderRepo.FindByCode(ctx, doc.OrderCode)
	if err != nil {
		w.markFailed(ctx, doc, fmt.Errorf("order %s not found: %w", doc.OrderCode, err))
		return
	}

	pdfPath, err := w.Render(doc, order)
	if err != nil {
		w.markFailed(ctx, doc, err)
		return
	}

	doc.Status = model.DocRendered
	doc.PDFPath = &pdfPath
	doc.NextRetryAt = nil
	doc.LastError = nil
	if err := w.docRepo.Update(ctx, doc); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("document_worker: failed to persist render result")
		return
	}
	log.Info().
		Str("document_id", doc.ID.String()).
		Str("order_code", doc.OrderCode).
		Str("pdf", pdfPath).
		Msg("document_worker: rendered")

	if doc.EmailTo != nil && *doc.EmailTo != "" {
		w.enqueueEmail(ctx, doc, order, pdfPath)
	}
}

// Render writes the PDF for one document kind and returns its path.
// Exposed so the retry cron re-renders through the same code path.
func (w *DocumentWorker) Render(doc *model.Document, order *model.Order) (string, error) {
	switch doc.Kind {
	case model.DocQuote:
		return infra.GenerateQuotePDF(order, w.pdfCfg)
	case model.DocDeliveryNote:
		return infra.GenerateDeliveryNotePDF(order, w.pdfCfg)
	default:
		return "", fmt.Errorf("unknown document kind %q", doc.Kind)
	}
}

func (w *DocumentWorker) enqueueEmail(ctx context.Context, doc *model.Document, order *model.Order, pdfPath string) {
	var subject, body string
	switch doc.Kind {
	case model.DocDeliveryNote:
		subject = fmt.Sprintf("Phiếu giao hàng %s", order.Code)
		body = fmt.Sprintf("Kính gửi %s,\n\nXin gửi kèm phiếu giao hàng cho đơn %s.",
			order.Customer.Name, order.Code)
	default:
		subject = fmt.Sprintf("Báo giá %s", order.Code)
		body = fmt.Sprintf("Kính gửi %s,\n\nXin gửi kèm báo giá cho đơn %s.\nTổng cộng: %s",
			order.Customer.Name, order.Code, finance.FormatAmount(order.Financial.Total))
	}

	job := EmailJobPayload{
		ToEmail: *doc.EmailTo,
		Subject: subject,
		Body:    body,
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("email", *doc.EmailTo).Msg("document_worker: failed to enqueue email")
		return
	}
	log.Info().Str("email", *doc.EmailTo).Str("order_code", order.Code).Msg("document_worker: email job enqueued")
}

// markFailed schedules the next attempt; the retry cron picks it up.
func (w *DocumentWorker) markFailed(ctx context.Context, doc *model.Document, cause error) {
	doc.RetryCount++
	msg := cause.Error()
	doc.LastError = &msg
	next := time.Now().Add(computeRetryBackoff(doc.RetryCount))
	doc.NextRetryAt = &next
	if doc.RetryCount >= MaxDocumentRetries {
		doc.Status = model.DocError
		doc.NextRetryAt = nil
	}
	if err := w.docRepo.Update(ctx, doc); err != nil {
		log.Error().Err(err).Str("document_id", doc.ID.String()).Msg("document_worker: failed to persist failure")
		return
	}
	log.Warn().
		Err(cause).
		Str("document_id", doc.ID.String()).
		Int("retry_count", doc.RetryCount).
		Msg("document_worker: render failed")
}

// computeRetryBackoff doubles per attempt: 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Minute << uint(retryCount-1)
	if backoff > 30*time.Minute || backoff <= 0 {
		backoff = 30 * time.Minute
	}
	return backoff
}
