package worker

// retry_cron.go
// Background goroutine that re-attempts renders for documents stuck in
// status='pending' with a next_retry_at in the past. Renders happen through
// the same DocumentWorker code path as first attempts.

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/repository"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	DocRepo   repository.DocumentRepository
	OrderRepo repository.OrderRepository
	Render    *DocumentWorker
	RDB       *redis.Client
}

// StartRetryCron launches a goroutine that ticks every 30s and re-renders
// overdue documents. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	docs, err := cfg.DocRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(docs) == 0 {
		return
	}

	log.Info().Int("count", len(docs)).Msg("retry_cron: processing pending documents")

	for i := range docs {
		doc := &docs[i]

		order, err := cfg.OrderRepo.FindByCode(ctx, doc.OrderCode)
		if err != nil {
			failRetry(ctx, cfg, doc, fmt.Errorf("order %s not found: %w", doc.OrderCode, err))
			continue
		}

		pdfPath, err := cfg.Render.Render(doc, order)
		if err != nil {
			failRetry(ctx, cfg, doc, err)
			continue
		}

		doc.Status = model.DocRendered
		doc.PDFPath = &pdfPath
		doc.NextRetryAt = nil
		doc.LastError = nil
		_ = cfg.DocRepo.Update(ctx, doc)

		log.Info().
			Str("document_id", doc.ID.String()).
			Int("total_retries", doc.RetryCount).
			Str("pdf", pdfPath).
			Msg("retry_cron: rendered after retry")
	}
}

func failRetry(ctx context.Context, cfg RetryCronConfig, doc *model.Document, cause error) {
	doc.RetryCount++
	msg := cause.Error()
	doc.LastError = &msg

	if doc.RetryCount >= MaxDocumentRetries {
		doc.Status = model.DocError
		doc.NextRetryAt = nil
		log.Error().
			Str("document_id", doc.ID.String()).
			Str("order_code", doc.OrderCode).
			Int("retries", doc.RetryCount).
			Msg("retry_cron: max retries exceeded, moving to error/DLQ")

		payload := fmt.Sprintf(`{"document_id":"%s"}`, doc.ID)
		SendToDLQ(ctx, cfg.RDB, newDeadLetter(QueueRender, "render", []byte(payload),
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxDocumentRetries, msg),
			doc.RetryCount, map[string]string{
				"document_id": doc.ID.String(),
				"order_code":  doc.OrderCode,
				"kind":        doc.Kind,
			}))
	} else {
		next := time.Now().Add(computeRetryBackoff(doc.RetryCount))
		doc.NextRetryAt = &next
		log.Warn().
			Str("document_id", doc.ID.String()).
			Int("retry_count", doc.RetryCount).
			Time("next_retry_at", next).
			Msg("retry_cron: render failed, scheduled next attempt")
	}

	_ = cfg.DocRepo.Update(ctx, doc)
}
