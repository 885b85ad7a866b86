package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
)

type DocumentRepository interface {
	Create(ctx context.Context, d *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListByOrder(ctx context.Context, orderCode string) ([]model.Document, error)
	Update(ctx context.Context, d *model.Document) error
	// ListPendingRetries returns pending documents whose next retry time has
	// passed, for the retry cron.
	ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.Document, error)
}

type documentRepo struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) DocumentRepository { return &documentRepo{db: db} }

func (r *documentRepo) Create(ctx context.Context, d *model.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var d model.Document
	err := r.db.WithContext(ctx).First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) ListByOrder(ctx context.Context, orderCode string) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("order_code = ?", orderCode).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepo) Update(ctx context.Context, d *model.Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *documentRepo) ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.DocPending, before).
		Limit(limit).
		Find(&docs).Error
	return docs, err
}
