package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/dto"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByCode(ctx context.Context, code string) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	// UpdateFields writes only the named columns — concurrent operators on
	// the same row must not clobber each other's unrelated fields.
	UpdateFields(ctx context.Context, tx *gorm.DB, code string, fields map[string]interface{}) error
	// UpdateStatus moves an order from one stage to another only if it is
	// still in the expected stage; returns gorm.ErrRecordNotFound when a
	// concurrent write got there first.
	UpdateStatus(ctx context.Context, code string, from, to model.Status) error
	// FindLatestByPhone returns the most recent order whose customer phone
	// matches, for prefilling repeat customers.
	FindLatestByPhone(ctx context.Context, phone string) (*model.Order, error)
	Delete(ctx context.Context, code string) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByCode(ctx context.Context, code string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Staff != "" {
		q = q.Where("financial->>'staff' = ?", filter.Staff)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) UpdateFields(ctx context.Context, tx *gorm.DB, code string, fields map[string]interface{}) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.WithContext(ctx).Model(&model.Order{}).Where("code = ?", code).Updates(fields).Error
}

func (r *orderRepo) UpdateStatus(ctx context.Context, code string, from, to model.Status) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("code = ? AND status = ?", code, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepo) FindLatestByPhone(ctx context.Context, phone string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("customer->>'phone' = ?", phone).
		Order("created_at DESC").
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Where("code = ?", code).Delete(&model.Order{}).Error
}
