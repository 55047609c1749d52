package sqlite

import (
	"context"
	"errors"

	"strikebot/internal/store/model"

	"gorm.io/gorm"
)

type cycleRepo struct {
	db *gorm.DB
}

func NewCycleRepo(db *gorm.DB) *cycleRepo {
	return &cycleRepo{db: db}
}

func (r *cycleRepo) Save(ctx context.Context, cycle *model.CycleModel) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

// FindByTraceID returns nil without error when the trace is unknown.
func (r *cycleRepo) FindByTraceID(ctx context.Context, traceID string) (*model.CycleModel, error) {
	var out model.CycleModel
	err := r.db.WithContext(ctx).
		Preload("Attempts", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Where("trace_id = ?", traceID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *cycleRepo) ListRecent(ctx context.Context, limit int) ([]model.CycleModel, error) {
	var out []model.CycleModel
	q := r.db.WithContext(ctx).
		Preload("Attempts", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
