package sqlite

import (
	"context"
	"time"

	"strikebot/internal/store"
	"strikebot/internal/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type hourRepo struct {
	db *gorm.DB
}

func NewHourRepo(db *gorm.DB) *hourRepo {
	return &hourRepo{db: db}
}

func hourKey(t time.Time) int64 {
	return t.UTC().Truncate(time.Hour).Unix()
}

func (r *hourRepo) Exists(ctx context.Context, hour time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.FiredHourModel{}).Where("hour = ?", hourKey(hour)).Count(&n).Error
	return n > 0, err
}

func (r *hourRepo) Mark(ctx context.Context, hour time.Time) error {
	rec := model.FiredHourModel{Hour: hourKey(hour), CreatedAt: time.Now().UnixMilli()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
}

const markerTimeout = 5 * time.Second

// HourMarker adapts the fired_hour table to the scheduler's marker, so a
// restart inside an hour that already fired does not fire again.
type HourMarker struct {
	repo store.HourRepository
}

func (s *SqliteStore) Marker() *HourMarker {
	return &HourMarker{repo: s.Hours()}
}

func (m *HourMarker) Fired(hour time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	return m.repo.Exists(ctx, hour)
}

func (m *HourMarker) Mark(hour time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	return m.repo.Mark(ctx, hour)
}
