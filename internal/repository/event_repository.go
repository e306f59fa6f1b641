package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/room-booking/internal/model"
)

type EventRepository interface {
	// Сохранить событие аудита.
	Create(ctx context.Context, event *model.Event) error
	// События по слоту, новые первыми.
	ListBySlot(ctx context.Context, slotKey string, limit int) ([]model.Event, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormEventRepository) ListBySlot(ctx context.Context, slotKey string, limit int) ([]model.Event, error) {
	var events []model.Event
	q := r.db.WithContext(ctx).
		Where("slot_key = ?", slotKey).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
