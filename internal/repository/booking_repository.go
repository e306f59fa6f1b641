package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/room-booking/internal/model"
)

// Документ изменился между чтением и записью.
var ErrVersionConflict = errors.New("booking document changed concurrently")

// Сколько раз повторять compare-and-swap при конфликте версий.
const maxCASAttempts = 5

// Реализация на GORM (PostgreSQL или SQLite): весь набор хранится одной
// строкой booking_documents, операции над слотом — compare-and-swap по версии.
type GormBookingRepository struct {
	db     *gorm.DB
	docID  string
	poll   time.Duration
	logger *zap.Logger
	wake   *notifier
}

// NewGormBookingRepository создаёт репозиторий. poll — период опроса версии
// для подписчиков; изменения других процессов видны не позже чем через poll.
func NewGormBookingRepository(db *gorm.DB, poll time.Duration, logger *zap.Logger) *GormBookingRepository {
	return &GormBookingRepository{
		db:     db,
		docID:  model.BookingsDocumentID,
		poll:   poll,
		logger: logger,
		wake:   newNotifier(),
	}
}

func (r *GormBookingRepository) Networked() bool { return true }

func (r *GormBookingRepository) Read(ctx context.Context) (model.BookingSet, error) {
	_, set, err := r.load(ctx)
	return set, err
}

func (r *GormBookingRepository) Replace(ctx context.Context, set model.BookingSet) error {
	raw, err := encodeSet(set)
	if err != nil {
		return err
	}
	if err := r.ensure(ctx); err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Model(&model.BookingDocument{}).
		Where("id = ?", r.docID).
		Updates(map[string]any{
			"data":       datatypes.JSON(raw),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("replace bookings: %w", err)
	}

	r.wake.notify()
	return nil
}

// CompareAndSwap заменяет набор, только если версия документа равна expected.
// Иначе ErrVersionConflict.
func (r *GormBookingRepository) CompareAndSwap(ctx context.Context, expected int64, set model.BookingSet) error {
	raw, err := encodeSet(set)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(&model.BookingDocument{}).
		Where("id = ? AND version = ?", r.docID, expected).
		Updates(map[string]any{
			"data":       datatypes.JSON(raw),
			"version":    expected + 1,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("swap bookings: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	r.wake.notify()
	return nil
}

func (r *GormBookingRepository) InsertIfAbsent(ctx context.Context, key string, booking model.Booking) error {
	return r.update(ctx, func(set model.BookingSet) error {
		if _, ok := set[key]; ok {
			return ErrSlotTaken
		}
		set[key] = booking
		return nil
	})
}

func (r *GormBookingRepository) RemoveIfPresent(ctx context.Context, key string) error {
	return r.update(ctx, func(set model.BookingSet) error {
		if _, ok := set[key]; !ok {
			return ErrSlotMissing
		}
		delete(set, key)
		return nil
	})
}

func (r *GormBookingRepository) Subscribe(ctx context.Context) (<-chan model.BookingSet, func(), error) {
	wake := r.wake.add()

	last := int64(-1)
	read := func(ctx context.Context) (model.BookingSet, error) {
		doc, set, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		if doc.Version == last {
			return nil, errNoChange
		}
		last = doc.Version
		return set, nil
	}

	ch, cancel := watch(ctx, r.logger, read, wake, r.poll, func() { r.wake.remove(wake) })
	return ch, cancel, nil
}

// update применяет fn к свежему снимку и записывает результат через
// compare-and-swap, перечитывая документ при конфликте версий.
func (r *GormBookingRepository) update(ctx context.Context, fn func(model.BookingSet) error) error {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		doc, set, err := r.load(ctx)
		if err != nil {
			return err
		}
		if err := fn(set); err != nil {
			return err
		}

		err = r.CompareAndSwap(ctx, doc.Version, set)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrVersionConflict
}

// load читает документ, создавая пустой при первом обращении.
func (r *GormBookingRepository) load(ctx context.Context) (*model.BookingDocument, model.BookingSet, error) {
	var doc model.BookingDocument
	err := r.db.WithContext(ctx).First(&doc, "id = ?", r.docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.ensure(ctx); err != nil {
			return nil, nil, err
		}
		err = r.db.WithContext(ctx).First(&doc, "id = ?", r.docID).Error
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load bookings: %w", err)
	}

	set, err := decodeSet(doc.Data)
	if err != nil {
		return nil, nil, err
	}
	return &doc, set, nil
}

func (r *GormBookingRepository) ensure(ctx context.Context) error {
	doc := model.BookingDocument{
		ID:        r.docID,
		Data:      datatypes.JSON("{}"),
		UpdatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&doc).Error
	if err != nil {
		return fmt.Errorf("create bookings document: %w", err)
	}
	return nil
}

func encodeSet(set model.BookingSet) ([]byte, error) {
	if set == nil {
		set = model.BookingSet{}
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("encode bookings: %w", err)
	}
	return raw, nil
}

func decodeSet(raw []byte) (model.BookingSet, error) {
	set := model.BookingSet{}
	if len(raw) == 0 {
		return set, nil
	}
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	if set == nil {
		set = model.BookingSet{}
	}
	return set, nil
}
