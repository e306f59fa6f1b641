package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Leganyst/room-booking/internal/model"
)

// LocalBookingRepository — локальный режим: набор хранится JSON-файлом процесса.
// Внешних изменений нет, поэтому подписка не поддерживается.
type LocalBookingRepository struct {
	mu   sync.Mutex
	path string
}

func NewLocalBookingRepository(path string) *LocalBookingRepository {
	return &LocalBookingRepository{path: path}
}

func (r *LocalBookingRepository) Networked() bool { return false }

func (r *LocalBookingRepository) Read(ctx context.Context) (model.BookingSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLocked()
}

func (r *LocalBookingRepository) Replace(ctx context.Context, set model.BookingSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeLocked(set)
}

func (r *LocalBookingRepository) InsertIfAbsent(ctx context.Context, key string, booking model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.readLocked()
	if err != nil {
		return err
	}
	if _, ok := set[key]; ok {
		return ErrSlotTaken
	}
	set[key] = booking
	return r.writeLocked(set)
}

func (r *LocalBookingRepository) RemoveIfPresent(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set, err := r.readLocked()
	if err != nil {
		return err
	}
	if _, ok := set[key]; !ok {
		return ErrSlotMissing
	}
	delete(set, key)
	return r.writeLocked(set)
}

func (r *LocalBookingRepository) Subscribe(context.Context) (<-chan model.BookingSet, func(), error) {
	return nil, func() {}, ErrSubscriptionUnsupported
}

func (r *LocalBookingRepository) readLocked() (model.BookingSet, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return model.BookingSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local bookings: %w", err)
	}
	return decodeSet(raw)
}

// writeLocked пишет во временный файл и переименовывает его,
// чтобы файл никогда не оставался записанным наполовину.
func (r *LocalBookingRepository) writeLocked(set model.BookingSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode local bookings: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create local store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bookings-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write local bookings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close local bookings: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("rename local bookings: %w", err)
	}
	return nil
}
