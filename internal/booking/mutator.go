package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
)

// Confirm возвращает новый набор с бронированием под key.
// Исходный набор не меняется.
func Confirm(current model.BookingSet, key string, b model.Booking) (model.BookingSet, error) {
	if err := requireSlot(key, b); err != nil {
		return nil, err
	}
	if _, ok := current[key]; ok {
		return nil, ErrSlotOccupied
	}

	next := current.Clone()
	next[key] = b
	return next, nil
}

// Cancel возвращает новый набор без key. Секрет проверяется до поиска слота,
// чтобы неверный секрет не раскрывал, занят ли слот.
func Cancel(current model.BookingSet, key, credential string, auth Authorizer) (model.BookingSet, error) {
	if !auth.AuthorizeCancel(credential) {
		return nil, ErrUnauthorized
	}
	if _, ok := current[key]; !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	delete(next, key)
	return next, nil
}

// Mutator пишет изменения в хранилище. Если хранилище поддерживает операции
// над отдельным слотом, используются они; иначе набор читается, меняется и
// записывается целиком (последняя запись выигрывает).
type Mutator struct {
	store repository.Store
	auth  Authorizer
}

func NewMutator(store repository.Store, auth Authorizer) *Mutator {
	return &Mutator{store: store, auth: auth}
}

// Confirm бронирует слот key.
func (m *Mutator) Confirm(ctx context.Context, key string, b model.Booking) error {
	if err := requireSlot(key, b); err != nil {
		return err
	}

	if ss, ok := m.store.(repository.SlotStore); ok {
		return translateStoreErr(ss.InsertIfAbsent(ctx, key, b))
	}

	current, err := m.store.Read(ctx)
	if err != nil {
		return translateStoreErr(err)
	}
	next, err := Confirm(current, key, b)
	if err != nil {
		return err
	}
	return translateStoreErr(m.store.Replace(ctx, next))
}

// Cancel снимает бронирование key, если credential подходит.
func (m *Mutator) Cancel(ctx context.Context, key, credential string) error {
	if !m.auth.AuthorizeCancel(credential) {
		return ErrUnauthorized
	}

	if ss, ok := m.store.(repository.SlotStore); ok {
		return translateStoreErr(ss.RemoveIfPresent(ctx, key))
	}

	current, err := m.store.Read(ctx)
	if err != nil {
		return translateStoreErr(err)
	}
	next, err := Cancel(current, key, credential, m.auth)
	if err != nil {
		return err
	}
	return translateStoreErr(m.store.Replace(ctx, next))
}

// Authorize проверяет секрет без обращения к хранилищу.
func (m *Mutator) Authorize(credential string) bool {
	return m.auth.AuthorizeCancel(credential)
}

func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSlotTaken):
		return ErrSlotOccupied
	case errors.Is(err, repository.ErrSlotMissing):
		return ErrNotFound
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}
