package repository

import (
	"context"
	"errors"

	"github.com/Leganyst/room-booking/internal/model"
)

var (
	// Слот уже занят (InsertIfAbsent).
	ErrSlotTaken = errors.New("slot already taken")
	// Слота нет в наборе (RemoveIfPresent).
	ErrSlotMissing = errors.New("slot not present")
	// Хранилище не умеет рассылать изменения (локальный режим).
	ErrSubscriptionUnsupported = errors.New("subscription is not supported by this store")
)

// Store — внешнее хранилище всего набора бронирований.
type Store interface {
	// Прочитать весь набор.
	Read(ctx context.Context) (model.BookingSet, error)
	// Заменить весь набор одной записью.
	Replace(ctx context.Context, set model.BookingSet) error
	// Подписаться на изменения: сразу приходит текущий снимок, далее по снимку
	// на каждое изменение, включая собственные записи. Канал закрывается после
	// отмены ctx или вызова unsubscribe.
	Subscribe(ctx context.Context) (<-chan model.BookingSet, func(), error)
	// Networked == false означает локальный режим без внешних изменений.
	Networked() bool
}

// SlotStore — хранилище с атомарными операциями над одним слотом.
// Конкурентные бронирования разных слотов не затирают друг друга.
type SlotStore interface {
	Store
	// Записать бронирование, только если слот свободен. Иначе ErrSlotTaken.
	InsertIfAbsent(ctx context.Context, key string, booking model.Booking) error
	// Удалить бронирование, только если оно есть. Иначе ErrSlotMissing.
	RemoveIfPresent(ctx context.Context, key string) error
}
