package repository

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/model"
)

// RedisBookingRepository хранит набор в hash: поле — ключ слота, значение —
// JSON бронирования. Об изменениях сообщает публикацией в канал.
type RedisBookingRepository struct {
	client  *redis.Client
	key     string
	channel string
	logger  *zap.Logger
}

func NewRedisBookingRepository(client *redis.Client, prefix string, logger *zap.Logger) *RedisBookingRepository {
	key := prefix + ":" + model.BookingsDocumentID
	return &RedisBookingRepository{
		client:  client,
		key:     key,
		channel: key + ":changes",
		logger:  logger,
	}
}

func (r *RedisBookingRepository) Networked() bool { return true }

func (r *RedisBookingRepository) Read(ctx context.Context) (model.BookingSet, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read bookings: %w", err)
	}

	set := make(model.BookingSet, len(fields))
	for slotKey, raw := range fields {
		var b model.Booking
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("decode booking %s: %w", slotKey, err)
		}
		set[slotKey] = b
	}
	return set, nil
}

func (r *RedisBookingRepository) Replace(ctx context.Context, set model.BookingSet) error {
	values := make(map[string]any, len(set))
	for slotKey, b := range set {
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode booking %s: %w", slotKey, err)
		}
		values[slotKey] = raw
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace bookings: %w", err)
	}

	r.publish(ctx)
	return nil
}

func (r *RedisBookingRepository) InsertIfAbsent(ctx context.Context, key string, booking model.Booking) error {
	raw, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("encode booking %s: %w", key, err)
	}

	ok, err := r.client.HSetNX(ctx, r.key, key, raw).Result()
	if err != nil {
		return fmt.Errorf("redis insert booking: %w", err)
	}
	if !ok {
		return ErrSlotTaken
	}

	r.publish(ctx)
	return nil
}

func (r *RedisBookingRepository) RemoveIfPresent(ctx context.Context, key string) error {
	n, err := r.client.HDel(ctx, r.key, key).Result()
	if err != nil {
		return fmt.Errorf("redis remove booking: %w", err)
	}
	if n == 0 {
		return ErrSlotMissing
	}

	r.publish(ctx)
	return nil
}

func (r *RedisBookingRepository) Subscribe(ctx context.Context) (<-chan model.BookingSet, func(), error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	// Дожидаемся подтверждения подписки, чтобы не пропустить изменения.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, func() {}, fmt.Errorf("redis subscribe: %w", err)
	}

	wake := make(chan struct{}, 1)
	go func() {
		defer close(wake)
		for range pubsub.Channel() {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}()

	ch, cancel := watch(ctx, r.logger, r.Read, wake, 0, func() { pubsub.Close() })
	return ch, cancel, nil
}

// publish сообщает подписчикам об изменении. Запись уже выполнена,
// поэтому ошибка публикации только логируется.
func (r *RedisBookingRepository) publish(ctx context.Context) {
	if err := r.client.Publish(ctx, r.channel, "changed").Err(); err != nil {
		r.logger.Warn("redis publish bookings change failed", zap.Error(err))
	}
}
