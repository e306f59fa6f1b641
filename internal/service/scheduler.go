package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/booking"
	"github.com/Leganyst/room-booking/internal/calendar"
	"github.com/Leganyst/room-booking/internal/events"
	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
	"github.com/Leganyst/room-booking/internal/stats"
)

// ConfirmRequest — выбор пользователя: неделя, день (0 = воскресенье), урок и данные.
type ConfirmRequest struct {
	Week     int
	DayIndex int
	Period   int
	Details  model.BookingDetails
}

type SchedulerConfig struct {
	Location *time.Location
	// Таймаут одной операции с хранилищем; 0 — без таймаута.
	StoreTimeout time.Duration
	// Время "сейчас"; по умолчанию time.Now в Location.
	Clock func() time.Time
}

// Scheduler держит текущий снимок бронирований и проводит через хранилище
// бронирование и отмену. В сетевом режиме снимок обновляет только подписка,
// в локальном — сам Scheduler после успешной записи.
type Scheduler struct {
	store     repository.Store
	mutator   *booking.Mutator
	validator *booking.Validator
	publisher events.Publisher
	logger    *zap.Logger

	loc     *time.Location
	timeout time.Duration
	clock   func() time.Time

	mu       sync.RWMutex
	snapshot model.BookingSet
	saving   atomic.Bool

	watchMu  sync.Mutex
	watchers map[chan model.BookingSet]struct{}

	unsubscribe func()
}

func NewScheduler(
	store repository.Store,
	auth booking.Authorizer,
	validator *booking.Validator,
	publisher events.Publisher,
	logger *zap.Logger,
	cfg SchedulerConfig,
) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	if publisher == nil {
		publisher = events.Multi{}
	}
	return &Scheduler{
		store:       store,
		mutator:     booking.NewMutator(store, auth),
		validator:   validator,
		publisher:   publisher,
		logger:      logger,
		loc:         loc,
		timeout:     cfg.StoreTimeout,
		clock:       clock,
		snapshot:    model.BookingSet{},
		watchers:    make(map[chan model.BookingSet]struct{}),
		unsubscribe: func() {},
	}
}

// Start загружает набор. Для сетевого хранилища подписывается на изменения
// и ждёт первый снимок не дольше StoreTimeout. При ошибке снимок остаётся пустым.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.store.Networked() {
		set, err := s.read(ctx)
		if err != nil {
			return err
		}
		s.apply(set)
		return nil
	}

	ch, unsubscribe, err := s.store.Subscribe(ctx)
	if err != nil {
		s.logger.Error("subscribe to bookings failed", zap.Error(err))
		return fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, err)
	}
	s.unsubscribe = unsubscribe

	waitCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	select {
	case set, ok := <-ch:
		if !ok {
			return fmt.Errorf("%w: subscription closed", booking.ErrStoreUnavailable)
		}
		s.apply(set)
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			unsubscribe()
			return fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, ctx.Err())
		}
		// Подписка остаётся: снимок придёт, когда хранилище ответит.
		s.logger.Error("initial bookings snapshot not received", zap.Duration("timeout", s.timeout))
		go s.follow(ch)
		return fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, waitCtx.Err())
	}

	go s.follow(ch)
	return nil
}

func (s *Scheduler) follow(ch <-chan model.BookingSet) {
	for set := range ch {
		s.apply(set)
	}
	s.logger.Info("bookings subscription closed")
}

// Close отменяет подписку и закрывает каналы наблюдателей.
func (s *Scheduler) Close() {
	s.unsubscribe()

	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
}

// Now — текущее время в часовом поясе школы.
func (s *Scheduler) Now() time.Time { return s.clock().In(s.loc) }

func (s *Scheduler) Location() *time.Location { return s.loc }

func (s *Scheduler) Networked() bool { return s.store.Networked() }

func (s *Scheduler) Catalog() model.Catalog { return s.validator.Catalog() }

// Saving == true, пока запись в хранилище не завершилась.
func (s *Scheduler) Saving() bool { return s.saving.Load() }

// Snapshot возвращает копию текущего набора.
func (s *Scheduler) Snapshot() model.BookingSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}

func (s *Scheduler) Weeks(now time.Time) []model.WeekOption {
	return calendar.WeekOptions(now)
}

func (s *Scheduler) DefaultWeek(now time.Time) (int, bool) {
	return calendar.DefaultWeek(now)
}

func (s *Scheduler) WeekGrid(week int, now time.Time) model.WeekGrid {
	return calendar.BuildWeekGrid(week, s.Snapshot(), now)
}

func (s *Scheduler) PastStats(now time.Time) stats.Past {
	return stats.PastStats(s.Snapshot(), now)
}

func (s *Scheduler) Upcoming(now time.Time) []model.Entry {
	return stats.FutureBookings(s.Snapshot(), now)
}

func (s *Scheduler) AllBookings(now time.Time) []model.Entry {
	return stats.AllBookingsSorted(s.Snapshot(), now)
}

func (s *Scheduler) WeekBookings(week int, now time.Time) []model.Entry {
	return stats.WeekBookings(s.Snapshot(), week, now)
}

// Confirm бронирует ячейку. Проверки по порядку: неделя открыта, данные
// заполнены и из справочников, слот свободен в снимке, слот свободен в хранилище.
func (s *Scheduler) Confirm(ctx context.Context, req ConfirmRequest, now time.Time) (model.Entry, error) {
	if !calendar.CanBookInWeek(req.Week, now) {
		return model.Entry{}, booking.ErrWeekNotBookable
	}

	details := booking.NormalizeDetails(req.Details)
	if err := s.validator.ValidateDetails(details); err != nil {
		return model.Entry{}, err
	}

	info, date, err := calendar.SlotFor(req.Week, req.DayIndex, req.Period, now)
	if err != nil {
		return model.Entry{}, fmt.Errorf("%w: %v", booking.ErrInvalidBooking, err)
	}

	b := model.Booking{
		TeacherName: details.TeacherName,
		Subject:     details.Subject,
		Lesson:      details.Lesson,
		Grade:       details.Grade,
		DayName:     info.DayName,
		DateStr:     info.DateStr,
		Period:      info.Period,
		WeekNumber:  req.Week,
		Year:        date.Year(),
	}

	s.mu.RLock()
	_, taken := s.snapshot[info.SlotKey]
	s.mu.RUnlock()
	if taken {
		return model.Entry{}, booking.ErrSlotOccupied
	}

	err = s.write(ctx, func(ctx context.Context) error {
		return s.mutator.Confirm(ctx, info.SlotKey, b)
	})
	if err != nil {
		s.logWriteError("confirm booking", info.SlotKey, err)
		return model.Entry{}, err
	}

	if !s.store.Networked() {
		s.update(func(set model.BookingSet) { set[info.SlotKey] = b })
	}
	s.publish(ctx, model.EventTypeBookingCreated, info.SlotKey, b)

	s.logger.Info("booking confirmed",
		zap.String("slot_key", info.SlotKey),
		zap.String("teacher", b.TeacherName),
		zap.Int("week", b.WeekNumber),
	)
	return model.Entry{SlotKey: info.SlotKey, Booking: b, Past: stats.IsPast(b, now)}, nil
}

// Cancel снимает бронирование key. Секрет проверяется до обращения к хранилищу.
func (s *Scheduler) Cancel(ctx context.Context, key, credential string) error {
	if !s.mutator.Authorize(credential) {
		s.logger.Warn("cancel rejected: wrong secret", zap.String("slot_key", key))
		return booking.ErrUnauthorized
	}

	s.mu.RLock()
	b := s.snapshot[key]
	s.mu.RUnlock()

	err := s.write(ctx, func(ctx context.Context) error {
		return s.mutator.Cancel(ctx, key, credential)
	})
	if err != nil {
		s.logWriteError("cancel booking", key, err)
		return err
	}

	if !s.store.Networked() {
		s.update(func(set model.BookingSet) { delete(set, key) })
	}
	s.publish(ctx, model.EventTypeBookingCancelled, key, b)

	s.logger.Info("booking cancelled", zap.String("slot_key", key))
	return nil
}

// Watch возвращает канал снимков: сразу текущий, затем по одному на каждое
// изменение. Если читатель отстаёт, остаётся только последний снимок.
// Канал закрывается после отмены ctx.
func (s *Scheduler) Watch(ctx context.Context) <-chan model.BookingSet {
	ch := make(chan model.BookingSet, 1)

	s.watchMu.Lock()
	ch <- s.Snapshot()
	s.watchers[ch] = struct{}{}
	s.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch
}

func (s *Scheduler) read(ctx context.Context) (model.BookingSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	set, err := s.store.Read(ctx)
	if err != nil {
		s.logger.Error("read bookings failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, err)
	}
	return set, nil
}

func (s *Scheduler) write(ctx context.Context, op func(context.Context) error) error {
	s.saving.Store(true)
	defer s.saving.Store(false)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return op(ctx)
}

func (s *Scheduler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Scheduler) apply(set model.BookingSet) {
	if set == nil {
		set = model.BookingSet{}
	}
	s.mu.Lock()
	s.snapshot = set
	s.mu.Unlock()
	s.broadcast(set)
}

func (s *Scheduler) update(fn func(model.BookingSet)) {
	s.mu.Lock()
	next := s.snapshot.Clone()
	fn(next)
	s.snapshot = next
	s.mu.Unlock()
	s.broadcast(next)
}

func (s *Scheduler) broadcast(set model.BookingSet) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for ch := range s.watchers {
		deliver(ch, set.Clone())
	}
}

// deliver заменяет непрочитанный снимок новым.
func deliver(ch chan model.BookingSet, set model.BookingSet) {
	for {
		select {
		case ch <- set:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *Scheduler) publish(ctx context.Context, typ model.EventType, key string, b model.Booking) {
	payload, err := json.Marshal(b)
	if err != nil {
		s.logger.Warn("encode event payload", zap.Error(err))
		payload = []byte("{}")
	}
	ev := model.NewEvent(typ, key, b, payload, s.clock().UTC())
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Warn("publish booking event failed",
			zap.String("type", string(typ)),
			zap.String("slot_key", key),
			zap.Error(err),
		)
	}
}

func (s *Scheduler) logWriteError(op, key string, err error) {
	if errors.Is(err, booking.ErrStoreUnavailable) {
		s.logger.Error(op+" failed", zap.String("slot_key", key), zap.Error(err))
		return
	}
	s.logger.Info(op+" rejected", zap.String("slot_key", key), zap.Error(err))
}
