package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/model"
)

// Границы паузы между повторными чтениями после ошибки.
var (
	watchRetryMin = 500 * time.Millisecond
	watchRetryMax = 30 * time.Second
)

// errNoChange возвращается функцией чтения наблюдателя, когда набор не менялся.
var errNoChange = errors.New("bookings unchanged")

// offer кладёт снимок в канал подписчика. Если предыдущий снимок ещё не
// прочитан, он заменяется новым: подписчику важен только последний.
func offer(ch chan model.BookingSet, set model.BookingSet) {
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

// notifier будит наблюдателей после собственных записей хранилища.
type notifier struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[chan struct{}]struct{})}
}

func (n *notifier) add() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

func (n *notifier) remove(ch chan struct{}) {
	n.mu.Lock()
	delete(n.subs, ch)
	n.mu.Unlock()
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watch запускает наблюдателя за хранилищем: сразу отправляет текущий снимок,
// затем перечитывает набор на каждый сигнал wake и, если poll > 0, по таймеру.
// Ошибки чтения логируются, чтение повторяется с растущей паузой.
func watch(
	ctx context.Context,
	logger *zap.Logger,
	read func(context.Context) (model.BookingSet, error),
	wake <-chan struct{},
	poll time.Duration,
	stop func(),
) (<-chan model.BookingSet, func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan model.BookingSet, 1)

	var tick <-chan time.Time
	if poll > 0 {
		ticker := time.NewTicker(poll)
		tick = ticker.C
		prev := stop
		stop = func() {
			ticker.Stop()
			if prev != nil {
				prev()
			}
		}
	}

	go func() {
		defer close(out)
		if stop != nil {
			defer stop()
		}

		// После неудачного чтения повторяем его сами, не дожидаясь wake.
		var (
			retry   <-chan time.Time
			backoff = watchRetryMin
		)
		emit := func() {
			set, err := read(ctx)
			if errors.Is(err, errNoChange) {
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("watch: read bookings failed",
						zap.Duration("retry_in", backoff),
						zap.Error(err),
					)
					retry = time.After(backoff)
					backoff = min(backoff*2, watchRetryMax)
				}
				return
			}
			retry = nil
			backoff = watchRetryMin
			offer(out, set)
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-wake:
				if !ok {
					return
				}
				emit()
			case <-tick:
				emit()
			case <-retry:
				emit()
			}
		}
	}()

	return out, cancel
}
