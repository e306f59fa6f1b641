package rest

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/booking"
	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
	"github.com/Leganyst/room-booking/internal/service"
)

// Среда 8 октября 2025, неделя 5.
var wednesday = time.Date(2025, time.October, 8, 10, 0, 0, 0, time.FixedZone("AST", 3*60*60))

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestRouter(t *testing.T, cancelLimit int) http.Handler {
	t.Helper()
	return NewRouter(newTestHandler(t), RouterConfig{CancelRateLimit: cancelLimit})
}

func newTestHandler(t *testing.T) *BookingHandler {
	t.Helper()
	store := repository.NewLocalBookingRepository(filepath.Join(t.TempDir(), "bookings.json"))
	validator, err := booking.NewValidator(model.DefaultCatalog())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}
	sched := service.NewScheduler(
		store,
		booking.SharedSecret(booking.DefaultCancelSecret),
		validator,
		nil,
		zap.NewNop(),
		service.SchedulerConfig{Location: wednesday.Location(), Clock: func() time.Time { return wednesday }},
	)
	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(sched.Close)
	return NewBookingHandler(zap.NewNop(), sched)
}

// stubHistory отдаёт заранее заданные события.
type stubHistory struct {
	events []model.Event
	slot   string
}

func (s *stubHistory) Create(context.Context, *model.Event) error { return nil }

func (s *stubHistory) ListBySlot(_ context.Context, slotKey string, _ int) ([]model.Event, error) {
	s.slot = slotKey
	return s.events, nil
}

func do(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
	}
	return rec.Code, env
}

func confirmBody(week, day, period int) map[string]any {
	return map[string]any{
		"week": week, "dayIndex": day, "period": period,
		"teacherName": "أحمد", "subject": "Math", "lesson": "Fractions", "grade": "10 أ",
	}
}

func TestRouter_BookingLifecycle(t *testing.T) {
	h := newTestRouter(t, 0)

	code, env := do(t, h, http.MethodPost, "/api/v1/bookings", confirmBody(5, 4, 2), nil)
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201, got %d %+v", code, env)
	}
	var created struct {
		SlotKey string        `json:"slotKey"`
		Booking model.Booking `json:"booking"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.SlotKey != "2025-9-9-2" || created.Booking.DateStr != "9/10" {
		t.Fatalf("unexpected created booking: %+v", created)
	}

	code, env = do(t, h, http.MethodPost, "/api/v1/bookings", confirmBody(5, 4, 2), nil)
	if code != http.StatusConflict || env.Success {
		t.Fatalf("expected 409 for occupied slot, got %d %+v", code, env)
	}

	code, _ = do(t, h, http.MethodGet, "/api/v1/weeks/5/bookings", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	code, _ = do(t, h, http.MethodDelete, "/api/v1/bookings/2025-9-9-2", nil, map[string]string{CancelSecretHeader: "0000"})
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong secret, got %d", code)
	}
	code, _ = do(t, h, http.MethodDelete, "/api/v1/bookings/2025-9-9-2", nil, map[string]string{CancelSecretHeader: booking.DefaultCancelSecret})
	if code != http.StatusOK {
		t.Fatalf("expected 200 on cancel, got %d", code)
	}
	code, _ = do(t, h, http.MethodDelete, "/api/v1/bookings/2025-9-9-2", nil, map[string]string{CancelSecretHeader: booking.DefaultCancelSecret})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 on second cancel, got %d", code)
	}
}

func TestRouter_ConfirmErrors(t *testing.T) {
	h := newTestRouter(t, 0)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"closed week", confirmBody(6, 0, 1), http.StatusConflict},
		{"missing period", map[string]any{"week": 5, "dayIndex": 1}, http.StatusBadRequest},
		{"period out of range", confirmBody(5, 1, 9), http.StatusBadRequest},
		{"unknown subject", func() map[string]any { b := confirmBody(5, 1, 1); b["subject"] = "Magic"; return b }(), http.StatusBadRequest},
		{"empty teacher", func() map[string]any { b := confirmBody(5, 1, 1); b["teacherName"] = " "; return b }(), http.StatusBadRequest},
	}
	for _, tc := range cases {
		code, env := do(t, h, http.MethodPost, "/api/v1/bookings", tc.body, nil)
		if code != tc.want || env.Success || env.Error == "" {
			t.Fatalf("%s: expected %d with error, got %d %+v", tc.name, tc.want, code, env)
		}
	}
}

func TestRouter_Views(t *testing.T) {
	h := newTestRouter(t, 0)
	for p := 1; p <= 3; p++ {
		if code, env := do(t, h, http.MethodPost, "/api/v1/bookings", confirmBody(5, 0, p), nil); code != http.StatusCreated {
			t.Fatalf("confirm: %d %+v", code, env)
		}
	}

	code, env := do(t, h, http.MethodGet, "/api/v1/bookings?page=2&page_size=2", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var page struct {
		Items   []model.Entry `json:"items"`
		Total   int           `json:"total"`
		HasPrev bool          `json:"hasPrev"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	// Последние первыми: на второй странице остаётся самый ранний урок.
	if page.Total != 3 || len(page.Items) != 1 || !page.HasPrev || page.Items[0].Booking.Period != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	code, env = do(t, h, http.MethodGet, "/api/v1/stats/past", nil, nil)
	if code != http.StatusOK || !bytes.Contains(env.Data, []byte(`"totalBookings":3`)) {
		t.Fatalf("unexpected stats: %d %s", code, env.Data)
	}

	for _, path := range []string{"/api/v1/weeks", "/api/v1/weeks/5/grid", "/api/v1/bookings/upcoming", "/api/v1/catalog", "/api/v1/healthz"} {
		if code, _ := do(t, h, http.MethodGet, path, nil, nil); code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", path, code)
		}
	}

	if code, _ := do(t, h, http.MethodGet, "/api/v1/weeks/abc/grid", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric week, got %d", code)
	}
}

func TestRouter_CancelRateLimited(t *testing.T) {
	h := newTestRouter(t, 2)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/2025-9-9-1", nil)
		req.Header.Set(CancelSecretHeader, "guess")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exceeding limit, got %d", last)
	}
}

func TestRouter_ListingsMarkPastBookings(t *testing.T) {
	h := newTestRouter(t, 0)
	// Воскресенье 5 октября уже прошло, четверг 9 октября впереди.
	for _, body := range []map[string]any{confirmBody(5, 0, 1), confirmBody(5, 4, 2)} {
		if code, env := do(t, h, http.MethodPost, "/api/v1/bookings", body, nil); code != http.StatusCreated {
			t.Fatalf("confirm: %d %+v", code, env)
		}
	}

	_, env := do(t, h, http.MethodGet, "/api/v1/bookings", nil, nil)
	var page struct {
		Items []model.Entry `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	past := map[string]bool{}
	for _, e := range page.Items {
		past[e.SlotKey] = e.Past
	}
	if len(past) != 2 || !past["2025-9-5-1"] || past["2025-9-9-2"] {
		t.Fatalf("unexpected past flags: %v", past)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/bookings/upcoming", nil, nil)
	var upcoming []model.Entry
	if err := json.Unmarshal(env.Data, &upcoming); err != nil {
		t.Fatalf("decode upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].SlotKey != "2025-9-9-2" || upcoming[0].Past {
		t.Fatalf("unexpected upcoming: %+v", upcoming)
	}
}

func TestRouter_CancelRejectsMalformedKey(t *testing.T) {
	h := newTestRouter(t, 0)
	secret := map[string]string{CancelSecretHeader: booking.DefaultCancelSecret}

	for _, key := range []string{"abc", "2025-12-1-1", "2025-9-9-9", "2025-1-30-1"} {
		code, env := do(t, h, http.MethodDelete, "/api/v1/bookings/"+key, nil, secret)
		if code != http.StatusBadRequest || env.Success {
			t.Fatalf("%s: expected 400, got %d %+v", key, code, env)
		}
	}
}

func TestRouter_SlotHistory(t *testing.T) {
	handler := newTestHandler(t)
	h := NewRouter(handler, RouterConfig{})

	if code, _ := do(t, h, http.MethodGet, "/api/v1/bookings/2025-9-9-2/events", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 without history, got %d", code)
	}

	ev := model.NewEvent(model.EventTypeBookingCreated, "2025-9-9-2", model.Booking{TeacherName: "أحمد", WeekNumber: 5}, []byte(`{}`), wednesday)
	history := &stubHistory{events: []model.Event{ev}}
	handler.History = history

	code, env := do(t, h, http.MethodGet, "/api/v1/bookings/2025-9-9-2/events", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", code, env)
	}
	var got []model.Event
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(got) != 1 || got[0].EventType != model.EventTypeBookingCreated || history.slot != "2025-9-9-2" {
		t.Fatalf("unexpected history: %+v (slot %q)", got, history.slot)
	}

	if code, _ := do(t, h, http.MethodGet, "/api/v1/bookings/nope/events", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed key, got %d", code)
	}
}
