package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/booking"
	"github.com/Leganyst/room-booking/internal/calendar"
	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
	"github.com/Leganyst/room-booking/internal/service"
)

// Заголовок с секретом отмены.
const CancelSecretHeader = "X-Cancel-Secret"

// Сколько событий отдаёт история слота.
const historyLimit = 50

type BookingHandler struct {
	Log       *zap.Logger
	Scheduler *service.Scheduler
	// Журнал событий; nil, если хранилище его не ведёт.
	History repository.EventRepository
}

func NewBookingHandler(logger *zap.Logger, scheduler *service.Scheduler) *BookingHandler {
	return &BookingHandler{Log: logger, Scheduler: scheduler}
}

type confirmRequest struct {
	Week        *int   `json:"week"`
	DayIndex    *int   `json:"dayIndex"`
	Period      *int   `json:"period"`
	TeacherName string `json:"teacherName"`
	Subject     string `json:"subject"`
	Lesson      string `json:"lesson"`
	Grade       string `json:"grade"`
}

func (h *BookingHandler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	now := h.Scheduler.Now()
	data := map[string]any{
		"weeks":       h.Scheduler.Weeks(now),
		"currentWeek": calendar.WeekNumberOf(now),
	}
	if def, ok := h.Scheduler.DefaultWeek(now); ok {
		data["defaultWeek"] = def
	}
	writeSuccess(w, http.StatusOK, data)
}

func (h *BookingHandler) WeekGrid(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeError(h.Log, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, h.Scheduler.WeekGrid(week, h.Scheduler.Now()))
}

func (h *BookingHandler) WeekBookings(w http.ResponseWriter, r *http.Request) {
	week, err := weekParam(r)
	if err != nil {
		writeError(h.Log, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, h.Scheduler.WeekBookings(week, h.Scheduler.Now()))
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(h.Log, w, badRequest("invalid JSON body"))
		return
	}
	if req.DayIndex == nil || req.Period == nil {
		writeError(h.Log, w, badRequest("dayIndex and period are required"))
		return
	}

	now := h.Scheduler.Now()
	week := 0
	if req.Week != nil {
		week = *req.Week
	} else if def, ok := h.Scheduler.DefaultWeek(now); ok {
		week = def
	}

	entry, err := h.Scheduler.Confirm(r.Context(), service.ConfirmRequest{
		Week:     week,
		DayIndex: *req.DayIndex,
		Period:   *req.Period,
		Details: model.BookingDetails{
			TeacherName: req.TeacherName,
			Subject:     req.Subject,
			Lesson:      req.Lesson,
			Grade:       req.Grade,
		},
	}, now)
	if err != nil {
		writeError(h.Log, w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"slotKey": entry.SlotKey,
		"booking": entry.Booking,
		"summary": calendar.FormatSlot(entry.Booking, true, entry.SlotKey),
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	key, err := h.slotKeyParam(r)
	if err != nil {
		writeError(h.Log, w, err)
		return
	}
	if err := h.Scheduler.Cancel(r.Context(), key, r.Header.Get(CancelSecretHeader)); err != nil {
		writeError(h.Log, w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"slotKey": key})
}

// SlotHistory отдаёт журнал бронирований и отмен слота, новые первыми.
func (h *BookingHandler) SlotHistory(w http.ResponseWriter, r *http.Request) {
	key, err := h.slotKeyParam(r)
	if err != nil {
		writeError(h.Log, w, err)
		return
	}
	if h.History == nil {
		writeError(h.Log, w, fmt.Errorf("%w: booking history is not recorded by this store", booking.ErrNotFound))
		return
	}

	events, err := h.History.ListBySlot(r.Context(), key, historyLimit)
	if err != nil {
		writeError(h.Log, w, fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, err))
		return
	}
	writeSuccess(w, http.StatusOK, events)
}

func (h *BookingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	all := h.Scheduler.AllBookings(h.Scheduler.Now())
	writeSuccess(w, http.StatusOK, calendar.Paginate(all, page, size))
}

func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.Scheduler.Upcoming(h.Scheduler.Now()))
}

func (h *BookingHandler) PastStats(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.Scheduler.PastStats(h.Scheduler.Now()))
}

func (h *BookingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.Scheduler.Catalog())
}

func (h *BookingHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"networked": h.Scheduler.Networked(),
		"saving":    h.Scheduler.Saving(),
		"timezone":  h.Scheduler.Location().String(),
	})
}

func (h *BookingHandler) slotKeyParam(r *http.Request) (string, error) {
	key := strings.TrimSpace(chi.URLParam(r, "slotKey"))
	if key == "" {
		return "", badRequest("slotKey is required")
	}
	if _, _, err := calendar.ParseSlotKey(key, h.Scheduler.Location()); err != nil {
		return "", badRequest(err.Error())
	}
	return key, nil
}

func weekParam(r *http.Request) (int, error) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		return 0, badRequest("week must be a number")
	}
	return week, nil
}
