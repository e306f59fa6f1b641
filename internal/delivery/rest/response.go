package rest

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Leganyst/room-booking/internal/booking"
)

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeSuccess(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

// writeError подбирает HTTP-код по ошибке бронирования.
func writeError(log *zap.Logger, w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "something went wrong"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}

func statusCode(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad),
		errors.Is(err, booking.ErrIncompleteBooking),
		errors.Is(err, booking.ErrInvalidBooking):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrWeekNotBookable), errors.Is(err, booking.ErrSlotOccupied):
		return http.StatusConflict
	case errors.Is(err, booking.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// badRequestError — ошибка разбора запроса.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }
