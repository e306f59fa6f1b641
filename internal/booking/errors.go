package booking

import "errors"

// Ошибки бронирования. Ни одна не фатальна: все показываются пользователю.
var (
	ErrIncompleteBooking = errors.New("incomplete booking")
	ErrInvalidBooking    = errors.New("invalid booking")
	ErrWeekNotBookable   = errors.New("week is not open for booking")
	ErrSlotOccupied      = errors.New("slot is already booked")
	ErrUnauthorized      = errors.New("wrong cancellation secret")
	ErrNotFound          = errors.New("booking not found")
	ErrStoreUnavailable  = errors.New("booking store unavailable")
)
