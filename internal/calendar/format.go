package calendar

import (
	"fmt"

	"github.com/Leganyst/room-booking/internal/model"
)

// FormatSlot форматирует бронирование в человекочитаемую строку:
// "الخميس 10/3، الحصة 2". Если includeKey = true, в конце добавляется ключ слота.
func FormatSlot(b model.Booking, includeKey bool, slotKey string) string {
	base := fmt.Sprintf("%s %s، الحصة %d", b.DayName, b.DateStr, b.Period)

	if includeKey && slotKey != "" {
		return fmt.Sprintf("%s (ID: %s)", base, slotKey)
	}

	return base
}
