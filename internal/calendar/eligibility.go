package calendar

import (
	"math"
	"time"

	"github.com/Leganyst/room-booking/internal/model"
)

// С этого дня недели открывается бронирование на следующую неделю.
const NextWeekOpensOn = time.Thursday

// CanBookInWeek решает, принимает ли неделя weekNumber новые бронирования:
//   - прошедшие недели закрыты;
//   - текущая неделя открыта всегда;
//   - следующая открывается с четверга текущей;
//   - всё, что дальше, закрыто.
func CanBookInWeek(weekNumber int, today time.Time) bool {
	current := WeekStart(WeekNumberOf(today), today)
	selected := WeekStart(weekNumber, today)

	weekDiff := int(math.Round(float64(daysBetween(current, selected)) / daysPerWeek))

	switch {
	case weekDiff < 0:
		return false
	case weekDiff == 0:
		return true
	case weekDiff == 1:
		return today.Weekday() >= NextWeekOpensOn
	default:
		return false
	}
}

// DefaultWeek выбирает неделю, открываемую по умолчанию: текущую, если она
// доступна, иначе следующую, иначе первую доступную из учебного года.
// ok == false, если доступных недель нет.
func DefaultWeek(today time.Time) (weekNumber int, ok bool) {
	current := WeekNumberOf(today)
	if CanBookInWeek(current, today) {
		return current, true
	}
	if CanBookInWeek(current+1, today) {
		return current + 1, true
	}
	for _, w := range EnumerateWeeks(today) {
		if CanBookInWeek(w.WeekNumber, today) {
			return w.WeekNumber, true
		}
	}
	return 0, false
}

// WeekOptions возвращает недели учебного года с признаком доступности.
func WeekOptions(today time.Time) []model.WeekOption {
	weeks := EnumerateWeeks(today)
	out := make([]model.WeekOption, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, model.WeekOption{Week: w, Bookable: CanBookInWeek(w.WeekNumber, today)})
	}
	return out
}
