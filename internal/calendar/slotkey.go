package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Leganyst/room-booking/internal/model"
)

var (
	ErrInvalidSlotKey = errors.New("invalid slot key")
	ErrInvalidPeriod  = errors.New("period out of range")
)

const slotKeySep = "-"

// SlotKey строит ключ ячейки "{год}-{месяц с 0}-{день}-{урок}".
// Все компоненты числовые, поэтому экранирование не нужно.
func SlotKey(date time.Time, period int) string {
	return fmt.Sprintf("%d%s%d%s%d%s%d",
		date.Year(), slotKeySep,
		int(date.Month())-1, slotKeySep,
		date.Day(), slotKeySep,
		period,
	)
}

// ParseSlotKey разбирает ключ обратно в дату (полночь в loc) и номер урока.
func ParseSlotKey(key string, loc *time.Location) (time.Time, int, error) {
	parts := strings.Split(key, slotKeySep)
	if len(parts) != 4 {
		return time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotKey, key)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotKey, key)
		}
		nums[i] = n
	}

	year, month0, day, period := nums[0], nums[1], nums[2], nums[3]
	if month0 > 11 || day < 1 || day > 31 {
		return time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotKey, key)
	}
	if period < 1 || period > model.PeriodsPerDay {
		return time.Time{}, 0, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if loc == nil {
		loc = time.UTC
	}

	date := time.Date(year, time.Month(month0+1), day, 0, 0, 0, 0, loc)
	// 31 февраля и подобное time.Date нормализует в другой день.
	if date.Day() != day {
		return time.Time{}, 0, fmt.Errorf("%w: %q", ErrInvalidSlotKey, key)
	}
	return date, period, nil
}

// SlotFor собирает описание ячейки для недели, дня и урока.
func SlotFor(weekNumber, dayIndex, period int, today time.Time) (model.SlotInfo, time.Time, error) {
	if dayIndex < 0 || dayIndex >= SchoolDays {
		return model.SlotInfo{}, time.Time{}, fmt.Errorf("day index %d out of range", dayIndex)
	}
	if period < 1 || period > model.PeriodsPerDay {
		return model.SlotInfo{}, time.Time{}, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}

	date := DayDate(weekNumber, dayIndex, today)
	return model.SlotInfo{
		SlotKey: SlotKey(date, period),
		DayName: model.DayNames[dayIndex],
		DateStr: DateString(date),
		Period:  period,
	}, date, nil
}

// ConsistentWithKey проверяет, что дата и урок бронирования совпадают с ключом,
// под которым оно хранится.
func ConsistentWithKey(key string, b model.Booking, loc *time.Location) bool {
	date, period, err := ParseSlotKey(key, loc)
	if err != nil {
		return false
	}
	return period == b.Period && DateString(date) == b.DateStr
}

// BuildWeekGrid раскладывает бронирования недели по сетке дней и уроков.
func BuildWeekGrid(weekNumber int, set model.BookingSet, today time.Time) model.WeekGrid {
	start := WeekStart(weekNumber, today)
	end := start.AddDate(0, 0, SchoolDays-1)

	grid := model.WeekGrid{
		Week: model.Week{
			WeekNumber: weekNumber,
			WeekStart:  start,
			WeekEnd:    end,
			Label:      WeekLabel(weekNumber, start, end),
		},
		Bookable: CanBookInWeek(weekNumber, today),
		Days:     make([]model.GridDay, 0, SchoolDays),
	}

	for day := 0; day < SchoolDays; day++ {
		date := start.AddDate(0, 0, day)
		row := model.GridDay{
			DayIndex: day,
			DayName:  model.DayNames[day],
			DateStr:  DateString(date),
			Cells:    make([]model.SlotCell, 0, model.PeriodsPerDay),
		}
		for period := 1; period <= model.PeriodsPerDay; period++ {
			cell := model.SlotCell{SlotInfo: model.SlotInfo{
				SlotKey: SlotKey(date, period),
				DayName: row.DayName,
				DateStr: row.DateStr,
				Period:  period,
			}}
			if b, ok := set[cell.SlotKey]; ok {
				b := b
				cell.Booking = &b
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Days = append(grid.Days, row)
	}
	return grid
}
