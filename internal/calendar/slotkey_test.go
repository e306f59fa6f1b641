package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/Leganyst/room-booking/internal/model"
)

func TestSlotKey_Format(t *testing.T) {
	got := SlotKey(time.Date(2025, time.October, 9, 0, 0, 0, 0, time.UTC), 3)
	if got != "2025-9-9-3" {
		t.Fatalf("expected 2025-9-9-3, got %q", got)
	}
}

func TestSlotKey_StableAndInjective(t *testing.T) {
	today := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	start := AcademicYearStart(today)
	end := AcademicYearEnd(today)

	seen := make(map[string]string)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for p := 1; p <= model.PeriodsPerDay; p++ {
			key := SlotKey(d, p)
			if again := SlotKey(d, p); again != key {
				t.Fatalf("unstable key: %q vs %q", key, again)
			}
			cell := d.Format("2006-01-02") + "#" + string(rune('0'+p))
			if prev, ok := seen[key]; ok {
				t.Fatalf("key %q collides for %s and %s", key, prev, cell)
			}
			seen[key] = cell
		}
	}
}

func TestParseSlotKey_RoundTrip(t *testing.T) {
	date := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	gotDate, gotPeriod, err := ParseSlotKey(SlotKey(date, 8), time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotDate.Equal(date) || gotPeriod != 8 {
		t.Fatalf("expected %v/8, got %v/%d", date, gotDate, gotPeriod)
	}
}

func TestParseSlotKey_Invalid(t *testing.T) {
	cases := map[string]error{
		"":             ErrInvalidSlotKey,
		"2025-9-9":     ErrInvalidSlotKey,
		"2025-9-9-x":   ErrInvalidSlotKey,
		"2025-12-1-1":  ErrInvalidSlotKey,
		"2026-1-31-1":  ErrInvalidSlotKey, // 31 февраля
		"2025-9-9-0":   ErrInvalidPeriod,
		"2025-9-9-9":   ErrInvalidPeriod,
		"2025-9-9-1-1": ErrInvalidSlotKey,
	}
	for key, want := range cases {
		if _, _, err := ParseSlotKey(key, time.UTC); !errors.Is(err, want) {
			t.Fatalf("key %q: expected %v, got %v", key, want, err)
		}
	}
}

func TestSlotFor(t *testing.T) {
	today := time.Date(2025, time.October, 8, 0, 0, 0, 0, time.UTC)

	info, date, err := SlotFor(5, 4, 2, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.SlotKey != "2025-9-9-2" || info.DateStr != "9/10" || info.DayName != model.DayNames[4] {
		t.Fatalf("unexpected slot info: %+v", info)
	}
	if date.Weekday() != time.Thursday {
		t.Fatalf("expected Thursday, got %v", date.Weekday())
	}

	if _, _, err := SlotFor(5, 5, 2, today); err == nil {
		t.Fatalf("expected error for Friday")
	}
	if _, _, err := SlotFor(5, 0, 9, today); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestConsistentWithKey(t *testing.T) {
	b := model.Booking{DateStr: "9/10", Period: 2}
	if !ConsistentWithKey("2025-9-9-2", b, time.UTC) {
		t.Fatalf("expected booking to match key")
	}
	if ConsistentWithKey("2025-9-9-3", b, time.UTC) {
		t.Fatalf("expected period mismatch to be detected")
	}
}

func TestBuildWeekGrid(t *testing.T) {
	today := time.Date(2025, time.October, 8, 0, 0, 0, 0, time.UTC)
	set := model.BookingSet{
		"2025-9-7-4": {TeacherName: "A", Subject: "Math", Period: 4, DateStr: "7/10", WeekNumber: 5},
	}

	grid := BuildWeekGrid(5, set, today)
	if !grid.Bookable {
		t.Fatalf("expected current week grid to be bookable")
	}
	if len(grid.Days) != SchoolDays {
		t.Fatalf("expected %d days, got %d", SchoolDays, len(grid.Days))
	}

	booked := 0
	for _, day := range grid.Days {
		if len(day.Cells) != model.PeriodsPerDay {
			t.Fatalf("expected %d cells, got %d", model.PeriodsPerDay, len(day.Cells))
		}
		for _, c := range day.Cells {
			if c.Booking != nil {
				booked++
				if c.SlotKey != "2025-9-7-4" || c.Booking.TeacherName != "A" {
					t.Fatalf("unexpected booked cell: %+v", c)
				}
			}
		}
	}
	if booked != 1 {
		t.Fatalf("expected 1 booked cell, got %d", booked)
	}
}

func TestFormatSlot(t *testing.T) {
	b := model.Booking{DayName: "الخميس", DateStr: "9/10", Period: 2}
	if got := FormatSlot(b, false, ""); got != "الخميس 9/10، الحصة 2" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := FormatSlot(b, true, "2025-9-9-2"); got != "الخميس 9/10، الحصة 2 (ID: 2025-9-9-2)" {
		t.Fatalf("unexpected format with key: %q", got)
	}
}
