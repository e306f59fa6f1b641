// Package stats строит отчёты по набору бронирований: прошедшие занятия по
// учителям и предметам, ближайшие бронирования и полный список.
package stats

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Leganyst/room-booking/internal/calendar"
	"github.com/Leganyst/room-booking/internal/model"
)

// Первый урок начинается в 8:00, урок N — в N+7 часов.
const firstPeriodHour = 7

// DateRecord — одна строка списка занятий учителя.
type DateRecord struct {
	Date   string `json:"date"`
	Day    string `json:"day"`
	Period int    `json:"period"`
}

type TeacherStats struct {
	Count    int          `json:"count"`
	Subjects []string     `json:"subjects"`
	Months   []string     `json:"months"`
	Lessons  []string     `json:"lessons"`
	Dates    []DateRecord `json:"dates"`
}

type SubjectStats struct {
	TotalBookings  int            `json:"totalBookings"`
	Teachers       []string       `json:"teachers"`
	TeacherDetails map[string]int `json:"teacherDetails"`
}

// Past — статистика по прошедшим бронированиям.
type Past struct {
	Teachers      map[string]TeacherStats `json:"teacherStats"`
	Subjects      map[string]SubjectStats `json:"subjectStats"`
	TotalBookings int                     `json:"totalBookings"`
	// Учителя по убыванию числа занятий, при равенстве по имени.
	TeacherRanking []string `json:"teacherRanking"`
	// Предметы по убыванию числа занятий, при равенстве по названию.
	SubjectRanking []string `json:"subjectRanking"`
}

// BookingTime восстанавливает дату и время урока из dateStr ("d/m") и номера
// урока. Год берётся из бронирования, у старых записей без года — из now.
// ok == false, если dateStr не разбирается.
func BookingTime(b model.Booking, now time.Time) (time.Time, bool) {
	day, month, ok := parseDateStr(b.DateStr)
	if !ok {
		return time.Time{}, false
	}
	year := b.Year
	if year <= 0 {
		year = now.Year()
	}
	t := time.Date(year, time.Month(month), day, b.Period+firstPeriodHour, 0, 0, 0, now.Location())
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// IsPast: время урока строго раньше now.
func IsPast(b model.Booking, now time.Time) bool {
	t, ok := BookingTime(b, now)
	return ok && t.Before(now)
}

// PastStats агрегирует бронирования, время которых не позже now.
func PastStats(set model.BookingSet, now time.Time) Past {
	type teacherAcc struct {
		count                     int
		subjects, months, lessons map[string]struct{}
		dates                     []datedRecord
	}
	type subjectAcc struct {
		total    int
		teachers map[string]int
	}

	teachers := map[string]*teacherAcc{}
	subjects := map[string]*subjectAcc{}
	total := 0

	for _, key := range set.Keys() {
		b := set[key]
		t, ok := BookingTime(b, now)
		if !ok || t.After(now) {
			continue
		}
		total++

		ta, ok := teachers[b.TeacherName]
		if !ok {
			ta = &teacherAcc{
				subjects: map[string]struct{}{},
				months:   map[string]struct{}{},
				lessons:  map[string]struct{}{},
			}
			teachers[b.TeacherName] = ta
		}
		ta.count++
		ta.subjects[b.Subject] = struct{}{}
		ta.months[model.MonthName(int(t.Month()))] = struct{}{}
		ta.lessons[b.Lesson] = struct{}{}
		ta.dates = append(ta.dates, datedRecord{
			at:  t,
			key: key,
			rec: DateRecord{Date: b.DateStr, Day: b.DayName, Period: b.Period},
		})

		sa, ok := subjects[b.Subject]
		if !ok {
			sa = &subjectAcc{teachers: map[string]int{}}
			subjects[b.Subject] = sa
		}
		sa.total++
		sa.teachers[b.TeacherName]++
	}

	out := Past{
		Teachers:      make(map[string]TeacherStats, len(teachers)),
		Subjects:      make(map[string]SubjectStats, len(subjects)),
		TotalBookings: total,
	}
	for name, ta := range teachers {
		sort.Slice(ta.dates, func(i, j int) bool { return ta.dates[i].newer(ta.dates[j]) })
		dates := make([]DateRecord, len(ta.dates))
		for i, d := range ta.dates {
			dates[i] = d.rec
		}
		out.Teachers[name] = TeacherStats{
			Count:    ta.count,
			Subjects: sortedKeys(ta.subjects),
			Months:   sortedKeys(ta.months),
			Lessons:  sortedKeys(ta.lessons),
			Dates:    dates,
		}
		out.TeacherRanking = append(out.TeacherRanking, name)
	}
	for name, sa := range subjects {
		names := make([]string, 0, len(sa.teachers))
		for t := range sa.teachers {
			names = append(names, t)
		}
		sort.Strings(names)
		out.Subjects[name] = SubjectStats{
			TotalBookings:  sa.total,
			Teachers:       names,
			TeacherDetails: sa.teachers,
		}
		out.SubjectRanking = append(out.SubjectRanking, name)
	}

	sort.Slice(out.TeacherRanking, func(i, j int) bool {
		a, b := out.TeacherRanking[i], out.TeacherRanking[j]
		if out.Teachers[a].Count != out.Teachers[b].Count {
			return out.Teachers[a].Count > out.Teachers[b].Count
		}
		return a < b
	})
	sort.Slice(out.SubjectRanking, func(i, j int) bool {
		a, b := out.SubjectRanking[i], out.SubjectRanking[j]
		if out.Subjects[a].TotalBookings != out.Subjects[b].TotalBookings {
			return out.Subjects[a].TotalBookings > out.Subjects[b].TotalBookings
		}
		return a < b
	})
	return out
}

// FutureBookings возвращает бронирования с [полночь сегодня, +1 месяц],
// ближайшие первыми.
func FutureBookings(set model.BookingSet, now time.Time) []model.Entry {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	var items []datedEntry
	for key, b := range set {
		t, ok := BookingTime(b, now)
		if !ok || t.Before(from) || t.After(to) {
			continue
		}
		items = append(items, datedEntry{at: t, ok: true, entry: entry(key, b, now)})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].at.Equal(items[j].at) {
			return items[i].at.Before(items[j].at)
		}
		return items[i].entry.SlotKey < items[j].entry.SlotKey
	})
	return entries(items)
}

// AllBookingsSorted возвращает все бронирования, последние первыми.
// Записи с неразборчивой датой идут в конце.
func AllBookingsSorted(set model.BookingSet, now time.Time) []model.Entry {
	items := make([]datedEntry, 0, len(set))
	for key, b := range set {
		t, ok := BookingTime(b, now)
		items = append(items, datedEntry{at: t, ok: ok, entry: entry(key, b, now)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].later(items[j]) })
	return entries(items)
}

// WeekBookings возвращает бронирования недели weekNumber текущего учебного
// года по дате и уроку. Записи с годом отбираются по дате, записи без года —
// по номеру недели.
func WeekBookings(set model.BookingSet, weekNumber int, now time.Time) []model.Entry {
	from := calendar.WeekStart(weekNumber, now)
	to := from.AddDate(0, 0, calendar.SchoolDays)

	var items []datedEntry
	for key, b := range set {
		t, ok := BookingTime(b, now)
		if ok && b.Year > 0 {
			if t.Before(from) || !t.Before(to) {
				continue
			}
		} else if b.WeekNumber != weekNumber {
			continue
		}
		items = append(items, datedEntry{at: t, ok: ok, entry: entry(key, b, now)})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return a.entry.SlotKey < b.entry.SlotKey
	})
	return entries(items)
}

type datedRecord struct {
	at  time.Time
	key string
	rec DateRecord
}

func (d datedRecord) newer(o datedRecord) bool {
	if !d.at.Equal(o.at) {
		return d.at.After(o.at)
	}
	return d.key < o.key
}

type datedEntry struct {
	at    time.Time
	ok    bool
	entry model.Entry
}

// later: e идёт раньше o при сортировке "последние первыми".
func (e datedEntry) later(o datedEntry) bool {
	if e.ok != o.ok {
		return e.ok
	}
	if !e.at.Equal(o.at) {
		return e.at.After(o.at)
	}
	return e.entry.SlotKey < o.entry.SlotKey
}

func entry(key string, b model.Booking, now time.Time) model.Entry {
	return model.Entry{SlotKey: key, Booking: b, Past: IsPast(b, now)}
}

func entries(items []datedEntry) []model.Entry {
	out := make([]model.Entry, len(items))
	for i, it := range items {
		out[i] = it.entry
	}
	return out
}

func parseDateStr(s string) (day, month int, ok bool) {
	d, m, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return 0, 0, false
	}
	day, err := strconv.Atoi(d)
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(m)
	if err != nil {
		return 0, 0, false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return 0, 0, false
	}
	return day, month, true
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
