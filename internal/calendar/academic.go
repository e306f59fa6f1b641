package calendar

import (
	"fmt"
	"time"

	"github.com/Leganyst/room-booking/internal/model"
)

// Количество учебных дней в неделе (воскресенье–четверг).
const SchoolDays = 5

const daysPerWeek = 7

// AcademicYearStart возвращает первое воскресенье не раньше 1 сентября
// учебного года, которому принадлежит today. До сентября учебный год
// считается начавшимся в прошлом календарном году.
// Результат — полночь в часовом поясе today.
func AcademicYearStart(today time.Time) time.Time {
	year := today.Year()
	if today.Month() < time.September {
		year--
	}
	sep1 := time.Date(year, time.September, 1, 0, 0, 0, 0, today.Location())
	if wd := sep1.Weekday(); wd != time.Sunday {
		sep1 = sep1.AddDate(0, 0, daysPerWeek-int(wd))
	}
	return sep1
}

// WeekNumberOf — номер учебной недели (с 1), в которую попадает today.
// Даты между 1 сентября и первым воскресеньем дают неделю 0.
func WeekNumberOf(today time.Time) int {
	start := AcademicYearStart(today)
	return floorDiv(daysBetween(start, today), daysPerWeek) + 1
}

// WeekStart — воскресенье недели weekNumber. Границы не проверяются.
func WeekStart(weekNumber int, today time.Time) time.Time {
	return AcademicYearStart(today).AddDate(0, 0, (weekNumber-1)*daysPerWeek)
}

// DayDate — дата учебного дня dayIndex (0 = воскресенье) недели weekNumber.
func DayDate(weekNumber, dayIndex int, today time.Time) time.Time {
	return WeekStart(weekNumber, today).AddDate(0, 0, dayIndex)
}

// AcademicYearEnd — последний четверг не позже 31 мая следующего календарного года.
func AcademicYearEnd(today time.Time) time.Time {
	start := AcademicYearStart(today)
	may31 := time.Date(start.Year()+1, time.May, 31, 0, 0, 0, 0, today.Location())
	back := (int(may31.Weekday()) - int(time.Thursday) + daysPerWeek) % daysPerWeek
	return may31.AddDate(0, 0, -back)
}

// EnumerateWeeks перечисляет недели учебного года, конец которых (четверг)
// не выходит за AcademicYearEnd. Результат не кэшируется.
func EnumerateWeeks(today time.Time) []model.Week {
	start := AcademicYearStart(today)
	end := AcademicYearEnd(today)

	var weeks []model.Week
	for i := 0; ; i++ {
		weekStart := start.AddDate(0, 0, i*daysPerWeek)
		weekEnd := weekStart.AddDate(0, 0, SchoolDays-1)
		if weekEnd.After(end) {
			break
		}
		weeks = append(weeks, model.Week{
			WeekNumber: i + 1,
			WeekStart:  weekStart,
			WeekEnd:    weekEnd,
			Label:      WeekLabel(i+1, weekStart, weekEnd),
		})
	}
	return weeks
}

// WeekLabel — подпись недели для выбора в интерфейсе.
func WeekLabel(weekNumber int, weekStart, weekEnd time.Time) string {
	return fmt.Sprintf("الأسبوع %d - %d %s إلى %d %s %d",
		weekNumber,
		weekStart.Day(), model.MonthName(int(weekStart.Month())),
		weekEnd.Day(), model.MonthName(int(weekEnd.Month())),
		weekStart.Year(),
	)
}

// DateString — дата в виде "день/месяц" без ведущих нулей.
func DateString(d time.Time) string {
	return fmt.Sprintf("%d/%d", d.Day(), int(d.Month()))
}

// daysBetween считает календарные дни от a до b, не завися от перехода на летнее время.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
