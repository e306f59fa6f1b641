package model

import "strings"

// Названия учебных дней (воскресенье–четверг), индекс = смещение от начала недели.
var DayNames = []string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس"}

// Названия месяцев, индекс = time.Month - 1.
var MonthNames = []string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// Subject — предмет: значение хранится в бронировании, Label показывается пользователю.
type Subject struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GradeLevel — параллель и её классы ("10 أ", "10 ب", ...).
type GradeLevel struct {
	Level    string   `json:"level"`
	Sections []string `json:"sections"`
}

// Catalog — перечислимые справочники, которые система принимает как есть.
type Catalog struct {
	Subjects []Subject    `json:"subjects"`
	Grades   []GradeLevel `json:"grades"`
	Days     []string     `json:"days"`
	Periods  int          `json:"periods"`
}

var defaultSections = []string{"أ", "ب", "ج", "د"}

// DefaultCatalog возвращает справочники по умолчанию.
func DefaultCatalog() Catalog {
	return Catalog{
		Subjects: []Subject{
			{Value: "Arabic", Label: "اللغة العربية"},
			{Value: "English", Label: "اللغة الإنجليزية"},
			{Value: "Math", Label: "الرياضيات"},
			{Value: "Science", Label: "العلوم"},
			{Value: "Physics", Label: "الفيزياء"},
			{Value: "Chemistry", Label: "الكيمياء"},
			{Value: "Biology", Label: "الأحياء"},
			{Value: "Islamic", Label: "التربية الإسلامية"},
			{Value: "Social", Label: "الدراسات الاجتماعية"},
			{Value: "Computer", Label: "الحاسب الآلي"},
		},
		Grades:  GradeLevels([]string{"7", "8", "9", "10", "11", "12"}, defaultSections),
		Days:    DayNames,
		Periods: PeriodsPerDay,
	}
}

// DefaultSections возвращает буквы классов по умолчанию.
func DefaultSections() []string {
	return append([]string(nil), defaultSections...)
}

// GradeLevels строит классы вида "{level} {section}" для каждой параллели.
func GradeLevels(levels, sections []string) []GradeLevel {
	out := make([]GradeLevel, 0, len(levels))
	for _, lvl := range levels {
		lvl = strings.TrimSpace(lvl)
		if lvl == "" {
			continue
		}
		g := GradeLevel{Level: lvl}
		for _, s := range sections {
			g.Sections = append(g.Sections, lvl+" "+strings.TrimSpace(s))
		}
		out = append(out, g)
	}
	return out
}

// HasSubject сообщает, входит ли значение в список предметов.
func (c Catalog) HasSubject(v string) bool {
	for _, s := range c.Subjects {
		if s.Value == v {
			return true
		}
	}
	return false
}

// HasGrade сообщает, входит ли класс в список классов.
func (c Catalog) HasGrade(v string) bool {
	for _, g := range c.Grades {
		for _, s := range g.Sections {
			if s == v {
				return true
			}
		}
	}
	return false
}

// MonthName возвращает название месяца по номеру 1..12.
func MonthName(month int) string {
	if month < 1 || month > len(MonthNames) {
		return ""
	}
	return MonthNames[month-1]
}
