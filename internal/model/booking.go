package model

import "sort"

// Booking — одно подтверждённое бронирование ячейки (день × урок).
// Формат полей совпадает с сохранённым JSON-документом.
type Booking struct {
	TeacherName string `json:"teacherName" bson:"teacherName"`
	Subject     string `json:"subject" bson:"subject"`
	Lesson      string `json:"lesson" bson:"lesson"`
	Grade       string `json:"grade" bson:"grade"`

	// Производные поля для отображения, источник истины — WeekNumber.
	DayName string `json:"dayName" bson:"dayName"`
	DateStr string `json:"dateStr" bson:"dateStr"`

	Period     int `json:"period" bson:"period"`
	WeekNumber int `json:"weekNumber" bson:"weekNumber"`

	// Календарный год даты урока. У старых записей отсутствует (0).
	Year int `json:"year,omitempty" bson:"year,omitempty"`
}

// BookingDetails — данные, которые вводит пользователь.
type BookingDetails struct {
	TeacherName string `json:"teacherName" validate:"required"`
	Subject     string `json:"subject" validate:"required,subject"`
	Lesson      string `json:"lesson" validate:"required"`
	Grade       string `json:"grade" validate:"required,grade"`
}

// BookingSet — ключ слота -> бронирование. Всегда заменяется целиком.
type BookingSet map[string]Booking

// Clone возвращает независимую копию набора.
func (s BookingSet) Clone() BookingSet {
	out := make(BookingSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys возвращает ключи в лексикографическом порядке.
func (s BookingSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry — пара (ключ слота, бронирование) для упорядоченных выборок.
type Entry struct {
	SlotKey string  `json:"slotKey"`
	Booking Booking `json:"booking"`
	// Past — урок уже прошёл, отменять его нечего.
	Past bool `json:"past"`
}
