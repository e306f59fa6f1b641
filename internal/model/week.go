package model

import "time"

// Week — учебная неделя (воскресенье–четверг). Не хранится, строится по "сегодня".
type Week struct {
	WeekNumber int       `json:"weekNumber"`
	WeekStart  time.Time `json:"weekStart"`
	WeekEnd    time.Time `json:"weekEnd"`
	Label      string    `json:"label"`
}

// WeekOption — неделя для выбора с признаком доступности бронирования.
type WeekOption struct {
	Week
	Bookable bool `json:"bookable"`
}
