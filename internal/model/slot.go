package model

// Количество уроков в учебном дне.
const PeriodsPerDay = 8

// SlotInfo описывает выбранную ячейку расписания.
type SlotInfo struct {
	SlotKey string `json:"slotKey"`
	DayName string `json:"dayName"`
	DateStr string `json:"dateStr"`
	Period  int    `json:"period"`
}

// SlotCell — ячейка сетки недели; Booking == nil, если слот свободен.
type SlotCell struct {
	SlotInfo
	Booking *Booking `json:"booking,omitempty"`
}

// GridDay — строка сетки: один учебный день.
type GridDay struct {
	DayIndex int        `json:"dayIndex"`
	DayName  string     `json:"dayName"`
	DateStr  string     `json:"dateStr"`
	Cells    []SlotCell `json:"cells"`
}

// WeekGrid — сетка недели: 5 дней × PeriodsPerDay уроков.
type WeekGrid struct {
	Week     Week      `json:"week"`
	Bookable bool      `json:"bookable"`
	Days     []GridDay `json:"days"`
}
