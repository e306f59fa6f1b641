package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип события аудита.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingCancelled EventType = "booking_cancelled"
)

// events — события аудита по бронированиям
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EventType EventType `gorm:"type:varchar(64);not null;index" json:"type"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`

	SlotKey     string `gorm:"type:varchar(32);not null;index" json:"slotKey"`
	TeacherName string `gorm:"type:varchar(255)" json:"teacherName"`
	WeekNumber  int    `gorm:"not null;default:0" json:"weekNumber"`

	// Снимок бронирования на момент события.
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`
}

// NewEvent создаёт событие для слота с новым идентификатором.
func NewEvent(t EventType, slotKey string, b Booking, payload []byte, now time.Time) Event {
	return Event{
		ID:          uuid.New(),
		EventType:   t,
		CreatedAt:   now,
		SlotKey:     slotKey,
		TeacherName: b.TeacherName,
		WeekNumber:  b.WeekNumber,
		Payload:     datatypes.JSON(payload),
	}
}
