package model

import (
	"time"

	"gorm.io/datatypes"
)

// Идентификаторы единственного документа с бронированиями.
const (
	BookingsCollectionID = "school-bookings"
	BookingsDocumentID   = "allBookings"
)

// booking_documents — весь набор бронирований одной строкой.
// Version растёт на каждую запись и используется для compare-and-swap.
type BookingDocument struct {
	ID      string         `gorm:"type:varchar(64);primaryKey"`
	Data    datatypes.JSON `gorm:"type:jsonb;not null"`
	Version int64          `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"not null"`
}
