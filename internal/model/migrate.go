package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию таблиц хранилища бронирований.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&BookingDocument{},
		&Event{},
	)
}
