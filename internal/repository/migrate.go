package repository

import "gorm.io/gorm"

// Migrate creates or updates the durable-store schema. The partial
// no-double-book index is applied separately in main for PostgreSQL, since
// AutoMigrate cannot express partial indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&venueModel{},
		&bookingModel{},
	)
}
