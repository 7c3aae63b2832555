package repository

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the relational tables the ingestion
// engine owns. The web application shares the same schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Users{},
		&Trips{},
		&TripShares{},
		&Flights{},
		&Accommodations{},
		&CheckIns{},
		&CredentialBundles{},
		&ScanCursors{},
	)
}
