/*
Package store - schema migration

Grounded on internal/database/migrations.go's AutoMigrate-at-startup idiom,
trimmed from the teacher's ~70-model HR schema down to the four persistent
tables this engine owns.
*/
package store

import "tama/internal/models"

// migrate creates or updates the four tables this engine persists.
// ProgressTask is not in this list: it lives only in the in-memory
// progressTable, never in the relational store (§4.2).
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&models.AttendanceRow{},
		&models.TravelRow{},
		&models.AnomalyRow{},
		&models.UploadRecord{},
	)
}
