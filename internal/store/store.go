/*
Package store is the single relational persistence layer for the engine: it
owns the attendance, travel, anomaly, and upload tables, plus the ephemeral
progress-task table. Every other component reaches the database only through
this package.
*/
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "tama/internal/errors"
)

// Store wraps a *gorm.DB plus the in-memory progress table and per-month
// lock map. It is safe for concurrent use: ReadRows reads every requested
// row kind inside one transaction, writers serialise on monthLocks.
type Store struct {
	db *gorm.DB

	locks    *monthLocks
	progress *progressTable
}

// Open connects to the configured backend ("sqlite" or "mysql" — the only
// two §6 names) and runs AutoMigrate. Grounded on the teacher's
// internal/database/database.go connection-pool setup, trimmed to the two
// backends the spec allows (Postgres dropped, see DESIGN.md).
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, apperrors.ErrInternal.WithMessage(fmt.Sprintf("unsupported db_backend %q", driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("could not open database"))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("could not access underlying sql.DB"))
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:       db,
		locks:    newMonthLocks(),
		progress: newProgressTable(),
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying *gorm.DB. The aggregator reads through ReadRows,
// not through this; the server uses it to close the connection on shutdown.
func (s *Store) DB() *gorm.DB { return s.db }
