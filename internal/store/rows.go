package store

import (
	"sort"

	"gorm.io/gorm"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// RowKind selects which of the three row tables read_rows streams from.
type RowKind string

const (
	KindAttendance RowKind = "attendance"
	KindTravel     RowKind = "travel"
	KindAnomaly    RowKind = "anomaly"
)

// ReplaceMonth atomically deletes every attendance/travel/anomaly row for
// month and inserts the supplied replacements, all inside one transaction.
// Serialised per month by the keyed lock in monthlock.go; concurrent
// replaces of different months run independently.
func (s *Store) ReplaceMonth(month string, attendance []models.AttendanceRow, travel []models.TravelRow, anomalies []models.AnomalyRow) error {
	attendance = dedupeAttendance(attendance)
	return s.locks.withLock(month, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("source_month = ?", month).Delete(&models.AttendanceRow{}).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}
			if err := tx.Where("source_month = ?", month).Delete(&models.TravelRow{}).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}
			if err := tx.Where("source_month = ?", month).Delete(&models.AnomalyRow{}).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}

			if len(attendance) > 0 {
				if err := tx.Create(&attendance).Error; err != nil {
					return apperrors.Wrap(err, apperrors.ErrInternal)
				}
			}
			if len(travel) > 0 {
				if err := tx.Create(&travel).Error; err != nil {
					return apperrors.Wrap(err, apperrors.ErrInternal)
				}
			}
			if len(anomalies) > 0 {
				if err := tx.Create(&anomalies).Error; err != nil {
					return apperrors.Wrap(err, apperrors.ErrInternal)
				}
			}
			return nil
		})
	})
}

// dedupeAttendance enforces AttendanceRow's (employee_name, date) uniqueness
// invariant before insertion: when the same person-day appears more than
// once in a workbook, the last occurrence wins, matching "replace" semantics
// elsewhere in this package. Order of the surviving rows is otherwise
// preserved.
func dedupeAttendance(rows []models.AttendanceRow) []models.AttendanceRow {
	type key struct {
		employee string
		date     string
	}
	indexOf := make(map[key]int, len(rows))
	out := make([]models.AttendanceRow, 0, len(rows))
	for _, row := range rows {
		k := key{employee: row.EmployeeName, date: row.Date.Format("2006-01-02")}
		if i, ok := indexOf[k]; ok {
			out[i] = row
			continue
		}
		indexOf[k] = len(out)
		out = append(out, row)
	}
	return out
}

// DeleteMonth removes every row of the three kinds for month, shrinks every
// UploadRecord's MonthsCovered accordingly, and deletes any UploadRecord
// whose set becomes empty. The store has no filesystem access, so it
// returns the emptied records to the caller, which removes their blobs
// (internal/api's handleDeleteMonth does this for the HTTP route).
func (s *Store) DeleteMonth(month string) ([]models.UploadRecord, error) {
	var emptied []models.UploadRecord

	err := s.locks.withLock(month, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("source_month = ?", month).Delete(&models.AttendanceRow{}).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}
			if err := tx.Where("source_month = ?", month).Delete(&models.TravelRow{}).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}
			if err := tx.Where("source_month = ?", month).Delete(&models.AnomalyRow{}).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}

			var records []models.UploadRecord
			if err := tx.Find(&records).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}

			for _, rec := range records {
				if !rec.MonthsCovered.Contains(month) {
					continue
				}
				rec.MonthsCovered = rec.MonthsCovered.Without(month)
				if len(rec.MonthsCovered) == 0 {
					if err := tx.Delete(&rec).Error; err != nil {
						return apperrors.Wrap(err, apperrors.ErrInternal)
					}
					emptied = append(emptied, rec)
				} else if err := tx.Save(&rec).Error; err != nil {
					return apperrors.Wrap(err, apperrors.ErrInternal)
				}
			}
			return nil
		})
	})

	return emptied, err
}

// ReadAttendance streams every attendance row whose source_month is in
// months. §4.2 leaves order unspecified at the store layer; the aggregator
// imposes its own deterministic ordering on top.
func (s *Store) ReadAttendance(months []string) ([]models.AttendanceRow, error) {
	var rows []models.AttendanceRow
	if len(months) == 0 {
		return rows, nil
	}
	err := s.db.Where("source_month IN ?", months).Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}
	return rows, nil
}

// ReadTravel streams every travel row whose source_month is in months.
func (s *Store) ReadTravel(months []string) ([]models.TravelRow, error) {
	var rows []models.TravelRow
	if len(months) == 0 {
		return rows, nil
	}
	err := s.db.Where("source_month IN ?", months).Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}
	return rows, nil
}

// ReadAnomalies streams every anomaly row whose source_month is in months.
func (s *Store) ReadAnomalies(months []string) ([]models.AnomalyRow, error) {
	var rows []models.AnomalyRow
	if len(months) == 0 {
		return rows, nil
	}
	err := s.db.Where("source_month IN ?", months).Find(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}
	return rows, nil
}

// RowSet holds the rows ReadRows fetched, one slice per kind requested.
type RowSet struct {
	Attendance []models.AttendanceRow
	Travel     []models.TravelRow
	Anomalies  []models.AnomalyRow
}

// ReadRows is the generalised read_rows(months, kinds) operation §4.2
// names: it streams only the row kinds the caller asks for, so a consumer
// that only needs travel rows (e.g. a project listing) doesn't pay for an
// attendance query it will discard. All requested kinds are read inside one
// transaction, so they reflect the same committed state.
func (s *Store) ReadRows(months []string, kinds []RowKind) (RowSet, error) {
	var set RowSet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ts := &Store{db: tx}
		for _, kind := range kinds {
			switch kind {
			case KindAttendance:
				rows, err := ts.ReadAttendance(months)
				if err != nil {
					return err
				}
				set.Attendance = rows
			case KindTravel:
				rows, err := ts.ReadTravel(months)
				if err != nil {
					return err
				}
				set.Travel = rows
			case KindAnomaly:
				rows, err := ts.ReadAnomalies(months)
				if err != nil {
					return err
				}
				set.Anomalies = rows
			default:
				return apperrors.ErrInternal.WithMessage("unknown row kind: " + string(kind))
			}
		}
		return nil
	})
	if err != nil {
		return RowSet{}, err
	}
	return set, nil
}

// ListMonths returns every distinct source_month present in the attendance
// table, ascending — attendance is the canonical anchor per §4.2.
func (s *Store) ListMonths() ([]string, error) {
	var months []string
	err := s.db.Model(&models.AttendanceRow{}).Distinct().Pluck("source_month", &months).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}
	sort.Strings(months)
	return months, nil
}
