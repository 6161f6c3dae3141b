package store

import (
	"errors"

	"gorm.io/gorm"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// UploadUpsert creates or updates an UploadRecord, keyed on FileKey (the
// stable identity the Ingestor derives from the original file name, per
// §4.2) rather than FilePath — the blob's on-disk path changes on every
// re-upload, so it can never serve as a conflict key. Re-ingesting the same
// file merges the newly covered months into the existing record instead of
// losing the months a previous ingestion already recorded.
func (s *Store) UploadUpsert(rec *models.UploadRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.UploadRecord
		err := tx.Where("file_key = ?", rec.FileKey).First(&existing).Error
		switch {
		case err == nil:
			existing.FileName = rec.FileName
			existing.FilePath = rec.FilePath
			existing.FileSize = rec.FileSize
			existing.UploadedAt = rec.UploadedAt
			existing.MonthsCovered = existing.MonthsCovered.Union(rec.MonthsCovered)
			existing.Parsed = rec.Parsed
			if rec.LastAnalysedAt != nil {
				existing.LastAnalysedAt = rec.LastAnalysedAt
			}
			if err := tx.Save(&existing).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}
			*rec = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(rec).Error; err != nil {
				return apperrors.Wrap(err, apperrors.ErrInternal)
			}
			return nil
		default:
			return apperrors.Wrap(err, apperrors.ErrInternal)
		}
	})
}

// UploadList returns every UploadRecord, most recently uploaded first.
func (s *Store) UploadList() ([]models.UploadRecord, error) {
	var recs []models.UploadRecord
	if err := s.db.Order("uploaded_at DESC").Find(&recs).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}
	return recs, nil
}
