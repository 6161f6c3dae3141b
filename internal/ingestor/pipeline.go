package ingestor

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "tama/internal/errors"
	"tama/internal/models"
	"tama/internal/normaliser"
	"tama/internal/validator"
)

// maxUploadSizeBytes is the hard ceiling on an accepted workbook, equal to
// §6's default max_upload_size_mb. The configured max_upload_size_mb is not
// read on the upload path; this constant is the only size limit applied.
const maxUploadSizeBytes = 200 * 1024 * 1024

// Ingest runs the five-step pipeline in §4.3 for one uploaded workbook,
// recording every step and the final status (COMPLETED or FAILED) on the
// task's ProgressTask; it returns nothing. taskID must already be registered
// with the store (the caller creates it synchronously so /upload can
// return it immediately; see internal/api).
func (ig *Ingestor) Ingest(ctx context.Context, taskID, originalFileName string, payload io.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	ig.registerCancel(taskID, cancel)
	defer cancel()

	fail := func(err error) {
		ig.retireCancel(taskID)
		_ = ig.store.ProgressUpdate(taskID, models.ProgressFailed, ig.lastProgress(taskID), "failed", err.Error())
		ig.log.WithError(err).WithField("task_id", taskID).Error("ingestion failed")
	}

	// Step 1: persist the blob under a content-addressable name.
	_ = ig.store.ProgressUpdate(taskID, models.ProgressProcessing, 10, "persisting upload", "")
	if err := ctx.Err(); err != nil {
		fail(apperrors.ErrCancelled.WithMessage("cancelled before persisting upload"))
		return
	}
	path, size, fileKey, err := ig.persistUpload(originalFileName, payload)
	if err != nil {
		fail(err)
		return
	}

	// Step 2: normalise.
	_ = ig.store.ProgressUpdate(taskID, models.ProgressProcessing, 35, "parsing workbook", "")
	if err := ctx.Err(); err != nil {
		fail(apperrors.ErrCancelled.WithMessage("cancelled before parsing"))
		return
	}
	result, err := normaliser.Normalise(path)
	if err != nil {
		fail(err)
		return
	}
	if len(result.Warnings) > 0 {
		ig.log.WithField("task_id", taskID).WithField("warnings", len(result.Warnings)).Warn("normaliser produced warnings")
	}

	// Step 3: validate + replace_month per covered month. Not cancellable
	// past this point (§5) — the cancel func is retired so a racing Cancel
	// call is inert.
	ig.retireCancel(taskID)
	_ = ig.store.ProgressUpdate(taskID, models.ProgressProcessing, 60, "validating and storing", "")

	if err := ig.writeMonths(result); err != nil {
		fail(err)
		return
	}

	// Step 4: upsert the UploadRecord.
	_ = ig.store.ProgressUpdate(taskID, models.ProgressProcessing, 90, "recording upload", "")
	rec := &models.UploadRecord{
		FileKey:       fileKey,
		FileName:      originalFileName,
		FilePath:      path,
		FileSize:      size,
		UploadedAt:    time.Now(),
		MonthsCovered: result.MonthsCovered,
		Parsed:        true,
	}
	if err := ig.store.UploadUpsert(rec); err != nil {
		fail(err)
		return
	}

	// Step 5: done.
	_ = ig.store.ProgressUpdate(taskID, models.ProgressCompleted, 100, "completed", "")
}

// writeMonths assembles the per-month row sets, derives anomalies via the
// validator, and writes each month with Store.ReplaceMonth. Months run
// concurrently through an errgroup since the store already serialises same-
// month writes and different months have no ordering requirement (§5);
// this is the pack-grounded use of golang.org/x/sync/errgroup noted in
// DESIGN.md.
func (ig *Ingestor) writeMonths(result *normaliser.Result) error {
	attendanceByMonth := make(map[string][]models.AttendanceRow)
	for _, row := range result.Attendance {
		attendanceByMonth[row.SourceMonth] = append(attendanceByMonth[row.SourceMonth], row)
	}
	travelByMonth := make(map[string][]models.TravelRow)
	for _, row := range result.Travel {
		travelByMonth[row.SourceMonth] = append(travelByMonth[row.SourceMonth], row)
	}

	var g errgroup.Group
	for _, month := range result.MonthsCovered {
		month := month
		g.Go(func() error {
			a := attendanceByMonth[month]
			t := travelByMonth[month]
			validated := validator.Validate(a, t)
			if len(validated.Warnings) > 0 {
				ig.log.WithField("month", month).WithField("warnings", len(validated.Warnings)).Warn("validator produced warnings")
			}
			return ig.store.ReplaceMonth(month, a, t, validated.Anomalies)
		})
	}
	if err := g.Wait(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("failed to write one or more months"))
	}
	return nil
}

// persistUpload writes payload to the upload directory under a disk name
// made unique by the first 8 hex digits of the SHA-256 of the original file
// name plus the upload timestamp, per §5's shared-resource policy. It also
// returns the full hex digest of that same hash as fileKey — a name-derived
// identity that stays stable across re-uploads of the same file, unlike the
// timestamped disk path, so UploadUpsert has something fixed to key on.
// Adapted from internal/services/upload_service.go's size/extension checks,
// with the teacher's UUID-suffix naming replaced by this hash-based scheme.
func (ig *Ingestor) persistUpload(originalFileName string, payload io.Reader) (path string, size int64, fileKey string, err error) {
	if err := os.MkdirAll(ig.uploadDir, 0o755); err != nil {
		return "", 0, "", apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("could not create upload directory"))
	}

	limited := io.LimitReader(payload, maxUploadSizeBytes+1)
	buf, err := io.ReadAll(limited)
	if err != nil {
		return "", 0, "", apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("could not read upload"))
	}
	if int64(len(buf)) > maxUploadSizeBytes {
		return "", 0, "", apperrors.ErrSourceInvalid.WithMessage("upload exceeds max_upload_size_mb")
	}

	sum := sha256.Sum256([]byte(originalFileName))
	digest := fmt.Sprintf("%x", sum)
	ext := filepath.Ext(originalFileName)
	base := originalFileName[:len(originalFileName)-len(ext)]
	uniqueName := fmt.Sprintf("%s_%s_%d%s", base, digest[:8], time.Now().UnixNano(), ext)

	fullPath := filepath.Join(ig.uploadDir, uniqueName)
	f, err := os.Create(fullPath)
	if err != nil {
		return "", 0, "", apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("could not create upload file"))
	}
	defer f.Close()

	n, err := f.Write(buf)
	if err != nil {
		return "", 0, "", apperrors.Wrap(err, apperrors.ErrInternal.WithMessage("could not write upload file"))
	}
	return fullPath, int64(n), digest, nil
}

// lastProgress is a best-effort read of the task's current percentage, so a
// failure reported mid-pipeline doesn't regress the progress bar.
func (ig *Ingestor) lastProgress(taskID string) int {
	if task, ok := ig.store.ProgressGet(taskID); ok {
		return task.Progress
	}
	return 0
}
