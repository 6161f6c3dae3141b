package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tama/internal/models"
)

// openTestStore opens a fresh in-memory SQLite-backed Store, grounded on
// the teacher's setupPayrollTestDB helper shape. Each test gets its own
// named in-memory database (shared-cache mode, keyed by test name) so the
// connection pool's multiple connections see one consistent database
// without leaking state across test functions.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := Open("sqlite", dsn)
	require.NoError(t, err, "failed to open test store")
	return st
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestReplaceMonth_WritesAllThreeRowKinds(t *testing.T) {
	st := openTestStore(t)

	attendance := []models.AttendanceRow{
		{Date: day(2025, 1, 1), EmployeeName: "张三", Status: models.StatusWork, WorkHours: 8, SourceMonth: "2025-01"},
	}
	travel := []models.TravelRow{
		{Kind: models.KindFlight, EventDate: day(2025, 1, 1), TravellerName: "张三", Amount: 1000, SourceMonth: "2025-01"},
	}
	anomalies := []models.AnomalyRow{
		{Date: day(2025, 1, 1), EmployeeName: "张三", Kind: models.AnomalyConflictWorkHasTravel, SourceMonth: "2025-01"},
	}

	require.NoError(t, st.ReplaceMonth("2025-01", attendance, travel, anomalies))

	gotAttendance, err := st.ReadAttendance([]string{"2025-01"})
	require.NoError(t, err)
	assert.Len(t, gotAttendance, 1)

	gotTravel, err := st.ReadTravel([]string{"2025-01"})
	require.NoError(t, err)
	assert.Len(t, gotTravel, 1)

	gotAnomalies, err := st.ReadAnomalies([]string{"2025-01"})
	require.NoError(t, err)
	assert.Len(t, gotAnomalies, 1)
}

// Replay invariant (§8): ingest(W); ingest(W) yields the same state as
// ingest(W) alone.
func TestReplaceMonth_ReplayIsIdempotent(t *testing.T) {
	st := openTestStore(t)

	attendance := []models.AttendanceRow{
		{Date: day(2025, 1, 1), EmployeeName: "张三", Status: models.StatusWork, WorkHours: 8, SourceMonth: "2025-01"},
	}

	require.NoError(t, st.ReplaceMonth("2025-01", attendance, nil, nil))
	require.NoError(t, st.ReplaceMonth("2025-01", attendance, nil, nil))

	rows, err := st.ReadAttendance([]string{"2025-01"})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "re-ingesting the same month must not duplicate rows")
}

// (employee_name, date) uniqueness (§3): a workbook with two rows for the
// same person-day must not insert both; the later row wins.
func TestReplaceMonth_DedupesDuplicatePersonDay(t *testing.T) {
	st := openTestStore(t)

	attendance := []models.AttendanceRow{
		{Date: day(2025, 1, 1), EmployeeName: "张三", Status: models.StatusWork, WorkHours: 8, SourceMonth: "2025-01"},
		{Date: day(2025, 1, 1), EmployeeName: "张三", Status: models.StatusWeekendWork, WorkHours: 6, SourceMonth: "2025-01"},
	}

	require.NoError(t, st.ReplaceMonth("2025-01", attendance, nil, nil))

	rows, err := st.ReadAttendance([]string{"2025-01"})
	require.NoError(t, err)
	require.Len(t, rows, 1, "duplicate (employee_name, date) rows must collapse to one")
	assert.Equal(t, models.StatusWeekendWork, rows[0].Status, "the later occurrence wins")
}

// Per-month isolation (§8): replacing one month must not disturb another.
func TestReplaceMonth_IsolatedPerMonth(t *testing.T) {
	st := openTestStore(t)

	jan := []models.AttendanceRow{
		{Date: day(2025, 1, 1), EmployeeName: "张三", Status: models.StatusWork, SourceMonth: "2025-01"},
	}
	feb := []models.AttendanceRow{
		{Date: day(2025, 2, 1), EmployeeName: "李四", Status: models.StatusWork, SourceMonth: "2025-02"},
	}

	require.NoError(t, st.ReplaceMonth("2025-01", jan, nil, nil))
	require.NoError(t, st.ReplaceMonth("2025-02", feb, nil, nil))

	janRows, err := st.ReadAttendance([]string{"2025-01"})
	require.NoError(t, err)
	assert.Len(t, janRows, 1)

	febRows, err := st.ReadAttendance([]string{"2025-02"})
	require.NoError(t, err)
	assert.Len(t, febRows, 1)

	// Re-replacing January must leave February untouched.
	require.NoError(t, st.ReplaceMonth("2025-01", jan, nil, nil))
	febRows, err = st.ReadAttendance([]string{"2025-02"})
	require.NoError(t, err)
	assert.Len(t, febRows, 1)
}

// Delete correctness (§8): after deleting a month, no row of any kind
// carries that source_month, and list_months no longer reports it.
func TestDeleteMonth_RemovesAllRowsAndUnlistsMonth(t *testing.T) {
	st := openTestStore(t)

	attendance := []models.AttendanceRow{
		{Date: day(2025, 1, 1), EmployeeName: "张三", Status: models.StatusWork, SourceMonth: "2025-01"},
	}
	travel := []models.TravelRow{
		{Kind: models.KindFlight, EventDate: day(2025, 1, 1), TravellerName: "张三", Amount: 1000, SourceMonth: "2025-01"},
	}
	require.NoError(t, st.ReplaceMonth("2025-01", attendance, travel, nil))

	_, err := st.DeleteMonth("2025-01")
	require.NoError(t, err)

	rows, err := st.ReadAttendance([]string{"2025-01"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	travelRows, err := st.ReadTravel([]string{"2025-01"})
	require.NoError(t, err)
	assert.Empty(t, travelRows)

	months, err := st.ListMonths()
	require.NoError(t, err)
	assert.NotContains(t, months, "2025-01")
}

func TestDeleteMonth_ShrinksAndRemovesUploadRecord(t *testing.T) {
	st := openTestStore(t)

	rec := &models.UploadRecord{
		FileName:      "jan-feb.xlsx",
		FilePath:      "/uploads/jan-feb.xlsx",
		MonthsCovered: models.MonthSet{"2025-01", "2025-02"},
		Parsed:        true,
	}
	require.NoError(t, st.UploadUpsert(rec))

	emptied, err := st.DeleteMonth("2025-01")
	require.NoError(t, err)
	assert.Empty(t, emptied, "record still covers 2025-02; should not be emptied yet")

	recs, err := st.UploadList()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.False(t, recs[0].MonthsCovered.Contains("2025-01"))
	assert.True(t, recs[0].MonthsCovered.Contains("2025-02"))

	emptied, err = st.DeleteMonth("2025-02")
	require.NoError(t, err)
	assert.Len(t, emptied, 1, "record's last month was removed, so it should be deleted")

	recs, err = st.UploadList()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

// UploadUpsert keys on FileKey, not FilePath, since the Ingestor gives every
// persisted blob a fresh timestamped disk path: re-ingesting the same file
// must update the one existing record and union its MonthsCovered, not
// create a second record.
func TestUploadUpsert_SameFileKeyMergesMonthsCovered(t *testing.T) {
	st := openTestStore(t)

	first := &models.UploadRecord{
		FileKey:       "abc123",
		FileName:      "jan.xlsx",
		FilePath:      "/uploads/jan_abc123_1.xlsx",
		MonthsCovered: models.MonthSet{"2025-01"},
		Parsed:        true,
	}
	require.NoError(t, st.UploadUpsert(first))

	second := &models.UploadRecord{
		FileKey:       "abc123",
		FileName:      "jan.xlsx",
		FilePath:      "/uploads/jan_abc123_2.xlsx",
		MonthsCovered: models.MonthSet{"2025-02"},
		Parsed:        true,
	}
	require.NoError(t, st.UploadUpsert(second))

	recs, err := st.UploadList()
	require.NoError(t, err)
	require.Len(t, recs, 1, "same FileKey must update the existing record, not create a second one")
	assert.True(t, recs[0].MonthsCovered.Contains("2025-01"))
	assert.True(t, recs[0].MonthsCovered.Contains("2025-02"))
	assert.Equal(t, "/uploads/jan_abc123_2.xlsx", recs[0].FilePath, "the latest ingestion's blob path wins")
}

func TestListMonths_SortedAscending(t *testing.T) {
	st := openTestStore(t)

	require.NoError(t, st.ReplaceMonth("2025-03", []models.AttendanceRow{
		{Date: day(2025, 3, 1), EmployeeName: "a", Status: models.StatusWork, SourceMonth: "2025-03"},
	}, nil, nil))
	require.NoError(t, st.ReplaceMonth("2025-01", []models.AttendanceRow{
		{Date: day(2025, 1, 1), EmployeeName: "b", Status: models.StatusWork, SourceMonth: "2025-01"},
	}, nil, nil))

	months, err := st.ListMonths()
	require.NoError(t, err)
	require.Equal(t, []string{"2025-01", "2025-03"}, months)
}

func TestProgress_LifecycleStaysReadableAfterTerminal(t *testing.T) {
	st := openTestStore(t)

	task := st.ProgressCreate("task-1", "jan.xlsx")
	assert.Equal(t, models.ProgressUploading, task.Status)

	require.NoError(t, st.ProgressUpdate("task-1", models.ProgressProcessing, 50, "parsing", ""))
	got, ok := st.ProgressGet("task-1")
	require.True(t, ok)
	assert.Equal(t, models.ProgressProcessing, got.Status)
	assert.Equal(t, 50, got.Progress)

	require.NoError(t, st.ProgressUpdate("task-1", models.ProgressCompleted, 100, "done", ""))
	got, ok = st.ProgressGet("task-1")
	require.True(t, ok)
	assert.True(t, got.IsTerminal())
}

func TestProgress_UnknownTaskReturnsNotFound(t *testing.T) {
	st := openTestStore(t)
	_, ok := st.ProgressGet("does-not-exist")
	assert.False(t, ok)
}
