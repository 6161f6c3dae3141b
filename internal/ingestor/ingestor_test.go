package ingestor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tama/internal/models"
	"tama/internal/store"
)

// buildWorkbookBytes assembles a minimal four-sheet workbook in memory,
// grounded the same way internal/normaliser's test helper is: write what
// the normaliser contract expects to read.
func buildWorkbookBytes(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "考勤"))
	for _, name := range []string{"机票", "酒店", "火车"} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}

	attendanceHeader := []string{"日期", "姓名", "部门", "状态", "工时", "下班时间"}
	for i, h := range attendanceHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, f.SetCellValue("考勤", cell, h))
	}
	require.NoError(t, f.SetCellValue("考勤", "A2", "2025-09-01"))
	require.NoError(t, f.SetCellValue("考勤", "B2", "张三"))
	require.NoError(t, f.SetCellValue("考勤", "C2", "研发/算法"))
	require.NoError(t, f.SetCellValue("考勤", "D2", "上班"))
	require.NoError(t, f.SetCellValue("考勤", "E2", "8"))

	travelHeader := []string{"日期", "预订人", "出行人", "部门", "金额", "项目", "提前预订天数", "是否超标", "超标原因"}
	for i, h := range travelHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, f.SetCellValue("机票", cell, h))
	}
	require.NoError(t, f.SetCellValue("机票", "A2", "2025-09-01"))
	require.NoError(t, f.SetCellValue("机票", "B2", "张三"))
	require.NoError(t, f.SetCellValue("机票", "C2", "张三"))
	require.NoError(t, f.SetCellValue("机票", "D2", "研发/算法"))
	require.NoError(t, f.SetCellValue("机票", "E2", "1500"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return buf.Bytes()
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	st, err := store.Open("sqlite", dsn)
	require.NoError(t, err)
	return st
}

func TestIngest_EndToEndProducesAttendanceTravelAndAnomaly(t *testing.T) {
	st := openTestStore(t)
	uploadDir := t.TempDir()
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))

	ig := New(st, uploadDir, log)

	taskID := "task-e2e"
	st.ProgressCreate(taskID, "sep.xlsx")

	workbook := buildWorkbookBytes(t)
	ig.Ingest(context.Background(), taskID, "sep.xlsx", bytes.NewReader(workbook))

	task, ok := st.ProgressGet(taskID)
	require.True(t, ok)
	assert.Equal(t, models.ProgressCompleted, task.Status, "expected a clean completion: %s", task.Error)
	assert.Equal(t, 100, task.Progress)

	attendance, err := st.ReadAttendance([]string{"2025-09"})
	require.NoError(t, err)
	require.Len(t, attendance, 1)

	travel, err := st.ReadTravel([]string{"2025-09"})
	require.NoError(t, err)
	require.Len(t, travel, 1)
	assert.Equal(t, 1500.0, travel[0].Amount)

	anomalies, err := st.ReadAnomalies([]string{"2025-09"})
	require.NoError(t, err)
	require.Len(t, anomalies, 1, "WORK attendance plus same-day flight should trip CONFLICT_WORK_HAS_TRAVEL")
	assert.Equal(t, models.AnomalyConflictWorkHasTravel, anomalies[0].Kind)

	uploads, err := st.UploadList()
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.True(t, uploads[0].Parsed)
	assert.True(t, uploads[0].MonthsCovered.Contains("2025-09"))

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "expected one persisted blob under the upload directory")
}

func TestIngest_MissingRequiredSheetFailsTask(t *testing.T) {
	st := openTestStore(t)
	uploadDir := t.TempDir()
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))
	ig := New(st, uploadDir, log)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "考勤")) // flight/hotel/train omitted
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	taskID := "task-bad"
	st.ProgressCreate(taskID, "incomplete.xlsx")
	ig.Ingest(context.Background(), taskID, "incomplete.xlsx", bytes.NewReader(buf.Bytes()))

	task, ok := st.ProgressGet(taskID)
	require.True(t, ok)
	assert.Equal(t, models.ProgressFailed, task.Status)
	assert.NotEmpty(t, task.Error)
}

func TestIngest_ReplayIsIdempotent(t *testing.T) {
	st := openTestStore(t)
	uploadDir := t.TempDir()
	log := logrus.New()
	log.SetOutput(bytes.NewBuffer(nil))
	ig := New(st, uploadDir, log)
	workbook := buildWorkbookBytes(t)

	for i := 0; i < 2; i++ {
		taskID := fmt.Sprintf("task-replay-%d", i)
		st.ProgressCreate(taskID, "sep.xlsx")
		ig.Ingest(context.Background(), taskID, "sep.xlsx", bytes.NewReader(workbook))
		task, ok := st.ProgressGet(taskID)
		require.True(t, ok)
		require.Equal(t, models.ProgressCompleted, task.Status)
	}

	attendance, err := st.ReadAttendance([]string{"2025-09"})
	require.NoError(t, err)
	assert.Len(t, attendance, 1, "re-ingesting the same workbook must not duplicate rows")

	uploads, err := st.UploadList()
	require.NoError(t, err)
	require.Len(t, uploads, 1, "re-ingesting the same file must update one UploadRecord, not create a second")
	assert.True(t, uploads[0].MonthsCovered.Contains("2025-09"))
}
