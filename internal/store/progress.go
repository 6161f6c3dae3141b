package store

import (
	"sync"
	"time"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// terminalTTL is how long a ProgressTask remains readable after reaching a
// terminal status, per §4.2 ("expire 1 hour after reaching a terminal
// state"). §4.3 additionally guarantees at least 60 seconds, which this
// comfortably exceeds.
const terminalTTL = time.Hour

// progressTable is the sole in-memory coordination primitive for ingestion
// progress, per §9's design note: no database table backs it.
type progressTable struct {
	mu    sync.Mutex
	tasks map[string]*models.ProgressTask
}

func newProgressTable() *progressTable {
	return &progressTable{tasks: make(map[string]*models.ProgressTask)}
}

// ProgressCreate starts tracking a new task.
func (s *Store) ProgressCreate(taskID, fileName string) *models.ProgressTask {
	s.progress.mu.Lock()
	defer s.progress.mu.Unlock()

	task := &models.ProgressTask{
		TaskID:      taskID,
		FileName:    fileName,
		Status:      models.ProgressUploading,
		Progress:    0,
		CurrentStep: "uploading",
		CreatedAt:   time.Now(),
	}
	s.progress.tasks[taskID] = task
	return task
}

// ProgressUpdate advances a task's progress. Percentages are caller-supplied
// and only required to be monotonic at step boundaries, per §4.3; this
// method does not itself enforce monotonicity so a caller reporting
// sub-step progress within a step isn't rejected.
func (s *Store) ProgressUpdate(taskID string, status models.ProgressStatus, progress int, step string, errMsg string) error {
	s.progress.mu.Lock()
	defer s.progress.mu.Unlock()

	task, ok := s.progress.tasks[taskID]
	if !ok {
		return apperrors.ErrInternal.WithMessage("progress_update on unknown task_id")
	}

	task.Status = status
	task.Progress = progress
	task.CurrentStep = step
	task.Error = errMsg
	task.Steps = append(task.Steps, models.ProgressStep{Label: step, CompletedAt: time.Now()})

	if task.IsTerminal() && task.TerminalAt == nil {
		now := time.Now()
		task.TerminalAt = &now
	}
	return nil
}

// ProgressGet returns the task, or ok=false if it doesn't exist or has
// expired (terminal for longer than terminalTTL).
func (s *Store) ProgressGet(taskID string) (models.ProgressTask, bool) {
	s.progress.mu.Lock()
	defer s.progress.mu.Unlock()

	task, ok := s.progress.tasks[taskID]
	if !ok {
		return models.ProgressTask{}, false
	}
	if task.TerminalAt != nil && time.Since(*task.TerminalAt) > terminalTTL {
		delete(s.progress.tasks, taskID)
		return models.ProgressTask{}, false
	}
	return *task, true
}

// sweepExpiredProgress removes terminal tasks past their TTL. Called
// periodically by the caller (e.g. a ticker in cmd/server); not required
// for correctness since ProgressGet self-expires lazily, but keeps the
// in-memory map from growing unbounded under a long-lived process.
func (s *Store) sweepExpiredProgress() {
	s.progress.mu.Lock()
	defer s.progress.mu.Unlock()

	for id, task := range s.progress.tasks {
		if task.TerminalAt != nil && time.Since(*task.TerminalAt) > terminalTTL {
			delete(s.progress.tasks, id)
		}
	}
}

// SweepExpiredProgress is the exported entry point for a periodic cleanup
// goroutine; see cmd/server/main.go.
func (s *Store) SweepExpiredProgress() { s.sweepExpiredProgress() }
