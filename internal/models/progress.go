package models

import "time"

// ProgressStatus is the lifecycle state of one ingestion task.
type ProgressStatus string

const (
	ProgressUploading ProgressStatus = "UPLOADING"
	ProgressProcessing ProgressStatus = "PROCESSING"
	ProgressCompleted  ProgressStatus = "COMPLETED"
	ProgressFailed     ProgressStatus = "FAILED"
)

// ProgressStep is one step label reported for an ingestion, with the time
// it was reported. A step is appended when ProgressUpdate announces it,
// i.e. when the step starts; no separate entry marks when it finishes.
// Steps accumulate in order; the store never reorders them.
type ProgressStep struct {
	Label       string    `json:"label"`
	CompletedAt time.Time `json:"completed_at"`
}

// ProgressTask is the ephemeral record of one in-flight (or recently
// finished) ingestion. It lives only in the Store's in-memory table, not in
// the relational tables, and expires a fixed time after reaching a terminal
// status (see internal/store/progress.go).
type ProgressTask struct {
	TaskID      string         `json:"task_id"`
	FileName    string         `json:"file_name"`
	Status      ProgressStatus `json:"status"`
	Progress    int            `json:"progress"` // 0-100, monotonic, advisory
	CurrentStep string         `json:"current_step"`
	Steps       []ProgressStep `json:"steps"`
	Error       string         `json:"error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	TerminalAt *time.Time `json:"-"` // set when Status becomes COMPLETED/FAILED
}

// IsTerminal reports whether the task has reached a state the Ingestor will
// never revisit.
func (t ProgressTask) IsTerminal() bool {
	return t.Status == ProgressCompleted || t.Status == ProgressFailed
}
