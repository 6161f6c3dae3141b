/*
Package ingestor drives a single workbook through the pipeline: persist the
blob, normalise, validate per month, write to the store, and report progress
throughout. Modeled on the worker.Pipeline.ProcessJob step/progress shape
from the retrieval pack's RemedyIQ ingestion worker, adapted from a
download-JAR-parse-store flow to a persist-normalise-validate-store one.
*/
package ingestor

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"tama/internal/store"
)

// Ingestor orchestrates uploads. Multiple calls to Ingest may run
// concurrently; the store's per-month locks (not this struct) serialise
// writes that land on the same month.
type Ingestor struct {
	store     *store.Store
	uploadDir string
	log       *logrus.Logger

	mu       sync.Mutex
	cancels  map[string]context.CancelFunc // task_id -> cancel, step 1-2 only
}

// New constructs an Ingestor writing uploaded blobs under uploadDir.
func New(st *store.Store, uploadDir string, log *logrus.Logger) *Ingestor {
	return &Ingestor{
		store:     st,
		uploadDir: uploadDir,
		log:       log,
		cancels:   make(map[string]context.CancelFunc),
	}
}

// Cancel requests cancellation of taskID. Per §5, this only has an effect
// during steps 1-2 (before the first Store write begins); once step 3
// starts the task is no longer cancellable and Cancel is a no-op for it.
func (ig *Ingestor) Cancel(taskID string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	if cancel, ok := ig.cancels[taskID]; ok {
		cancel()
	}
}

func (ig *Ingestor) registerCancel(taskID string, cancel context.CancelFunc) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	ig.cancels[taskID] = cancel
}

// retireCancel drops the cancel func once step 3 begins (or the task
// finishes), so a stray Cancel call afterward is inert.
func (ig *Ingestor) retireCancel(taskID string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.cancels, taskID)
}
