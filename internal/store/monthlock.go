package store

import (
	"sync"
	"time"

	apperrors "tama/internal/errors"
)

// lockAcquireTimeout bounds how long ReplaceMonth/DeleteMonth will wait for
// a month's lock before giving up and reporting STORE_CONTENTION (§7), so a
// stuck or very slow concurrent write can't wedge a caller forever. A var,
// not a const, so tests can shrink it rather than waiting out the real
// timeout.
var lockAcquireTimeout = 5 * time.Second

// lockPollInterval is how often withLock retries sync.Mutex.TryLock while
// waiting for the holder to release it.
var lockPollInterval = 5 * time.Millisecond

// monthLocks provides one mutex per "YYYY-MM" key so that concurrent writes
// to the same month are serialised (last writer wins within the lock) while
// writes to different months proceed independently, per §5.
//
// This is a keyed mutex, not golang.org/x/sync/singleflight: singleflight
// collapses concurrent *identical* calls into one shared result, which is
// the wrong primitive here — two concurrent ingestions of the same month
// are distinct writes that must both run, in some commit order, not be
// deduplicated into a single execution. No dependency in the retrieval pack
// solves keyed mutual exclusion directly (see DESIGN.md), so this one piece
// stays on the standard library's sync.Mutex.
type monthLocks struct {
	mu     sync.Mutex
	perKey map[string]*sync.Mutex
}

func newMonthLocks() *monthLocks {
	return &monthLocks{perKey: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex for a given month, creating it on first use.
func (m *monthLocks) lockFor(month string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.perKey[month]
	if !ok {
		l = &sync.Mutex{}
		m.perKey[month] = l
	}
	return l
}

// withLock runs fn while holding the lock for month. If the lock isn't
// acquired within lockAcquireTimeout it returns ErrStoreContention without
// running fn.
func (m *monthLocks) withLock(month string, fn func() error) error {
	l := m.lockFor(month)

	deadline := time.Now().Add(lockAcquireTimeout)
	for !l.TryLock() {
		if time.Now().After(deadline) {
			return apperrors.ErrStoreContention.WithMessage("timed out waiting for the lock on month " + month)
		}
		time.Sleep(lockPollInterval)
	}
	defer l.Unlock()

	return fn()
}
