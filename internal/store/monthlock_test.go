package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tama/internal/errors"
)

func TestMonthLocks_WithLockSerialisesSameMonth(t *testing.T) {
	locks := newMonthLocks()

	var order []string

	done := make(chan struct{})
	go func() {
		_ = locks.withLock("2025-01", func() error {
			order = append(order, "first")
			time.Sleep(10 * time.Millisecond)
			return nil
		})
		close(done)
	}()

	time.Sleep(2 * time.Millisecond) // let the goroutine take the lock first
	require.NoError(t, locks.withLock("2025-01", func() error {
		order = append(order, "second")
		return nil
	}))
	<-done

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestMonthLocks_TimesOutAsStoreContention(t *testing.T) {
	locks := newMonthLocks()

	originalTimeout, originalPoll := lockAcquireTimeout, lockPollInterval
	lockAcquireTimeout = 20 * time.Millisecond
	lockPollInterval = time.Millisecond
	defer func() { lockAcquireTimeout, lockPollInterval = originalTimeout, originalPoll }()

	release := make(chan struct{})
	holding := make(chan struct{})
	go func() {
		_ = locks.withLock("2025-01", func() error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	err := locks.withLock("2025-01", func() error {
		t.Fatal("fn must not run when the lock times out")
		return nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrStoreContention))
}
