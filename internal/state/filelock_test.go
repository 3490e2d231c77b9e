package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLockFile(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "data.json.lock")

	_, err := os.Stat(lockPath)
	require.True(t, os.IsNotExist(err))

	lock, err := TryLockFile(lockPath)
	require.NoError(t, err)
	require.NotNil(t, lock)
	defer func() { _ = lock.Unlock() }()

	_, err = os.Stat(lockPath)
	require.NoError(t, err)
	assert.True(t, lock.Held())
	assert.Equal(t, lockPath, lock.Path())
}

func TestTryLockFile_AlreadyLocked(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "data.json.lock")

	lock1, err := TryLockFile(lockPath)
	require.NoError(t, err)
	defer func() { _ = lock1.Unlock() }()

	lock2, err := TryLockFile(lockPath)
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.Nil(t, lock2)
}

func TestFileLock_UnlockTwice(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "data.json.lock")

	lock, err := TryLockFile(lockPath)
	require.NoError(t, err)

	require.NoError(t, lock.Unlock())
	require.NoError(t, lock.Unlock())
	assert.False(t, lock.Held())

	// free again after unlock
	lock2, err := TryLockFile(lockPath)
	require.NoError(t, err)
	require.NoError(t, lock2.Unlock())
}

func TestLockContext_WaitsForRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "data.json.lock")

	lock1, err := TryLockFile(lockPath)
	require.NoError(t, err)

	acquired := make(chan *FileLock, 1)
	go func() {
		lock2, err := LockContext(context.Background(), lockPath, 10*time.Millisecond)
		if err != nil {
			acquired <- nil
			return
		}
		acquired <- lock2
	}()

	select {
	case <-acquired:
		t.Fatal("lock should not have been acquired while held")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, lock1.Unlock())

	select {
	case lock2 := <-acquired:
		require.NotNil(t, lock2, "lock should have been acquired after unlock")
		require.NoError(t, lock2.Unlock())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for lock acquisition")
	}
}

func TestLockContext_Cancelled(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "data.json.lock")

	lock1, err := TryLockFile(lockPath)
	require.NoError(t, err)
	defer func() { _ = lock1.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	lock2, err := LockContext(ctx, lockPath, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, lock2)
}
