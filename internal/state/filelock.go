package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// DefaultLockPoll is how often LockContext retries a held lock.
const DefaultLockPoll = 50 * time.Millisecond

// ErrLockHeld is returned when TryLockFile cannot acquire a lock
// because it is already held by another process.
var ErrLockHeld = errors.New("lock is held by another process")

// FileLock is an advisory flock(2) lock. Every process writing the state
// file takes it, readers do not.
type FileLock struct {
	file *os.File
	path string
}

// TryLockFile takes an exclusive lock on path without blocking, creating the
// file if needed. It returns ErrLockHeld when another holder exists.
func TryLockFile(path string) (*FileLock, error) {
	//nolint:gosec // G304: File path is controlled by application, not user input
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for locking: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return &FileLock{file: f, path: path}, nil
}

// LockContext takes an exclusive lock on path, polling every poll interval
// until it is free or ctx is done.
func LockContext(ctx context.Context, path string, poll time.Duration) (*FileLock, error) {
	if poll <= 0 {
		poll = DefaultLockPoll
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		lock, err := TryLockFile(path)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, ErrLockHeld) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for lock %s: %w", path, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock and closes the file. It is safe to call twice.
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	if err := syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = fl.file.Close()
		fl.file = nil
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if err := fl.file.Close(); err != nil {
		fl.file = nil
		return fmt.Errorf("failed to close file: %w", err)
	}

	fl.file = nil
	return nil
}

// Held reports whether the lock has not been released yet.
func (fl *FileLock) Held() bool {
	return fl.file != nil
}

// Path returns the path to the lock file.
func (fl *FileLock) Path() string {
	return fl.path
}
