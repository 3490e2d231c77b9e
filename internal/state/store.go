package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/model"
)

// stateFilePerm keeps the state file private to the user.
const stateFilePerm = 0600

// Store owns the persisted mod manager state. It is the single writer of the
// state file: Update serialises writers in-process with a mutex and across
// processes with an advisory lock next to the file. Readers get deep copies.
type Store struct {
	path     string
	lockPoll time.Duration

	writeMu sync.Mutex

	mu          sync.RWMutex
	state       *model.State
	migrated    bool
	notes       []model.MigrationNote
	quarantined string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLockPoll sets how often a held file lock is retried.
func WithLockPoll(d time.Duration) StoreOption {
	return func(s *Store) { s.lockPoll = d }
}

// OpenStore loads the state file at path.
//
//   - A missing file yields an empty state; nothing is written until Update.
//   - A file that is not JSON is moved aside (see QuarantineFile) and an
//     empty state is used.
//   - A file that is JSON but violates the schema is left untouched and the
//     error is returned.
//   - A file at an older schema version is migrated and written back, with
//     the original kept as backup.
func OpenStore(ctx context.Context, path string, opts ...StoreOption) (*Store, error) {
	s := &Store{path: path, lockPoll: DefaultLockPoll}
	for _, opt := range opts {
		opt(s)
	}

	//nolint:gosec // G304: state path is controlled by the application
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.state = model.NewState()
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if !json.Valid(data) {
		target, err := QuarantineFile(path)
		if err != nil {
			return nil, err
		}
		zap.S().Warnw("State file is not valid JSON, starting fresh",
			zap.String("path", path), zap.String("moved_to", target))
		s.quarantined = target
		s.state = model.NewState()
		return s, nil
	}

	vs, err := model.DecodeState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", path, err)
	}
	st, notes, err := model.MigrateWithNotes(vs)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate state file %s: %w", path, err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid state file %s: %w", path, err)
	}

	s.state = st
	if _, current := vs.(*model.State); !current {
		s.migrated = true
		s.notes = notes
		zap.S().Infow("Migrating state file",
			zap.String("path", path),
			zap.String("from", vs.SchemaVersion()),
			zap.String("to", model.CurrentSchemaVersion),
			zap.Int("notes", len(notes)))
		// rewrite the file at the current schema
		if err := s.Update(ctx, func(*model.State) error { return nil }); err != nil {
			return nil, fmt.Errorf("failed to write migrated state: %w", err)
		}
	}

	return s, nil
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Migrated reports whether the file was converted from an older schema when
// the store was opened, along with what the conversion changed.
func (s *Store) Migrated() (bool, []model.MigrationNote) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.migrated, s.notes
}

// Quarantined returns where an unreadable state file was moved, if any.
func (s *Store) Quarantined() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quarantined
}

// Update applies fn to a copy of the state and persists the result. The
// latest state on disk is used as the starting point so that writes by other
// processes are not lost. If fn or validation fails nothing is written and
// the in-memory state is unchanged.
func (s *Store) Update(ctx context.Context, fn func(*model.State) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}
	lock, err := LockContext(ctx, LockPath(s.path), s.lockPoll)
	if err != nil {
		return fmt.Errorf("failed to lock state: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			zap.S().Warnw("Failed to release state lock", zap.Error(err))
		}
	}()

	base, err := s.readCurrent()
	if err != nil {
		return err
	}

	next := base.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid state after update: %w", err)
	}

	return s.persist(next)
}

// Reload re-reads the state file, picking up writes by other processes.
func (s *Store) Reload() error {
	st, err := s.readCurrent()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// readCurrent returns the state on disk, or the in-memory state when the
// file does not exist yet.
func (s *Store) readCurrent() (*model.State, error) {
	//nolint:gosec // G304: state path is controlled by the application
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.Snapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	st, err := model.ParseState(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	return st, nil
}

func (s *Store) persist(st *model.State) error {
	data, err := model.MarshalState(st)
	if err != nil {
		return err
	}
	if err := AtomicWriteWithBackup(s.path, data, stateFilePerm); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	zap.S().Debugw("State persisted", zap.String("path", s.path), zap.Int("games", len(st.Games)))
	return nil
}
