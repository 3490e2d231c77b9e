package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to path through a temp file in the same directory,
// fsync and rename. Readers see either the old or the new content, never a
// partial write. On failure the original file is left unchanged.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}

	success = true
	return nil
}

// AtomicWriteWithBackup copies the current content of path to its backup
// file (see BackupPath) and then writes data atomically. The backup is kept
// after a successful write so the previous state can be recovered by hand.
func AtomicWriteWithBackup(path string, data []byte, perm os.FileMode) error {
	//nolint:gosec // G304: path is controlled by the application
	current, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := AtomicWrite(BackupPath(path), current, perm); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// nothing to back up
	default:
		return fmt.Errorf("failed to read current file: %w", err)
	}

	return AtomicWrite(path, data, perm)
}

// RestoreBackup replaces path with its backup file.
func RestoreBackup(path string) error {
	//nolint:gosec // G304: path is controlled by the application
	data, err := os.ReadFile(BackupPath(path))
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	info, err := os.Stat(BackupPath(path))
	if err != nil {
		return fmt.Errorf("failed to stat backup: %w", err)
	}
	return AtomicWrite(path, data, info.Mode().Perm())
}

// QuarantineFile moves an unreadable file aside to path + CorruptedSuffix and
// returns the new location.
func QuarantineFile(path string) (string, error) {
	target := path + CorruptedSuffix
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to move corrupted file aside: %w", err)
	}
	return target, nil
}
