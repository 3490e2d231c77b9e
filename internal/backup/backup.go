// Package backup archives the files ytinu keeps in its configuration
// directory and restores the state file from such an archive.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

const (
	// DefaultKeep is the number of archives kept by default.
	DefaultKeep = 5

	// entries larger than this are rejected on restore
	maxEntrySize = 64 << 20

	archivePrefix = "ytinu-"
	archiveSuffix = ".tar.gz"
	idLayout      = "20060102-150405"
)

// ErrNoState is returned when an archive does not contain a state file.
var ErrNoState = errors.New("archive does not contain " + state.StateFileName)

// Service creates and restores archives in a single directory.
type Service struct {
	dir  string
	keep int
	now  func() time.Time
}

// NewService returns a Service storing archives in dir and keeping the last
// keep archives. A keep below 1 means DefaultKeep.
func NewService(dir string, keep int) *Service {
	if keep < 1 {
		keep = DefaultKeep
	}
	return &Service{dir: dir, keep: keep, now: time.Now}
}

// Dir returns the archive directory.
func (s *Service) Dir() string {
	return s.dir
}

// Files names the files put into an archive. Empty paths and missing
// optional files are skipped.
type Files struct {
	State   string
	Config  string
	History string
}

// Info describes one archive.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Files     []string  `json:"files,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Create writes a new archive of files. The state file must exist.
func (s *Service) Create(ctx context.Context, files Files) (*Info, error) {
	if files.State == "" {
		return nil, fmt.Errorf("state path cannot be empty")
	}
	if _, err := os.Stat(files.State); err != nil {
		return nil, fmt.Errorf("state file: %w", err)
	}
	if err := state.EnsureDir(s.dir); err != nil {
		return nil, fmt.Errorf("failed to ensure backup directory: %w", err)
	}

	now := s.now().UTC()
	id := archivePrefix + now.Format(idLayout)
	archivePath := filepath.Join(s.dir, id+archiveSuffix)

	entries := []struct{ name, path string }{
		{state.StateFileName, files.State},
		{state.ConfigFileName, files.Config},
		{state.HistoryFileName, files.History},
	}
	var added []string
	size, err := writeArchive(ctx, archivePath, func(tw *tar.Writer) error {
		for _, e := range entries {
			if e.path == "" {
				continue
			}
			ok, err := addFile(tw, e.path, e.name)
			if err != nil {
				return err
			}
			if ok {
				added = append(added, e.name)
			}
		}
		return nil
	})
	if err != nil {
		_ = os.Remove(archivePath)
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	if err := s.prune(); err != nil {
		zap.S().Warnw("Failed to prune old backups", zap.String("dir", s.dir), zap.Error(err))
	}

	return &Info{ID: id, Path: archivePath, SizeBytes: size, Files: added, CreatedAt: now}, nil
}

// List returns the archives in the directory, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
			continue
		}
		id := strings.TrimSuffix(name, archiveSuffix)
		created, err := time.Parse(idLayout, strings.TrimPrefix(id, archivePrefix))
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		infos = append(infos, Info{
			ID:        id,
			Path:      filepath.Join(s.dir, name),
			SizeBytes: fi.Size(),
			CreatedAt: created,
		})
	}
	slices.SortFunc(infos, func(a, b Info) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return infos, nil
}

// Resolve returns the archive path for an id or a path to an archive.
func (s *Service) Resolve(ref string) string {
	if strings.ContainsRune(ref, os.PathSeparator) || strings.HasSuffix(ref, archiveSuffix) {
		return ref
	}
	return filepath.Join(s.dir, ref+archiveSuffix)
}

// Restore replaces the state file at statePath with the one in the archive.
// The archived state is parsed before anything is written;
// the replaced file is kept as its .bkp. The state lock is held while
// writing.
func (s *Service) Restore(ctx context.Context, archivePath, statePath string) (*model.State, error) {
	data, err := readEntry(archivePath, state.StateFileName)
	if err != nil {
		return nil, err
	}
	restored, err := model.ParseState(data)
	if err != nil {
		return nil, fmt.Errorf("archived state is invalid: %w", err)
	}

	if err := state.EnsureDir(filepath.Dir(statePath)); err != nil {
		return nil, err
	}
	lock, err := state.LockContext(ctx, state.LockPath(statePath), state.DefaultLockPoll)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	if err := state.AtomicWriteWithBackup(statePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write state: %w", err)
	}
	return restored, nil
}

// prune removes all but the newest s.keep archives.
func (s *Service) prune() error {
	infos, err := s.List()
	if err != nil {
		return err
	}
	if len(infos) <= s.keep {
		return nil
	}
	var errs []error
	for _, info := range infos[s.keep:] {
		if err := os.Remove(info.Path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeArchive creates a tar.gz at path filled by fill and returns its size.
func writeArchive(ctx context.Context, path string, fill func(*tar.Writer) error) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	//nolint:gosec // G304: archive path is built from the backup directory
	outFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer outFile.Close()

	gzWriter := gzip.NewWriter(outFile)
	tarWriter := tar.NewWriter(gzWriter)

	if err := fill(tarWriter); err != nil {
		return 0, err
	}

	// Close writers to flush data
	if err := tarWriter.Close(); err != nil {
		return 0, fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return 0, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return 0, fmt.Errorf("failed to close output file: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %w", err)
	}
	return stat.Size(), nil
}

// addFile writes the regular file at path as name. A missing file is
// skipped and reported as not added.
func addFile(tw *tar.Writer, path, name string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("%s is not a regular file", path)
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return false, fmt.Errorf("failed to create tar header for %s: %w", path, err)
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return false, fmt.Errorf("failed to write tar header: %w", err)
	}

	//nolint:gosec // G304: paths come from the configuration
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return false, fmt.Errorf("failed to write file %s to archive: %w", path, err)
	}
	return true, nil
}

// readEntry returns the content of the regular file name in the archive.
func readEntry(archivePath, name string) ([]byte, error) {
	//nolint:gosec // G304: archive path is provided by the user
	inFile, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer inFile.Close()

	gzReader, err := gzip.NewReader(inFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil, ErrNoState
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg || filepath.Clean(header.Name) != name {
			continue
		}
		if header.Size > maxEntrySize {
			return nil, fmt.Errorf("%s in archive is too large (%d bytes)", name, header.Size)
		}
		data, err := io.ReadAll(io.LimitReader(tarReader, maxEntrySize))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from archive: %w", name, err)
		}
		return data, nil
	}
}
