package state

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-openapi/strfmt"
)

var (
	// gameIDRegex validates game ids (lowercase alphanumeric, hyphen, underscore)
	gameIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// ValidateGameID validates a game id.
// Rules:
// - Must be 1-63 characters long
// - Must contain only lowercase alphanumeric characters, hyphens and underscores
// - Must start with an alphanumeric character
func ValidateGameID(id string) error {
	if id == "" {
		return fmt.Errorf("game id cannot be empty")
	}

	if len(id) > 63 {
		return fmt.Errorf("game id must be 63 characters or less, got %d", len(id))
	}

	if !gameIDRegex.MatchString(id) {
		return fmt.Errorf("game id must contain only lowercase alphanumeric characters, hyphens and underscores: %q", id)
	}

	return nil
}

// ValidateInstallPath validates a game installation directory.
// It must be absolute and must not contain parent directory references.
func ValidateInstallPath(path string) error {
	if path == "" {
		return fmt.Errorf("install path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		return fmt.Errorf("install path must be absolute: %q", path)
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("install path cannot contain '..': %q", path)
		}
	}

	return nil
}

// ValidateURL validates an http(s) URL. The URI syntax check is the one the
// catalog applies to download links.
func ValidateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url cannot be empty")
	}

	if !strfmt.Default.Validates("uri", raw) {
		return fmt.Errorf("invalid url %q", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https: %q", raw)
	}

	if u.Host == "" {
		return fmt.Errorf("url must have a host: %q", raw)
	}

	return nil
}

// ValidateByteSize parses a human readable size such as "8MiB" or "512k"
// and returns it in bytes.
func ValidateByteSize(size string) (int64, error) {
	if size == "" {
		return 0, fmt.Errorf("size cannot be empty")
	}

	n, err := units.RAMInBytes(size)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", size, err)
	}

	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %q", size)
	}

	return n, nil
}

// ValidateLogLevel validates a log level name.
func ValidateLogLevel(level string) error {
	if !slices.Contains(validLogLevels, level) {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", level)
	}
	return nil
}
