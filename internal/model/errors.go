package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for state mutations.
var (
	// ErrGameExists is returned when adding a game that is already set up.
	ErrGameExists = errors.New("game already set up")

	// ErrGameNotSetUp is returned when an operation needs a set up game.
	ErrGameNotSetUp = errors.New("game not set up")

	// ErrNoGameSelected is returned when an operation needs a selected game.
	ErrNoGameSelected = errors.New("no game selected")

	// ErrModNotInstalled is returned when a mod id is not installed in a game.
	ErrModNotInstalled = errors.New("mod not installed")

	// ErrLoaderNotInstalled is returned when toggling a loader that is absent.
	ErrLoaderNotInstalled = errors.New("mod loader not installed")
)

// SchemaError reports malformed input or an unrecognized schema version.
type SchemaError struct {
	// Path is the dotted location of the problem, e.g. "games.g1.install_path".
	Path   string
	Reason string
}

// Error returns the error message.
func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

func schemaErr(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// ReferenceError reports an id that does not resolve.
type ReferenceError struct {
	// Kind is what the id should name: "game" or "mod".
	Kind string
	ID   string
	// Referrer is where the dangling id was found.
	Referrer string
}

// Error returns the error message.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference: %s references unknown %s %q", e.Referrer, e.Kind, e.ID)
}

// ConsistencyError reports a per-game catalog record that differs from the
// flat catalog record with the same mod id.
type ConsistencyError struct {
	GameID string
	ModID  string
}

// Error returns the error message.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: game_mods[%q][%q] differs from mods[%q]", e.GameID, e.ModID, e.ModID)
}
