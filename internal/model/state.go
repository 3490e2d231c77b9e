package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
)

// VersionedState is a decoded state file of any supported schema version.
// It is implemented by *StateV1 and *State only.
type VersionedState interface {
	SchemaVersion() string
	versionedState()
}

// State is the persisted state at the current schema version.
type State struct {
	Version       string                `json:"version"`
	SelectedGame  string                `json:"selected_game,omitempty"`
	Games         map[string]*SetupGame `json:"games"`
	ShownMessages []string              `json:"shown_messages,omitempty"`
}

// NewState returns an empty state at the current schema version.
func NewState() *State {
	return &State{
		Version: CurrentSchemaVersion,
		Games:   make(map[string]*SetupGame),
	}
}

// SchemaVersion returns the schema version recorded in the state.
func (s *State) SchemaVersion() string { return s.Version }

func (s *State) versionedState() {}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{
		Version:       s.Version,
		SelectedGame:  s.SelectedGame,
		Games:         make(map[string]*SetupGame, len(s.Games)),
		ShownMessages: slices.Clone(s.ShownMessages),
	}
	for id, g := range s.Games {
		c.Games[id] = g.Clone()
	}
	return c
}

// GameIDs returns the ids of all set up games in ascending order.
func (s *State) GameIDs() []string {
	return slices.Sorted(maps.Keys(s.Games))
}

// Validate checks the structural invariants of the state. All problems are
// reported, aggregated in a *multierror.Error.
func (s *State) Validate() error {
	var result *multierror.Error

	if s.Version == "" {
		result = multierror.Append(result, schemaErr("version", "required"))
	} else if v, err := ParseVersion(s.Version); err != nil {
		result = multierror.Append(result, schemaErr("version", "not a semantic version: %q", s.Version))
	} else if v.Major != 2 {
		result = multierror.Append(result, schemaErr("version", "unrecognized schema version %q", s.Version))
	}

	if s.Games == nil {
		result = multierror.Append(result, schemaErr("games", "required"))
	}

	for _, key := range s.GameIDs() {
		g := s.Games[key]
		path := "games." + key
		if g == nil {
			result = multierror.Append(result, schemaErr(path, "required"))
			continue
		}
		result = multierror.Append(result, validateGame(path+".game", key, g.Game)...)
		if g.InstallPath == "" {
			result = multierror.Append(result, schemaErr(path+".install_path", "required"))
		}
		for id, im := range g.Mods.All() {
			modPath := path + ".mods." + id
			result = multierror.Append(result, validateMod(modPath+".m", id, im.M)...)
			if im.Version == "" {
				result = multierror.Append(result, schemaErr(modPath+".version", "required"))
			}
		}
	}

	if s.SelectedGame != "" {
		if _, ok := s.Games[s.SelectedGame]; !ok {
			result = multierror.Append(result, &ReferenceError{Kind: "game", ID: s.SelectedGame, Referrer: "selected_game"})
		}
	}

	return result.ErrorOrNil()
}

func validateGame(path, key string, g Game) []error {
	var errs []error
	switch {
	case g.ID == "":
		errs = append(errs, schemaErr(path+".id", "required"))
	case g.ID != key:
		errs = append(errs, schemaErr(path+".id", "id %q does not match key %q", g.ID, key))
	}
	if g.Name == "" {
		errs = append(errs, schemaErr(path+".name", "required"))
	}
	return errs
}

func validateMod(path, key string, m Mod) []error {
	var errs []error
	switch {
	case m.ID == "":
		errs = append(errs, schemaErr(path+".id", "required"))
	case m.ID != key:
		errs = append(errs, schemaErr(path+".id", "id %q does not match key %q", m.ID, key))
	}
	if m.Name == "" {
		errs = append(errs, schemaErr(path+".name", "required"))
	}
	if m.Download == "" {
		errs = append(errs, schemaErr(path+".download", "required"))
	}
	if m.Version == "" {
		errs = append(errs, schemaErr(path+".version", "required"))
	}
	return errs
}

// ParseState decodes a state file of any supported schema version, migrates
// it to the current schema and validates it.
func ParseState(data []byte) (*State, error) {
	vs, err := DecodeState(data)
	if err != nil {
		return nil, err
	}
	s, err := Migrate(vs)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeState decodes a state file into the type matching its schema
// version, without migrating or validating it.
func DecodeState(data []byte) (VersionedState, error) {
	if !gjson.ValidBytes(data) {
		return nil, &SchemaError{Reason: "malformed JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &SchemaError{Reason: "expected a JSON object"}
	}

	version := root.Get("version")
	if version.Type != gjson.String || version.Str == "" {
		return nil, schemaErr("version", "required")
	}
	v, err := ParseVersion(version.Str)
	if err != nil {
		return nil, schemaErr("version", "not a semantic version: %q", version.Str)
	}
	if games := root.Get("games"); !games.IsObject() {
		return nil, schemaErr("games", "required object")
	}

	switch v.Major {
	case 0, 1:
		var s StateV1
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, decodeErr(err)
		}
		return &s, nil
	case 2:
		var s State
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, decodeErr(err)
		}
		if err := requireEnabledFlags(root.Get("games")); err != nil {
			return nil, err
		}
		return &s, nil
	default:
		return nil, schemaErr("version", "unrecognized schema version %q", version.Str)
	}
}

// requireEnabledFlags rejects installed mod records without an explicit
// enabled flag. Only legacy files default it.
func requireEnabledFlags(games gjson.Result) error {
	var err error
	games.ForEach(func(gameID, game gjson.Result) bool {
		game.Get("mods").ForEach(func(modID, mod gjson.Result) bool {
			if !mod.Get("enabled").Exists() {
				err = schemaErr("games."+gameID.String()+".mods."+modID.String()+".enabled", "required")
			}
			return err == nil
		})
		return err == nil
	})
	return err
}

// MarshalState encodes s as indented JSON.
func MarshalState(s *State) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// decodeErr converts encoding/json failures into schema errors.
func decodeErr(err error) error {
	var schema *SchemaError
	if errors.As(err, &schema) {
		return schema
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return schemaErr(typeErr.Field, "expected %s, got %s", typeErr.Type, typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SchemaError{Reason: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)}
	}
	return &SchemaError{Reason: err.Error()}
}

// sortedUnique returns ids sorted with duplicates removed.
func sortedUnique(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
