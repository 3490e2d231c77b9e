package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StateV1 is the legacy list-based state file. It carried a single loader
// record for all games and the host operating system.
type StateV1 struct {
	Version       string                  `json:"version"`
	SelectedGame  string                  `json:"selected_game,omitempty"`
	Games         map[string]*SetupGameV1 `json:"games"`
	OS            string                  `json:"os,omitempty"`
	BepInEx       *BepInExInfo            `json:"bep_in_ex,omitempty"`
	ShownMessages []string                `json:"shown_messages,omitempty"`
}

// SchemaVersion returns the schema version recorded in the state.
func (s *StateV1) SchemaVersion() string { return s.Version }

func (s *StateV1) versionedState() {}

// SetupGameV1 is a legacy game installation.
type SetupGameV1 struct {
	Game        Game         `json:"game"`
	InstallPath string       `json:"install_path"`
	Mods        ModListV1    `json:"mods"`
	BepInEx     *BepInExInfo `json:"bep_in_ex,omitempty"`
}

// InstalledModV1 is a legacy installed mod. Older writers left out the
// installed version and the enabled flag.
type InstalledModV1 struct {
	M       Mod              `json:"m"`
	Version Optional[string] `json:"version,omitzero"`
	Enabled Optional[bool]   `json:"enabled,omitzero"`
}

// ModListV1 is the legacy mod collection. It decodes from a JSON array, or
// from an object whose values are taken in document order.
type ModListV1 []InstalledModV1

// UnmarshalJSON implements json.Unmarshaler.
func (l *ModListV1) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var mods []InstalledModV1
		if err := json.Unmarshal(data, &mods); err != nil {
			return err
		}
		*l = mods
		return nil
	case len(data) > 0 && data[0] == '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		if _, err := dec.Token(); err != nil {
			return err
		}
		var mods []InstalledModV1
		for dec.More() {
			key, err := dec.Token()
			if err != nil {
				return err
			}
			var im InstalledModV1
			if err := dec.Decode(&im); err != nil {
				return fmt.Errorf("decode mod %q: %w", key, err)
			}
			mods = append(mods, im)
		}
		*l = mods
		return nil
	default:
		return schemaErr("mods", "expected an array or an object")
	}
}
