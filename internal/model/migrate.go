package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// MigrationNote describes a lossy or non-obvious step taken while migrating.
type MigrationNote struct {
	GameID  string `json:"game_id"`
	ModID   string `json:"mod_id,omitempty"`
	Message string `json:"message"`
}

// String returns a human readable form of the note.
func (n MigrationNote) String() string {
	if n.ModID == "" {
		return fmt.Sprintf("%s: %s", n.GameID, n.Message)
	}
	return fmt.Sprintf("%s/%s: %s", n.GameID, n.ModID, n.Message)
}

// Migrate converts any supported state to the current schema. A *State is
// returned unchanged.
func Migrate(vs VersionedState) (*State, error) {
	s, _, err := MigrateWithNotes(vs)
	return s, err
}

// MigrateWithNotes is Migrate, also reporting what the migration changed
// beyond a plain field copy.
func MigrateWithNotes(vs VersionedState) (*State, []MigrationNote, error) {
	switch v := vs.(type) {
	case *State:
		if v == nil {
			return nil, nil, errors.New("migrate: nil state")
		}
		return v, nil, nil
	case *StateV1:
		if v == nil {
			return nil, nil, errors.New("migrate: nil state")
		}
		s, notes := migrateV1(v)
		return s, notes, nil
	default:
		return nil, nil, fmt.Errorf("migrate: unsupported state type %T", vs)
	}
}

func migrateV1(old *StateV1) (*State, []MigrationNote) {
	var notes []MigrationNote
	s := &State{
		Version:       CurrentSchemaVersion,
		SelectedGame:  old.SelectedGame,
		Games:         make(map[string]*SetupGame, len(old.Games)),
		ShownMessages: sortedUnique(old.ShownMessages),
	}
	if len(s.ShownMessages) == 0 {
		s.ShownMessages = nil
	}

	for _, key := range slices.Sorted(maps.Keys(old.Games)) {
		og := old.Games[key]
		if og == nil {
			s.Games[key] = nil
			continue
		}
		g := &SetupGame{
			Game:        og.Game.Clone(),
			InstallPath: og.InstallPath,
		}
		for _, om := range og.Mods {
			if g.Mods.Has(om.M.ID) {
				notes = append(notes, MigrationNote{
					GameID:  key,
					ModID:   om.M.ID,
					Message: "duplicate mod entry collapsed, last entry kept",
				})
			}
			g.Mods.Set(InstalledMod{
				M:       om.M.Clone(),
				Version: om.Version.OrElse(om.M.Version),
				Enabled: om.Enabled.OrElse(true),
			})
		}
		switch {
		case og.BepInEx != nil:
			g.BepInEx = Some(*og.BepInEx)
		case old.BepInEx != nil:
			g.BepInEx = Some(*old.BepInEx)
			notes = append(notes, MigrationNote{
				GameID:  key,
				Message: "global mod loader record copied to game",
			})
		}
		s.Games[key] = g
	}
	return s, notes
}
