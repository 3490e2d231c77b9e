// Package model defines the persisted state and catalog shapes of the mod
// manager, and the pure operations over them: parsing, schema migration,
// validation and reconciliation of installed mods against the catalog.
//
// Nothing in this package performs I/O.
package model

import "slices"

// Game identifies a supported title. Catalog entries are never mutated.
type Game struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	AppID           Optional[string] `json:"appid,omitzero"`
	RecommendedMods []string         `json:"recommended_mods,omitempty"`
}

// Clone returns a deep copy of g.
func (g Game) Clone() Game {
	g.RecommendedMods = slices.Clone(g.RecommendedMods)
	return g
}

// Mod is a single distributable modification as listed by the catalog.
type Mod struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Download      string           `json:"download"`
	Version       string           `json:"version"`
	ExtractToRoot bool             `json:"extract_to_root,omitempty"`
	Files         []string         `json:"files,omitempty"`
	DevMod        bool             `json:"dev_mod,omitempty"`
	Source        Optional[string] `json:"source,omitzero"`
	Homepage      Optional[string] `json:"homepage,omitzero"`
	Description   Optional[string] `json:"description,omitzero"`
	// YtinuVersion is a version range of the manager the mod works with.
	YtinuVersion Optional[string] `json:"ytinu_version,omitzero"`
}

// Clone returns a deep copy of m.
func (m Mod) Clone() Mod {
	m.Files = slices.Clone(m.Files)
	return m
}

// Equal reports whether m and o describe the same release.
func (m Mod) Equal(o Mod) bool {
	return m.ID == o.ID &&
		m.Name == o.Name &&
		m.Download == o.Download &&
		m.Version == o.Version &&
		m.ExtractToRoot == o.ExtractToRoot &&
		slices.Equal(m.Files, o.Files) &&
		m.DevMod == o.DevMod &&
		m.Source == o.Source &&
		m.Homepage == o.Homepage &&
		m.Description == o.Description &&
		m.YtinuVersion == o.YtinuVersion
}

// InstalledMod binds a catalog record to its local installation state.
// Version is the installed release and may lag M.Version.
type InstalledMod struct {
	M       Mod    `json:"m"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
}

// BepInExInfo tracks the mod loader of one game installation.
type BepInExInfo struct {
	Version Optional[string] `json:"version,omitzero"`
	Enabled bool             `json:"enabled"`
	Hash    Optional[string] `json:"hash,omitzero"`
}

// SetupGame is a concrete installation of a Game. It owns its installed mods
// and its loader record.
type SetupGame struct {
	Game        Game                  `json:"game"`
	InstallPath string                `json:"install_path"`
	Mods        InstalledMods         `json:"mods"`
	BepInEx     Optional[BepInExInfo] `json:"bep_in_ex,omitzero"`
}

// Clone returns a deep copy of g.
func (g *SetupGame) Clone() *SetupGame {
	if g == nil {
		return nil
	}
	return &SetupGame{
		Game:        g.Game.Clone(),
		InstallPath: g.InstallPath,
		Mods:        g.Mods.Clone(),
		BepInEx:     g.BepInEx,
	}
}
