package model

import (
	"fmt"
	"slices"
)

// CurrentGame returns the selected game, or nil when none is selected or the
// selection does not resolve.
func (s *State) CurrentGame() *SetupGame {
	if s.SelectedGame == "" {
		return nil
	}
	return s.Games[s.SelectedGame]
}

// SelectGame makes id the selected game.
func (s *State) SelectGame(id string) error {
	if _, ok := s.Games[id]; !ok {
		return &ReferenceError{Kind: "game", ID: id, Referrer: "selected_game"}
	}
	s.SelectedGame = id
	return nil
}

// EnsureGameSelected keeps a valid selection, otherwise selects the game
// with the lowest id, or clears the selection when no game is set up. It
// reports whether the selection changed.
func (s *State) EnsureGameSelected() bool {
	if _, ok := s.Games[s.SelectedGame]; ok {
		return false
	}
	prev := s.SelectedGame
	s.SelectedGame = ""
	if ids := s.GameIDs(); len(ids) > 0 {
		s.SelectedGame = ids[0]
	}
	return prev != s.SelectedGame
}

// AddGame sets up a new installation of game at installPath.
func (s *State) AddGame(game Game, installPath string) (*SetupGame, error) {
	if game.ID == "" {
		return nil, schemaErr("game.id", "required")
	}
	if installPath == "" {
		return nil, schemaErr("install_path", "required")
	}
	if _, ok := s.Games[game.ID]; ok {
		return nil, fmt.Errorf("add game %q: %w", game.ID, ErrGameExists)
	}
	if s.Games == nil {
		s.Games = make(map[string]*SetupGame)
	}
	g := &SetupGame{Game: game.Clone(), InstallPath: installPath}
	s.Games[game.ID] = g
	return g, nil
}

// Game returns the set up game id.
func (s *State) Game(id string) (*SetupGame, error) {
	g, ok := s.Games[id]
	if !ok || g == nil {
		return nil, fmt.Errorf("game %q: %w", id, ErrGameNotSetUp)
	}
	return g, nil
}

// RefreshModsMeta replaces the embedded catalog record of every installed mod
// of every game with the current catalog record. Installed versions are kept.
// It returns the number of records replaced.
func (s *State) RefreshModsMeta(meta *Metadata) int {
	if meta == nil {
		return 0
	}
	n := 0
	for _, id := range s.GameIDs() {
		if g := s.Games[id]; g != nil {
			n += g.RefreshModsMeta(meta.ModsFor(id))
		}
	}
	return n
}

// MarkMessagesShown records ids as shown. The list stays sorted and free of
// duplicates.
func (s *State) MarkMessagesShown(ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.ShownMessages = sortedUnique(append(slices.Clone(s.ShownMessages), ids...))
}

// MessageShown reports whether id was recorded as shown.
func (s *State) MessageShown(id string) bool {
	return slices.Contains(s.ShownMessages, id)
}

// SetModEnabled toggles an installed mod.
func (g *SetupGame) SetModEnabled(modID string, enabled bool) error {
	im, ok := g.Mods.Get(modID)
	if !ok {
		return fmt.Errorf("mod %q in game %q: %w", modID, g.Game.ID, ErrModNotInstalled)
	}
	im.Enabled = enabled
	g.Mods.Set(im)
	return nil
}

// ForgetMod drops the record of an installed mod. Files on disk are not
// touched.
func (g *SetupGame) ForgetMod(modID string) error {
	if !g.Mods.Delete(modID) {
		return fmt.Errorf("mod %q in game %q: %w", modID, g.Game.ID, ErrModNotInstalled)
	}
	return nil
}

// RefreshModsMeta replaces the embedded catalog record of each installed mod
// found in catalog. Installed versions and enabled flags are kept. It
// returns the number of records that changed.
func (g *SetupGame) RefreshModsMeta(catalog map[string]Mod) int {
	n := 0
	for _, id := range g.Mods.IDs() {
		mod, ok := catalog[id]
		if !ok {
			continue
		}
		im, _ := g.Mods.Get(id)
		if im.M.Equal(mod) {
			continue
		}
		im.M = mod.Clone()
		g.Mods.Set(im)
		n++
	}
	return n
}

// SetLoaderEnabled toggles the mod loader of the game.
func (g *SetupGame) SetLoaderEnabled(enabled bool) error {
	info, ok := g.BepInEx.Get()
	if !ok {
		return fmt.Errorf("game %q: %w", g.Game.ID, ErrLoaderNotInstalled)
	}
	info.Enabled = enabled
	g.BepInEx = Some(info)
	return nil
}
