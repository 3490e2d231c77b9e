package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectGame(t *testing.T) {
	s := testState(t)

	err := s.SelectGame("missing")
	var refErr *ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "g1", s.SelectedGame, "failed selection keeps the old one")
}

func TestEnsureGameSelected(t *testing.T) {
	tests := []struct {
		name        string
		games       []string
		selected    string
		want        string
		wantChanged bool
	}{
		{name: "keeps valid selection", games: []string{"a", "b"}, selected: "b", want: "b"},
		{name: "picks lowest id", games: []string{"c", "b"}, selected: "", want: "b", wantChanged: true},
		{name: "replaces dangling selection", games: []string{"x"}, selected: "gone", want: "x", wantChanged: true},
		{name: "clears when no games", selected: "gone", want: "", wantChanged: true},
		{name: "nothing to do", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			for _, id := range tt.games {
				_, err := s.AddGame(Game{ID: id, Name: id}, "/"+id)
				require.NoError(t, err)
			}
			s.SelectedGame = tt.selected

			changed := s.EnsureGameSelected()
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, s.SelectedGame)
		})
	}
}

func TestAddGame(t *testing.T) {
	s := testState(t)

	_, err := s.AddGame(Game{ID: "g1", Name: "again"}, "/elsewhere")
	require.ErrorIs(t, err, ErrGameExists)

	_, err = s.AddGame(Game{ID: "g2", Name: "Two"}, "")
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))

	g, err := s.AddGame(Game{ID: "g2", Name: "Two"}, "/games/two")
	require.NoError(t, err)
	assert.Equal(t, 0, g.Mods.Len())
	require.NoError(t, s.Validate())
}

func TestSetModEnabled(t *testing.T) {
	s := testState(t)
	g := s.CurrentGame()

	require.NoError(t, g.SetModEnabled("m2", true))
	im, _ := g.Mods.Get("m2")
	assert.True(t, im.Enabled)

	err := g.SetModEnabled("nope", true)
	require.ErrorIs(t, err, ErrModNotInstalled)
}

func TestForgetMod(t *testing.T) {
	s := testState(t)
	g := s.CurrentGame()

	require.NoError(t, g.ForgetMod("m1"))
	assert.Equal(t, []string{"m2"}, g.Mods.IDs())
	require.ErrorIs(t, g.ForgetMod("m1"), ErrModNotInstalled)
}

func TestRefreshModsMeta(t *testing.T) {
	s := testState(t)
	newer := testMod("m2", "2.2.0")
	newer.Description = Some("now with docs")
	meta := catalogWith(testMod("m1", "1.0.0"), newer)

	n := s.RefreshModsMeta(meta)
	assert.Equal(t, 1, n)

	im, _ := s.Games["g1"].Mods.Get("m2")
	assert.Equal(t, "2.2.0", im.M.Version)
	assert.Equal(t, "2.0.0", im.Version, "installed version is kept")
	assert.False(t, im.Enabled)
	assert.Equal(t, []string{"m1", "m2"}, s.Games["g1"].Mods.IDs())

	assert.Equal(t, 0, s.RefreshModsMeta(meta))
	assert.Equal(t, 0, s.RefreshModsMeta(nil))
}

func TestSetLoaderEnabled(t *testing.T) {
	s := testState(t)
	g := s.CurrentGame()

	require.NoError(t, g.SetLoaderEnabled(false))
	info, ok := g.BepInEx.Get()
	require.True(t, ok)
	assert.False(t, info.Enabled)
	assert.Equal(t, Some("5.4.4"), info.Version)

	g.BepInEx = None[BepInExInfo]()
	require.ErrorIs(t, g.SetLoaderEnabled(true), ErrLoaderNotInstalled)
}

func TestPendingMessages(t *testing.T) {
	meta := NewMetadata("1.0.0")
	meta.Messages = []Message{
		{ID: "welcome", Message: "hi"},
		{ID: "old", Message: "old clients only", Version: "<0.1.0"},
		{ID: "sticky", Message: "always", ShowAlways: true},
	}
	s := NewState()

	pending := s.PendingMessages(meta, "0.1.0")
	require.Len(t, pending, 2)
	assert.Equal(t, "welcome", pending[0].ID)
	assert.Equal(t, "sticky", pending[1].ID)

	s.MarkMessagesShown("welcome", "sticky", "welcome")
	assert.Equal(t, []string{"sticky", "welcome"}, s.ShownMessages)

	pending = s.PendingMessages(meta, "0.1.0")
	require.Len(t, pending, 1)
	assert.Equal(t, "sticky", pending[0].ID)

	assert.Nil(t, s.PendingMessages(nil, "0.1.0"))
}

func TestPendingMessages_DevBuild(t *testing.T) {
	meta := NewMetadata("1.0.0")
	meta.Messages = []Message{
		{ID: "welcome", Message: "hi"},
		{ID: "any", Message: "everyone", Version: "*"},
		{ID: "ranged", Message: "new clients", Version: ">=0.1.0"},
	}

	pending := NewState().PendingMessages(meta, "dev")
	require.Len(t, pending, 2)
	assert.Equal(t, "welcome", pending[0].ID)
	assert.Equal(t, "any", pending[1].ID)
}
