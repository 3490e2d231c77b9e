package mods

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

const testCatalog = `{
  "version": "0.4.0",
  "update": false,
  "games": {
    "valheim": {"id": "valheim", "name": "Valheim"}
  },
  "game_mods": {
    "valheim": {
      "plus": {"id": "plus", "name": "Valheim Plus", "download": "https://example.com/plus.zip", "version": "2.0.0"}
    }
  },
  "mods": {
    "core": {"id": "core", "name": "Core Lib", "download": "https://example.com/core.dll", "version": "1.0.0", "files": ["core.dll"]}
  }
}`

func testMod(id, version string, dev bool) model.InstalledMod {
	return model.InstalledMod{
		M: model.Mod{
			ID:       id,
			Name:     id,
			Download: "https://example.com/" + id + ".zip",
			Version:  version,
			DevMod:   dev,
		},
		Version: version,
		Enabled: true,
	}
}

// newTestContext returns a runtime over a temp state file holding valheim
// (selected) with three mods and a second game without mods.
func newTestContext(t *testing.T, jsonMode bool) *cmdctx.Context {
	t.Helper()
	dir := t.TempDir()

	cfg := state.DefaultConfig()
	cfg.History.Enabled = false
	c := &cmdctx.Context{
		Config:     cfg,
		StatePath:  filepath.Join(dir, "data.json"),
		JSON:       jsonMode,
		AppVersion: "0.1.0",
	}

	store, err := state.OpenStore(context.Background(), c.StatePath)
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), func(s *model.State) error {
		g, err := s.AddGame(model.Game{ID: "valheim", Name: "Valheim"}, "/games/valheim")
		if err != nil {
			return err
		}
		g.Mods.Set(testMod("core", "1.0.0", false))
		g.Mods.Set(testMod("plus", "1.0.0", false))
		g.Mods.Set(testMod("debug", "0.1.0", true))
		g.BepInEx = model.Some(model.BepInExInfo{Version: model.Some("5.4.21"), Enabled: true})

		if _, err := s.AddGame(model.Game{ID: "rounds", Name: "ROUNDS"}, "/games/rounds"); err != nil {
			return err
		}
		return s.SelectGame("valheim")
	}))
	return c
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meta.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0644))
	return path
}

func snapshot(t *testing.T, c *cmdctx.Context) *model.State {
	t.Helper()
	store, err := state.OpenStore(context.Background(), c.StatePath)
	require.NoError(t, err)
	return store.Snapshot()
}

func decodeData(t *testing.T, data []byte, v any) {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "success", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestRunList(t *testing.T) {
	tests := []struct {
		name    string
		game    string
		opts    ListOptions
		showDev bool
		wantIDs []string
	}{
		{name: "hides dev mods", wantIDs: []string{"core", "plus"}},
		{name: "all", opts: ListOptions{All: true}, wantIDs: []string{"core", "plus", "debug"}},
		{name: "config shows dev mods", showDev: true, wantIDs: []string{"core", "plus", "debug"}},
		{name: "other game", game: "rounds", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext(t, true)
			c.Config.Mods.ShowDevMods = tt.showDev

			var buf bytes.Buffer
			require.NoError(t, runList(context.Background(), &buf, c, tt.game, tt.opts))

			var mods []ModInfo
			decodeData(t, buf.Bytes(), &mods)
			ids := make([]string, 0, len(mods))
			for _, m := range mods {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRunList_Check(t *testing.T) {
	c := newTestContext(t, true)

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), &buf, c, "", ListOptions{Catalog: writeCatalog(t)}))

	var mods []ModInfo
	decodeData(t, buf.Bytes(), &mods)
	require.Len(t, mods, 2)

	assert.Equal(t, "core", mods[0].ID)
	assert.Equal(t, "1.0.0", mods[0].CatalogVersion)
	assert.Empty(t, mods[0].Findings)

	assert.Equal(t, "plus", mods[1].ID)
	assert.Equal(t, "2.0.0", mods[1].CatalogVersion)
	assert.Contains(t, mods[1].Findings, string(model.FindingOutdated))
}

func TestRunList_Text(t *testing.T) {
	c := newTestContext(t, false)

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), &buf, c, "", ListOptions{All: true}))

	out := buf.String()
	assert.Contains(t, out, "ENABLED")
	assert.Contains(t, out, "debug [dev]")
	assert.Contains(t, out, "Total: 3 mod(s) in valheim")
}

func TestRunList_UnknownGame(t *testing.T) {
	c := newTestContext(t, false)
	err := runList(context.Background(), &bytes.Buffer{}, c, "nope", ListOptions{})
	assert.ErrorIs(t, err, model.ErrGameNotSetUp)
}

func TestRunToggle(t *testing.T) {
	c := newTestContext(t, false)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runToggle(ctx, &buf, c, "", []string{"core", "plus"}, false))
	assert.Contains(t, buf.String(), "Disabled core in valheim")

	g := snapshot(t, c).Games["valheim"]
	for _, id := range []string{"core", "plus"} {
		im, ok := g.Mods.Get(id)
		require.True(t, ok)
		assert.False(t, im.Enabled, id)
	}

	require.NoError(t, runToggle(ctx, &bytes.Buffer{}, c, "valheim", []string{"plus"}, true))
	im, _ := snapshot(t, c).Games["valheim"].Mods.Get("plus")
	assert.True(t, im.Enabled)
}

func TestRunToggle_AllOrNothing(t *testing.T) {
	c := newTestContext(t, false)

	err := runToggle(context.Background(), &bytes.Buffer{}, c, "", []string{"core", "missing"}, false)
	require.ErrorIs(t, err, model.ErrModNotInstalled)

	im, _ := snapshot(t, c).Games["valheim"].Mods.Get("core")
	assert.True(t, im.Enabled, "no change may be persisted")
}

func TestRunForget(t *testing.T) {
	c := newTestContext(t, true)

	var buf bytes.Buffer
	require.NoError(t, runForget(context.Background(), &buf, c, "", []string{"debug"}))

	var out ChangeOutput
	decodeData(t, buf.Bytes(), &out)
	assert.Equal(t, ChangeOutput{Game: "valheim", Changed: []string{"debug"}}, out)

	g := snapshot(t, c).Games["valheim"]
	assert.False(t, g.Mods.Has("debug"))
	assert.Equal(t, []string{"core", "plus"}, g.Mods.IDs())
}

func TestRunForget_NoGameSelected(t *testing.T) {
	c := newTestContext(t, false)
	store, err := state.OpenStore(context.Background(), c.StatePath)
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), func(s *model.State) error {
		s.SelectedGame = ""
		return nil
	}))

	err = runForget(context.Background(), &bytes.Buffer{}, c, "", []string{"core"})
	assert.ErrorIs(t, err, model.ErrNoGameSelected)
}

func TestRunRefresh(t *testing.T) {
	c := newTestContext(t, true)

	var buf bytes.Buffer
	require.NoError(t, runRefresh(context.Background(), &buf, c, "", writeCatalog(t)))

	var out RefreshOutput
	decodeData(t, buf.Bytes(), &out)
	assert.Equal(t, "0.4.0", out.CatalogVersion)
	assert.Equal(t, 2, out.Refreshed)

	g := snapshot(t, c).Games["valheim"]
	plus, _ := g.Mods.Get("plus")
	assert.Equal(t, "2.0.0", plus.M.Version)
	assert.Equal(t, "1.0.0", plus.Version, "installed version is kept")
	core, _ := g.Mods.Get("core")
	assert.Equal(t, []string{"core.dll"}, core.M.Files)
	debug, _ := g.Mods.Get("debug")
	assert.Equal(t, "0.1.0", debug.M.Version, "mods missing from the catalog are kept")
}
