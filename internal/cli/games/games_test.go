package games

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/ytinu/internal/catalog"
	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

const testCatalog = `{
  "version": "0.4.0",
  "games": [{"id": "valheim", "name": "Valheim", "recommended_mods": ["core"]}],
  "mods": [{"id": "core", "name": "Core Lib", "download": "https://example.com/core.dll", "version": "1.0.0"}]
}`

type fakeFetcher struct {
	calls int
}

func (f *fakeFetcher) FetchMetadata(context.Context) (*model.Metadata, error) {
	f.calls++
	return model.ParseCatalog([]byte(testCatalog), "")
}

func (f *fakeFetcher) FetchGameMods(context.Context, string) (map[string]model.Mod, error) {
	return nil, catalog.ErrCatalogNotFound
}

func newTestContext(t *testing.T, jsonMode bool) (*cmdctx.Context, *fakeFetcher) {
	t.Helper()
	cfg := state.DefaultConfig()
	cfg.History.Enabled = false
	f := &fakeFetcher{}
	return &cmdctx.Context{
		Config:    cfg,
		StatePath: filepath.Join(t.TempDir(), "data.json"),
		JSON:      jsonMode,
		Fetcher:   f,
	}, f
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	assert.Equal(t, "games", cmd.Use)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
	assert.Contains(t, cmd.Aliases, "game")

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "select"}, names)
}

func TestRunAdd(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		path        string
		flags       AddFlags
		wantName    string
		wantErr     string
		wantFetches int
	}{
		{name: "from catalog", id: "valheim", path: "/games/valheim", wantName: "Valheim", wantFetches: 1},
		{name: "with name", id: "mygame", path: "/games/mygame", flags: AddFlags{Name: "My Game"}, wantName: "My Game"},
		{name: "unknown game", id: "mygame", path: "/games/mygame", wantErr: "not in the catalog", wantFetches: 1},
		{name: "relative path", id: "valheim", path: "games/valheim", wantErr: "invalid install path"},
		{name: "invalid id", id: "Bad Id", path: "/games/x", flags: AddFlags{Name: "x"}, wantErr: "invalid game id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, f := newTestContext(t, false)

			var buf bytes.Buffer
			err := runAdd(context.Background(), &buf, c, tt.id, tt.path, tt.flags)
			assert.Equal(t, tt.wantFetches, f.calls)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "is now the selected game")

			store, err := state.OpenStore(context.Background(), c.StatePath)
			require.NoError(t, err)
			st := store.Snapshot()
			assert.Equal(t, tt.id, st.SelectedGame)
			assert.Equal(t, tt.wantName, st.Games[tt.id].Game.Name)
			assert.Equal(t, tt.path, st.Games[tt.id].InstallPath)
		})
	}
}

func TestRunAdd_Duplicate(t *testing.T) {
	c, _ := newTestContext(t, false)
	ctx := context.Background()
	flags := AddFlags{Name: "Valheim"}

	require.NoError(t, runAdd(ctx, &bytes.Buffer{}, c, "valheim", "/games/valheim", flags))
	err := runAdd(ctx, &bytes.Buffer{}, c, "valheim", "/other", flags)
	assert.ErrorIs(t, err, model.ErrGameExists)
}

func TestRunListAndSelect(t *testing.T) {
	c, _ := newTestContext(t, true)
	ctx := context.Background()

	require.NoError(t, runAdd(ctx, &bytes.Buffer{}, c, "valheim", "/games/valheim", AddFlags{Name: "Valheim"}))
	require.NoError(t, runAdd(ctx, &bytes.Buffer{}, c, "rounds", "/games/rounds", AddFlags{Name: "ROUNDS"}))
	require.NoError(t, runSelect(ctx, &bytes.Buffer{}, c, "rounds"))

	var buf bytes.Buffer
	require.NoError(t, runList(ctx, &buf, c))

	var env struct {
		Status string     `json:"status"`
		Data   []GameInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "rounds", env.Data[0].ID)
	assert.True(t, env.Data[0].Selected)
	assert.Equal(t, "valheim", env.Data[1].ID)
	assert.False(t, env.Data[1].Selected)
}

func TestRunSelect_Unknown(t *testing.T) {
	c, _ := newTestContext(t, false)
	err := runSelect(context.Background(), &bytes.Buffer{}, c, "nope")
	assert.ErrorIs(t, err, model.ErrGameNotSetUp)
}

func TestRunList_Empty(t *testing.T) {
	c, _ := newTestContext(t, false)

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), &buf, c))
	assert.Contains(t, buf.String(), "No games set up")
}
