package cmdctx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steviee/ytinu/internal/catalog"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

const listCatalog = `{
  "version": "0.4.0",
  "games": [{"id": "valheim", "name": "Valheim"}, {"id": "rounds", "name": "ROUNDS"}],
  "mods": [{"id": "core", "name": "Core Lib", "download": "https://example.com/core.dll", "version": "1.0.0"}]
}`

const keyedCatalog = `{
  "version": "0.4.0",
  "update": false,
  "games": {"valheim": {"id": "valheim", "name": "Valheim"}},
  "game_mods": {
    "valheim": {"core": {"id": "core", "name": "Core", "download": "https://example.com/core.dll", "version": "1.0.0"}}
  },
  "mods": {"core": {"id": "core", "name": "Core Lib", "download": "https://example.com/core.dll", "version": "1.0.0"}}
}`

type fakeFetcher struct {
	gameMods map[string]string
	err      error
}

func (f *fakeFetcher) FetchMetadata(context.Context) (*model.Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return model.ParseCatalog([]byte(listCatalog), "")
}

func (f *fakeFetcher) FetchGameMods(_ context.Context, gameID string) (map[string]model.Mod, error) {
	doc, ok := f.gameMods[gameID]
	if !ok {
		return nil, catalog.ErrCatalogNotFound
	}
	return model.ParseGameMods([]byte(doc))
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()
	cfg := state.DefaultConfig()
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(dir, "history.db")
	return &Context{
		Config:    cfg,
		StatePath: filepath.Join(dir, "data.json"),
		Fetcher:   &fakeFetcher{},
	}
}

func events(t *testing.T, c *Context, kind history.Kind) []history.Event {
	t.Helper()
	rec, err := c.OpenHistory()
	require.NoError(t, err)
	defer func() { _ = rec.Close() }()
	list, err := rec.List(context.Background(), history.Filter{Kind: kind})
	require.NoError(t, err)
	return list
}

func TestWithFrom(t *testing.T) {
	assert.Nil(t, From(context.Background()))

	c := &Context{StatePath: "/tmp/data.json"}
	ctx := With(context.Background(), c)
	assert.Same(t, c, From(ctx))

	cmd := &cobra.Command{}
	_, err := RequireFromCommand(cmd)
	assert.Error(t, err)

	cmd.SetContext(ctx)
	got, err := RequireFromCommand(cmd)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestResolveGame(t *testing.T) {
	st := model.NewState()
	_, err := st.AddGame(model.Game{ID: "valheim", Name: "Valheim"}, "/games/valheim")
	require.NoError(t, err)

	tests := []struct {
		name     string
		selected string
		flag     string
		want     string
		wantErr  error
	}{
		{name: "selected game", selected: "valheim", want: "valheim"},
		{name: "flag wins", selected: "", flag: "valheim", want: "valheim"},
		{name: "nothing selected", wantErr: model.ErrNoGameSelected},
		{name: "unknown flag", selected: "valheim", flag: "nope", wantErr: model.ErrGameNotSetUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st.SelectedGame = tt.selected
			got, err := ResolveGame(st, tt.flag)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadCatalogFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		wantMods map[string]string
		wantErr  bool
	}{
		{name: "list shaped", content: listCatalog, wantMods: map[string]string{"core": "Core Lib"}},
		{name: "keyed inconsistent", content: keyedCatalog, wantErr: true},
		{name: "garbage", content: "{not json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			meta, err := ReadCatalogFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for id, name := range tt.wantMods {
				assert.Equal(t, name, meta.Mods[id].Name)
			}
		})
	}

	t.Run("keyed repaired", func(t *testing.T) {
		path := filepath.Join(dir, "keyed.json")
		require.NoError(t, os.WriteFile(path, []byte(keyedCatalog), 0644))

		meta, err := ReadCatalogFile(path, model.Repair())
		require.NoError(t, err)
		assert.Equal(t, "Core Lib", meta.GameMods["valheim"]["core"].Name)
		assert.Len(t, meta.Repairs(), 1)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ReadCatalogFile(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}

func TestLoadCatalog(t *testing.T) {
	c := newTestContext(t)
	c.Fetcher = &fakeFetcher{gameMods: map[string]string{
		"valheim": `{"mods": [{"id": "plus", "name": "Valheim Plus", "download": "https://example.com/plus.zip", "version": "2.0.0"}]}`,
	}}

	meta, err := c.LoadCatalog(context.Background(), "", "valheim", "rounds", "unknown")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", meta.Version)
	assert.Equal(t, "2.0.0", meta.GameMods["valheim"]["plus"].Version)
	assert.NotContains(t, meta.GameMods, "unknown")

	fetched := events(t, c, history.KindCatalogFetched)
	require.Len(t, fetched, 1)
	assert.Equal(t, "0.4.0", fetched[0].Detail)
}

func TestLoadCatalog_FetchError(t *testing.T) {
	c := newTestContext(t)
	boom := errors.New("boom")
	c.Fetcher = &fakeFetcher{err: boom}

	_, err := c.LoadCatalog(context.Background(), "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, events(t, c, history.KindCatalogFetched))
}

func TestOpenHistory_Disabled(t *testing.T) {
	c := newTestContext(t)
	c.Config.History.Enabled = false

	rec, err := c.OpenHistory()
	require.NoError(t, err)
	assert.Nil(t, rec)

	c.Record(context.Background(), &history.Event{Kind: history.KindGameAdded})
	_, err = os.Stat(c.Config.History.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenStore_RecordsMigration(t *testing.T) {
	c := newTestContext(t)
	legacy := `{"version": "0.1.0", "games": {"valheim": {"game": {"id": "valheim", "name": "Valheim"}, "install_path": "/games/valheim", "mods": []}}}`
	require.NoError(t, os.WriteFile(c.StatePath, []byte(legacy), 0644))

	store, err := c.OpenStore(context.Background())
	require.NoError(t, err)
	assert.Contains(t, store.Snapshot().Games, "valheim")

	assert.Len(t, events(t, c, history.KindStateMigrated), 1)
}
