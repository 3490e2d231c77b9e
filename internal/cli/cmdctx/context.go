// Package cmdctx carries the resolved runtime of a ytinu invocation (config,
// file locations, output mode) from the root command to its subcommands.
package cmdctx

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/catalog"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

// Context is the runtime shared by all commands.
type Context struct {
	Config     *state.Config
	ConfigPath string
	StatePath  string
	JSON       bool
	Quiet      bool
	AppVersion string

	// Fetcher replaces the HTTP catalog client when set.
	Fetcher catalog.Fetcher
}

type contextKey struct{}

// With returns a copy of ctx carrying c.
func With(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// From extracts the Context stored in ctx, or nil.
func From(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(contextKey{}).(*Context)
	return c
}

// OpenStore opens the state file.
func (c *Context) OpenStore(ctx context.Context) (*state.Store, error) {
	store, err := state.OpenStore(ctx, c.StatePath)
	if err != nil {
		return nil, err
	}
	if migrated, notes := store.Migrated(); migrated {
		c.Record(ctx, &history.Event{
			Kind:   history.KindStateMigrated,
			Detail: fmt.Sprintf("migrated to %s (%d notes)", model.CurrentSchemaVersion, len(notes)),
		})
	}
	if q := store.Quarantined(); q != "" {
		c.Record(ctx, &history.Event{Kind: history.KindStateQuarantine, Detail: q})
	}
	return store, nil
}

// OpenHistory opens the history database. It returns a nil Recorder, which
// records nothing, when history is disabled.
func (c *Context) OpenHistory() (*history.Recorder, error) {
	if c.Config == nil || !c.Config.History.Enabled {
		return nil, nil
	}
	path, err := c.Config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

// Record writes events to the history database. Failures are logged and do
// not affect the caller.
func (c *Context) Record(ctx context.Context, events ...*history.Event) {
	if len(events) == 0 {
		return
	}
	rec, err := c.OpenHistory()
	if err != nil {
		zap.S().Warnw("Failed to open history", zap.Error(err))
		return
	}
	defer func() { _ = rec.Close() }()
	for _, ev := range events {
		rec.RecordQuietly(ctx, ev)
	}
}

// CatalogFetcher returns the configured catalog source.
func (c *Context) CatalogFetcher() catalog.Fetcher {
	if c.Fetcher != nil {
		return c.Fetcher
	}
	cfg := &catalog.Config{AppVersion: c.AppVersion}
	if c.Config != nil {
		cfg.URL = c.Config.Catalog.URL
		cfg.GameModsURL = c.Config.Catalog.GameModsURL
		cfg.Timeout = c.Config.Catalog.Timeout
		cfg.MaxSize = c.Config.CatalogMaxSize()
		cfg.RateLimit = c.Config.Catalog.RateLimit
	}
	if c.AppVersion != "" {
		cfg.UserAgent = fmt.Sprintf("ytinu/%s (https://github.com/steviee/ytinu)", c.AppVersion)
	}
	return catalog.NewClient(cfg)
}

// LoadCatalog returns a catalog snapshot carrying the per-game listings of
// gameIDs. With file set the snapshot is read from disk, otherwise it is
// fetched. Games unknown to the catalog are skipped.
func (c *Context) LoadCatalog(ctx context.Context, file string, gameIDs ...string) (*model.Metadata, error) {
	if file != "" {
		return ReadCatalogFile(file)
	}

	holder := catalog.NewHolder(c.CatalogFetcher())
	meta, err := holder.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	for _, id := range gameIDs {
		if _, known := meta.Games[id]; !known {
			continue
		}
		next, err := holder.EnsureGameMods(ctx, id)
		if errors.Is(err, catalog.ErrCatalogNotFound) {
			zap.S().Debugw("No mod listing for game", zap.String("game", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		meta = next
	}
	c.Record(ctx, &history.Event{Kind: history.KindCatalogFetched, Detail: meta.Version})
	return meta, nil
}

// ReadCatalogFile parses a catalog saved on disk. Both the published list
// shaped document and the keyed snapshot written by "catalog fetch --save"
// are accepted.
func ReadCatalogFile(path string, opts ...model.ParseOption) (*model.Metadata, error) {
	//nolint:gosec // G304: path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if gjson.GetBytes(data, "games").IsArray() {
		return model.ParseCatalog(data, "")
	}
	return model.ParseMetadata(data, opts...)
}

// ResolveGame returns the game a command acts on: flag when set, otherwise
// the selected game.
func ResolveGame(st *model.State, flag string) (string, error) {
	id := flag
	if id == "" {
		id = st.SelectedGame
	}
	if id == "" {
		return "", model.ErrNoGameSelected
	}
	if _, err := st.Game(id); err != nil {
		return "", err
	}
	return id, nil
}
