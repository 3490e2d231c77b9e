package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/model"
)

// Holder keeps the current catalog snapshot. Readers call Load and always see
// a complete snapshot; refreshes build a new snapshot and swap it in.
type Holder struct {
	fetcher Fetcher
	current atomic.Pointer[model.Metadata]
	// refreshMu serialises fetches so concurrent refreshes do not race.
	refreshMu sync.Mutex
}

// NewHolder creates a Holder backed by f. f may be nil when snapshots are
// only ever provided through Store.
func NewHolder(f Fetcher) *Holder {
	return &Holder{fetcher: f}
}

// Load returns the current snapshot, or nil if none was loaded yet.
func (h *Holder) Load() *model.Metadata {
	return h.current.Load()
}

// Store replaces the current snapshot.
func (h *Holder) Store(meta *model.Metadata) {
	h.current.Store(meta)
}

// Refresh fetches a new catalog and makes it current. On failure the
// previous snapshot stays in place.
func (h *Holder) Refresh(ctx context.Context) (*model.Metadata, error) {
	if h.fetcher == nil {
		return nil, ErrNoFetcher
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	meta, err := h.fetcher.FetchMetadata(ctx)
	if err != nil {
		return nil, err
	}
	h.current.Store(meta)
	zap.S().Infow("Catalog refreshed", zap.String("version", meta.Version))
	return meta, nil
}

// EnsureGameMods makes sure the current snapshot carries the mod listing of
// gameID, fetching the catalog first if nothing is loaded. The listing is
// attached to a new snapshot; the previous one is never modified.
func (h *Holder) EnsureGameMods(ctx context.Context, gameID string) (*model.Metadata, error) {
	if cur := h.current.Load(); cur != nil {
		if _, ok := cur.GameMods[gameID]; ok {
			return cur, nil
		}
	}

	if h.fetcher == nil {
		return nil, ErrNoFetcher
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	cur := h.current.Load()
	if cur == nil {
		meta, err := h.fetcher.FetchMetadata(ctx)
		if err != nil {
			return nil, err
		}
		cur = meta
	}
	if _, ok := cur.GameMods[gameID]; ok {
		h.current.Store(cur)
		return cur, nil
	}

	mods, err := h.fetcher.FetchGameMods(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetch mods of game %s: %w", gameID, err)
	}

	next := cur.WithGameMods(gameID, mods)
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("catalog for game %s: %w", gameID, err)
	}

	h.current.Store(next)
	zap.S().Debugw("Game mods attached to catalog",
		zap.String("game", gameID), zap.Int("mods", len(mods)))
	return next, nil
}
