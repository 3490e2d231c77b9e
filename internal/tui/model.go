// Package tui implements the read-only terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/catalog"
	"github.com/steviee/ytinu/internal/model"
)

// DefaultRefreshInterval is used when Options.RefreshInterval is unset.
const DefaultRefreshInterval = 2 * time.Second

// StateSource provides the current state. *state.Store satisfies it.
type StateSource interface {
	Reload() error
	Snapshot() *model.State
}

// Options configures the dashboard.
type Options struct {
	AppVersion      string
	RefreshInterval time.Duration
	ShowDevMods     bool
	CheckForUpdates bool
	Theme           string
}

// ModRow is one installed mod of the highlighted game.
type ModRow struct {
	ID             string
	Name           string
	Installed      string
	CatalogVersion string
	Enabled        bool
	DevMod         bool
	Findings       []model.FindingKind
}

// Status summarizes the row for display.
func (r ModRow) Status() string {
	switch {
	case len(r.Findings) > 0:
		return string(r.Findings[0])
	case r.CatalogVersion == "":
		return "unknown"
	default:
		return "ok"
	}
}

// Model is the bubbletea model for the TUI dashboard
type Model struct {
	ctx     context.Context
	source  StateSource
	holder  *catalog.Holder
	opts    Options
	styles  styles
	spinner spinner.Model

	state      *model.State
	meta       *model.Metadata
	games      []string
	gameIdx    int
	modIdx     int
	lastUpdate time.Time
	err        error
	errorTime  time.Time
	loading    bool
	width      int
	height     int
	quitting   bool
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, source StateSource, fetcher catalog.Fetcher, opts Options) *Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := &Model{
		ctx:        ctx,
		source:     source,
		holder:     catalog.NewHolder(fetcher),
		opts:       opts,
		styles:     newStyles(opts.Theme),
		spinner:    s,
		lastUpdate: time.Now(),
		loading:    true,
	}
	m.setState(source.Snapshot())
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.opts.RefreshInterval),
		m.spinner.Tick,
		loadCatalogCmd(m.ctx, m.holder, m.games),
	)
}

// setState installs a new state snapshot and keeps the highlighted game
// when it still exists.
func (m *Model) setState(st *model.State) {
	if st == nil {
		st = model.NewState()
	}
	current := m.currentGame()

	m.state = st
	m.games = st.GameIDs()
	m.gameIdx = 0
	for i, id := range m.games {
		if id == current || (current == "" && id == st.SelectedGame) {
			m.gameIdx = i
			break
		}
	}
	m.clampModIdx()
}

func (m Model) currentGame() string {
	if m.gameIdx < len(m.games) {
		return m.games[m.gameIdx]
	}
	return ""
}

func (m *Model) clampModIdx() {
	n := len(m.modRows())
	if n == 0 {
		m.modIdx = 0
	} else if m.modIdx >= n {
		m.modIdx = n - 1
	}
}

// modRows returns the installed mods of the highlighted game with their
// reconciliation status against the loaded catalog.
func (m Model) modRows() []ModRow {
	id := m.currentGame()
	if id == "" || m.state == nil {
		return nil
	}
	g := m.state.Games[id]
	if g == nil {
		return nil
	}

	findings := map[string][]model.FindingKind{}
	if m.meta != nil {
		for _, f := range model.ReconcileGame(id, g, m.meta, model.WithAppVersion(m.opts.AppVersion)) {
			findings[f.ModID] = append(findings[f.ModID], f.Kind)
		}
	}

	var rows []ModRow
	for modID, im := range g.Mods.All() {
		if im.M.DevMod && !m.opts.ShowDevMods {
			continue
		}
		row := ModRow{
			ID:        modID,
			Name:      im.M.Name,
			Installed: im.Version,
			Enabled:   im.Enabled,
			DevMod:    im.M.DevMod,
			Findings:  findings[modID],
		}
		if mod, ok := m.meta.LookupMod(id, modID); ok {
			row.CatalogVersion = mod.Version
		}
		rows = append(rows, row)
	}
	return rows
}

// tickCmd returns a command that sends a tick message after interval
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadStateCmd returns a command that re-reads the state file
func loadStateCmd(source StateSource) tea.Cmd {
	return func() tea.Msg {
		if err := source.Reload(); err != nil {
			return stateLoadedMsg{err: err}
		}
		return stateLoadedMsg{state: source.Snapshot()}
	}
}

// loadCatalogCmd returns a command that fetches a new catalog snapshot with
// the per-game listings of games
func loadCatalogCmd(ctx context.Context, holder *catalog.Holder, games []string) tea.Cmd {
	return func() tea.Msg {
		meta, err := holder.Refresh(ctx)
		if err != nil {
			return catalogLoadedMsg{err: fmt.Errorf("failed to fetch catalog: %w", err)}
		}
		for _, id := range games {
			if _, known := meta.Games[id]; !known {
				continue
			}
			next, err := holder.EnsureGameMods(ctx, id)
			if errors.Is(err, catalog.ErrCatalogNotFound) {
				continue
			}
			if err != nil {
				zap.S().Warnw("Failed to fetch game mods", zap.String("game", id), zap.Error(err))
				continue
			}
			meta = next
		}
		return catalogLoadedMsg{meta: meta}
	}
}

// clearErrorCmd returns a command that clears the error message after a delay
func clearErrorCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}
