package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/steviee/ytinu/internal/model"
)

func TestView_NoGames(t *testing.T) {
	source := &mockStateSource{}
	source.On("Snapshot").Return(model.NewState())
	m := NewModel(t.Context(), source, &fakeFetcher{}, Options{})

	view := m.View()

	assert.Contains(t, view, "ytinu Dashboard")
	assert.Contains(t, view, "No games set up")
}

func TestView_Loading(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	view := m.View()

	assert.Contains(t, view, "Loading catalog")
	assert.Contains(t, view, "valheim*")
	assert.Contains(t, view, "rounds")
	assert.Contains(t, view, "unknown")
}

func TestView_WithCatalog(t *testing.T) {
	m, _ := newTestModel(t, Options{Theme: ThemeMono})
	m.loading = false
	m.meta = loadedCatalog(t)
	m.lastUpdate = time.Now()

	view := m.View()

	assert.Contains(t, view, "Catalog 0.4.0")
	assert.Contains(t, view, "INSTALLED")
	assert.Contains(t, view, "> core")
	assert.Contains(t, view, "outdated")
	assert.Contains(t, view, "orphaned")
	assert.NotContains(t, view, "debug")
}

func TestView_CatalogUnavailable(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.loading = false

	assert.Contains(t, m.View(), "Catalog unavailable")
}

func TestView_UpdateNotice(t *testing.T) {
	meta := loadedCatalog(t)
	meta.Update = true

	tests := []struct {
		name  string
		check bool
		want  bool
	}{
		{name: "enabled", check: true, want: true},
		{name: "disabled", check: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, Options{CheckForUpdates: tt.check})
			m.loading = false
			m.meta = meta

			if tt.want {
				assert.Contains(t, m.View(), "ytinu 0.4.0 is available")
			} else {
				assert.NotContains(t, m.View(), "is available")
			}
		})
	}
}

func TestView_EmptyGame(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.gameIdx = 0 // rounds

	assert.Contains(t, m.View(), "No mods installed in rounds")
}

func TestView_WithError(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.err = assert.AnError
	m.errorTime = time.Now()

	assert.Contains(t, m.View(), "Error: ")
}

func TestView_Quitting(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.quitting = true

	assert.Equal(t, "Dashboard closed.\n", m.View())
}

func TestRenderHeader(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.width = 100

	header := m.renderHeader()

	assert.Contains(t, header, "ytinu Dashboard")
	assert.Contains(t, header, "Last Update:")
	assert.Contains(t, header, "╭")
	assert.Contains(t, header, "╯")
}

func TestRenderFooter(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	footer := m.renderFooter()

	for _, want := range []string{"[↑/↓] mod", "[tab] game", "[r]efetch", "[q]uit"} {
		assert.Contains(t, footer, want)
	}
}

func TestStatusIndicator(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"ok", "●"},
		{string(model.FindingOutdated), "▲"},
		{string(model.FindingVersionMismatch), "▲"},
		{string(model.FindingOrphaned), "✗"},
		{string(model.FindingIncompatible), "✗"},
		{"unknown", "?"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, statusIndicator(tt.status))
		})
	}
}

func TestRowName(t *testing.T) {
	assert.Equal(t, "Core", rowName(ModRow{ID: "core", Name: "Core"}))
	assert.Equal(t, "core", rowName(ModRow{ID: "core"}))
	assert.Equal(t, "Dbg [dev]", rowName(ModRow{ID: "d", Name: "Dbg", DevMod: true}))
}
