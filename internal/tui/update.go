package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Batch(
			tickCmd(m.opts.RefreshInterval),
			loadStateCmd(m.source),
		)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.errorTime = time.Now()
			zap.S().Errorw("Failed to reload state", zap.Error(msg.err))
			return m, clearErrorCmd()
		}
		m.setState(msg.state)
		m.lastUpdate = time.Now()
		return m, nil

	case catalogLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.errorTime = time.Now()
			zap.S().Errorw("Failed to load catalog", zap.Error(msg.err))
			return m, clearErrorCmd()
		}
		m.meta = msg.meta
		m.lastUpdate = time.Now()
		m.clampModIdx()
		return m, nil

	case clearErrorMsg:
		// Only clear if error is older than 3 seconds
		if time.Since(m.errorTime) >= 3*time.Second {
			m.err = nil
		}
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, loadCatalogCmd(m.ctx, m.holder, m.games))
	}

	if len(m.games) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.gameIdx = (m.gameIdx + 1) % len(m.games)
		m.modIdx = 0
		return m, nil

	case "shift+tab":
		m.gameIdx = (m.gameIdx + len(m.games) - 1) % len(m.games)
		m.modIdx = 0
		return m, nil

	case "up", "k":
		if m.modIdx > 0 {
			m.modIdx--
		}
		return m, nil

	case "down", "j":
		if m.modIdx < len(m.modRows())-1 {
			m.modIdx++
		}
		return m, nil
	}

	return m, nil
}
