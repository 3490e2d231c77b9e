package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/steviee/ytinu/internal/model"
)

// ThemeMono renders the dashboard without colours.
const ThemeMono = "mono"

type styles struct {
	header      lipgloss.Style
	tableHeader lipgloss.Style
	selectedRow lipgloss.Style
	activeTab   lipgloss.Style
	tab         lipgloss.Style
	footer      lipgloss.Style
	error       lipgloss.Style
	notice      lipgloss.Style

	ok       lipgloss.Style
	outdated lipgloss.Style
	mismatch lipgloss.Style
	problem  lipgloss.Style
	unknown  lipgloss.Style
	disabled lipgloss.Style
}

func newStyles(theme string) styles {
	if theme == ThemeMono {
		plain := lipgloss.NewStyle()
		return styles{
			header:      plain.Bold(true),
			tableHeader: plain.Bold(true).Underline(true),
			selectedRow: plain.Reverse(true),
			activeTab:   plain.Bold(true).Underline(true),
			tab:         plain,
			footer:      plain,
			error:       plain.Bold(true),
			notice:      plain.Bold(true),
			ok:          plain,
			outdated:    plain,
			mismatch:    plain,
			problem:     plain,
			unknown:     plain,
			disabled:    plain.Faint(true),
		}
	}

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#00ADD8")).
			Padding(0, 1),
		tableHeader: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("#FFFFFF")),
		selectedRow: lipgloss.NewStyle().
			Background(lipgloss.Color("#FFA500")).
			Foreground(lipgloss.Color("#000000")),
		activeTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#00ADD8")).
			Padding(0, 1),
		tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Padding(0, 1),
		footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")),
		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
		notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		outdated: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		mismatch: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
		problem:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		unknown:  lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
		disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("#808080")),
	}
}

// statusStyle returns the style for a row status
func (s styles) statusStyle(status string) lipgloss.Style {
	switch status {
	case "ok":
		return s.ok
	case string(model.FindingOutdated):
		return s.outdated
	case string(model.FindingVersionMismatch):
		return s.mismatch
	case string(model.FindingOrphaned), string(model.FindingIncompatible):
		return s.problem
	default:
		return s.unknown
	}
}

// statusIndicator returns the status indicator symbol
func statusIndicator(status string) string {
	switch status {
	case "ok":
		return "●"
	case string(model.FindingOutdated), string(model.FindingVersionMismatch):
		return "▲"
	case string(model.FindingOrphaned), string(model.FindingIncompatible):
		return "✗"
	default:
		return "?"
	}
}
