package tui

import (
	"fmt"
	"strings"
	"time"
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Dashboard closed.\n"
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if len(m.games) == 0 {
		b.WriteString("\nNo games set up. Set one up with 'ytinu games add <id> <install-path>'\n")
	} else {
		b.WriteString(m.renderTabs())
		b.WriteString("\n")
		b.WriteString(m.renderCatalogLine())
		b.WriteString("\n\n")
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	if m.err != nil && time.Since(m.errorTime) < 3*time.Second {
		b.WriteString("\n")
		b.WriteString(m.styles.error.Render(fmt.Sprintf("Error: %s", m.err)))
	}

	return b.String()
}

// renderHeader renders the dashboard header
func (m Model) renderHeader() string {
	title := "ytinu Dashboard"
	lastUpdate := fmt.Sprintf("Last Update: %s", m.lastUpdate.Format("15:04:05"))

	totalWidth := 80
	if m.width > 0 {
		totalWidth = m.width
	}

	spacing := totalWidth - len(title) - len(lastUpdate) - 4
	if spacing < 1 {
		spacing = 1
	}

	var b strings.Builder
	b.WriteString("╭")
	b.WriteString(strings.Repeat("─", totalWidth-2))
	b.WriteString("╮\n")

	headerText := fmt.Sprintf(" %s%s%s ", title, strings.Repeat(" ", spacing), lastUpdate)
	b.WriteString("│")
	b.WriteString(m.styles.header.Render(headerText))
	b.WriteString("│\n")

	b.WriteString("╰")
	b.WriteString(strings.Repeat("─", totalWidth-2))
	b.WriteString("╯")

	return b.String()
}

// renderTabs renders one tab per set up game; the selected game is starred
func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.games))
	for i, id := range m.games {
		label := id
		if m.state != nil && id == m.state.SelectedGame {
			label += "*"
		}
		if i == m.gameIdx {
			tabs = append(tabs, m.styles.activeTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.tab.Render(label))
		}
	}
	return strings.Join(tabs, " ")
}

// renderCatalogLine renders the catalog status
func (m Model) renderCatalogLine() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Loading catalog..."
	case m.meta == nil:
		return "Catalog unavailable, press r to retry"
	}

	line := fmt.Sprintf("Catalog %s", m.meta.Version)
	if m.opts.CheckForUpdates && m.meta.Update {
		line += "  " + m.styles.notice.Render(fmt.Sprintf("ytinu %s is available", m.meta.Version))
	}
	return line
}

// renderTable renders the mods of the highlighted game
func (m Model) renderTable() string {
	rows := m.modRows()
	if len(rows) == 0 {
		return fmt.Sprintf("No mods installed in %s\n", m.currentGame())
	}

	nameWidth := 20
	versionWidth := 10
	enabledWidth := 7
	for _, r := range rows {
		if n := len(rowName(r)); n > nameWidth {
			nameWidth = n
		}
		if len(r.Installed) > versionWidth {
			versionWidth = len(r.Installed)
		}
		if len(r.CatalogVersion) > versionWidth {
			versionWidth = len(r.CatalogVersion)
		}
	}

	var b strings.Builder
	headerRow := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s  %s",
		nameWidth, "MOD",
		versionWidth, "INSTALLED",
		versionWidth, "CATALOG",
		enabledWidth, "ENABLED",
		"STATUS",
	)
	b.WriteString(m.styles.tableHeader.Render(headerRow))
	b.WriteString("\n")

	for i, r := range rows {
		catalogVersion := r.CatalogVersion
		if catalogVersion == "" {
			catalogVersion = "-"
		}
		enabled := "no"
		if r.Enabled {
			enabled = "yes"
		}
		status := r.Status()
		statusText := fmt.Sprintf("%s %s", statusIndicator(status), status)

		cols := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
			nameWidth, rowName(r),
			versionWidth, r.Installed,
			versionWidth, catalogVersion,
			enabledWidth, enabled,
		)

		if i == m.modIdx {
			b.WriteString(m.styles.selectedRow.Render("> " + cols + "  " + statusText))
		} else {
			line := "  " + cols
			if !r.Enabled {
				line = m.styles.disabled.Render(line)
			}
			b.WriteString(line + "  " + m.styles.statusStyle(status).Render(statusText))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func rowName(r ModRow) string {
	name := r.Name
	if name == "" {
		name = r.ID
	}
	if r.DevMod {
		name += " [dev]"
	}
	return name
}

// renderFooter renders the dashboard footer with key help
func (m Model) renderFooter() string {
	return m.styles.footer.Render("[↑/↓] mod  [tab] game  [r]efetch catalog  [q]uit")
}
