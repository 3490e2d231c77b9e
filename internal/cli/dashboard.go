package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/logger"
	"github.com/steviee/ytinu/internal/tui"
)

// NewDashboardCommand creates the dashboard command
func NewDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive dashboard of games and installed mods",
		Long: `Launch a read-only TUI dashboard that shows the set up games and the mods
installed in each of them, reconciled against the catalog.

The state file is re-read every tui.refresh_interval, so changes made by the
mod manager or by other ytinu commands show up while the dashboard runs.

Keyboard shortcuts:
  ↑/k         Move selection up
  ↓/j         Move selection down
  tab         Next game
  shift+tab   Previous game
  r           Refetch the catalog
  q/Ctrl+C    Quit dashboard`,
		Example: `  # Launch the dashboard
  ytinu dashboard

  # Alternative using alias
  ytinu top`,
		Aliases: []string{"top"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runDashboard(cmd.Context(), c)
		},
	}

	return cmd
}

// runDashboard executes the dashboard command
func runDashboard(ctx context.Context, c *cmdctx.Context) error {
	if c.JSON {
		return errors.New("the dashboard does not support --json")
	}

	store, err := c.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	opts := tui.Options{AppVersion: c.AppVersion}
	if cfg := c.Config; cfg != nil {
		opts.RefreshInterval = cfg.TUI.RefreshInterval
		opts.Theme = cfg.TUI.Theme
		opts.ShowDevMods = cfg.Mods.ShowDevMods
		opts.CheckForUpdates = cfg.Updates.CheckForUpdates

		// console logs would tear the alt screen; keep only the file sink
		done, err := logger.Init(logger.Options{
			Level:  logger.LevelFromFlags(c.Quiet, false, cfg.Logging.Level),
			File:   cfg.Logging.File,
			Output: io.Discard,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer done()
	}

	model := tui.NewModel(ctx, store, c.CatalogFetcher(), opts)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}

	return nil
}
