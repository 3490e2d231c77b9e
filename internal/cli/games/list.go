package games

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
)

// GameInfo is one set up game in JSON mode.
type GameInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InstallPath string `json:"install_path"`
	Mods        int    `json:"mods"`
	Loader      string `json:"loader,omitempty"`
	Selected    bool   `json:"selected"`
}

// NewListCommand creates the games list subcommand
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List set up games",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}

	return cmd
}

// runList executes the list command
func runList(ctx context.Context, stdout io.Writer, c *cmdctx.Context) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to load state: %w", err))
	}
	st := store.Snapshot()

	games := make([]GameInfo, 0, len(st.Games))
	for _, id := range st.GameIDs() {
		g := st.Games[id]
		info := GameInfo{
			ID:          id,
			Name:        g.Game.Name,
			InstallPath: g.InstallPath,
			Mods:        g.Mods.Len(),
			Selected:    id == st.SelectedGame,
		}
		if bep, ok := g.BepInEx.Get(); ok {
			info.Loader = bep.Version.OrElse("unknown")
			if !bep.Enabled {
				info.Loader += " (disabled)"
			}
		}
		games = append(games, info)
	}

	if c.JSON {
		return output.JSON(stdout, games)
	}

	if len(games) == 0 {
		output.Printf(stdout, c.Quiet, "No games set up\n")
		return nil
	}

	rows := make([]table.Row, 0, len(games))
	for _, g := range games {
		marker := ""
		if g.Selected {
			marker = "*"
		}
		loader := g.Loader
		if loader == "" {
			loader = "-"
		}
		rows = append(rows, table.Row{marker, g.ID, g.Name, g.InstallPath, g.Mods, loader})
	}
	output.Table(stdout, table.Row{"", "ID", "NAME", "INSTALL PATH", "MODS", "LOADER"}, rows)
	output.Printf(stdout, c.Quiet, "\nTotal: %d game(s)\n", len(games))

	return nil
}
