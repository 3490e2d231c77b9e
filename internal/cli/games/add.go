package games

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

// AddFlags holds the flags of games add
type AddFlags struct {
	Name    string
	Catalog string
}

// NewAddCommand creates the games add subcommand
func NewAddCommand() *cobra.Command {
	var flags AddFlags

	cmd := &cobra.Command{
		Use:   "add <game-id> <install-path>",
		Short: "Set up a game",
		Long: `Set up a game installed at <install-path>.

The game record (name, Steam app id, recommended mods) is taken from the
catalog. With --name the catalog is not consulted. The first game set up
becomes the selected game.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runAdd(cmd.Context(), cmd.OutOrStdout(), c, args[0], args[1], flags)
		},
	}

	cmd.Flags().StringVar(&flags.Name, "name", "", "display name; skips the catalog lookup")
	cmd.Flags().StringVar(&flags.Catalog, "catalog", "", "read the catalog from this file instead of fetching it")

	return cmd
}

// runAdd executes the add command
func runAdd(ctx context.Context, stdout io.Writer, c *cmdctx.Context, id, installPath string, flags AddFlags) error {
	if err := state.ValidateGameID(id); err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("invalid game id: %w", err))
	}
	if err := state.ValidateInstallPath(installPath); err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("invalid install path: %w", err))
	}

	game := model.Game{ID: id, Name: flags.Name}
	if flags.Name == "" {
		meta, err := c.LoadCatalog(ctx, flags.Catalog)
		if err != nil {
			return output.Error(stdout, c.JSON, err)
		}
		known, ok := meta.Games[id]
		if !ok {
			return output.Error(stdout, c.JSON,
				fmt.Errorf("game %q is not in the catalog (use --name to set it up anyway)", id))
		}
		game = known
	}

	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to load state: %w", err))
	}

	var selected string
	err = store.Update(ctx, func(s *model.State) error {
		if _, err := s.AddGame(game, installPath); err != nil {
			return err
		}
		s.EnsureGameSelected()
		selected = s.SelectedGame
		return nil
	})
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	c.Record(ctx, &history.Event{Kind: history.KindGameAdded, GameID: id, Detail: installPath})

	if c.JSON {
		return output.JSON(stdout, GameInfo{
			ID:          id,
			Name:        game.Name,
			InstallPath: installPath,
			Selected:    selected == id,
		})
	}

	output.Printf(stdout, c.Quiet, "✓ Set up %s (%s) at %s\n", game.Name, id, installPath)
	if selected == id {
		output.Printf(stdout, c.Quiet, "  %s is now the selected game\n", id)
	}
	if len(game.RecommendedMods) > 0 {
		output.Printf(stdout, c.Quiet, "  recommended mods: %v\n", game.RecommendedMods)
	}
	return nil
}
