package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/model"
)

// LoaderOutput holds the output for JSON mode
type LoaderOutput struct {
	Game    string `json:"game"`
	Version string `json:"version,omitempty"`
	Enabled bool   `json:"enabled"`
}

// NewCommand creates the loader command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loader",
		Short: "Manage the BepInEx mod loader",
		Long: `Enable or disable the BepInEx mod loader of a game.

Commands act on the selected game unless --game is given. The loader must
already be recorded in the state file.`,
		Example: `  # Disable the loader of the selected game
  ytinu loader disable

  # Enable the loader of another game
  ytinu loader enable --game valheim`,
		Aliases: []string{"bepinex"},
	}

	cmd.PersistentFlags().String("game", "", "game to act on (default: selected game)")

	cmd.AddCommand(newToggleCommand(true))
	cmd.AddCommand(newToggleCommand(false))

	return cmd
}

func newToggleCommand(enable bool) *cobra.Command {
	use, short := "disable", "Disable the mod loader"
	if enable {
		use, short = "enable", "Enable the mod loader"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			game, _ := cmd.Flags().GetString("game")
			return runToggle(cmd.Context(), cmd.OutOrStdout(), c, game, enable)
		},
	}
}

// runToggle executes the enable and disable commands
func runToggle(ctx context.Context, stdout io.Writer, c *cmdctx.Context, gameID string, enable bool) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to load state: %w", err))
	}

	out := LoaderOutput{Enabled: enable}
	err = store.Update(ctx, func(s *model.State) error {
		id, err := cmdctx.ResolveGame(s, gameID)
		if err != nil {
			return err
		}
		g := s.Games[id]
		if err := g.SetLoaderEnabled(enable); err != nil {
			return err
		}
		out.Game = id
		if info, ok := g.BepInEx.Get(); ok {
			out.Version = info.Version.OrElse("")
		}
		return nil
	})
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	kind := history.KindLoaderDisabled
	if enable {
		kind = history.KindLoaderEnabled
	}
	c.Record(ctx, &history.Event{Kind: kind, GameID: out.Game, Detail: out.Version})

	if c.JSON {
		return output.JSON(stdout, out)
	}
	state := "disabled"
	if enable {
		state = "enabled"
	}
	output.Printf(stdout, c.Quiet, "✓ BepInEx %s in %s\n", state, out.Game)
	return nil
}
