package mods

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

// ChangeOutput lists the mods a command changed.
type ChangeOutput struct {
	Game    string   `json:"game"`
	Changed []string `json:"changed"`
}

// NewEnableCommand creates the mods enable subcommand
func NewEnableCommand() *cobra.Command {
	return newToggleCommand(true)
}

// NewDisableCommand creates the mods disable subcommand
func NewDisableCommand() *cobra.Command {
	return newToggleCommand(false)
}

func newToggleCommand(enable bool) *cobra.Command {
	use, short := "disable", "Disable installed mods"
	if enable {
		use, short = "enable", "Enable installed mods"
	}

	return &cobra.Command{
		Use:   use + " <mod-id>...",
		Short: short,
		Long: short + `.

All named mods must be installed; otherwise nothing is changed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runToggle(cmd.Context(), cmd.OutOrStdout(), c, gameFlag(cmd), args, enable)
		},
	}
}

// runToggle executes the enable and disable commands
func runToggle(ctx context.Context, stdout io.Writer, c *cmdctx.Context, gameID string, modIDs []string, enable bool) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to load state: %w", err))
	}

	var game string
	err = store.Update(ctx, func(s *model.State) error {
		id, err := cmdctx.ResolveGame(s, gameID)
		if err != nil {
			return err
		}
		game = id
		g := s.Games[id]
		for _, modID := range modIDs {
			if err := g.SetModEnabled(modID, enable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	kind := history.KindModDisabled
	verb := "Disabled"
	if enable {
		kind = history.KindModEnabled
		verb = "Enabled"
	}
	events := make([]*history.Event, 0, len(modIDs))
	for _, modID := range modIDs {
		events = append(events, &history.Event{Kind: kind, GameID: game, ModID: modID})
	}
	c.Record(ctx, events...)

	if c.JSON {
		return output.JSON(stdout, ChangeOutput{Game: game, Changed: modIDs})
	}
	for _, modID := range modIDs {
		output.Printf(stdout, c.Quiet, "✓ %s %s in %s\n", verb, modID, game)
	}
	return nil
}
