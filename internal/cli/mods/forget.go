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

// NewForgetCommand creates the mods forget subcommand
func NewForgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forget <mod-id>...",
		Short: "Drop the record of installed mods",
		Long: `Drop the record of one or more installed mods from the state file.

Use this after removing mod files by hand. Files on disk are not touched.
All named mods must be installed; otherwise nothing is changed.`,
		Example: `  # Forget a single mod
  ytinu mods forget old-mod

  # Forget mods of another game
  ytinu mods forget a b --game valheim`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runForget(cmd.Context(), cmd.OutOrStdout(), c, gameFlag(cmd), args)
		},
	}

	return cmd
}

// runForget executes the forget command
func runForget(ctx context.Context, stdout io.Writer, c *cmdctx.Context, gameID string, modIDs []string) error {
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
		for _, modID := range modIDs {
			if err := s.Games[id].ForgetMod(modID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	events := make([]*history.Event, 0, len(modIDs))
	for _, modID := range modIDs {
		events = append(events, &history.Event{Kind: history.KindModForgotten, GameID: game, ModID: modID})
	}
	c.Record(ctx, events...)

	if c.JSON {
		return output.JSON(stdout, ChangeOutput{Game: game, Changed: modIDs})
	}
	output.Printf(stdout, c.Quiet, "✓ Forgot %d mod(s) in %s\n", len(modIDs), game)
	return nil
}
