package games

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/model"
)

// NewSelectCommand creates the games select subcommand
func NewSelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <game-id>",
		Short: "Select the game other commands act on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runSelect(cmd.Context(), cmd.OutOrStdout(), c, args[0])
		},
	}

	return cmd
}

// runSelect executes the select command
func runSelect(ctx context.Context, stdout io.Writer, c *cmdctx.Context, id string) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	if err := store.Update(ctx, func(s *model.State) error {
		return s.SelectGame(id)
	}); err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	c.Record(ctx, &history.Event{Kind: history.KindGameSelected, GameID: id})

	if c.JSON {
		return output.JSON(stdout, map[string]string{"selected_game": id})
	}
	output.Printf(stdout, c.Quiet, "✓ Selected %s\n", id)
	return nil
}
