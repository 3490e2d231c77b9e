package config

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/state"
)

// NewResetCommand creates the config reset subcommand
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the configuration file to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runReset(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}
}

// runReset executes the reset command
func runReset(ctx context.Context, stdout io.Writer, c *cmdctx.Context) error {
	path, err := configPath(c)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	if err := state.SaveConfig(ctx, path, state.DefaultConfig()); err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to reset config: %w", err))
	}

	if c.JSON {
		return output.JSON(stdout, map[string]string{"config": path})
	}
	output.Printf(stdout, c.Quiet, "✓ Reset %s to defaults\n", path)
	return nil
}
