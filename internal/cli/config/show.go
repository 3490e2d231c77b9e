package config

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
)

// NewShowCommand creates the config show subcommand
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runShow(cmd.OutOrStdout(), c)
		},
	}
}

// runShow executes the show command
func runShow(stdout io.Writer, c *cmdctx.Context) error {
	if c.Config == nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("configuration not loaded"))
	}
	if c.JSON {
		return output.JSON(stdout, c.Config)
	}

	data, err := yaml.Marshal(c.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = stdout.Write(data)
	return err
}
