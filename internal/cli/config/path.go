package config

import (
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
)

// Paths lists the files ytinu reads and writes.
type Paths struct {
	Config  string `json:"config"`
	State   string `json:"state"`
	History string `json:"history"`
}

// NewPathCommand creates the config path subcommand
func NewPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the locations of configuration, state and history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runPath(cmd.OutOrStdout(), c)
		},
	}
}

// runPath executes the path command
func runPath(stdout io.Writer, c *cmdctx.Context) error {
	cfgPath, err := configPath(c)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	paths := Paths{Config: cfgPath, State: c.StatePath}
	if c.Config != nil {
		if paths.History, err = c.Config.HistoryPath(); err != nil {
			return output.Error(stdout, c.JSON, err)
		}
	}

	if c.JSON {
		return output.JSON(stdout, paths)
	}
	output.Table(stdout, table.Row{"FILE", "PATH"}, []table.Row{
		{"config", paths.Config},
		{"state", paths.State},
		{"history", paths.History},
	})
	return nil
}
