package config

import (
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/state"
)

// NewCommand creates the config command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and reset ytinu configuration settings.

Commands in this group show the effective configuration (file values with
YTINU_* environment overrides applied), print the locations of the files
ytinu uses, and reset the file to defaults. Configuration is stored in
~/.config/ytinu/config.yaml by default.`,
		Example: `  # View effective configuration
  ytinu config show

  # Show file locations
  ytinu config path

  # Reset to defaults
  ytinu config reset`,
		Aliases: []string{"cfg"},
	}

	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewPathCommand())
	cmd.AddCommand(NewResetCommand())

	return cmd
}

// configPath returns the config file of the invocation.
func configPath(c *cmdctx.Context) (string, error) {
	if c.ConfigPath != "" {
		return c.ConfigPath, nil
	}
	return state.GetConfigPath()
}
