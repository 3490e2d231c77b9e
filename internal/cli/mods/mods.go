package mods

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the mods command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mods",
		Short: "Manage installed mods",
		Long: `List, enable, disable and forget the mods installed in a game.

Commands act on the selected game unless --game is given. Only the state
file is changed; mod files on disk are not touched.`,
		Example: `  # List mods of the selected game
  ytinu mods list

  # List mods with their catalog status
  ytinu mods list --check

  # Disable and re-enable mods
  ytinu mods disable valheim-plus
  ytinu mods enable valheim-plus --game valheim

  # Drop the record of a mod removed by hand
  ytinu mods forget old-mod

  # Refresh embedded catalog records
  ytinu mods refresh`,
		Aliases: []string{"mod"},
	}

	cmd.PersistentFlags().String("game", "", "game to act on (default: selected game)")

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewEnableCommand())
	cmd.AddCommand(NewDisableCommand())
	cmd.AddCommand(NewForgetCommand())
	cmd.AddCommand(NewRefreshCommand())

	return cmd
}

func gameFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("game")
	return v
}
