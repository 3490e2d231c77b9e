package games

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the games command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Manage set up games",
		Long: `List, set up and select the games the mod manager manages.

A game is set up with the directory it is installed in. The selected game is
the default target of the mods and loader commands.`,
		Example: `  # List set up games
  ytinu games list

  # Set up a game known to the catalog
  ytinu games add valheim /games/valheim

  # Set up a game without contacting the catalog
  ytinu games add mygame /games/mygame --name "My Game"

  # Select a game
  ytinu games select valheim`,
		Aliases: []string{"game"},
	}

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewAddCommand())
	cmd.AddCommand(NewSelectCommand())

	return cmd
}
