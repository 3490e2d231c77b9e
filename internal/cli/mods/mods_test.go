package mods

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	assert.Equal(t, "mods", cmd.Use)
	assert.Equal(t, "Manage installed mods", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
	assert.Contains(t, cmd.Aliases, "mod")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("game"))
}

func TestNewCommand_Subcommands(t *testing.T) {
	cmd := NewCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "enable", "disable", "forget", "refresh"}, names)
}
