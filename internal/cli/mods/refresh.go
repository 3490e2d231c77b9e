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

// RefreshOutput holds the output for JSON mode
type RefreshOutput struct {
	CatalogVersion string `json:"catalog_version"`
	Refreshed      int    `json:"refreshed"`
}

// NewRefreshCommand creates the mods refresh subcommand
func NewRefreshCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the catalog records of installed mods",
		Long: `Replace the catalog record stored with every installed mod by the current
catalog record. Installed versions and enabled flags are kept, so outdated
mods stay outdated until they are updated.

Without --game every set up game is refreshed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runRefresh(cmd.Context(), cmd.OutOrStdout(), c, gameFlag(cmd), file)
		},
	}

	cmd.Flags().StringVar(&file, "catalog", "", "read the catalog from this file instead of fetching it")

	return cmd
}

// runRefresh executes the refresh command
func runRefresh(ctx context.Context, stdout io.Writer, c *cmdctx.Context, gameID, file string) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to load state: %w", err))
	}

	games := store.Snapshot().GameIDs()
	if gameID != "" {
		games = []string{gameID}
	}
	meta, err := c.LoadCatalog(ctx, file, games...)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	var n int
	err = store.Update(ctx, func(s *model.State) error {
		if gameID == "" {
			n = s.RefreshModsMeta(meta)
			return nil
		}
		g, err := s.Game(gameID)
		if err != nil {
			return err
		}
		n = g.RefreshModsMeta(meta.ModsFor(gameID))
		return nil
	})
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	c.Record(ctx, &history.Event{
		Kind:   history.KindModsRefreshed,
		GameID: gameID,
		Detail: fmt.Sprintf("%d record(s) from catalog %s", n, meta.Version),
	})

	if c.JSON {
		return output.JSON(stdout, RefreshOutput{CatalogVersion: meta.Version, Refreshed: n})
	}
	output.Printf(stdout, c.Quiet, "✓ Refreshed %d mod record(s) from catalog %s\n", n, meta.Version)
	return nil
}
