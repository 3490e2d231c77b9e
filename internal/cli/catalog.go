package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/model"
	"github.com/steviee/ytinu/internal/state"
)

// CatalogSummary describes a catalog snapshot.
type CatalogSummary struct {
	Version   string            `json:"version"`
	Update    bool              `json:"update"`
	Games     int               `json:"games"`
	Mods      int               `json:"mods"`
	GameMods  map[string]int    `json:"game_mods,omitempty"`
	Messages  int               `json:"messages"`
	Downloads map[string]string `json:"downloads,omitempty"`
	SavedTo   string            `json:"saved_to,omitempty"`
	Repairs   []string          `json:"repairs,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

func summarize(meta *model.Metadata) CatalogSummary {
	s := CatalogSummary{
		Version:   meta.Version,
		Update:    meta.Update,
		Games:     len(meta.Games),
		Mods:      len(meta.Mods),
		Messages:  len(meta.Messages),
		Downloads: meta.Downloads,
	}
	if len(meta.GameMods) > 0 {
		s.GameMods = make(map[string]int, len(meta.GameMods))
		for id, mods := range meta.GameMods {
			s.GameMods[id] = len(mods)
		}
	}
	for _, r := range meta.Repairs() {
		s.Repairs = append(s.Repairs, r.Error())
	}
	for _, u := range meta.UnresolvedRecommendations() {
		s.Warnings = append(s.Warnings, u.Error())
	}
	return s
}

// NewCatalogCommand creates the catalog command group
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch and validate the mod catalog",
		Long: `Fetch and validate the mod catalog.

The catalog lists the games and mods known to the manager. It is fetched
from catalog.url (meta.json) with per-game listings from catalog.game_mods_url.`,
		Example: `  # Fetch the catalog and save a snapshot
  ytinu catalog fetch --save ./catalog.json

  # Validate a saved snapshot, repairing per-game records
  ytinu catalog validate ./catalog.json --repair

  # Show catalog messages for this version
  ytinu catalog messages`,
		Aliases: []string{"meta"},
	}

	cmd.AddCommand(newCatalogFetchCommand())
	cmd.AddCommand(newCatalogValidateCommand())
	cmd.AddCommand(newCatalogMessagesCommand())

	return cmd
}

func newCatalogFetchCommand() *cobra.Command {
	var (
		save  string
		games []string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the catalog",
		Long: `Fetch the catalog and the per-game listing of every set up game (or of
the games named with --game).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runCatalogFetch(cmd.Context(), cmd.OutOrStdout(), c, games, save)
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "write the snapshot to this file")
	cmd.Flags().StringSliceVar(&games, "game", nil, "fetch the listing of these games (default: set up games)")
	return cmd
}

func newCatalogValidateCommand() *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a catalog document",
		Long: `Validate a catalog document: ids, download URIs, versions, references
and consistency of per-game records with the flat mod list.

With --repair, per-game records that differ from the flat record are
replaced by it and reported instead of failing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runCatalogValidate(cmd.OutOrStdout(), c, args[0], repair)
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "replace inconsistent per-game records")
	return cmd
}

func newCatalogMessagesCommand() *cobra.Command {
	var (
		file string
		peek bool
	)
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show catalog messages for this version",
		Long: `Show the catalog messages addressed to this manager version that were
not shown before. Shown messages are remembered in the state file unless
--peek is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runCatalogMessages(cmd.Context(), cmd.OutOrStdout(), c, file, peek)
		},
	}
	cmd.Flags().StringVar(&file, "catalog", "", "read the catalog from this file instead of fetching it")
	cmd.Flags().BoolVar(&peek, "peek", false, "do not remember the messages as shown")
	return cmd
}

func runCatalogFetch(ctx context.Context, stdout io.Writer, c *cmdctx.Context, games []string, save string) error {
	if len(games) == 0 {
		store, err := c.OpenStore(ctx)
		if err != nil {
			return output.Error(stdout, c.JSON, err)
		}
		games = store.Snapshot().GameIDs()
	}

	meta, err := c.LoadCatalog(ctx, "", games...)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	summary := summarize(meta)
	if save != "" {
		data, err := model.MarshalMetadata(meta)
		if err != nil {
			return output.Error(stdout, c.JSON, err)
		}
		if err := state.AtomicWrite(save, data, 0644); err != nil {
			return output.Error(stdout, c.JSON, fmt.Errorf("failed to save catalog: %w", err))
		}
		summary.SavedTo = save
	}

	if c.JSON {
		return output.JSON(stdout, summary)
	}
	printCatalogSummary(stdout, c.Quiet, summary)
	return nil
}

func printCatalogSummary(w io.Writer, quiet bool, s CatalogSummary) {
	output.Printf(w, quiet, "Catalog %s: %d games, %d mods, %d messages\n", s.Version, s.Games, s.Mods, s.Messages)
	for _, id := range slices.Sorted(maps.Keys(s.GameMods)) {
		output.Printf(w, quiet, "  %s: %d game mods\n", id, s.GameMods[id])
	}
	if s.Update {
		output.Printf(w, quiet, "A newer version of ytinu (%s) is available\n", s.Version)
	}
	for _, r := range s.Repairs {
		output.Printf(w, quiet, "repaired: %s\n", r)
	}
	for _, warn := range s.Warnings {
		output.Printf(w, quiet, "warning: %s\n", warn)
	}
	if s.SavedTo != "" {
		output.Printf(w, quiet, "Saved to %s\n", s.SavedTo)
	}
}

func runCatalogValidate(stdout io.Writer, c *cmdctx.Context, file string, repair bool) error {
	var opts []model.ParseOption
	if repair {
		opts = append(opts, model.Repair())
	}

	meta, err := cmdctx.ReadCatalogFile(file, opts...)
	if err != nil {
		if c.JSON {
			_ = output.JSON(stdout, map[string]any{"valid": false, "problems": problems(err)})
		} else {
			_, _ = fmt.Fprintf(stdout, "✗ %s is invalid\n", file)
			for _, p := range problems(err) {
				_, _ = fmt.Fprintf(stdout, "  - %s\n", p)
			}
		}
		return fmt.Errorf("catalog %s is invalid: %d problem(s)", file, len(problems(err)))
	}

	summary := summarize(meta)
	if c.JSON {
		return output.JSON(stdout, map[string]any{"valid": true, "catalog": summary})
	}
	output.Printf(stdout, c.Quiet, "✓ %s is valid\n", file)
	printCatalogSummary(stdout, c.Quiet, summary)
	return nil
}

func runCatalogMessages(ctx context.Context, stdout io.Writer, c *cmdctx.Context, file string, peek bool) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	meta, err := c.LoadCatalog(ctx, file)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	pending := store.Snapshot().PendingMessages(meta, c.AppVersion)

	if !peek && len(pending) > 0 {
		ids := make([]string, 0, len(pending))
		for _, m := range pending {
			ids = append(ids, m.ID)
		}
		if err := store.Update(ctx, func(s *model.State) error {
			s.MarkMessagesShown(ids...)
			return nil
		}); err != nil {
			return output.Error(stdout, c.JSON, err)
		}
		c.Record(ctx, &history.Event{Kind: history.KindMessagesShown, Detail: fmt.Sprint(ids)})
	}

	if c.JSON {
		return output.JSON(stdout, pending)
	}
	if len(pending) == 0 {
		output.Printf(stdout, c.Quiet, "No new messages\n")
		return nil
	}
	rows := make([]table.Row, 0, len(pending))
	for _, m := range pending {
		rows = append(rows, table.Row{m.ID, string(m.IconOrDefault()), m.Message})
	}
	output.Table(stdout, table.Row{"ID", "KIND", "MESSAGE"}, rows)
	return nil
}
