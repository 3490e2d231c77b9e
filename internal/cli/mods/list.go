package mods

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/model"
)

// ModInfo is one installed mod in JSON mode.
type ModInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Enabled        bool     `json:"enabled"`
	DevMod         bool     `json:"dev_mod,omitempty"`
	CatalogVersion string   `json:"catalog_version,omitempty"`
	Findings       []string `json:"findings,omitempty"`
}

// ListOptions holds the flags of mods list
type ListOptions struct {
	Check   bool
	Catalog string
	All     bool
}

// NewListCommand creates the mods list subcommand
func NewListCommand() *cobra.Command {
	var opts ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed mods",
		Long: `List the mods installed in a game in installation order.

Dev mods are hidden unless mods.show_dev_mods is set or --all is given.
With --check each mod is compared with the catalog.`,
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), c, gameFlag(cmd), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "compare with the catalog")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "read the catalog from this file (implies --check)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "include dev mods")

	return cmd
}

// runList executes the list command
func runList(ctx context.Context, stdout io.Writer, c *cmdctx.Context, gameID string, opts ListOptions) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to load state: %w", err))
	}
	st := store.Snapshot()

	id, err := cmdctx.ResolveGame(st, gameID)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	g := st.Games[id]

	check := opts.Check || opts.Catalog != ""
	var meta *model.Metadata
	findings := map[string][]model.Finding{}
	if check {
		meta, err = c.LoadCatalog(ctx, opts.Catalog, id)
		if err != nil {
			return output.Error(stdout, c.JSON, err)
		}
		for _, f := range model.ReconcileGame(id, g, meta, model.WithAppVersion(c.AppVersion)) {
			findings[f.ModID] = append(findings[f.ModID], f)
		}
	}

	showDev := opts.All || (c.Config != nil && c.Config.Mods.ShowDevMods)
	mods := make([]ModInfo, 0, g.Mods.Len())
	for modID, im := range g.Mods.All() {
		if im.M.DevMod && !showDev {
			continue
		}
		info := ModInfo{
			ID:      modID,
			Name:    im.M.Name,
			Version: im.Version,
			Enabled: im.Enabled,
			DevMod:  im.M.DevMod,
		}
		if mod, ok := meta.LookupMod(id, modID); ok {
			info.CatalogVersion = mod.Version
		}
		for _, f := range findings[modID] {
			info.Findings = append(info.Findings, string(f.Kind))
		}
		mods = append(mods, info)
	}

	if c.JSON {
		return output.JSON(stdout, mods)
	}
	return outputListText(stdout, c.Quiet, id, mods, check)
}

func outputListText(stdout io.Writer, quiet bool, gameID string, mods []ModInfo, check bool) error {
	if len(mods) == 0 {
		output.Printf(stdout, quiet, "No mods installed in %s\n", gameID)
		return nil
	}

	header := table.Row{"ID", "NAME", "VERSION", "ENABLED"}
	if check {
		header = append(header, "CATALOG", "STATUS")
	}

	rows := make([]table.Row, 0, len(mods))
	for _, m := range mods {
		name := m.Name
		if m.DevMod {
			name += " [dev]"
		}
		row := table.Row{m.ID, name, m.Version, output.Mark(m.Enabled)}
		if check {
			catalogVersion := m.CatalogVersion
			if catalogVersion == "" {
				catalogVersion = "-"
			}
			status := "ok"
			if len(m.Findings) > 0 {
				status = strings.Join(m.Findings, ", ")
			}
			row = append(row, catalogVersion, status)
		}
		rows = append(rows, row)
	}
	output.Table(stdout, header, rows)
	output.Printf(stdout, quiet, "\nTotal: %d mod(s) in %s\n", len(mods), gameID)

	return nil
}
