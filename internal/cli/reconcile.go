package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/model"
)

// ReconcileOutput holds the output for JSON mode
type ReconcileOutput struct {
	CatalogVersion string                    `json:"catalog_version"`
	Findings       []model.Finding           `json:"findings"`
	Summary        map[model.FindingKind]int `json:"summary"`
}

// NewReconcileCommand creates the reconcile command
func NewReconcileCommand() *cobra.Command {
	var (
		file   string
		gameID string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare installed mods with the catalog",
		Long: `Compare every installed mod with the catalog and report:

  orphaned          the catalog does not list the mod (dev mods are skipped)
  outdated          the catalog has a newer release
  version_mismatch  the installed release differs but is not older
  incompatible      the catalog release does not support this ytinu version

Nothing is changed.`,
		Example: `  # Check all games against the published catalog
  ytinu reconcile

  # Check one game against a saved snapshot, failing on findings
  ytinu reconcile --game valheim --catalog ./catalog.json --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), c, file, gameID, strict)
		},
	}
	cmd.Flags().StringVar(&file, "catalog", "", "read the catalog from this file instead of fetching it")
	cmd.Flags().StringVar(&gameID, "game", "", "only check this game")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when there are findings")
	return cmd
}

func runReconcile(ctx context.Context, stdout io.Writer, c *cmdctx.Context, file, gameID string, strict bool) error {
	store, err := c.OpenStore(ctx)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	st := store.Snapshot()

	games := st.GameIDs()
	if gameID != "" {
		if _, err := st.Game(gameID); err != nil {
			return output.Error(stdout, c.JSON, err)
		}
		games = []string{gameID}
	}

	meta, err := c.LoadCatalog(ctx, file, games...)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	var findings []model.Finding
	for _, id := range games {
		findings = append(findings, model.ReconcileGame(id, st.Games[id], meta, model.WithAppVersion(c.AppVersion))...)
	}
	summary := model.Summary(findings)

	if c.JSON {
		if findings == nil {
			findings = []model.Finding{}
		}
		if err := output.JSON(stdout, ReconcileOutput{
			CatalogVersion: meta.Version,
			Findings:       findings,
			Summary:        summary,
		}); err != nil {
			return err
		}
	} else {
		printFindings(stdout, c.Quiet, findings, summary)
	}

	if strict && len(findings) > 0 {
		return fmt.Errorf("%d finding(s)", len(findings))
	}
	return nil
}

func printFindings(w io.Writer, quiet bool, findings []model.Finding, summary map[model.FindingKind]int) {
	if len(findings) == 0 {
		output.Printf(w, quiet, "✓ All installed mods match the catalog\n")
		return
	}

	rows := make([]table.Row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, table.Row{f.GameID, f.ModID, string(f.Kind), orDash(f.InstalledVersion), orDash(f.CatalogVersion), f.Detail})
	}
	output.Table(w, table.Row{"GAME", "MOD", "FINDING", "INSTALLED", "CATALOG", "DETAIL"}, rows)

	output.Printf(w, quiet, "\nTotal: %d finding(s) (%d orphaned, %d outdated, %d mismatched, %d incompatible)\n",
		len(findings),
		summary[model.FindingOrphaned],
		summary[model.FindingOutdated],
		summary[model.FindingVersionMismatch],
		summary[model.FindingIncompatible])
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
