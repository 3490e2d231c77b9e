package cli

import (
	"context"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/history"
)

// HistoryEntry is one event in JSON mode.
type HistoryEntry struct {
	Time   string `json:"time"`
	Kind   string `json:"kind"`
	GameID string `json:"game_id,omitempty"`
	ModID  string `json:"mod_id,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var filter history.Filter
	var kind string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded changes",
		Long: `Show the changes ytinu made to the state file, newest first.

History is kept in history.db next to the config file while history.enabled
is true.`,
		Example: `  # Last 20 changes
  ytinu history

  # Changes to one game
  ytinu history --game valheim --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			filter.Kind = history.Kind(kind)
			return runHistory(cmd.Context(), cmd.OutOrStdout(), c, filter)
		},
	}
	cmd.Flags().StringVar(&filter.GameID, "game", "", "only show changes to this game")
	cmd.Flags().StringVar(&kind, "kind", "", "only show changes of this kind (e.g. mod_disabled)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of changes to show (0 for all)")
	return cmd
}

func runHistory(ctx context.Context, stdout io.Writer, c *cmdctx.Context, filter history.Filter) error {
	rec, err := c.OpenHistory()
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	defer func() { _ = rec.Close() }()

	if rec == nil && !c.JSON {
		output.Printf(stdout, c.Quiet, "History is disabled (history.enabled: false)\n")
		return nil
	}

	events, err := rec.List(ctx, filter)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	entries := make([]HistoryEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, HistoryEntry{
			Time:   ev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			Kind:   string(ev.Kind),
			GameID: ev.GameID,
			ModID:  ev.ModID,
			Detail: ev.Detail,
		})
	}

	if c.JSON {
		return output.JSON(stdout, entries)
	}
	if len(entries) == 0 {
		output.Printf(stdout, c.Quiet, "No changes recorded\n")
		return nil
	}

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{e.Time, e.Kind, orDash(e.GameID), orDash(e.ModID), e.Detail})
	}
	output.Table(stdout, table.Row{"TIME", "CHANGE", "GAME", "MOD", "DETAIL"}, rows)
	return nil
}
