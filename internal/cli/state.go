package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/model"
)

// StateReport is the result of validating or migrating a state file.
type StateReport struct {
	Path          string   `json:"path"`
	Exists        bool     `json:"exists"`
	Valid         bool     `json:"valid"`
	SchemaVersion string   `json:"schema_version,omitempty"`
	NeedsMigrate  bool     `json:"needs_migration"`
	Written       bool     `json:"written,omitempty"`
	Notes         []string `json:"notes,omitempty"`
	Problems      []string `json:"problems,omitempty"`

	state *model.State
}

// NewStateCommand creates the state command group
func NewStateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect, validate and migrate the state file",
		Long: `Inspect, validate and migrate the mod manager state file (data.json).

Older state files (schema 1.x) are converted to the current schema. Files
that are not JSON are never modified by these commands.`,
		Example: `  # Show the current state
  ytinu state show

  # Validate another file
  ytinu state validate --file ./data.json

  # Preview a migration, then write it
  ytinu state migrate
  ytinu state migrate --write

  # Archive the state, then restore it
  ytinu state backup
  ytinu state restore ytinu-20250105-120000`,
	}

	cmd.AddCommand(newStateShowCommand())
	cmd.AddCommand(newStateValidateCommand())
	cmd.AddCommand(newStateMigrateCommand())
	cmd.AddCommand(newStateBackupCommand())
	cmd.AddCommand(newStateRestoreCommand())

	return cmd
}

func newStateShowCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show games, installed mods and loaders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runStateShow(cmd.Context(), cmd.OutOrStdout(), c, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "state file to read instead of the configured one")
	return cmd
}

func newStateValidateCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the state file against the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runStateValidate(cmd.Context(), cmd.OutOrStdout(), c, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "state file to validate instead of the configured one")
	return cmd
}

func newStateMigrateCommand() *cobra.Command {
	var (
		file  string
		write bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert the state file to the current schema",
		Long: `Convert the state file to the current schema.

Without --write the migrated document is printed. With --write the file is
replaced and the previous content kept as <file>.bkp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runStateMigrate(cmd.Context(), cmd.OutOrStdout(), c, file, write)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "state file to migrate instead of the configured one")
	cmd.Flags().BoolVar(&write, "write", false, "write the migrated state back to the file")
	return cmd
}

// inspectState reads path without modifying it.
func inspectState(path string) (*StateReport, error) {
	report := &StateReport{Path: path}

	//nolint:gosec // G304: state path is provided by the user or config
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		report.Valid = true
		report.SchemaVersion = model.CurrentSchemaVersion
		report.state = model.NewState()
		return report, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	report.Exists = true

	vs, err := model.DecodeState(data)
	if err != nil {
		report.Problems = problems(err)
		return report, nil
	}
	report.SchemaVersion = vs.SchemaVersion()
	_, current := vs.(*model.State)
	report.NeedsMigrate = !current

	st, notes, err := model.MigrateWithNotes(vs)
	if err != nil {
		report.Problems = problems(err)
		return report, nil
	}
	for _, n := range notes {
		report.Notes = append(report.Notes, n.String())
	}
	if err := st.Validate(); err != nil {
		report.Problems = problems(err)
		return report, nil
	}

	report.Valid = true
	report.state = st
	return report, nil
}

// problems flattens an aggregated error into one message per problem.
func problems(err error) []string {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func statePathOr(c *cmdctx.Context, file string) string {
	if file != "" {
		return file
	}
	return c.StatePath
}

func runStateShow(_ context.Context, stdout io.Writer, c *cmdctx.Context, file string) error {
	report, err := inspectState(statePathOr(c, file))
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	if !report.Valid {
		return output.Error(stdout, c.JSON, fmt.Errorf("state file %s is invalid: %s", report.Path, report.Problems[0]))
	}

	st := report.state
	if c.JSON {
		return output.JSON(stdout, st)
	}

	_, _ = fmt.Fprintf(stdout, "State file:    %s\n", report.Path)
	_, _ = fmt.Fprintf(stdout, "Schema:        %s\n", report.SchemaVersion)
	selected := st.SelectedGame
	if selected == "" {
		selected = "-"
	}
	_, _ = fmt.Fprintf(stdout, "Selected game: %s\n\n", selected)

	if len(st.Games) == 0 {
		_, _ = fmt.Fprintf(stdout, "No games set up\n")
		return nil
	}

	rows := make([]table.Row, 0, len(st.Games))
	for _, id := range st.GameIDs() {
		g := st.Games[id]
		enabled := 0
		for _, im := range g.Mods.All() {
			if im.Enabled {
				enabled++
			}
		}
		rows = append(rows, table.Row{id, g.Game.Name, g.InstallPath, g.Mods.Len(), enabled, loaderSummary(g)})
	}
	output.Table(stdout, table.Row{"ID", "NAME", "INSTALL PATH", "MODS", "ENABLED", "LOADER"}, rows)
	return nil
}

func loaderSummary(g *model.SetupGame) string {
	info, ok := g.BepInEx.Get()
	if !ok {
		return "-"
	}
	s := info.Version.OrElse("unknown")
	if !info.Enabled {
		s += " (disabled)"
	}
	return s
}

func runStateValidate(_ context.Context, stdout io.Writer, c *cmdctx.Context, file string) error {
	report, err := inspectState(statePathOr(c, file))
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	if c.JSON {
		if err := output.JSON(stdout, report); err != nil {
			return err
		}
	} else {
		printStateReport(stdout, c.Quiet, report)
	}

	if !report.Valid {
		return fmt.Errorf("state file %s is invalid: %d problem(s)", report.Path, len(report.Problems))
	}
	return nil
}

func printStateReport(w io.Writer, quiet bool, report *StateReport) {
	if !report.Exists {
		output.Printf(w, quiet, "No state file at %s\n", report.Path)
		return
	}
	if !report.Valid {
		_, _ = fmt.Fprintf(w, "✗ %s is invalid\n", report.Path)
		for _, p := range report.Problems {
			_, _ = fmt.Fprintf(w, "  - %s\n", p)
		}
		return
	}
	output.Printf(w, quiet, "✓ %s is valid (schema %s)\n", report.Path, report.SchemaVersion)
	if report.NeedsMigrate {
		output.Printf(w, quiet, "  needs migration to schema %s\n", model.CurrentSchemaVersion)
	}
	for _, n := range report.Notes {
		output.Printf(w, quiet, "  - %s\n", n)
	}
}

func runStateMigrate(ctx context.Context, stdout io.Writer, c *cmdctx.Context, file string, write bool) error {
	path := statePathOr(c, file)
	report, err := inspectState(path)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	if !report.Valid {
		return output.Error(stdout, c.JSON,
			fmt.Errorf("state file %s is invalid: %d problem(s)", path, len(report.Problems)))
	}

	if write && report.NeedsMigrate {
		target := *c
		target.StatePath = path
		if _, err := target.OpenStore(ctx); err != nil {
			return output.Error(stdout, c.JSON, fmt.Errorf("failed to migrate state: %w", err))
		}
		report.Written = true
	}

	if c.JSON {
		return output.JSON(stdout, struct {
			*StateReport
			State *model.State `json:"state"`
		}{report, report.state})
	}

	if !report.NeedsMigrate {
		output.Printf(stdout, c.Quiet, "%s is already at schema %s\n", path, model.CurrentSchemaVersion)
		return nil
	}

	for _, n := range report.Notes {
		output.Printf(stdout, c.Quiet, "note: %s\n", n)
	}
	if report.Written {
		output.Printf(stdout, c.Quiet, "✓ migrated %s from schema %s to %s (backup: %s.bkp)\n",
			path, report.SchemaVersion, model.CurrentSchemaVersion, path)
		return nil
	}

	data, err := model.MarshalState(report.state)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "%s\n", data)
	return nil
}
