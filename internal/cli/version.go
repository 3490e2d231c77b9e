package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/model"
)

// VersionInfo contains version information for the application
type VersionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Date          string `json:"date"`
	BuiltBy       string `json:"built_by"`
	SchemaVersion string `json:"schema_version"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date, builtBy string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information including build commit, date and the state schema version written.",
		Example: `  # Display version information
  ytinu version

  # Output in JSON format
  ytinu version --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), version, commit, date, builtBy)
		},
	}

	return cmd
}

// printVersion prints version information in the appropriate format
func printVersion(w io.Writer, version, commit, date, builtBy string) error {
	info := VersionInfo{
		Version:       version,
		Commit:        commit,
		Date:          date,
		BuiltBy:       builtBy,
		SchemaVersion: model.CurrentSchemaVersion,
	}

	if IsJSONOutput() {
		return output.JSON(w, info)
	}

	return printVersionText(w, info)
}

// printVersionText prints version information in human-readable format
func printVersionText(w io.Writer, info VersionInfo) error {
	if _, err := fmt.Fprintf(w, "ytinu version %s\n", info.Version); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Commit: %s\n", info.Commit); err != nil {
		return fmt.Errorf("write commit: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built: %s\n", info.Date); err != nil {
		return fmt.Errorf("write date: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Built by: %s\n", info.BuiltBy); err != nil {
		return fmt.Errorf("write built by: %w", err)
	}
	if _, err := fmt.Fprintf(w, "State schema: %s\n", info.SchemaVersion); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}

	return nil
}
