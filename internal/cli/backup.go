package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/go-units"
	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/steviee/ytinu/internal/backup"
	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/output"
	"github.com/steviee/ytinu/internal/history"
	"github.com/steviee/ytinu/internal/state"
)

// RestoreOutput holds the output for JSON mode
type RestoreOutput struct {
	Archive string   `json:"archive"`
	State   string   `json:"state"`
	Games   []string `json:"games"`
}

func newStateBackupCommand() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the state, config and history files",
		Long: `Write a tar.gz archive of the state file, the config file and the history
database to backups.dir (default: ~/.config/ytinu/backups). Only the newest
backups.keep archives are kept.

With --list the existing archives are shown instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			if list {
				return runBackupList(cmd.OutOrStdout(), c)
			}
			return runBackup(cmd.Context(), cmd.OutOrStdout(), c)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list existing archives")
	return cmd
}

func newStateRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore the state file from an archive",
		Long: `Restore the state file from an archive written by "ytinu state backup".
<archive> is an archive id from "ytinu state backup --list" or a path.

The archived state is validated first. The replaced state
file is kept as <file>.bkp. The config and history files are not restored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cmdctx.RequireFromCommand(cmd)
			if err != nil {
				return err
			}
			return runRestore(cmd.Context(), cmd.OutOrStdout(), c, args[0])
		},
	}
}

// backupService builds the archive service from the configuration.
func backupService(c *cmdctx.Context) (*backup.Service, error) {
	cfg := c.Config
	if cfg == nil {
		cfg = state.DefaultConfig()
	}
	dir, err := cfg.BackupsDir()
	if err != nil {
		return nil, err
	}
	return backup.NewService(dir, cfg.Backups.Keep), nil
}

func runBackup(ctx context.Context, stdout io.Writer, c *cmdctx.Context) error {
	svc, err := backupService(c)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	files := backup.Files{State: c.StatePath, Config: c.ConfigPath}
	if files.Config == "" {
		if files.Config, err = state.GetConfigPath(); err != nil {
			return output.Error(stdout, c.JSON, err)
		}
	}
	if c.Config != nil && c.Config.History.Enabled {
		if files.History, err = c.Config.HistoryPath(); err != nil {
			return output.Error(stdout, c.JSON, err)
		}
	}

	info, err := svc.Create(ctx, files)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to back up state: %w", err))
	}

	if c.JSON {
		return output.JSON(stdout, info)
	}
	output.Printf(stdout, c.Quiet, "✓ Created %s (%s, %d file(s))\n",
		info.ID, units.HumanSize(float64(info.SizeBytes)), len(info.Files))
	output.Printf(stdout, c.Quiet, "  %s\n", info.Path)
	return nil
}

func runBackupList(stdout io.Writer, c *cmdctx.Context) error {
	svc, err := backupService(c)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}
	infos, err := svc.List()
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	if c.JSON {
		if infos == nil {
			infos = []backup.Info{}
		}
		return output.JSON(stdout, infos)
	}
	if len(infos) == 0 {
		output.Printf(stdout, c.Quiet, "No backups in %s\n", svc.Dir())
		return nil
	}

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, table.Row{
			info.ID,
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			units.HumanSize(float64(info.SizeBytes)),
		})
	}
	output.Table(stdout, table.Row{"ID", "CREATED", "SIZE"}, rows)
	return nil
}

func runRestore(ctx context.Context, stdout io.Writer, c *cmdctx.Context, ref string) error {
	svc, err := backupService(c)
	if err != nil {
		return output.Error(stdout, c.JSON, err)
	}

	archive := svc.Resolve(ref)
	restored, err := svc.Restore(ctx, archive, c.StatePath)
	if err != nil {
		return output.Error(stdout, c.JSON, fmt.Errorf("failed to restore %s: %w", ref, err))
	}

	c.Record(ctx, &history.Event{Kind: history.KindStateRestored, Detail: archive})

	out := RestoreOutput{Archive: archive, State: c.StatePath, Games: restored.GameIDs()}
	if c.JSON {
		return output.JSON(stdout, out)
	}
	output.Printf(stdout, c.Quiet, "✓ Restored %s from %s (%d game(s))\n", out.State, archive, len(out.Games))
	output.Printf(stdout, c.Quiet, "  previous state kept as %s\n", state.BackupPath(out.State))
	return nil
}
