package cli

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/steviee/ytinu/internal/cli/cmdctx"
	"github.com/steviee/ytinu/internal/cli/config"
	"github.com/steviee/ytinu/internal/cli/games"
	"github.com/steviee/ytinu/internal/cli/loader"
	"github.com/steviee/ytinu/internal/cli/mods"
	"github.com/steviee/ytinu/internal/logger"
	"github.com/steviee/ytinu/internal/state"
)

// EnvPrefix prefixes every environment override, e.g. YTINU_CATALOG_URL.
const EnvPrefix = "YTINU"

var (
	// Global flags
	cfgFile   string
	statePath string
	jsonOut   bool
	quiet     bool
	verbose   bool

	// flushes the logger installed by the last invocation
	closeLogger func()
)

// NewRootCommand creates and returns the root cobra command
func NewRootCommand(version, commit, date, builtBy string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ytinu",
		Short: "Inspect and maintain the state of the ytinu mod manager",
		Long: `ytinu manages the persisted state of the ytinu BepInEx mod manager.

It provides a simple interface for:
  - Validating and migrating the state file (data.json)
  - Fetching and validating the mod catalog
  - Reconciling installed mods against the catalog
  - Setting up games and toggling installed mods
  - Reviewing the history of changes

Nothing is downloaded or extracted; only the state file is changed.`,
		Example: `  # Check the state file
  ytinu state validate

  # Compare installed mods with the catalog
  ytinu reconcile

  # Set up a game and select it
  ytinu games add valheim /games/valheim

  # Disable a mod of the selected game
  ytinu mods disable valheim-plus

  # Open the dashboard
  ytinu dashboard`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}

			if err := initLogger(cfg); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			path, err := resolveStatePath(cmd)
			if err != nil {
				return err
			}

			c := &cmdctx.Context{
				Config:     cfg,
				ConfigPath: cfgFile,
				StatePath:  path,
				JSON:       jsonOut,
				Quiet:      quiet,
				AppVersion: version,
			}
			// keep a runtime injected by the caller (tests)
			if prev := cmdctx.FromCommand(cmd); prev != nil && prev.Fetcher != nil {
				c.Fetcher = prev.Fetcher
			}
			cmd.SetContext(cmdctx.With(cmd.Context(), c))

			zap.S().Debugw("Runtime resolved",
				zap.String("state", path),
				zap.String("catalog", cfg.Catalog.URL))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeLogger != nil {
				closeLogger()
				closeLogger = nil
			}
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/ytinu/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "state file (default: ~/.config/ytinu/data.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	// Mark json and quiet as mutually exclusive
	rootCmd.MarkFlagsMutuallyExclusive("json", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(NewVersionCommand(version, commit, date, builtBy))
	rootCmd.AddCommand(NewStateCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewReconcileCommand())
	rootCmd.AddCommand(config.NewCommand())
	rootCmd.AddCommand(games.NewCommand())
	rootCmd.AddCommand(mods.NewCommand())
	rootCmd.AddCommand(loader.NewCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewDashboardCommand())

	return rootCmd
}

// newViper returns a viper instance reading YTINU_* variables, with the
// state flag bound.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if f := cmd.Flags().Lookup("state"); f != nil {
		if err := v.BindPFlag("state", f); err != nil {
			return nil, fmt.Errorf("bind state flag: %w", err)
		}
	}
	return v, nil
}

// initConfig loads the config file and applies environment overrides on top
// of it. Only non-empty overrides replace file values.
func initConfig(cmd *cobra.Command) (*state.Config, error) {
	cfg, err := state.LoadConfig(cmd.Context(), cfgFile)
	if err != nil {
		return nil, err
	}

	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}

	overrides := state.Config{
		Catalog: state.CatalogConfig{
			URL:         v.GetString("catalog.url"),
			GameModsURL: v.GetString("catalog.game_mods_url"),
			Timeout:     v.GetDuration("catalog.timeout"),
			MaxSize:     v.GetString("catalog.max_size"),
		},
		Mods: state.ModsConfig{
			ShowDevMods: v.GetBool("mods.show_dev_mods"),
		},
		History: state.HistoryConfig{
			Path: v.GetString("history.path"),
		},
		Backups: state.BackupsConfig{
			Dir:  v.GetString("backups.dir"),
			Keep: v.GetInt("backups.keep"),
		},
		Logging: state.LoggingConfig{
			Level: v.GetString("logging.level"),
			File:  v.GetString("logging.file"),
		},
	}
	if err := mergo.Merge(cfg, overrides, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("apply overrides: %w", err)
	}

	// an explicit "false" disables history
	if v.IsSet("history.enabled") {
		cfg.History.Enabled = v.GetBool("history.enabled")
	}

	if err := state.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger installs the global zap logger based on flags and config
func initLogger(cfg *state.Config) error {
	if closeLogger != nil {
		closeLogger()
		closeLogger = nil
	}
	done, err := logger.Init(logger.Options{
		Level: logger.LevelFromFlags(quiet, verbose, cfg.Logging.Level),
		JSON:  jsonOut,
		File:  cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	closeLogger = done
	return nil
}

// resolveStatePath picks the state file: --state, YTINU_STATE, then the
// default location.
func resolveStatePath(cmd *cobra.Command) (string, error) {
	v, err := newViper(cmd)
	if err != nil {
		return "", err
	}
	if p := v.GetString("state"); p != "" {
		return p, nil
	}
	return state.GetStatePath()
}

// IsJSONOutput returns true if JSON output is enabled
func IsJSONOutput() bool {
	return jsonOut
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
