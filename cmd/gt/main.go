// Command gt tracks graduate school applications from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/config"
	"github.com/gradtrack/gradtrack/internal/logging"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var (
	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "gt",
	Short: "gradtrack - graduate application tracker",
	Long: `gradtrack keeps every graduate school application, its deadlines,
documents, recommenders and faculty contacts in one local file.

Data lives in a single JSON file (or an SQLite database) that is upgraded
in place when gradtrack's format changes. A backup of the old file is kept
before every upgrade.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.DisableColor()
		}

		var err error
		if cmd == configInitCmd {
			// init must work before a valid config file exists.
			cfg = config.Default()
		} else if cfg, err = config.Load(configPath); err != nil {
			return err
		}

		logCfg := &logging.Config{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			Console:    true,
		}
		if verbose {
			logCfg.Level = "debug"
		}
		logger, err = logging.New(logCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/gradtrack/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "apps", Title: "Applications:"},
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "advanced", Title: "Advanced:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errAborted) {
			fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		}
		os.Exit(1)
	}
}
