package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/config"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "advanced",
	Short:   "Inspect or create the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := configPath
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		if err := config.Write(path, config.Default(), force); err != nil {
			return err
		}
		fmt.Printf("%s Wrote %s\n", ui.RenderPass("✓"), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Print the effective settings after merging the config file,
GRADTRACK_* environment variables and defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := config.Encode(cfg)
		if err != nil {
			return err
		}
		source := cfg.Source
		if source == "" {
			source = "(none, using defaults)"
		}
		dataPath, err := cfg.DataPath()
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", ui.RenderMuted("# config file:"), source)
		fmt.Printf("%s %s\n\n", ui.RenderMuted("# data:"), dataPath)
		fmt.Print(body)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
