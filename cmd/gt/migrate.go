package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/migrate"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: "advanced",
	Short:   "Upgrade stored data to the current format",
	Long: `Upgrade the stored document to the current format version.

Every command upgrades old data on load, so this is only needed to inspect
what an upgrade would do (--dry-run) or to rewrite a file ahead of time.
The old document is backed up first unless --no-backup is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		noBackup, _ := cmd.Flags().GetBool("no-backup")
		force, _ := cmd.Flags().GetBool("force")

		backend, release, err := openStorage(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		engine := migrate.New(migrate.WithLogger(logger.Named("migrate")))
		result, err := engine.Upgrade(cmd.Context(), migrate.UpgradeOptions{
			Storage: backend,
			DryRun:  dryRun,
			Backup:  !noBackup,
			Force:   force,
		})
		if err != nil {
			return err
		}

		if result.Corrupt {
			fmt.Printf("%s Stored data is not valid JSON; it will be treated as empty\n", ui.RenderWarn("!"))
		}
		fmt.Printf("  Stored version:  v%d (%d records)\n", result.FromVersion, result.StoredRecords)
		fmt.Printf("  Current version: v%d (%d applications)\n", result.ToVersion, result.Applications)
		if result.BackupCreated != "" {
			fmt.Printf("  Backup:          %s\n", result.BackupCreated)
		}

		switch {
		case result.Written:
			fmt.Printf("%s Upgraded stored data\n", ui.RenderPass("✓"))
		case dryRun && result.FromVersion < result.ToVersion && !result.Corrupt:
			fmt.Printf("%s Dry run: nothing written\n", ui.RenderAccent("i"))
		default:
			fmt.Printf("%s Nothing to do\n", ui.RenderPass("✓"))
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "Report without writing")
	migrateCmd.Flags().Bool("no-backup", false, "Do not keep a copy of the old document")
	migrateCmd.Flags().Bool("force", false, "Rewrite even when already current")
	rootCmd.AddCommand(migrateCmd)
}
