package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/csvimport"
	"github.com/gradtrack/gradtrack/internal/migrate"
	"github.com/gradtrack/gradtrack/internal/storage"
	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var importCmd = &cobra.Command{
	Use:     "import <backup.json>",
	GroupID: "data",
	Short:   "Replace all applications with a JSON backup",
	Long: `Replace all applications with the contents of a JSON backup.

Any version of the backup format is accepted, including a bare array of
applications, and upgraded on the way in. This replaces everything; the
current data is backed up first when the backend supports it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// #nosec G304 - path comes from the command line
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read backup: %w", err)
		}
		data := migrate.ParseBlob(raw)
		if data == nil {
			return fmt.Errorf("%s is not valid JSON", args[0])
		}
		version := migrate.DetectVersion(data)
		schema := migrate.MigrateData(data)
		yes, _ := cmd.Flags().GetBool("yes")

		sess, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := sess.Close(); err != nil {
				logger.Error("failed to save imported applications", zap.Error(err))
			}
		}()

		current := len(sess.store.Applications())
		if !yes && current > 0 {
			ok, err := confirm(fmt.Sprintf("Replace %d applications with %d from %s?", current, len(schema.Applications), args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}

		if current > 0 {
			backupBeforeReplace(cmd, sess)
		}
		if err := sess.store.Import(schema.Applications); err != nil {
			return err
		}
		fmt.Printf("%s Imported %d applications (format v%d)\n", ui.RenderPass("✓"), len(schema.Applications), version)
		return nil
	},
}

var importCSVCmd = &cobra.Command{
	Use:     "import-csv <sheet.csv>",
	GroupID: "data",
	Short:   "Add applications from a spreadsheet export",
	Long: `Add applications from a CSV file, matching columns by their headers.

Matching is best effort: a header containing "status" fills the status, one
containing "deadline" fills the deadline, and so on. Unrecognized columns are
listed and skipped. Use --dry-run to see the mapping first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// #nosec G304 - path comes from the command line
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open csv: %w", err)
		}
		defer f.Close()

		result, err := csvimport.Read(f, csvimport.Options{ProgramType: cfg.ProgramType()})
		if err != nil {
			return err
		}

		for _, header := range slices.Sorted(maps.Keys(result.Columns)) {
			fmt.Printf("  %-24s -> %s\n", header, result.Columns[header])
		}
		for _, header := range result.Ignored {
			fmt.Printf("  %-24s %s\n", header, ui.RenderMuted("(ignored)"))
		}
		for _, warning := range result.Warnings {
			fmt.Printf("%s %s\n", ui.RenderWarn("!"), warning)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			fmt.Printf("\n%d applications would be added (%d rows skipped)\n", len(result.Applications), result.Skipped)
			return nil
		}

		return withStore(cmd.Context(), func(st *store.Store) error {
			for _, app := range result.Applications {
				if _, err := st.Add(app); err != nil {
					return fmt.Errorf("failed to add %s: %w", app.Label(), err)
				}
			}
			fmt.Printf("\n%s Added %d applications (%d rows skipped)\n", ui.RenderPass("✓"), len(result.Applications), result.Skipped)
			return nil
		})
	},
}

// backupBeforeReplace snapshots stored data ahead of a destructive import.
func backupBeforeReplace(cmd *cobra.Command, sess *session) {
	b, ok := sess.backend.(storage.Backuper)
	if !ok {
		return
	}
	where, err := b.Backup(cmd.Context(), "import")
	if err != nil {
		logger.Warn("failed to back up before import", zap.Error(err))
		return
	}
	if where != "" {
		fmt.Printf("%s Previous data saved to %s\n", ui.RenderMuted("i"), where)
	}
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	importCSVCmd.Flags().Bool("dry-run", false, "Show the column mapping without adding anything")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importCSVCmd)
}
