package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/query"
	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: "apps",
	Short:   "List applications",
	Long: `List applications, pinned first.

Examples:
  gt list
  gt list --status submitted --status interview
  gt list --tag reach --sort deadline
  gt list --search robotics --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := queryOptions(cmd)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")

		return withStore(cmd.Context(), func(st *store.Store) error {
			apps := query.Apply(st.Applications(), opts)

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(apps)
			}

			if len(apps) == 0 {
				fmt.Printf("%s No applications found\n", ui.RenderWarn("!"))
				return nil
			}
			fmt.Print(ui.ApplicationTable(apps, time.Now()))
			fmt.Printf("\n%s\n", ui.RenderMuted(fmt.Sprintf("%d of %d applications", len(apps), len(st.Applications()))))
			return nil
		})
	},
}

func queryOptions(cmd *cobra.Command) (query.Options, error) {
	var opts query.Options

	statuses, _ := cmd.Flags().GetStringSlice("status")
	for _, s := range statuses {
		status, ok := types.ParseStatus(s)
		if !ok {
			return opts, fmt.Errorf("unknown status %q", s)
		}
		opts.Statuses = append(opts.Statuses, status)
	}

	programTypes, _ := cmd.Flags().GetStringSlice("type")
	for _, s := range programTypes {
		pt, ok := types.ParseProgramType(s)
		if !ok {
			return opts, fmt.Errorf("unknown program type %q", s)
		}
		opts.ProgramTypes = append(opts.ProgramTypes, pt)
	}

	sortKey, _ := cmd.Flags().GetString("sort")
	key, err := query.ParseSortKey(sortKey)
	if err != nil {
		return opts, err
	}
	opts.Sort = key

	opts.Tags, _ = cmd.Flags().GetStringSlice("tag")
	opts.PinnedOnly, _ = cmd.Flags().GetBool("pinned")
	opts.Search, _ = cmd.Flags().GetString("search")
	opts.Reverse, _ = cmd.Flags().GetBool("reverse")
	return opts, nil
}

func init() {
	listCmd.Flags().StringSlice("status", nil, "Only these statuses (repeatable)")
	listCmd.Flags().StringSlice("type", nil, "Only these program types (repeatable)")
	listCmd.Flags().StringSlice("tag", nil, "Only applications carrying all these tags")
	listCmd.Flags().Bool("pinned", false, "Only pinned applications")
	listCmd.Flags().StringP("search", "s", "", "Free-text search")
	listCmd.Flags().String("sort", "stored", "Sort by stored, deadline, university or status")
	listCmd.Flags().BoolP("reverse", "r", false, "Reverse the sort")
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
