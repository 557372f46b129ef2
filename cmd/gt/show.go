package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <id|university>",
	GroupID: "apps",
	Short:   "Show one application in detail",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		return withStore(cmd.Context(), func(st *store.Store) error {
			app, err := resolve(st.Applications(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(app)
			}
			fmt.Print(ui.ApplicationDetail(app, time.Now()))
			return nil
		})
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
}
