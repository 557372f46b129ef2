package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id|university>",
	Aliases: []string{"rm"},
	GroupID: "apps",
	Short:   "Delete an application",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		return withStore(cmd.Context(), func(st *store.Store) error {
			app, err := resolve(st.Applications(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(fmt.Sprintf("Delete %s?", app.Label()))
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}
			if err := st.Delete(app.ID); err != nil {
				return err
			}
			fmt.Printf("%s Deleted %s\n", ui.RenderPass("✓"), ui.RenderBold(app.Label()))
			return nil
		})
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
