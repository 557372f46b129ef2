package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status <id|university> <status>",
	GroupID: "apps",
	Short:   "Change an application's status",
	Long: `Change an application's status. The change is recorded in its history.

Statuses: Not Started, Pursuing, In Progress, Submitted, Interview, Accepted,
Rejected, Waitlisted, Withdrawn, Skipping, Attending. Case, spaces and dashes
are ignored, so "in-progress" works.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, ok := types.ParseStatus(args[1])
		if !ok {
			return fmt.Errorf("unknown status %q", args[1])
		}

		return withStore(cmd.Context(), func(st *store.Store) error {
			app, err := resolve(st.Applications(), args[0])
			if err != nil {
				return err
			}
			if app.Status == status {
				fmt.Printf("%s %s is already %s\n", ui.RenderWarn("!"), app.Label(), ui.RenderStatus(status))
				return nil
			}

			previous := app.Status
			app.Status = status
			if err := st.Update(app); err != nil {
				return err
			}
			fmt.Printf("%s %s: %s -> %s\n", ui.RenderPass("✓"), ui.RenderBold(app.Label()), ui.RenderStatus(previous), ui.RenderStatus(status))
			return nil
		})
	},
}

var pinCmd = &cobra.Command{
	Use:     "pin <id|university>",
	GroupID: "apps",
	Short:   "Pin an application to the top of lists",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPinned(cmd, args[0], true)
	},
}

var unpinCmd = &cobra.Command{
	Use:     "unpin <id|university>",
	GroupID: "apps",
	Short:   "Unpin an application",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPinned(cmd, args[0], false)
	},
}

func setPinned(cmd *cobra.Command, ref string, pinned bool) error {
	return withStore(cmd.Context(), func(st *store.Store) error {
		app, err := resolve(st.Applications(), ref)
		if err != nil {
			return err
		}
		app.IsPinned = pinned
		if err := st.Update(app); err != nil {
			return err
		}
		verb := "Pinned"
		if !pinned {
			verb = "Unpinned"
		}
		fmt.Printf("%s %s %s\n", ui.RenderPass("✓"), verb, ui.RenderBold(app.Label()))
		return nil
	})
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
}
