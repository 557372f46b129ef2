package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var contactCmd = &cobra.Command{
	Use:     "contact",
	GroupID: "apps",
	Short:   "Manage faculty contacts",
}

var contactAddCmd = &cobra.Command{
	Use:   "add <university>",
	Short: "Record a faculty contact at a university",
	Long: `Record a faculty contact at a university.

The contact is attached to the first application whose university name
matches exactly. With --create a new application is started for the
university instead, holding only this contact.

Examples:
  gt contact add "MIT" --name "Dr. Smith" --email smith@mit.edu --area robotics
  gt contact add "Aperture Science" --name "Dr. Kleiner" --create`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("--name is required")
		}
		contact := types.FacultyContact{Name: strings.TrimSpace(name)}
		contact.Email, _ = cmd.Flags().GetString("email")
		contact.Title, _ = cmd.Flags().GetString("title")
		contact.ResearchArea, _ = cmd.Flags().GetString("area")
		contact.Notes, _ = cmd.Flags().GetString("notes")
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			status, ok := types.ParseContactStatus(s)
			if !ok {
				return fmt.Errorf("unknown contact status %q", s)
			}
			contact.Status = status
		}
		create, _ := cmd.Flags().GetBool("create")

		return withStore(cmd.Context(), func(st *store.Store) error {
			app, err := st.AddFacultyContact(contact, args[0], create)
			var notFound *store.UniversityNotFoundError
			if errors.As(err, &notFound) {
				return fmt.Errorf("%w\n  rerun with --create to start an application for it", err)
			}
			if err != nil {
				return err
			}
			fmt.Printf("%s Added %s to %s\n", ui.RenderPass("✓"), ui.RenderBold(contact.Name), app.Label())
			return nil
		})
	},
}

func init() {
	contactAddCmd.Flags().String("name", "", "Contact name (required)")
	contactAddCmd.Flags().String("email", "", "Email address")
	contactAddCmd.Flags().String("title", "", "Title, e.g. Associate Professor")
	contactAddCmd.Flags().String("area", "", "Research area")
	contactAddCmd.Flags().String("status", "", "Contact status (default Not Contacted)")
	contactAddCmd.Flags().String("notes", "", "Notes")
	contactAddCmd.Flags().Bool("create", false, "Start a new application when the university has none")
	contactCmd.AddCommand(contactAddCmd)
	rootCmd.AddCommand(contactCmd)
}
