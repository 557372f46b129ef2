package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/gradtrack/gradtrack/internal/dateparse"
	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/ui"
)

// addInput collects the fields `gt add` accepts, from flags or the form.
type addInput struct {
	University  string
	Program     string
	Department  string
	Location    string
	ProgramType string
	Status      string
	Deadline    string
	Fee         string
	Website     string
	Tags        string
	Notes       string
	Pinned      bool
}

var addCmd = &cobra.Command{
	Use:     "add [university]",
	GroupID: "apps",
	Short:   "Add an application",
	Long: `Add an application.

Deadlines accept YYYY-MM-DD or phrases such as "next friday" or "in 3 weeks".

Examples:
  gt add "MIT" --program EECS --deadline 2026-12-01 --tag reach
  gt add --interactive`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := addInputFromFlags(cmd)
		if len(args) == 1 {
			in.University = args[0]
		}

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			if err := runAddForm(&in); err != nil {
				return err
			}
		}
		if strings.TrimSpace(in.University) == "" {
			return fmt.Errorf("university is required (pass it as an argument or use --interactive)")
		}

		app, err := in.application(time.Now())
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), func(st *store.Store) error {
			added, err := st.Add(app)
			if err != nil {
				return err
			}
			fmt.Printf("%s Added %s %s\n", ui.RenderPass("✓"), ui.RenderBold(added.Label()), ui.RenderMuted(ui.ShortID(added.ID)))
			return nil
		})
	},
}

func addInputFromFlags(cmd *cobra.Command) addInput {
	var in addInput
	in.Program, _ = cmd.Flags().GetString("program")
	in.Department, _ = cmd.Flags().GetString("department")
	in.Location, _ = cmd.Flags().GetString("location")
	in.ProgramType, _ = cmd.Flags().GetString("type")
	in.Status, _ = cmd.Flags().GetString("status")
	in.Deadline, _ = cmd.Flags().GetString("deadline")
	in.Website, _ = cmd.Flags().GetString("website")
	in.Notes, _ = cmd.Flags().GetString("notes")
	in.Pinned, _ = cmd.Flags().GetBool("pin")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	in.Tags = strings.Join(tags, ", ")
	if fee, _ := cmd.Flags().GetFloat64("fee"); fee > 0 {
		in.Fee = strconv.FormatFloat(fee, 'f', -1, 64)
	}
	if in.ProgramType == "" {
		in.ProgramType = string(cfg.ProgramType())
	}
	return in
}

// application converts the input into a record, validating enums and dates.
func (in addInput) application(now time.Time) (types.Application, error) {
	pt, ok := types.ParseProgramType(in.ProgramType)
	if !ok {
		return types.Application{}, fmt.Errorf("unknown program type %q", in.ProgramType)
	}

	app := types.NewApplication(strings.TrimSpace(in.University), pt)
	if p := strings.TrimSpace(in.Program); p != "" {
		app.ProgramName = p
	}
	app.Department = strings.TrimSpace(in.Department)
	app.Location = strings.TrimSpace(in.Location)
	app.Website = strings.TrimSpace(in.Website)
	app.Notes = strings.TrimSpace(in.Notes)
	app.IsPinned = in.Pinned

	if in.Status != "" {
		status, ok := types.ParseStatus(in.Status)
		if !ok {
			return types.Application{}, fmt.Errorf("unknown status %q", in.Status)
		}
		app.Status = status
	}

	deadline, err := dateparse.ParsePtr(in.Deadline, now)
	if err != nil {
		return types.Application{}, err
	}
	app.Deadline = deadline

	if f := strings.TrimSpace(in.Fee); f != "" {
		fee, err := strconv.ParseFloat(f, 64)
		if err != nil || fee < 0 {
			return types.Application{}, fmt.Errorf("invalid fee %q", in.Fee)
		}
		app.ApplicationFee = fee
	}

	for _, tag := range strings.Split(in.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			app.Tags = append(app.Tags, tag)
		}
	}
	return app, nil
}

func runAddForm(in *addInput) error {
	if !ui.IsTerminal() {
		return fmt.Errorf("--interactive needs a terminal")
	}

	programTypes := []string{
		string(types.ProgramPhD), string(types.ProgramMasters),
		string(types.ProgramMBA), string(types.ProgramOther),
	}
	statuses := make([]string, len(types.Statuses))
	for i, s := range types.Statuses {
		statuses[i] = string(s)
	}
	if in.Status == "" {
		in.Status = string(types.StatusNotStarted)
	}

	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("required")
		}
		return nil
	}
	validDate := func(s string) error {
		_, err := dateparse.Parse(s, time.Now())
		return err
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("University").Value(&in.University).Validate(required),
			huh.NewInput().Title("Program").Value(&in.Program),
			huh.NewInput().Title("Department").Value(&in.Department),
			huh.NewInput().Title("Location").Value(&in.Location),
			huh.NewSelect[string]().Title("Program type").Options(huh.NewOptions(programTypes...)...).Value(&in.ProgramType),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Status").Options(huh.NewOptions(statuses...)...).Value(&in.Status),
			huh.NewInput().Title("Deadline").Placeholder("YYYY-MM-DD or next friday").Value(&in.Deadline).Validate(validDate),
			huh.NewInput().Title("Application fee").Value(&in.Fee),
			huh.NewInput().Title("Website").Value(&in.Website),
			huh.NewInput().Title("Tags").Placeholder("comma separated").Value(&in.Tags),
			huh.NewText().Title("Notes").Value(&in.Notes),
			huh.NewConfirm().Title("Pin to top?").Value(&in.Pinned),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errAborted
		}
		return fmt.Errorf("form failed: %w", err)
	}
	return nil
}

func init() {
	addCmd.Flags().BoolP("interactive", "i", false, "Fill in the application with a form")
	addCmd.Flags().StringP("program", "p", "", "Program name")
	addCmd.Flags().String("department", "", "Department")
	addCmd.Flags().String("location", "", "Location")
	addCmd.Flags().StringP("type", "t", "", "Program type: PhD, Masters, MBA or Other (default from config)")
	addCmd.Flags().String("status", "", "Initial status")
	addCmd.Flags().StringP("deadline", "d", "", "Deadline")
	addCmd.Flags().Float64("fee", 0, "Application fee")
	addCmd.Flags().String("website", "", "Program website")
	addCmd.Flags().StringSlice("tag", nil, "Tags (repeatable)")
	addCmd.Flags().String("notes", "", "Notes")
	addCmd.Flags().Bool("pin", false, "Pin to the top of lists")
	rootCmd.AddCommand(addCmd)
}
