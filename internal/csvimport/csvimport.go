// Package csvimport reads spreadsheets exported from other trackers.
//
// Import is best effort: columns are matched by substrings of their header
// ("Application Status" and "status" both land in Status) and values that do
// not parse are dropped with a warning. Nothing here round-trips; the JSON
// backup format is the lossless path.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gradtrack/gradtrack/internal/types"
)

type field int

const (
	fieldNone field = iota
	fieldUniversity
	fieldProgram
	fieldDepartment
	fieldLocation
	fieldProgramType
	fieldStatus
	fieldDecisionDeadline
	fieldPreferredDeadline
	fieldDeadline
	fieldFee
	fieldWebsite
	fieldTags
	fieldPinned
	fieldNotes
)

// matchers are checked in order, so more specific headers come first.
var matchers = []struct {
	field    field
	contains []string
}{
	{fieldDecisionDeadline, []string{"decision"}},
	{fieldPreferredDeadline, []string{"preferred", "priority"}},
	{fieldDeadline, []string{"deadline", "due"}},
	{fieldProgramType, []string{"type", "degree"}},
	{fieldUniversity, []string{"university", "school", "institution", "college"}},
	{fieldDepartment, []string{"department", "dept", "faculty"}},
	{fieldProgram, []string{"program", "course", "major"}},
	{fieldLocation, []string{"location", "city", "country"}},
	{fieldStatus, []string{"status", "stage"}},
	{fieldFee, []string{"fee", "cost"}},
	{fieldWebsite, []string{"website", "url", "link"}},
	{fieldTags, []string{"tag", "label"}},
	{fieldPinned, []string{"pin", "favorite", "starred"}},
	{fieldNotes, []string{"note", "comment"}},
}

var dateLayouts = []string{
	types.DateLayout,
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Options configures an import.
type Options struct {
	ProgramType types.ProgramType // used when the sheet has no type column
}

// Result is what an import produced.
type Result struct {
	Applications []types.Application
	Columns      map[string]string // header -> field it was mapped to
	Ignored      []string          // headers that matched nothing
	Skipped      int               // rows without a university
	Warnings     []string
}

// Read parses r. The first record is the header row.
func Read(r io.Reader, opts Options) (*Result, error) {
	if opts.ProgramType == "" {
		opts.ProgramType = types.ProgramPhD
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	result := &Result{Columns: make(map[string]string)}
	fields := make([]field, len(header))
	seen := make(map[field]bool)
	for i, h := range header {
		f := classify(h)
		if f == fieldNone || seen[f] {
			result.Ignored = append(result.Ignored, h)
			continue
		}
		seen[f] = true
		fields[i] = f
		result.Columns[h] = f.String()
	}
	if !seen[fieldUniversity] {
		return nil, fmt.Errorf("no university column in header %q", header)
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		app := types.NewApplication("", opts.ProgramType)
		for i, value := range record {
			if i >= len(fields) {
				break
			}
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if warn := assign(&app, fields[i], value); warn != "" {
				result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: %s", line, warn))
			}
		}

		if app.UniversityName == "" {
			result.Skipped++
			continue
		}
		result.Applications = append(result.Applications, app)
	}
	return result, nil
}

func classify(header string) field {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, m := range matchers {
		for _, sub := range m.contains {
			if strings.Contains(h, sub) {
				return m.field
			}
		}
	}
	return fieldNone
}

// assign sets one field and returns a warning when the value was dropped.
func assign(app *types.Application, f field, value string) string {
	switch f {
	case fieldUniversity:
		app.UniversityName = value
	case fieldProgram:
		app.ProgramName = value
	case fieldDepartment:
		app.Department = value
	case fieldLocation:
		app.Location = value
	case fieldWebsite:
		app.Website = value
	case fieldNotes:
		app.Notes = value
	case fieldProgramType:
		pt, ok := types.ParseProgramType(value)
		if !ok {
			pt = types.ProgramOther
		}
		app.ProgramType = pt
	case fieldStatus:
		status, ok := types.ParseStatus(value)
		if !ok {
			return fmt.Sprintf("unknown status %q, keeping %q", value, app.Status)
		}
		app.Status = status
	case fieldDeadline, fieldPreferredDeadline, fieldDecisionDeadline:
		date, ok := parseDate(value)
		if !ok {
			return fmt.Sprintf("unrecognized date %q", value)
		}
		switch f {
		case fieldDeadline:
			app.Deadline = &date
		case fieldPreferredDeadline:
			app.PreferredDeadline = &date
		default:
			app.DecisionDeadline = &date
		}
	case fieldFee:
		fee, err := strconv.ParseFloat(strings.TrimLeft(strings.ReplaceAll(value, ",", ""), "$€£ "), 64)
		if err != nil {
			return fmt.Sprintf("unrecognized fee %q", value)
		}
		app.ApplicationFee = fee
	case fieldTags:
		for _, tag := range strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == ',' || r == '|' }) {
			if tag = strings.TrimSpace(tag); tag != "" {
				app.Tags = append(app.Tags, tag)
			}
		}
	case fieldPinned:
		switch strings.ToLower(value) {
		case "1", "y", "yes", "true", "x", "*":
			app.IsPinned = true
		}
	}
	return ""
}

func parseDate(value string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(types.DateLayout), true
		}
	}
	return "", false
}

func (f field) String() string {
	switch f {
	case fieldUniversity:
		return "universityName"
	case fieldProgram:
		return "programName"
	case fieldDepartment:
		return "department"
	case fieldLocation:
		return "location"
	case fieldProgramType:
		return "programType"
	case fieldStatus:
		return "status"
	case fieldDecisionDeadline:
		return "decisionDeadline"
	case fieldPreferredDeadline:
		return "preferredDeadline"
	case fieldDeadline:
		return "deadline"
	case fieldFee:
		return "applicationFee"
	case fieldWebsite:
		return "website"
	case fieldTags:
		return "tags"
	case fieldPinned:
		return "isPinned"
	case fieldNotes:
		return "notes"
	default:
		return ""
	}
}
