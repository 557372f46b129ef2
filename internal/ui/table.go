package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gradtrack/gradtrack/internal/types"
)

// Table renders static rows in aligned columns.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers, Rows: make([][]string, 0)}
}

// AddRow adds a row. Cells may already be styled.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// String renders the table, or "" when it has no rows.
func (t *Table) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var sb strings.Builder
	for i, h := range t.Headers {
		sb.WriteString(pad(HeaderStyle.Render(h), widths[i], i == len(t.Headers)-1))
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(pad(cell, widths[i], i == len(t.Headers)-1))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pad(cell string, width int, last bool) string {
	if last {
		return cell
	}
	return cell + strings.Repeat(" ", width-lipgloss.Width(cell)+2)
}

// ApplicationTable renders the list view.
func ApplicationTable(apps []types.Application, now time.Time) string {
	t := NewTable("ID", "", "University", "Program", "Type", "Status", "Deadline", "Docs")
	for _, app := range apps {
		pin := ""
		if app.IsPinned {
			pin = RenderAccent("*")
		}
		submitted, required := app.Documents.Progress()
		t.AddRow(
			ShortID(app.ID),
			pin,
			Truncate(app.UniversityName, 32),
			Truncate(app.ProgramName, 28),
			string(app.ProgramType),
			RenderStatus(app.Status),
			DeadlineLabel(app.Deadline, now),
			fmt.Sprintf("%d/%d", submitted, required),
		)
	}
	return t.String()
}

// ShortID returns the tail of id, which is the part that varies between
// time-ordered IDs created close together.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// Truncate shortens s to at most n display cells, marking the cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 2 {
		return s
	}
	return string(r[:n-1]) + "…"
}

// DeadlineLabel renders a YYYY-MM-DD deadline with its distance from now,
// colored by urgency.
func DeadlineLabel(deadline *string, now time.Time) string {
	if deadline == nil || *deadline == "" {
		return RenderMuted("-")
	}
	d, err := time.ParseInLocation(types.DateLayout, *deadline, now.Location())
	if err != nil {
		return *deadline
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := int(d.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		return RenderMuted(fmt.Sprintf("%s (passed)", *deadline))
	case days == 0:
		return RenderFail(fmt.Sprintf("%s (today)", *deadline))
	case days <= 14:
		return RenderWarn(fmt.Sprintf("%s (%dd)", *deadline, days))
	default:
		return fmt.Sprintf("%s (%dd)", *deadline, days)
	}
}
