package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gradtrack/gradtrack/internal/types"
)

var now = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func init() {
	DisableColor()
}

func TestDeadlineLabel(t *testing.T) {
	tests := []struct {
		deadline *string
		want     string
	}{
		{nil, "-"},
		{types.Date("2026-09-30"), "2026-09-30 (passed)"},
		{types.Date("2026-10-01"), "2026-10-01 (today)"},
		{types.Date("2026-10-08"), "2026-10-08 (7d)"},
		{types.Date("2026-12-01"), "2026-12-01 (61d)"},
		{types.Date("rolling"), "rolling"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeadlineLabel(tt.deadline, now))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "MIT", Truncate("MIT", 10))
	assert.Equal(t, "Massachus…", Truncate("Massachusetts Institute", 10))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", ShortID("abc"))
	assert.Equal(t, "89abcdef", ShortID("0192f0c4-0123-7abc-8def-0123456789abcdef"))
}

func TestTable_Alignment(t *testing.T) {
	tbl := NewTable("A", "B")
	assert.Empty(t, tbl.String())

	tbl.AddRow("long value", "x")
	tbl.AddRow("s", "y")
	lines := strings.Split(strings.TrimRight(tbl.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, strings.Index(lines[1], "x"), strings.Index(lines[2], "y"))
}

func TestApplicationTable(t *testing.T) {
	app := types.NewApplication("MIT", types.ProgramPhD)
	app.ID = "app-1"
	app.ProgramName = "EECS"
	app.IsPinned = true
	app.Deadline = types.Date("2026-12-01")

	out := ApplicationTable([]types.Application{app}, now)
	assert.Contains(t, out, "MIT")
	assert.Contains(t, out, "EECS")
	assert.Contains(t, out, "Not Started")
	assert.Contains(t, out, "0/5")
	assert.Contains(t, out, "*")
}

func TestApplicationDetail(t *testing.T) {
	app := types.NewApplication("ETH Zurich", types.ProgramMasters)
	app.ID = "app-2"
	app.StatusHistory = []types.StatusChange{{Status: types.StatusSubmitted, Date: "2026-09-01"}}
	app.FacultyContacts = []types.FacultyContact{{Name: "Prof. Z", Email: "z@ethz.example", Status: types.ContactReplied}}
	app.Notes = "Ask about TA positions"

	out := ApplicationDetail(app, now)
	for _, want := range []string{"ETH Zurich: N/A", "app-2", "statementOfPurpose", "2026-09-01", "Prof. Z", "TA positions"} {
		assert.Contains(t, out, want)
	}
}
