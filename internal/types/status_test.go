package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContactStatus(t *testing.T) {
	tests := []struct {
		input  string
		want   ContactStatus
		wantOK bool
	}{
		{input: "Not Contacted", want: ContactNotContacted, wantOK: true},
		{input: "meeting-scheduled", want: ContactMeetingScheduled, wantOK: true},
		{input: "NO_RESPONSE", want: ContactNoResponse, wantOK: true},
		{input: "bogus", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseContactStatus(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, ContactReplied.IsValid())
	assert.False(t, ContactStatus("bogus").IsValid())
}

func TestClone_CopiesNestedDates(t *testing.T) {
	app := NewApplication("MIT", ProgramPhD)
	app.FacultyContacts = []FacultyContact{{LastContacted: Date("2026-09-01")}}
	app.Recommenders = []Recommender{{DueDate: Date("2026-11-01")}}
	app.Scholarships = []Scholarship{{Deadline: Date("2026-10-20")}}

	c := app.Clone()
	assert.Equal(t, app, c)
	assert.NotSame(t, app.FacultyContacts[0].LastContacted, c.FacultyContacts[0].LastContacted)
	assert.NotSame(t, app.Recommenders[0].DueDate, c.Recommenders[0].DueDate)
	assert.NotSame(t, app.Scholarships[0].Deadline, c.Scholarships[0].Deadline)
}
