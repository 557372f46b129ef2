package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtrack/gradtrack/internal/types"
)

func sample() []types.Application {
	mk := func(id, uni string, status types.Status, deadline string, pinned bool, tags ...string) types.Application {
		app := types.NewApplication(uni, types.ProgramPhD)
		app.ID = id
		app.Status = status
		app.Deadline = types.Date(deadline)
		app.IsPinned = pinned
		app.Tags = tags
		return app
	}
	return []types.Application{
		mk("1", "Stanford", types.StatusSubmitted, "2026-12-01", false, "reach"),
		mk("2", "CMU", types.StatusNotStarted, "", false),
		mk("3", "MIT", types.StatusInterview, "2026-11-15", true, "reach", "ml"),
		mk("4", "ETH Zurich", types.StatusSubmitted, "2026-12-15", false, "ML"),
	}
}

func ids(apps []types.Application) []string {
	out := make([]string, len(apps))
	for i, app := range apps {
		out[i] = app.ID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"default keeps stored order with pinned first", Options{}, []string{"3", "1", "2", "4"}},
		{"unpinned", Options{Unpinned: true}, []string{"1", "2", "3", "4"}},
		{"status filter", Options{Statuses: []types.Status{types.StatusSubmitted}}, []string{"1", "4"}},
		{"tags are case-insensitive and all required", Options{Tags: []string{"ml"}}, []string{"3", "4"}},
		{"tags combined", Options{Tags: []string{"reach", "ml"}}, []string{"3"}},
		{"pinned only", Options{PinnedOnly: true}, []string{"3"}},
		{"search", Options{Search: "zur"}, []string{"4"}},
		{"deadline with missing last", Options{Sort: SortDeadline, Unpinned: true}, []string{"3", "1", "4", "2"}},
		{"university", Options{Sort: SortUniversity, Unpinned: true}, []string{"2", "4", "3", "1"}},
		{"status rank is stable", Options{Sort: SortStatus, Unpinned: true}, []string{"2", "1", "4", "3"}},
		{"reverse", Options{Sort: SortUniversity, Reverse: true, Unpinned: true}, []string{"1", "3", "4", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(sample(), tt.opts)))
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	apps := sample()
	_ = Apply(apps, Options{Sort: SortUniversity})
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(apps))
}

func TestSearch_FacultyContacts(t *testing.T) {
	apps := sample()
	apps[1].FacultyContacts = []types.FacultyContact{{Name: "Dr. Black", ResearchArea: "Robotics"}}
	assert.Equal(t, []string{"2"}, ids(Apply(apps, Options{Search: "robot"})))
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortStored, k)

	k, err = ParseSortKey("Deadline")
	require.NoError(t, err)
	assert.Equal(t, SortDeadline, k)

	_, err = ParseSortKey("fee")
	assert.Error(t, err)
}
