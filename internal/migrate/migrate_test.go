package migrate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtrack/gradtrack/internal/types"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func testEngine(opts ...Option) *Engine {
	return New(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

// decode parses a JSON literal the way storage content is parsed.
func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

const legacyArray = `[
  {"id": "a1", "universityName": "MIT", "programName": "EECS", "status": "Submitted", "deadline": "2026-12-01"},
  {"id": "a2", "universityName": "Stanford", "programName": "CS", "status": "Not Started"},
  {"id": "a3", "universityName": "CMU", "programName": "ML", "status": "Interview", "tags": ["reach"]}
]`

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		data any
		want int
	}{
		{name: "empty array", data: []any{}, want: 0},
		{name: "legacy array", data: decode(t, legacyArray), want: 0},
		{name: "versioned object", data: decode(t, `{"version": 2, "applications": [], "lastUpdated": "x"}`), want: 2},
		{name: "nil", data: nil, want: 0},
		{name: "empty object", data: map[string]any{}, want: 0},
		{name: "string version", data: decode(t, `{"version": "2"}`), want: 0},
		{name: "version out of range is verbatim", data: decode(t, `{"version": 99}`), want: 99},
		{name: "negative version is verbatim", data: decode(t, `{"version": -3}`), want: -3},
		{name: "fractional version is unversioned", data: decode(t, `{"version": 2.5}`), want: 0},
		{name: "version beyond int range is unversioned", data: decode(t, `{"version": 1e30}`), want: 0},
		{name: "scalar", data: 42.0, want: 0},
		{name: "typed schema", data: &types.DataSchema{Version: 3}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectVersion(tt.data))
		})
	}
}

func TestValidateDataSchema(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{name: "valid", data: `{"version": 4, "applications": [], "lastUpdated": "2026-01-01T00:00:00.000Z"}`, want: true},
		{name: "missing lastUpdated", data: `{"version": 4, "applications": []}`, want: false},
		{name: "applications not array", data: `{"version": 4, "applications": {}, "lastUpdated": "x"}`, want: false},
		{name: "version not numeric", data: `{"version": "4", "applications": [], "lastUpdated": "x"}`, want: false},
		{name: "lastUpdated not string", data: `{"version": 4, "applications": [], "lastUpdated": 5}`, want: false},
		{name: "array", data: `[]`, want: false},
		{name: "null", data: `null`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDataSchema(decode(t, tt.data)))
		})
	}
}

func TestMigrate_LegacyArray(t *testing.T) {
	got := testEngine().Migrate(decode(t, legacyArray))

	assert.Equal(t, CurrentVersion, got.Version)
	assert.Equal(t, types.Now(fixedNow), got.LastUpdated)
	require.Len(t, got.Applications, 3)

	for i, app := range got.Applications {
		assert.Equal(t, []string{"a1", "a2", "a3"}[i], app.ID)
		assert.False(t, app.IsPinned)
		assert.NotNil(t, app.StatusHistory)
		assert.Empty(t, app.StatusHistory)
		assert.Nil(t, app.DecisionDeadline)
		assert.NotNil(t, app.FacultyContacts)
		assert.Equal(t, types.DefaultDocuments(), app.Documents)
	}

	assert.Equal(t, types.StatusSubmitted, got.Applications[0].Status)
	require.NotNil(t, got.Applications[0].Deadline)
	assert.Equal(t, "2026-12-01", *got.Applications[0].Deadline)
	assert.Equal(t, []string{"reach"}, got.Applications[2].Tags)
}

func TestMigrate_Idempotent(t *testing.T) {
	inputs := map[string]any{
		"legacy array":   decode(t, legacyArray),
		"nil":            nil,
		"version 2":      decode(t, `{"version": 2, "applications": [{"id": "x", "universityName": "ETH", "isPinned": true, "statusHistory": []}], "lastUpdated": "2020-01-01T00:00:00.000Z"}`),
		"garbage fields": decode(t, `[{"id": "g", "universityName": 7, "tags": "oops", "essays": [{"id": "e", "wordLimit": 1.5}]}]`),
	}

	e := testEngine()
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			once := e.Migrate(input)
			twice := e.Migrate(once)

			assert.Equal(t, once.Version, twice.Version)
			assert.Equal(t, once.Applications, twice.Applications)
		})
	}
}

func TestMigrate_NeverLosesRecords(t *testing.T) {
	inputs := []string{
		legacyArray,
		`[{"id": "a"}, 3, "str", null, {"universityName": "no id"}]`,
		`{"applications": [{"id": "a"}, {"id": "b"}]}`,
		`{"version": 1, "applications": [{"id": "a", "documents": {"cv": true, "lor1": "In Progress"}}], "lastUpdated": "x"}`,
		`{"version": 3, "applications": [{"id": "a", "documents": 5}], "lastUpdated": "x"}`,
		`{"version": 4, "applications": [{"id": "a", "status": 12, "deadline": 3}], "lastUpdated": "x"}`,
	}

	e := testEngine()
	for _, input := range inputs {
		data := decode(t, input)
		got := e.Migrate(data)
		assert.GreaterOrEqual(t, len(got.Applications), CountApplications(data), input)
		for _, app := range got.Applications {
			assert.NotEmpty(t, app.ID, input)
		}
	}
}

func TestMigrate_MalformedInputDegradesToEmpty(t *testing.T) {
	for _, data := range []any{nil, "text", 12.0, true, ParseBlob([]byte("{not json")), ParseBlob(nil)} {
		got := testEngine().Migrate(data)
		assert.Equal(t, CurrentVersion, got.Version)
		assert.NotNil(t, got.Applications)
		assert.Empty(t, got.Applications)
	}
}

func TestMigrate_CurrentDataKeepsLastUpdated(t *testing.T) {
	data := decode(t, `{"version": 4, "applications": [{"id": "a", "universityName": "Oxford"}], "lastUpdated": "2025-05-05T05:05:05.000Z"}`)

	got := testEngine().Migrate(data)

	assert.Equal(t, "2025-05-05T05:05:05.000Z", got.LastUpdated)
	require.Len(t, got.Applications, 1)
	assert.Equal(t, "Oxford", got.Applications[0].UniversityName)
	assert.Equal(t, types.DefaultDocuments(), got.Applications[0].Documents)
}

func TestMigrate_UnregisteredVersionStops(t *testing.T) {
	// 1 -> 2 is missing, so the chain halts after wrapping the array.
	chain := Migrations()
	delete(chain, 1)
	e := testEngine(WithMigrations(chain, CurrentVersion))

	got := e.Migrate(decode(t, legacyArray))

	assert.Equal(t, 1, got.Version)
	assert.Len(t, got.Applications, 3)
}

func TestMigrate_FutureVersionIsKept(t *testing.T) {
	got := testEngine().Migrate(decode(t, `{"version": 9, "applications": [{"id": "z"}], "lastUpdated": "x"}`))

	assert.Equal(t, 9, got.Version)
	require.Len(t, got.Applications, 1)
	assert.Equal(t, "z", got.Applications[0].ID)
}

func TestMigrate_RejectsDroppingStep(t *testing.T) {
	chain := Migrations()
	chain[1] = func(data any, now time.Time) Envelope {
		return Envelope{Version: 2, Applications: []Record{}, LastUpdated: types.Now(now)}
	}
	e := testEngine(WithMigrations(chain, CurrentVersion))

	got := e.Migrate(decode(t, legacyArray))

	assert.Equal(t, 1, got.Version)
	assert.Len(t, got.Applications, 3)
}

func TestMigrate_RejectsVersionSkip(t *testing.T) {
	chain := Migrations()
	chain[0] = func(data any, now time.Time) Envelope {
		env := wrapLegacyArray(data, now)
		env.Version = 3
		return env
	}
	e := testEngine(WithMigrations(chain, CurrentVersion))

	got := e.Migrate(decode(t, legacyArray))

	assert.Equal(t, 0, got.Version)
	assert.Len(t, got.Applications, 3)
}

func TestWrapLegacyArray_AssignsIDs(t *testing.T) {
	env := wrapLegacyArray(decode(t, `[{"universityName": "A"}, {"id": 1700000000000}, {"id": ""}]`), fixedNow)

	require.Len(t, env.Applications, 3)
	assert.NotEmpty(t, env.Applications[0]["id"])
	assert.Equal(t, "1700000000000", env.Applications[1]["id"])
	assert.NotEmpty(t, env.Applications[2]["id"])
}

func TestWrapLegacyArray_DoesNotMutateInput(t *testing.T) {
	input := decode(t, `[{"universityName": "A"}]`)

	wrapLegacyArray(input, fixedNow)

	rec := input.([]any)[0].(map[string]any)
	_, hasID := rec["id"]
	assert.False(t, hasID)
}

func TestNormalizeDocuments(t *testing.T) {
	data := decode(t, `{"version": 3, "applications": [{"id": "a", "documents": {
		"cv": true,
		"transcripts": "In Progress",
		"lor1": {"required": false, "status": "Completed", "submitted": "2026-01-02", "filePath": "/tmp/lor.pdf"},
		"lor2": {}
	}}], "lastUpdated": "x"}`)

	got := testEngine().Migrate(data)
	require.Len(t, got.Applications, 1)
	docs := got.Applications[0].Documents

	assert.Equal(t, types.DocSubmitted, docs.CV.Status)
	assert.True(t, docs.CV.Required)
	assert.Equal(t, types.DocInProgress, docs.Transcripts.Status)
	assert.False(t, docs.LOR1.Required)
	assert.Equal(t, types.DocCompleted, docs.LOR1.Status)
	assert.Equal(t, "/tmp/lor.pdf", docs.LOR1.FilePath)
	require.NotNil(t, docs.LOR1.Submitted)
	assert.Equal(t, "2026-01-02", *docs.LOR1.Submitted)
	assert.True(t, docs.LOR2.Required)
	assert.Equal(t, types.DocNotStarted, docs.LOR2.Status)
	assert.Equal(t, types.DefaultDocument(types.DocWritingSample), docs.WritingSample)
}

func TestDecode_WrongTypesFallBackToDefaults(t *testing.T) {
	data := decode(t, `[{"id": "a", "universityName": "Kyoto", "programName": 5, "isPinned": "yes",
		"tags": ["ok", 3], "facultyContacts": [{"id": "c", "name": "Dr. X"}, "junk"],
		"financialOffer": {"stipend": "lots", "assistantship": "RA"}}]`)

	got := testEngine().Migrate(data)
	require.Len(t, got.Applications, 1)
	app := got.Applications[0]

	assert.Equal(t, "Kyoto", app.UniversityName)
	assert.Empty(t, app.ProgramName)
	assert.False(t, app.IsPinned)
	assert.Equal(t, []string{"ok"}, app.Tags)
	require.Len(t, app.FacultyContacts, 1)
	assert.Equal(t, "Dr. X", app.FacultyContacts[0].Name)
	require.NotNil(t, app.FinancialOffer)
	assert.Zero(t, app.FinancialOffer.Stipend)
	assert.Equal(t, types.AssistantshipRA, app.FinancialOffer.Assistantship)
}

func TestDecode_OversizedIntegerDropsOnlyThatField(t *testing.T) {
	data := decode(t, `{"version": 4, "lastUpdated": "2026-01-01T00:00:00.000Z", "applications": [
		{"id": "a", "universityName": "MIT", "programName": "EECS", "notes": "keep me", "tags": ["reach"],
		 "essays": [{"id": "e1", "prompt": "SOP", "wordLimit": 1e30}],
		 "financialOffer": {"assistantshipHours": -1e30, "stipend": 30000}}]}`)

	got := testEngine().Migrate(data)
	require.Len(t, got.Applications, 1)
	app := got.Applications[0]

	assert.Equal(t, "EECS", app.ProgramName)
	assert.Equal(t, "keep me", app.Notes)
	assert.Equal(t, []string{"reach"}, app.Tags)
	require.Len(t, app.Essays, 1)
	assert.Equal(t, "SOP", app.Essays[0].Prompt)
	assert.Zero(t, app.Essays[0].WordLimit)
	require.NotNil(t, app.FinancialOffer)
	assert.Zero(t, app.FinancialOffer.AssistantshipHours)
	assert.Equal(t, 30000.0, app.FinancialOffer.Stipend)
}

func TestMigrate_FractionalVersionKeepsRecords(t *testing.T) {
	data := decode(t, `{"version": 2.5, "applications": [{"id": "a", "universityName": "MIT", "notes": "n"}], "lastUpdated": "x"}`)

	got := testEngine().Migrate(data)
	assert.Equal(t, CurrentVersion, got.Version)
	require.Len(t, got.Applications, 1)
	assert.Equal(t, "n", got.Applications[0].Notes)
}

func TestWrapInSchema(t *testing.T) {
	e := testEngine()

	got := e.Wrap([]types.Application{{ID: "a"}})
	assert.Equal(t, CurrentVersion, got.Version)
	assert.Equal(t, types.Now(fixedNow), got.LastUpdated)
	assert.Len(t, got.Applications, 1)

	empty := CreateEmptyDataSchema()
	assert.Equal(t, CurrentVersion, empty.Version)
	assert.NotNil(t, empty.Applications)
	assert.Empty(t, empty.Applications)
	_, err := time.Parse(types.TimestampLayout, empty.LastUpdated)
	assert.NoError(t, err)
}

func TestParseBlob(t *testing.T) {
	assert.Nil(t, ParseBlob(nil))
	assert.Nil(t, ParseBlob([]byte("")))
	assert.Nil(t, ParseBlob([]byte("{")))
	assert.Equal(t, []any{}, ParseBlob([]byte("[]")))
}
