package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtrack/gradtrack/internal/migrate"
	"github.com/gradtrack/gradtrack/internal/types"
)

// setupConfig writes a config pointing the file backend into a temp dir.
func setupConfig(t *testing.T) (configFile, dataFile string) {
	t.Helper()
	dir := t.TempDir()
	dataFile = filepath.Join(dir, "applications.json")
	configFile = filepath.Join(dir, "config.toml")
	body := "[data]\nbackend = \"file\"\npath = \"" + filepath.ToSlash(dataFile) + "\"\ndebounce = \"10ms\"\n"
	require.NoError(t, os.WriteFile(configFile, []byte(body), 0o600))
	return configFile, dataFile
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func readData(t *testing.T, path string) *types.DataSchema {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var schema types.DataSchema
	require.NoError(t, json.Unmarshal(raw, &schema))
	return &schema
}

func TestCLI_AddStatusContactDelete(t *testing.T) {
	configFile, dataFile := setupConfig(t)

	require.NoError(t, run(t, "--config", configFile, "--no-color", "add", "MIT", "--program", "EECS", "--deadline", "2026-12-01", "--tag", "reach"))
	schema := readData(t, dataFile)
	assert.Equal(t, migrate.CurrentVersion, schema.Version)
	require.Len(t, schema.Applications, 1)
	assert.Equal(t, "EECS", schema.Applications[0].ProgramName)
	assert.Equal(t, []string{"reach"}, schema.Applications[0].Tags)

	require.NoError(t, run(t, "--config", configFile, "status", "mit", "submitted"))
	schema = readData(t, dataFile)
	assert.Equal(t, types.StatusSubmitted, schema.Applications[0].Status)
	assert.Len(t, schema.Applications[0].StatusHistory, 1)

	err := run(t, "--config", configFile, "contact", "add", "Nonexistent University", "--name", "Dr. Nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nonexistent University")

	err = run(t, "--config", configFile, "contact", "add", "MIT", "--name", "Dr. Smith", "--status", "bogus")
	assert.ErrorContains(t, err, "unknown contact status")

	require.NoError(t, run(t, "--config", configFile, "contact", "add", "MIT", "--name", "Dr. Smith", "--status", "replied"))
	schema = readData(t, dataFile)
	require.Len(t, schema.Applications[0].FacultyContacts, 1)
	assert.Equal(t, types.ContactReplied, schema.Applications[0].FacultyContacts[0].Status)

	require.NoError(t, run(t, "--config", configFile, "delete", "MIT", "--yes"))
	assert.Empty(t, readData(t, dataFile).Applications)
}

func TestCLI_LoadUpgradesLegacyFile(t *testing.T) {
	configFile, dataFile := setupConfig(t)
	require.NoError(t, os.WriteFile(dataFile, []byte(`[{"id":"a","universityName":"CMU"}]`), 0o600))

	require.NoError(t, run(t, "--config", configFile, "migrate"))

	schema := readData(t, dataFile)
	assert.Equal(t, migrate.CurrentVersion, schema.Version)
	require.Len(t, schema.Applications, 1)
	assert.Equal(t, "CMU", schema.Applications[0].UniversityName)

	backups, err := filepath.Glob(dataFile + ".v0.*")
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	configFile, dataFile := setupConfig(t)
	require.NoError(t, os.WriteFile(dataFile, []byte(`[{"id":"a","universityName":"CMU"},{"id":"b","universityName":"ETH"}]`), 0o600))

	out := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, run(t, "--config", configFile, "export", "--output", out))

	otherConfig, otherData := setupConfig(t)
	require.NoError(t, run(t, "--config", otherConfig, "import", out, "--yes"))

	assert.Equal(t, readData(t, dataFile).Applications, readData(t, otherData).Applications)
}

func TestResolve(t *testing.T) {
	mk := func(id, uni string) types.Application {
		app := types.NewApplication(uni, types.ProgramPhD)
		app.ID = id
		return app
	}
	apps := []types.Application{mk("0192-aaaa", "MIT"), mk("0192-bbbb", "Stanford"), mk("0192-cccc", "Stanford")}

	app, err := resolve(apps, "0192-aaaa")
	require.NoError(t, err)
	assert.Equal(t, "MIT", app.UniversityName)

	app, err = resolve(apps, "bbbb")
	require.NoError(t, err)
	assert.Equal(t, "0192-bbbb", app.ID)

	app, err = resolve(apps, "mit")
	require.NoError(t, err)
	assert.Equal(t, "0192-aaaa", app.ID)

	_, err = resolve(apps, "stanford")
	assert.ErrorContains(t, err, "matches 2 applications")

	_, err = resolve(apps, "Harvard")
	assert.Error(t, err)
}

func TestAddInput_Application(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	in := addInput{
		University:  " ETH Zurich ",
		ProgramType: "masters",
		Status:      "in-progress",
		Deadline:    "tomorrow",
		Fee:         "150",
		Tags:        "europe, , robotics",
	}

	app, err := in.application(now)
	require.NoError(t, err)
	assert.Equal(t, "ETH Zurich", app.UniversityName)
	assert.Equal(t, "N/A", app.ProgramName)
	assert.Equal(t, types.ProgramMasters, app.ProgramType)
	assert.Equal(t, types.StatusInProgress, app.Status)
	require.NotNil(t, app.Deadline)
	assert.Equal(t, "2026-10-02", *app.Deadline)
	assert.Equal(t, 150.0, app.ApplicationFee)
	assert.Equal(t, []string{"europe", "robotics"}, app.Tags)

	in.ProgramType = "JD"
	_, err = in.application(now)
	assert.Error(t, err)
}
