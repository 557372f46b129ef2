package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtrack/gradtrack/internal/types"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Data.Backend)
	assert.Equal(t, 8484, cfg.Dashboard.Port)
	assert.Empty(t, cfg.Source)

	d, err := cfg.DebounceInterval()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)
	assert.Equal(t, types.ProgramPhD, cfg.ProgramType())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[data]
backend = "sqlite"
path = "/tmp/gt.db"
debounce = "2s"

[defaults]
program_type = "masters"
`), 0o600))
	t.Setenv("GRADTRACK_DASHBOARD_PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Data.Backend)
	assert.Equal(t, 9000, cfg.Dashboard.Port)
	assert.Equal(t, types.ProgramMasters, cfg.ProgramType())
	assert.Equal(t, path, cfg.Source)

	dataPath, err := cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/gt.db", dataPath)
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Data.Backend = "s3" }},
		{"debounce", func(c *Config) { c.Data.Debounce = "soon" }},
		{"negative debounce", func(c *Config) { c.Data.Debounce = "-1s" }},
		{"program type", func(c *Config) { c.Defaults.ProgramType = "JD" }},
		{"port", func(c *Config) { c.Dashboard.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestDataPath_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg := Default()
	path, err := cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gradtrack", "applications.json"), path)

	cfg.Data.Backend = BackendSQLite
	path, err = cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gradtrack", "gradtrack.db"), path)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Data.Debounce = "750ms"

	require.NoError(t, Write(path, cfg, false))
	assert.Error(t, Write(path, cfg, false), "refuses to overwrite")
	require.NoError(t, Write(path, cfg, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "750ms", loaded.Data.Debounce)
	assert.Equal(t, cfg.Log, loaded.Log)
}
