// Package config loads gradtrack settings from a TOML file, GRADTRACK_*
// environment variables and built-in defaults, in increasing order of
// precedence below command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/gradtrack/gradtrack/internal/types"
)

// EnvPrefix prefixes environment overrides, e.g. GRADTRACK_DATA_BACKEND.
const EnvPrefix = "GRADTRACK"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the full settings tree.
type Config struct {
	Data      DataConfig      `mapstructure:"data" toml:"data"`
	Log       LogConfig       `mapstructure:"log" toml:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard" toml:"dashboard"`
	Defaults  DefaultsConfig  `mapstructure:"defaults" toml:"defaults"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-" toml:"-"`
}

// DataConfig selects where applications are stored.
type DataConfig struct {
	Backend  string `mapstructure:"backend" toml:"backend"`
	Path     string `mapstructure:"path" toml:"path"`
	Debounce string `mapstructure:"debounce" toml:"debounce"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level      string `mapstructure:"level" toml:"level"`
	File       string `mapstructure:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`
}

// DashboardConfig configures `gt serve`.
type DashboardConfig struct {
	Port int `mapstructure:"port" toml:"port"`
}

// DefaultsConfig holds values used when creating records.
type DefaultsConfig struct {
	ProgramType string `mapstructure:"program_type" toml:"program_type"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Backend:  BackendFile,
			Debounce: "500ms",
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Dashboard: DashboardConfig{Port: 8484},
		Defaults:  DefaultsConfig{ProgramType: string(types.ProgramPhD)},
	}
}

// Dir returns the directory holding config.toml.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(base, "gradtrack"), nil
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the directory for application data, honoring XDG_DATA_HOME.
func DataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "gradtrack"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "gradtrack"), nil
}

// Load reads settings. An explicit path must exist; the default path may not.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("data.backend", d.Data.Backend)
	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("data.debounce", d.Data.Debounce)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("dashboard.port", d.Dashboard.Port)
	v.SetDefault("defaults.program_type", d.Defaults.ProgramType)
	return v
}

// Validate checks values that would otherwise fail later and obscurely.
func (c *Config) Validate() error {
	switch c.Data.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown data.backend %q: want %s or %s", c.Data.Backend, BackendFile, BackendSQLite)
	}
	if _, err := c.DebounceInterval(); err != nil {
		return err
	}
	if _, ok := types.ParseProgramType(c.Defaults.ProgramType); !ok {
		return fmt.Errorf("unknown defaults.program_type %q", c.Defaults.ProgramType)
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("invalid dashboard.port %d", c.Dashboard.Port)
	}
	return nil
}

// DebounceInterval parses data.debounce.
func (c *Config) DebounceInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Data.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid data.debounce %q: %w", c.Data.Debounce, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid data.debounce %q: must be positive", c.Data.Debounce)
	}
	return d, nil
}

// ProgramType returns defaults.program_type, falling back to PhD.
func (c *Config) ProgramType() types.ProgramType {
	if pt, ok := types.ParseProgramType(c.Defaults.ProgramType); ok {
		return pt
	}
	return types.ProgramPhD
}

// DataPath returns data.path, or the backend's default location under DataDir.
func (c *Config) DataPath() (string, error) {
	if c.Data.Path != "" {
		return c.Data.Path, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if c.Data.Backend == BackendSQLite {
		return filepath.Join(dir, "gradtrack.db"), nil
	}
	return filepath.Join(dir, "applications.json"), nil
}

// Write encodes cfg as TOML at path, creating parent directories. It refuses
// to overwrite an existing file unless force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte("# gradtrack configuration\n\n"+body), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML, for `gt config show`.
func Encode(cfg *Config) (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	return b.String(), nil
}
