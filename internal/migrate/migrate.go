// Package migrate upgrades persisted tracker data of any vintage to the current schema.
//
// Data is handled in its loosely-typed JSON form (the result of decoding into
// `any`) until the last step, because legacy shapes cannot be trusted. Each
// registered migration takes data at version N and returns an Envelope at
// version N+1; the engine applies them one at a time until the data reaches
// CurrentVersion, then decodes the records into types.Application.
//
// The engine never fails on malformed input. Blobs that are not JSON, not an
// array or not an object are treated as version 0 with no records. A version
// with no registered migration stops the chain with whatever was reached, and
// the stop is logged.
package migrate

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/types"
)

// CurrentVersion is the schema version written by this build.
const CurrentVersion = 4

// Record is an application in its on-disk form.
type Record = map[string]any

// Envelope is a DataSchema whose applications have not been decoded yet.
type Envelope struct {
	Version      int
	Applications []Record
	LastUpdated  string
}

// Migration upgrades data at version N to an Envelope at version N+1.
// It must not drop records and must stamp LastUpdated with now.
type Migration func(data any, now time.Time) Envelope

// Engine holds the migration registry.
type Engine struct {
	migrations map[int]Migration
	current    int
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for migration diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the clock used for lastUpdated stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMigrations replaces the registry and target version.
func WithMigrations(migrations map[int]Migration, current int) Option {
	return func(e *Engine) {
		e.migrations = migrations
		e.current = current
	}
}

// New returns an engine with the built-in migration chain.
func New(opts ...Option) *Engine {
	e := &Engine{
		migrations: Migrations(),
		current:    CurrentVersion,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns the version this engine migrates to.
func (e *Engine) Current() int {
	return e.current
}

var defaultEngine = New()

// MigrateData upgrades data with the default engine.
func MigrateData(data any) *types.DataSchema {
	return defaultEngine.Migrate(data)
}

// WrapInSchema returns a fresh current-version envelope around apps.
func WrapInSchema(apps []types.Application) *types.DataSchema {
	return defaultEngine.Wrap(apps)
}

// CreateEmptyDataSchema returns the first-run state.
func CreateEmptyDataSchema() *types.DataSchema {
	return defaultEngine.Wrap(nil)
}

// Wrap returns a current-version envelope around apps stamped with the engine clock.
func (e *Engine) Wrap(apps []types.Application) *types.DataSchema {
	if apps == nil {
		apps = []types.Application{}
	}
	return &types.DataSchema{
		Version:      e.current,
		Applications: apps,
		LastUpdated:  types.Now(e.now()),
	}
}

// Migrate upgrades data to the engine's current version.
//
// Data already valid at the current version is decoded without running the
// chain and keeps its lastUpdated.
func (e *Engine) Migrate(data any) *types.DataSchema {
	data = loosen(data)

	version := DetectVersion(data)
	if obj, ok := data.(map[string]any); ok {
		if n, ok := number(obj["version"]); ok {
			if _, whole := wholeInt(n); !whole {
				e.logger.Warn("data version is not an integer, treating as unversioned",
					zap.Float64("version", n))
			}
		}
	}
	if version == e.current && ValidateDataSchema(data) {
		return e.decode(toEnvelope(data))
	}

	for version != e.current {
		step, ok := e.migrations[version]
		if !ok {
			e.logger.Warn("no migration registered for data version, keeping partial result",
				zap.Int("version", version),
				zap.Int("target", e.current))
			break
		}

		before := countRecords(data)
		out := step(data, e.now())

		if out.Version != version+1 {
			e.logger.Error("migration produced unexpected version, stopping",
				zap.Int("from", version),
				zap.Int("got", out.Version))
			break
		}
		if len(out.Applications) < before {
			e.logger.Error("migration dropped records, stopping",
				zap.Int("from", version),
				zap.Int("before", before),
				zap.Int("after", len(out.Applications)))
			break
		}

		e.logger.Info("migrated data",
			zap.Int("from", version),
			zap.Int("to", out.Version),
			zap.Int("applications", len(out.Applications)))

		data = out
		version = out.Version
	}

	return e.decode(toEnvelope(data))
}

// DetectVersion returns the schema version of data.
//
// A bare array is the pre-versioning format (version 0). An object with a
// integral version field reports that number unchecked. Anything else,
// including a fractional version, is 0.
func DetectVersion(data any) int {
	switch v := loosen(data).(type) {
	case []any:
		return 0
	case Envelope:
		return v.Version
	case map[string]any:
		if n, ok := number(v["version"]); ok {
			if version, ok := wholeInt(n); ok {
				return version
			}
		}
	}
	return 0
}

// ValidateDataSchema reports whether data has a numeric version, an
// applications array and a string lastUpdated.
func ValidateDataSchema(data any) bool {
	obj, ok := loosen(data).(map[string]any)
	if !ok {
		return false
	}
	if _, ok := number(obj["version"]); !ok {
		return false
	}
	if _, ok := obj["applications"].([]any); !ok {
		return false
	}
	_, ok = obj["lastUpdated"].(string)
	return ok
}

// ParseBlob decodes raw storage content. Empty or malformed input yields nil,
// which migrates to an empty schema.
func ParseBlob(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}

// CountApplications counts the application-like records in data, however shaped.
func CountApplications(data any) int {
	return countRecords(loosen(data))
}

func (e *Engine) decode(env Envelope) *types.DataSchema {
	apps := make([]types.Application, 0, len(env.Applications))
	for _, rec := range env.Applications {
		apps = append(apps, e.decodeRecord(rec))
	}
	lastUpdated := env.LastUpdated
	if lastUpdated == "" {
		lastUpdated = types.Now(e.now())
	}
	return &types.DataSchema{
		Version:      env.Version,
		Applications: apps,
		LastUpdated:  lastUpdated,
	}
}

// toEnvelope views loose data as an envelope without changing its version.
func toEnvelope(data any) Envelope {
	switch v := data.(type) {
	case Envelope:
		return v
	case []any:
		return Envelope{Version: 0, Applications: objects(v)}
	case map[string]any:
		env := Envelope{Version: DetectVersion(v), Applications: []Record{}}
		if apps, ok := v["applications"].([]any); ok {
			env.Applications = objects(apps)
		}
		if s, ok := v["lastUpdated"].(string); ok {
			env.LastUpdated = s
		}
		return env
	}
	return Envelope{Version: 0, Applications: []Record{}}
}

func countRecords(data any) int {
	switch v := data.(type) {
	case Envelope:
		return len(v.Applications)
	case []any:
		return len(objects(v))
	case map[string]any:
		if apps, ok := v["applications"].([]any); ok {
			return len(objects(apps))
		}
	}
	return 0
}

func objects(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// loosen turns typed values into their generic JSON form so the engine can
// accept its own output as input.
func loosen(data any) any {
	var raw []byte
	switch v := data.(type) {
	case *types.DataSchema:
		if v == nil {
			return nil
		}
		raw, _ = json.Marshal(v)
	case types.DataSchema, []types.Application:
		raw, _ = json.Marshal(v)
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return data
	}
	return ParseBlob(raw)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
