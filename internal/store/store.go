// Package store holds the authoritative in-memory application list and
// persists it with debounced whole-document writes.
//
// The store:
// 1. Loads the stored document once and runs it through the migration engine
// 2. Applies mutations to the in-memory list immediately, in call order
// 3. Restarts a single save timer on every mutation, so a burst of edits
//    produces one write carrying the latest state
// 4. Flushes the pending write on Close
//
// Every mutation replaces the list (and the changed record) rather than
// editing them in place. Slices handed out by the store are copies.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/migrate"
	"github.com/gradtrack/gradtrack/internal/storage"
	"github.com/gradtrack/gradtrack/internal/types"
)

// DefaultDebounceInterval coalesces keystroke-speed edits while bounding
// what an unexpected exit can lose.
const DefaultDebounceInterval = 500 * time.Millisecond

// State is the load state of a store.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Config holds configuration for the store.
type Config struct {
	// DebounceInterval is how long mutations must settle before a write.
	DebounceInterval time.Duration

	// DefaultProgramType is used for applications synthesized from a faculty contact.
	DefaultProgramType types.ProgramType

	// SaveTimeout bounds a write started by the debounce timer.
	SaveTimeout time.Duration

	// Logger for store activity.
	Logger *zap.Logger

	// Now is the clock for status history dates and lastUpdated stamps.
	Now func() time.Time

	// NewID assigns identifiers to new records.
	NewID func() string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval:   DefaultDebounceInterval,
		DefaultProgramType: types.ProgramPhD,
		SaveTimeout:        10 * time.Second,
		Logger:             zap.NewNop(),
		Now:                time.Now,
		NewID:              types.NewID,
	}
}

// Store owns the application list.
type Store struct {
	storage storage.Storage
	config  *Config
	engine  *migrate.Engine
	logger  *zap.Logger

	mu           sync.Mutex
	state        State
	closed       bool
	apps         []types.Application
	gen          uint64 // bumped by every mutation
	savedGen     uint64 // gen of the last successful write
	listeners    map[int]Listener
	nextListener int

	// saveMu keeps at most one write in flight.
	saveMu    sync.Mutex
	debouncer *Debouncer
}

// New creates a store over s with default configuration.
func New(s storage.Storage) (*Store, error) {
	return NewWithConfig(s, DefaultConfig())
}

// NewWithConfig creates a store with custom configuration.
// Call Load before using it and Close when done.
func NewWithConfig(s storage.Storage, config *Config) (*Store, error) {
	if s == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = defaults.DebounceInterval
	}
	if config.DefaultProgramType == "" {
		config.DefaultProgramType = defaults.DefaultProgramType
	}
	if config.SaveTimeout <= 0 {
		config.SaveTimeout = defaults.SaveTimeout
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.Now == nil {
		config.Now = defaults.Now
	}
	if config.NewID == nil {
		config.NewID = defaults.NewID
	}

	return &Store{
		storage:   s,
		config:    config,
		engine:    migrate.New(migrate.WithLogger(config.Logger), migrate.WithClock(config.Now)),
		logger:    config.Logger,
		apps:      []types.Application{},
		listeners: make(map[int]Listener),
		debouncer: NewDebouncer(config.DebounceInterval),
	}, nil
}

// State returns the current load state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Load reads the stored document, migrates it and makes it the current list.
//
// A missing or empty document is a first run and yields an empty list.
// Malformed content is backed up when the backend supports it and then
// treated as absent. Content from an older or newer schema version is backed
// up before it can be rewritten. Calling Load on a ready store returns the current list.
func (s *Store) Load(ctx context.Context) ([]types.Application, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrClosed
	case s.state == StateReady:
		apps := cloneAll(s.apps)
		s.mu.Unlock()
		return apps, nil
	case s.state == StateLoading:
		s.mu.Unlock()
		return nil, fmt.Errorf("load already in progress")
	}
	s.state = StateLoading
	s.mu.Unlock()

	raw, err := s.storage.Read(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotExist) {
		s.mu.Lock()
		s.state = StateUninitialized
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	var data any
	if len(raw) > 0 {
		data = migrate.ParseBlob(raw)
		if data == nil {
			s.logger.Warn("stored data is not valid JSON, starting empty")
			s.backup(ctx, "corrupt")
		}
	}

	version := migrate.DetectVersion(data)
	upgrade := data != nil && version < s.engine.Current()
	newer := data != nil && version > s.engine.Current()
	switch {
	case upgrade:
		s.backup(ctx, fmt.Sprintf("v%d", version))
	case newer:
		// The next save writes this build's version and drops unknown fields.
		s.logger.Warn("stored data was written by a newer version, keeping a backup before it is overwritten",
			zap.Int("stored_version", version),
			zap.Int("version", s.engine.Current()))
		s.backup(ctx, fmt.Sprintf("v%d", version))
	}

	schema := s.engine.Migrate(data)

	s.mu.Lock()
	s.apps = schema.Applications
	s.state = StateReady
	if upgrade && schema.Version == s.engine.Current() {
		// Persist the upgraded shape on the next flush.
		s.gen++
	}
	dirty := s.gen != s.savedGen
	apps := cloneAll(s.apps)
	s.mu.Unlock()

	s.logger.Info("loaded applications",
		zap.Int("count", len(apps)),
		zap.Int("stored_version", version),
		zap.Int("version", schema.Version))

	if dirty {
		s.debouncer.Debounce(s.saveFromTimer)
	}
	s.notify(Event{Kind: EventLoaded, Applications: cloneAll(apps)})
	return apps, nil
}

// Applications returns a copy of the current list. Before Load completes it
// returns an empty list.
func (s *Store) Applications() []types.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return []types.Application{}
	}
	return cloneAll(s.apps)
}

// Get returns a copy of the application with id.
func (s *Store) Get(id string) (types.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.apps, id); i >= 0 {
		return s.apps[i].Clone(), true
	}
	return types.Application{}, false
}

// Add assigns a fresh ID to app, appends it and schedules a save.
// It returns the stored copy.
func (s *Store) Add(app types.Application) (types.Application, error) {
	var added types.Application
	err := s.mutate(EventAdded, func(apps []types.Application) ([]types.Application, string, error) {
		added = s.prepareNew(app)
		if err := added.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid application: %w", err)
		}
		return append(slices.Clip(apps), added), added.ID, nil
	})
	if err != nil {
		return types.Application{}, err
	}
	return added.Clone(), nil
}

// Update replaces the application whose ID matches app.ID, keeping its
// position. It returns ErrNotFound rather than inserting. A status change
// is recorded in the status history.
func (s *Store) Update(app types.Application) error {
	return s.mutate(EventUpdated, func(apps []types.Application) ([]types.Application, string, error) {
		i := indexOf(apps, app.ID)
		if i < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, app.ID)
		}

		updated := app.Clone()
		updated.SetDefaults()
		updated.Tags = uniqueTags(updated.Tags)
		if err := updated.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid application: %w", err)
		}

		prev := apps[i]
		if updated.Status != prev.Status && len(updated.StatusHistory) == len(prev.StatusHistory) {
			updated.StatusHistory = append(updated.StatusHistory, types.StatusChange{
				Status: updated.Status,
				Date:   s.today(),
			})
		}

		next := slices.Clone(apps)
		next[i] = updated
		return next, updated.ID, nil
	})
}

// Delete removes the application with id. Deleting a missing ID is a no-op.
func (s *Store) Delete(id string) error {
	err := s.mutate(EventDeleted, func(apps []types.Application) ([]types.Application, string, error) {
		i := indexOf(apps, id)
		if i < 0 {
			return nil, "", errNoChange
		}
		next := make([]types.Application, 0, len(apps)-1)
		next = append(next, apps[:i]...)
		next = append(next, apps[i+1:]...)
		return next, id, nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// AddFacultyContact records contact against universityName.
//
// With createNew it synthesizes a default application for the university
// holding only this contact. Otherwise it appends the contact to the first
// application whose UniversityName matches exactly; when there is none the
// list is left untouched and a *UniversityNotFoundError is returned.
// It returns the application that now holds the contact.
func (s *Store) AddFacultyContact(contact types.FacultyContact, universityName string, createNew bool) (types.Application, error) {
	if contact.ID == "" {
		contact.ID = s.config.NewID()
	}
	if contact.Status == "" {
		contact.Status = types.ContactNotContacted
	}
	if !contact.Status.IsValid() {
		return types.Application{}, fmt.Errorf("unknown contact status %q", contact.Status)
	}

	if createNew {
		app := types.NewApplication(universityName, s.config.DefaultProgramType)
		app.FacultyContacts = []types.FacultyContact{contact}
		return s.Add(app)
	}

	var target types.Application
	err := s.mutate(EventUpdated, func(apps []types.Application) ([]types.Application, string, error) {
		i := slices.IndexFunc(apps, func(a types.Application) bool {
			return a.UniversityName == universityName
		})
		if i < 0 {
			return nil, "", &UniversityNotFoundError{University: universityName}
		}

		target = apps[i].Clone()
		target.FacultyContacts = append(target.FacultyContacts, contact)

		next := slices.Clone(apps)
		next[i] = target
		return next, target.ID, nil
	})
	if err != nil {
		return types.Application{}, err
	}
	return target.Clone(), nil
}

// Import replaces the whole list with apps. It is destructive; confirming
// with the user is the caller's job. Records without an ID, or repeating an
// earlier record's ID, get a fresh one.
func (s *Store) Import(apps []types.Application) error {
	return s.mutate(EventImported, func([]types.Application) ([]types.Application, string, error) {
		seen := make(map[string]bool, len(apps))
		next := make([]types.Application, 0, len(apps))
		for _, app := range apps {
			app = app.Clone()
			app.SetDefaults()
			app.Tags = uniqueTags(app.Tags)
			if app.ID == "" || seen[app.ID] {
				app.ID = s.config.NewID()
			}
			seen[app.ID] = true
			next = append(next, app)
		}
		return next, "", nil
	})
}

// Dirty reports whether the list has changes not yet written.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != s.savedGen
}

// Flush cancels the pending timer and writes now if there are unsaved changes.
func (s *Store) Flush(ctx context.Context) error {
	s.debouncer.Cancel()
	return s.save(ctx)
}

// Close flushes pending changes and rejects further mutations. It is the
// shutdown hook; edits made after a missed Close are lost.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.Flush(ctx)
}

// errNoChange aborts a mutation that has nothing to do.
var errNoChange = errors.New("no change")

type mutation func(apps []types.Application) (next []types.Application, id string, err error)

// mutate applies fn to the current list under the lock, publishes the result
// and restarts the save timer.
func (s *Store) mutate(kind EventKind, fn mutation) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}

	next, id, err := fn(s.apps)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.apps = next
	s.gen++
	snapshot := cloneAll(next)
	s.mu.Unlock()

	s.debouncer.Debounce(s.saveFromTimer)
	s.logger.Debug("application list changed", zap.String("kind", string(kind)), zap.String("id", id))
	s.notify(Event{Kind: kind, ID: id, Applications: snapshot})
	return nil
}

func (s *Store) saveFromTimer() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.SaveTimeout)
	defer cancel()
	_ = s.save(ctx)
}

// save writes the newest list if it has not been written yet. Holding saveMu
// across snapshot and write means a later save always carries newer state.
func (s *Store) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.state != StateReady || s.gen == s.savedGen {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	apps := slices.Clone(s.apps)
	s.mu.Unlock()

	schema := s.engine.Wrap(apps)
	if err := s.storage.Write(ctx, schema); err != nil {
		s.logger.Error("failed to save applications, keeping changes in memory",
			zap.Int("count", len(apps)),
			zap.Error(err))
		s.notify(Event{Kind: EventSaveFailed, Err: err})
		return fmt.Errorf("failed to save applications: %w", err)
	}

	s.mu.Lock()
	if gen > s.savedGen {
		s.savedGen = gen
	}
	s.mu.Unlock()

	s.logger.Debug("saved applications", zap.Int("count", len(apps)), zap.String("last_updated", schema.LastUpdated))
	s.notify(Event{Kind: EventSaved, Applications: cloneAll(apps)})
	return nil
}

func (s *Store) backup(ctx context.Context, reason string) {
	b, ok := s.storage.(storage.Backuper)
	if !ok {
		return
	}
	where, err := b.Backup(ctx, reason)
	if err != nil {
		s.logger.Warn("failed to back up stored data", zap.String("reason", reason), zap.Error(err))
		return
	}
	if where != "" {
		s.logger.Info("backed up stored data", zap.String("reason", reason), zap.String("backup", where))
	}
}

// prepareNew shapes a record for insertion without altering its content.
func (s *Store) prepareNew(app types.Application) types.Application {
	app = app.Clone()
	app.ID = s.config.NewID()
	if app.Documents == (types.Documents{}) {
		app.Documents = types.DefaultDocuments()
	}
	app.SetDefaults()
	app.Tags = uniqueTags(app.Tags)
	return app
}

func (s *Store) today() string {
	return s.config.Now().Format(types.DateLayout)
}

func indexOf(apps []types.Application, id string) int {
	return slices.IndexFunc(apps, func(a types.Application) bool {
		return a.ID == id
	})
}

func cloneAll(apps []types.Application) []types.Application {
	out := make([]types.Application, len(apps))
	for i, app := range apps {
		out[i] = app.Clone()
	}
	return out
}

func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
