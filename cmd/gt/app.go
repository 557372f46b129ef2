package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/gradtrack/gradtrack/internal/config"
	"github.com/gradtrack/gradtrack/internal/storage"
	"github.com/gradtrack/gradtrack/internal/store"
	"github.com/gradtrack/gradtrack/internal/types"
	"github.com/gradtrack/gradtrack/internal/ui"
)

var errAborted = errors.New("aborted")

// closeTimeout bounds the final flush when a command exits.
const closeTimeout = 10 * time.Second

// openStorage builds the configured backend. The returned func releases it.
func openStorage(ctx context.Context) (storage.Storage, func(), error) {
	path, err := cfg.DataPath()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Data.Backend {
	case config.BackendSQLite:
		db, err := storage.OpenSQLite(ctx, path, storage.DefaultKey)
		if err != nil {
			return nil, nil, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", zap.Error(err))
			}
		}, nil
	default:
		return storage.NewFile(path), func() {}, nil
	}
}

// session is an opened, loaded store plus the backend under it.
type session struct {
	store   *store.Store
	backend storage.Storage
	release func()
}

// openStore opens storage and loads the store. Callers must defer Close.
func openStore(ctx context.Context) (*session, error) {
	backend, release, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}

	debounce, err := cfg.DebounceInterval()
	if err != nil {
		release()
		return nil, err
	}

	st, err := store.NewWithConfig(backend, &store.Config{
		DebounceInterval:   debounce,
		DefaultProgramType: cfg.ProgramType(),
		Logger:             logger.Named("store"),
	})
	if err != nil {
		release()
		return nil, err
	}

	if _, err := st.Load(ctx); err != nil {
		release()
		return nil, err
	}
	return &session{store: st, backend: backend, release: release}, nil
}

// Close flushes pending edits and releases storage.
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	defer s.release()
	return s.store.Close(ctx)
}

// withStore runs fn against a loaded store and always flushes afterwards.
func withStore(ctx context.Context, fn func(*store.Store) error) error {
	sess, err := openStore(ctx)
	if err != nil {
		return err
	}
	fnErr := fn(sess.store)
	if err := sess.Close(); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

// resolve finds one application by full ID, ID suffix, or university name.
func resolve(apps []types.Application, ref string) (types.Application, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return types.Application{}, fmt.Errorf("application reference is empty")
	}

	var matches []types.Application
	for _, app := range apps {
		if app.ID == ref {
			return app, nil
		}
		if strings.HasSuffix(app.ID, ref) || strings.EqualFold(app.UniversityName, ref) {
			matches = append(matches, app)
		}
	}

	switch len(matches) {
	case 0:
		return types.Application{}, fmt.Errorf("no application matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		labels := make([]string, len(matches))
		for i, app := range matches {
			labels[i] = fmt.Sprintf("%s (%s)", app.Label(), ui.ShortID(app.ID))
		}
		return types.Application{}, fmt.Errorf("%q matches %d applications: %s", ref, len(matches), strings.Join(labels, ", "))
	}
}

// confirm asks a yes/no question on a terminal. Without a terminal it
// refuses, so destructive commands need --yes in scripts.
func confirm(question string) (bool, error) {
	if !ui.IsTerminal() {
		return false, fmt.Errorf("%s: pass --yes to confirm without a terminal", question)
	}
	ok := false
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, errAborted
	}
	return ok, err
}
