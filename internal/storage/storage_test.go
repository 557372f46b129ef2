package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradtrack/gradtrack/internal/types"
)

func sampleSchema(names ...string) *types.DataSchema {
	apps := make([]types.Application, 0, len(names))
	for i, name := range names {
		app := types.NewApplication(name, types.ProgramPhD)
		app.ID = string(rune('a' + i))
		apps = append(apps, app)
	}
	return &types.DataSchema{Version: 4, Applications: apps, LastUpdated: "2026-10-01T00:00:00.000Z"}
}

// backends returns every implementation so the shared contract runs against each.
func backends(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()

	db, err := OpenSQLite(context.Background(), filepath.Join(dir, "tracker.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Storage{
		"file":   NewFile(filepath.Join(dir, "nested", "applications.json")),
		"sqlite": db,
		"memory": NewMemory(),
	}
}

func TestStorage_ReadBeforeWrite(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read(context.Background())
			assert.True(t, errors.Is(err, ErrNotExist), "got %v", err)
		})
	}
}

func TestStorage_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(ctx, sampleSchema("MIT", "ETH")))
			require.NoError(t, s.Write(ctx, sampleSchema("Oxford")))

			raw, err := s.Read(ctx)
			require.NoError(t, err)

			var got types.DataSchema
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, 4, got.Version)
			require.Len(t, got.Applications, 1)
			assert.Equal(t, "Oxford", got.Applications[0].UniversityName)
		})
	}
}

func TestStorage_WriteNil(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Write(context.Background(), nil))
		})
	}
}

func TestStorage_Backup(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := s.(Backuper)

			where, err := b.Backup(ctx, "pre-migration")
			require.NoError(t, err)
			assert.Empty(t, where, "nothing to back up yet")

			require.NoError(t, s.Write(ctx, sampleSchema("MIT")))
			where, err = b.Backup(ctx, "pre-migration")
			require.NoError(t, err)
			assert.Contains(t, where, "pre-migration")
		})
	}
}

func TestFile_EmptyFileIsNotAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	data, err := NewFile(path).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFile_AtomicWriteLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "applications.json"))
	require.NoError(t, f.Write(context.Background(), sampleSchema("MIT")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestFile_ChangedExternally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	f := NewFile(path)

	assert.False(t, f.ChangedExternally(), "missing file")

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))
	assert.True(t, f.ChangedExternally(), "file we never wrote")

	require.NoError(t, f.Write(context.Background(), sampleSchema("MIT")))
	assert.False(t, f.ChangedExternally(), "our own write")

	require.NoError(t, os.WriteFile(path, []byte("[]"), 0600))
	assert.True(t, f.ChangedExternally(), "edited after our write")
}

func TestSQLite_BackupKeys(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:", "tracker")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Write(ctx, sampleSchema("MIT")))
	_, err = db.Backup(ctx, "corrupt")
	require.NoError(t, err)

	keys, err := db.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "tracker", keys[0])
	assert.True(t, strings.HasPrefix(keys[1], "tracker.corrupt."))
}

func TestMemory_RecordsWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Write(ctx, sampleSchema("MIT")))
	require.NoError(t, m.Write(ctx, sampleSchema("MIT", "ETH")))

	assert.Equal(t, 2, m.WriteCount())
	writes := m.Writes()
	assert.Len(t, writes[0].Applications, 1)
	assert.Len(t, writes[1].Applications, 2)

	boom := errors.New("disk full")
	m.FailWrites(boom)
	assert.ErrorIs(t, m.Write(ctx, sampleSchema()), boom)
	assert.Equal(t, 2, m.WriteCount())
}
