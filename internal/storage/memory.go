package storage

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gradtrack/gradtrack/internal/types"
)

// Memory keeps the document in process and records every write.
// It backs dry runs and tests.
type Memory struct {
	mu      sync.Mutex
	data    []byte
	exists  bool
	writes  []*types.DataSchema
	backups map[string][]byte
	failErr error
}

// NewMemory returns an empty backend; Read reports ErrNotExist until the
// first write or Seed.
func NewMemory() *Memory {
	return &Memory{backups: make(map[string][]byte)}
}

// Seed sets the raw stored content, as if an earlier run had written it.
func (m *Memory) Seed(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), raw...)
	m.exists = true
}

// FailWrites makes every following Write return err. Pass nil to recover.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Read returns the stored content.
func (m *Memory) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

// Write stores schema and appends it to the write log.
func (m *Memory) Write(ctx context.Context, schema *types.DataSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(schema)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.data = data
	m.exists = true

	snapshot := *schema
	snapshot.Applications = make([]types.Application, len(schema.Applications))
	for i, app := range schema.Applications {
		snapshot.Applications[i] = app.Clone()
	}
	m.writes = append(m.writes, &snapshot)
	return nil
}

// Backup keeps a copy of the current content under reason.
func (m *Memory) Backup(ctx context.Context, reason string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return "", nil
	}
	name := fmt.Sprintf("memory.%s.%d", reason, len(m.backups))
	m.backups[name] = append([]byte(nil), m.data...)
	return name, nil
}

// Writes returns every schema written so far, oldest first.
func (m *Memory) Writes() []*types.DataSchema {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*types.DataSchema(nil), m.writes...)
}

// WriteCount returns the number of successful writes.
func (m *Memory) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// BackupNames returns the names of the backups taken, sorted.
func (m *Memory) BackupNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.backups))
}

// Backups returns the number of backups taken.
func (m *Memory) Backups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.backups)
}
