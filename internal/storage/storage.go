// Package storage provides the durable backends the tracker persists to.
//
// A backend reads back the raw bytes it was given and overwrites the whole
// document on every write; there is no partial or append persistence. Parsing
// and migration of what was read are left to the caller.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gradtrack/gradtrack/internal/types"
)

// ErrNotExist is returned by Read when nothing has been written yet.
var ErrNotExist = errors.New("no stored data")

// Storage is a whole-document persistence backend.
type Storage interface {
	// Read returns the stored document. It returns ErrNotExist on first run
	// and an empty slice when the document exists but is empty.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored document with schema.
	Write(ctx context.Context, schema *types.DataSchema) error
}

// Backuper is implemented by backends that can keep a copy of the current
// document before it is replaced (pre-migration, corrupt content).
type Backuper interface {
	// Backup copies the stored document aside and returns where it went.
	Backup(ctx context.Context, reason string) (string, error)
}

// Marshal renders schema the way every backend stores it.
func Marshal(schema *types.DataSchema) ([]byte, error) {
	if schema == nil {
		return nil, fmt.Errorf("cannot write nil schema")
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// backupStamp is the timestamp format used in backup names.
const backupStamp = "20060102-150405"
