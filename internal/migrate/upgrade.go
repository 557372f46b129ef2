package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/gradtrack/gradtrack/internal/storage"
)

// UpgradeOptions contains configuration for an on-disk upgrade.
type UpgradeOptions struct {
	Storage storage.Storage // Where the document lives
	DryRun  bool            // Report without writing
	Backup  bool            // Keep a copy of the old document before rewriting
	Force   bool            // Rewrite even when already current
}

// UpgradeResult contains statistics about the upgrade.
type UpgradeResult struct {
	FromVersion   int
	ToVersion     int
	StoredRecords int
	Applications  int
	Corrupt       bool
	Written       bool
	BackupCreated string
}

// Upgrade reads the stored document, migrates it and writes it back when it
// was older than the current version.
func (e *Engine) Upgrade(ctx context.Context, opts UpgradeOptions) (*UpgradeResult, error) {
	if opts.Storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}

	raw, err := opts.Storage.Read(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotExist) {
		return nil, fmt.Errorf("failed to read stored data: %w", err)
	}

	result := &UpgradeResult{}
	var data any
	if len(raw) > 0 {
		data = ParseBlob(raw)
		result.Corrupt = data == nil
	}
	result.FromVersion = DetectVersion(data)
	result.StoredRecords = CountApplications(data)

	schema := e.Migrate(data)
	result.ToVersion = schema.Version
	result.Applications = len(schema.Applications)

	needsWrite := opts.Force || (data != nil && result.FromVersion < e.current)
	if !needsWrite || opts.DryRun {
		return result, nil
	}

	if opts.Backup || result.Corrupt || result.FromVersion > e.current {
		if b, ok := opts.Storage.(storage.Backuper); ok {
			reason := fmt.Sprintf("v%d", result.FromVersion)
			if result.Corrupt {
				reason = "corrupt"
			}
			where, err := b.Backup(ctx, reason)
			if err != nil {
				return nil, fmt.Errorf("failed to create backup: %w", err)
			}
			result.BackupCreated = where
		}
	}

	if err := opts.Storage.Write(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to write upgraded data: %w", err)
	}
	result.Written = true
	return result, nil
}
