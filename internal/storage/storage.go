// Package storage persists the application snapshot. Memory is
// authoritative at runtime; a store is a mirror loaded once at startup and
// rewritten after every mutating operation.
package storage

import (
	"context"

	"github.com/claude/hybridtrack/internal/models"
)

// SnapshotStore is a durable single-document store for the application
// state. Load returns (nil, nil) when no snapshot has ever been saved.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
	Close() error
}
