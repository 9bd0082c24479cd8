// Package persistence defines the storage interfaces for regime
// snapshots. Implementations live in subpackages; consumers depend on
// these interfaces only.
package persistence

import (
	"context"
	"time"

	"github.com/macrointel/macrointel/internal/regime"
)

// TimeRange bounds a history query, inclusive on both ends.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// SnapshotRepo stores scored regime snapshots. Save never mutates an
// existing row; each scoring cycle appends a new document.
type SnapshotRepo interface {
	// Save persists one snapshot.
	Save(ctx context.Context, snapshot *regime.Snapshot) error

	// Latest returns the most recently scored snapshot by timestamp,
	// or nil when none has been stored yet.
	Latest(ctx context.Context) (*regime.Snapshot, error)

	// ListRange returns snapshots within the window, newest first.
	ListRange(ctx context.Context, tr TimeRange) ([]regime.Snapshot, error)
}

// LatestCache fronts SnapshotRepo.Latest with a short-lived cache so
// condition queries do not hit the database on every gate check.
type LatestCache interface {
	// Get returns the cached latest snapshot, or nil on a miss.
	Get(ctx context.Context) (*regime.Snapshot, error)

	// Set replaces the cached latest snapshot.
	Set(ctx context.Context, snapshot *regime.Snapshot) error
}

// Repository bundles the storage implementations handed to the
// application layer.
type Repository struct {
	Snapshots SnapshotRepo
	Cache     LatestCache
}
