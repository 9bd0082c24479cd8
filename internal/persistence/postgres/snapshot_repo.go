// Package postgres implements the snapshot repository on PostgreSQL.
// The full snapshot document is stored as JSONB alongside a few indexed
// scalar columns for range queries.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/macrointel/macrointel/internal/persistence"
	"github.com/macrointel/macrointel/internal/regime"
)

type snapshotRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSnapshotRepo creates a PostgreSQL snapshot repository.
func NewSnapshotRepo(db *sqlx.DB, timeout time.Duration) persistence.SnapshotRepo {
	return &snapshotRepo{
		db:      db,
		timeout: timeout,
	}
}

// Save appends one snapshot row. Snapshots are immutable; a conflict on
// id means the same cycle was saved twice and the first write wins.
func (r *snapshotRepo) Save(ctx context.Context, snapshot *regime.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	document, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO regime_snapshots
		(id, ts, total_score, classification, strategy, instrument, risk_allocation, document)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.Timestamp, snapshot.TotalScore,
		string(snapshot.Classification), snapshot.StrategyRecommendation,
		snapshot.Instrument, snapshot.RiskAllocation, document); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Latest returns the most recent snapshot, or nil when the table is
// empty.
func (r *snapshotRepo) Latest(ctx context.Context) (*regime.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT document
		FROM regime_snapshots
		ORDER BY ts DESC
		LIMIT 1`

	var document []byte
	if err := r.db.QueryRowxContext(ctx, query).Scan(&document); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return unmarshalSnapshot(document)
}

// ListRange returns snapshots within the window, newest first.
func (r *snapshotRepo) ListRange(ctx context.Context, tr persistence.TimeRange) ([]regime.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT document
		FROM regime_snapshots
		WHERE ts >= $1 AND ts <= $2
		ORDER BY ts DESC`

	rows, err := r.db.QueryxContext(ctx, query, tr.From, tr.To)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot range: %w", err)
	}
	defer rows.Close()

	var snapshots []regime.Snapshot
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshot, err := unmarshalSnapshot(document)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}

func unmarshalSnapshot(document []byte) (*regime.Snapshot, error) {
	var snapshot regime.Snapshot
	if err := json.Unmarshal(document, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot document: %w", err)
	}
	return &snapshot, nil
}
