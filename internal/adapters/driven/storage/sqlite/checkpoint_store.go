package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// checkpointStore implements driven.CheckpointStore.
type checkpointStore struct {
	store *Store
}

var _ driven.CheckpointStore = (*checkpointStore)(nil)

// Save stores or updates a checkpoint.
func (s *checkpointStore) Save(ctx context.Context, cp domain.Checkpoint) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO load_checkpoints (target, collection, source, record_offset, batches, complete, run_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target, collection, source) DO UPDATE SET
			record_offset = excluded.record_offset,
			batches = excluded.batches,
			complete = excluded.complete,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, cp.Target, cp.Collection, cp.Source, cp.Offset, cp.Batches, cp.Complete, cp.RunID, cp.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}

// Get retrieves a checkpoint.
func (s *checkpointStore) Get(ctx context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT target, collection, source, record_offset, batches, complete, run_id, updated_at
		FROM load_checkpoints WHERE target = ? AND collection = ? AND source = ?
	`, key.Target, key.Collection, key.Source)
	return scanCheckpoint(row)
}

// List returns all checkpoints ordered by target, collection, then source.
func (s *checkpointStore) List(ctx context.Context) ([]domain.Checkpoint, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT target, collection, source, record_offset, batches, complete, run_id, updated_at
		FROM load_checkpoints ORDER BY target, collection, source
	`)
	if err != nil {
		return nil, fmt.Errorf("listing checkpoints: %w", err)
	}
	defer rows.Close()

	var out []domain.Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	return out, rows.Err()
}

// Delete removes a checkpoint.
func (s *checkpointStore) Delete(ctx context.Context, key domain.CheckpointKey) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM load_checkpoints WHERE target = ? AND collection = ? AND source = ?",
		key.Target, key.Collection, key.Source)
	if err != nil {
		return fmt.Errorf("deleting checkpoint: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCheckpoint(row scanner) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	var updatedAt sql.NullTime
	err := row.Scan(&cp.Target, &cp.Collection, &cp.Source, &cp.Offset, &cp.Batches, &cp.Complete, &cp.RunID, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning checkpoint: %w", err)
	}
	if updatedAt.Valid {
		cp.UpdatedAt = updatedAt.Time
	}
	return &cp, nil
}
