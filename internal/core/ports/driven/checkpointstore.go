package driven

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// CheckpointStore persists load progress so an aborted run can resume.
type CheckpointStore interface {
	// Save stores or updates the checkpoint under cp.Key().
	Save(ctx context.Context, cp domain.Checkpoint) error

	// Get retrieves a checkpoint. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error)

	// List returns all checkpoints ordered by target, collection, then source.
	List(ctx context.Context) ([]domain.Checkpoint, error)

	// Delete removes a checkpoint.
	Delete(ctx context.Context, key domain.CheckpointKey) error
}
