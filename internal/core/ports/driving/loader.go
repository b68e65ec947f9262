package driving

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// BatchObserver is notified after every acknowledged batch write.
type BatchObserver func(ack domain.BatchAck)

// PlanRequest selects which dataset files a load run covers.
type PlanRequest struct {
	// Kinds to load; empty means all kinds.
	Kinds []domain.RecordKind

	// Indices overrides the configured file indices when non-empty.
	Indices []int

	// BatchSize overrides the configured batch size when positive.
	BatchSize int

	// Resume continues from saved checkpoints instead of starting over.
	Resume bool
}

// LoadService bulk-loads dataset files into the configured store.
type LoadService interface {
	// Plan builds the ordered job list for a run.
	Plan(settings *domain.AppSettings, req PlanRequest) (domain.LoadPlan, error)

	// LoadFile loads one source file into one collection.
	LoadFile(ctx context.Context, job domain.LoadJob, observe BatchObserver) (*domain.LoadResult, error)

	// Run executes every job in order and stops at the first failure.
	// Results for completed jobs are returned alongside the error.
	Run(ctx context.Context, plan domain.LoadPlan, observe BatchObserver) ([]domain.LoadResult, error)

	// Checkpoints lists saved load progress.
	Checkpoints(ctx context.Context) ([]domain.Checkpoint, error)

	// ResetCheckpoint forgets saved progress for one source in the configured store.
	ResetCheckpoint(ctx context.Context, collection, source string) error

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int64, error)
}
