package domain

import "time"

// Ack is the store's acknowledgement of a batch write.
type Ack struct {
	// Inserted is the number of records the store confirmed.
	Inserted int
}

// BatchAck confirms one batch durably written to a collection.
type BatchAck struct {
	Collection string
	Source     string

	// Sequence is the 0-based number of the batch within the run.
	Sequence int

	// Start is the source offset of the first record in the batch.
	Start int

	// Size is the number of records sent.
	Size int

	// Inserted is the number of records the store acknowledged.
	Inserted int
}

// End returns the confirmed source offset after this batch.
func (a BatchAck) End() int {
	return a.Start + a.Size
}

// LoadJob describes loading one source file into one collection.
type LoadJob struct {
	Collection string
	Kind       RecordKind
	Path       string
	BatchSize  int

	// Resume skips records confirmed by an earlier run's checkpoint.
	Resume bool
}

// LoadPlan is an ordered list of jobs executed by one run.
type LoadPlan struct {
	RunID string
	Jobs  []LoadJob
}

// LoadResult summarises one completed (or aborted) load.
type LoadResult struct {
	Collection string
	Source     string

	// Records is the number of records written during this run.
	Records int

	// Batches is the number of write calls issued during this run.
	Batches int

	// Skipped is the number of leading records skipped on resume.
	Skipped int

	// Offset is the confirmed source offset at the end of the run.
	Offset int

	Duration time.Duration

	// AlreadyComplete is true when a resumed run found nothing left to load.
	AlreadyComplete bool

	// Complete is true when the source was fully loaded, in this run or an
	// earlier one. It is false for the partial result of a failed job.
	Complete bool
}

// CheckpointKey identifies the progress of one source file loaded into one
// collection of one store.
type CheckpointKey struct {
	// Target names the store backend and database, never its credentials.
	Target     string
	Collection string
	Source     string
}

// Checkpoint is the last confirmed offset for one (target, collection, source).
type Checkpoint struct {
	Target     string
	Collection string
	Source     string

	// Offset is the number of leading source records durably written.
	Offset int

	// Batches is the number of batches confirmed for the source.
	Batches int

	// Complete is set once the source was exhausted and fully flushed.
	Complete bool

	RunID     string
	UpdatedAt time.Time
}

// Key returns the identity the checkpoint is stored under.
func (c Checkpoint) Key() CheckpointKey {
	return CheckpointKey{Target: c.Target, Collection: c.Collection, Source: c.Source}
}
