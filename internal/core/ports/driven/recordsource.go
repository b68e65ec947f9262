package driven

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// RecordSource is a finite, ordered stream of records.
type RecordSource interface {
	// Next returns the next record, or io.EOF once the source is exhausted.
	Next(ctx context.Context) (domain.Record, error)

	// Close releases the underlying file.
	Close() error
}

// RecordSourceOpener opens a RecordSource for a path, choosing the decoder
// from the file format.
type RecordSourceOpener interface {
	Open(ctx context.Context, path string) (RecordSource, error)
}

// RecordSink receives converted records in order.
type RecordSink interface {
	Write(rec domain.Record) error

	// Close flushes and finalises the output.
	Close() error

	// Abort discards everything written so far.
	Abort() error
}

// RecordSinkFactory creates a RecordSink writing to path.
type RecordSinkFactory interface {
	Create(path string) (RecordSink, error)
}
