package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// LoadOptions tunes a single BatchLoader.Load call.
type LoadOptions struct {
	// SourceName labels acks and errors (usually the file path).
	SourceName string

	// Skip is the number of leading records already confirmed by an earlier run.
	Skip int

	// FirstSequence numbers the first batch written by this call.
	FirstSequence int

	// OnBatch is called after every acknowledged write, in order.
	// Returning an error aborts the load.
	OnBatch func(ctx context.Context, ack domain.BatchAck) error
}

// BatchLoader writes a record stream to a collection in bounded batches.
// It holds no state between calls, so one loader may serve many loads.
type BatchLoader struct{}

// NewBatchLoader creates a batch loader.
func NewBatchLoader() *BatchLoader {
	return &BatchLoader{}
}

// Load streams src into coll in batches of at most batchSize records.
//
// A full batch is flushed as soon as it reaches batchSize; the remainder is
// flushed once the source is exhausted. An empty source issues no writes.
// The first source or write failure aborts the load without retry; records
// still pending at that point are discarded. The returned result always
// reflects what was confirmed before the failure.
func (l *BatchLoader) Load(
	ctx context.Context,
	src driven.RecordSource,
	coll driven.Collection,
	batchSize int,
	opts LoadOptions,
) (domain.LoadResult, error) {
	result := domain.LoadResult{
		Collection: coll.Name(),
		Source:     opts.SourceName,
	}
	if batchSize < 1 {
		return result, fmt.Errorf("%w: batch size must be at least 1, got %d", domain.ErrInvalidInput, batchSize)
	}
	if opts.Skip < 0 {
		return result, fmt.Errorf("%w: skip must not be negative, got %d", domain.ErrInvalidInput, opts.Skip)
	}

	offset := 0
	for offset < opts.Skip {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := src.Next(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				result.Skipped = offset
				result.Offset = offset
				return result, nil
			}
			return result, l.readError(opts, offset, err)
		}
		offset++
	}
	result.Skipped = offset
	result.Offset = offset

	pending := make([]domain.Record, 0, batchSize)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, l.readError(opts, offset, err)
		}
		pending = append(pending, rec)
		offset++

		if len(pending) == batchSize {
			if err := l.flush(ctx, coll, pending, &result, opts); err != nil {
				return result, err
			}
			// The flushed slice now belongs to the store.
			pending = make([]domain.Record, 0, batchSize)
		}
	}

	if len(pending) > 0 {
		if err := l.flush(ctx, coll, pending, &result, opts); err != nil {
			return result, err
		}
	}
	return result, nil
}

// flush issues one write for batch and records the acknowledgement.
func (l *BatchLoader) flush(
	ctx context.Context,
	coll driven.Collection,
	batch []domain.Record,
	result *domain.LoadResult,
	opts LoadOptions,
) error {
	ack := domain.BatchAck{
		Collection: coll.Name(),
		Source:     opts.SourceName,
		Sequence:   opts.FirstSequence + result.Batches,
		Start:      result.Offset,
		Size:       len(batch),
	}

	res, err := coll.InsertMany(ctx, batch)
	if err == nil && res.Inserted != len(batch) {
		err = fmt.Errorf("store acknowledged %d of %d records", res.Inserted, len(batch))
	}
	if err != nil {
		return &domain.WriteError{
			Collection: ack.Collection,
			Sequence:   ack.Sequence,
			Start:      ack.Start,
			Size:       ack.Size,
			Err:        err,
		}
	}
	ack.Inserted = res.Inserted

	result.Batches++
	result.Records += ack.Size
	result.Offset = ack.End()

	if opts.OnBatch != nil {
		if err := opts.OnBatch(ctx, ack); err != nil {
			return fmt.Errorf("batch %d acknowledged but not recorded: %w", ack.Sequence, err)
		}
	}
	return nil
}

func (l *BatchLoader) readError(opts LoadOptions, offset int, err error) error {
	var sre *domain.SourceReadError
	if errors.As(err, &sre) {
		return err
	}
	return &domain.SourceReadError{Path: opts.SourceName, Offset: offset, Err: err}
}
