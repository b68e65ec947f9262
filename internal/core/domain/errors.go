package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown record kind, file format or store backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrStoreUnavailable indicates no document store is configured or reachable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// Load Errors.

	// ErrSourceRead indicates a record source is missing, unreadable or malformed.
	ErrSourceRead = errors.New("source read failure")

	// ErrWrite indicates the store rejected or failed to acknowledge a batch write.
	ErrWrite = errors.New("write failure")
)

// SourceReadError reports a record source that could not be fully materialised.
type SourceReadError struct {
	// Path identifies the source (usually a file path).
	Path string

	// Offset is the 0-based position of the record that failed to read.
	Offset int

	Err error
}

func (e *SourceReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("source read failure at record %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("source read failure: %s at record %d: %v", e.Path, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceReadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSourceRead.
func (e *SourceReadError) Is(target error) bool {
	return target == ErrSourceRead
}

// WriteError reports a batch that the store did not durably accept.
type WriteError struct {
	Collection string

	// Sequence is the 0-based number of the batch within the run.
	Sequence int

	// Start is the source offset of the first record in the batch.
	Start int

	// Size is the number of records in the rejected batch.
	Size int

	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failure: collection %s batch %d (records %d-%d): %v",
		e.Collection, e.Sequence, e.Start, e.Start+e.Size-1, e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}

// IsSourceReadFailure reports whether err is a source read failure.
func IsSourceReadFailure(err error) bool {
	return errors.Is(err, ErrSourceRead)
}

// IsWriteFailure reports whether err is a batch write failure.
func IsWriteFailure(err error) bool {
	return errors.Is(err, ErrWrite)
}
