// Package jsonfile reads and writes dataset files holding one JSON array
// of record objects.
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.RecordSource = (*Reader)(nil)

const readBufferSize = 256 << 10

// Reader streams records out of a JSON array without loading the whole file.
type Reader struct {
	path   string
	closer io.Closer
	dec    *json.Decoder

	offset  int
	started bool
	done    bool
}

// Open opens path for streaming.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.SourceReadError{Path: path, Err: err}
	}
	r := NewReader(bufio.NewReaderSize(f, readBufferSize), path)
	r.closer = f
	return r, nil
}

// NewReader wraps an io.Reader. name labels errors.
func NewReader(rd io.Reader, name string) *Reader {
	dec := json.NewDecoder(rd)
	dec.UseNumber()
	return &Reader{path: name, dec: dec}
}

// Next returns the next record, or io.EOF after the closing bracket.
func (r *Reader) Next(ctx context.Context) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.done {
		return nil, io.EOF
	}
	if !r.started {
		if err := r.expectDelim('['); err != nil {
			return nil, r.fail(err)
		}
		r.started = true
	}

	if !r.dec.More() {
		if err := r.expectDelim(']'); err != nil {
			return nil, r.fail(err)
		}
		r.done = true
		return nil, io.EOF
	}

	v, err := domain.DecodeValue(r.dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, r.fail(err)
	}
	rec, ok := v.(domain.Record)
	if !ok {
		return nil, r.fail(fmt.Errorf("%w: array element is %T, not an object", domain.ErrInvalidInput, v))
	}
	r.offset++
	return rec, nil
}

func (r *Reader) expectDelim(want json.Delim) error {
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", domain.ErrInvalidInput, want, tok)
	}
	return nil
}

func (r *Reader) fail(err error) error {
	return &domain.SourceReadError{Path: r.path, Offset: r.offset, Err: err}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
