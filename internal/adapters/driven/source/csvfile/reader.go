// Package csvfile reads raw dataset CSV files as records, inferring scalar
// types and applying the configured cell cleanup.
package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.RecordSource = (*Reader)(nil)

const utf8BOM = "\uFEFF"

// Reader yields one record per CSV row, keyed by the header row.
type Reader struct {
	path    string
	closer  io.Closer
	csv     *csv.Reader
	cleaner *Cleaner
	headers []string
	offset  int
}

// Open opens path for streaming.
func Open(path string, clean domain.CleanSettings) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.SourceReadError{Path: path, Err: err}
	}
	r := NewReader(bufio.NewReader(f), path, clean)
	r.closer = f
	return r, nil
}

// NewReader wraps an io.Reader. name labels errors.
func NewReader(rd io.Reader, name string, clean domain.CleanSettings) *Reader {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return &Reader{
		path:    name,
		csv:     cr,
		cleaner: NewCleaner(clean),
	}
}

// Headers returns the column names, or nil before the first Next call.
func (r *Reader) Headers() []string {
	return r.headers
}

// Next returns the next row as a record, or io.EOF at end of input.
// A file with no header row is an empty source.
func (r *Reader) Next(ctx context.Context) (domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.headers == nil {
		if err := r.readHeader(); err != nil {
			return nil, err
		}
	}

	row, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &domain.SourceReadError{Path: r.path, Offset: r.offset, Err: err}
	}

	if len(row) > len(r.headers) {
		return nil, &domain.SourceReadError{
			Path:   r.path,
			Offset: r.offset,
			Err:    fmt.Errorf("%w: row has %d cells for %d columns", domain.ErrInvalidInput, len(row), len(r.headers)),
		}
	}

	rec := make(domain.Record, 0, len(r.headers))
	for i, h := range r.headers {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if v, keep := r.cleaner.Value(h, cell); keep {
			rec = append(rec, domain.Field{Key: h, Value: v})
		}
	}
	r.offset++
	return rec, nil
}

func (r *Reader) readHeader() error {
	row, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	if err != nil {
		return &domain.SourceReadError{Path: r.path, Err: fmt.Errorf("header: %w", err)}
	}
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.TrimSpace(h)
	}
	headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	r.headers = dedupeHeaders(headers)
	return nil
}

// dedupeHeaders renames repeated column names to name.1, name.2 and so on,
// skipping any suffix that is already taken by another column.
func dedupeHeaders(headers []string) []string {
	taken := make(map[string]bool, len(headers))
	for _, h := range headers {
		taken[h] = true
	}
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		n := seen[h]
		seen[h] = n + 1
		if n == 0 {
			out[i] = h
			continue
		}
		name := fmt.Sprintf("%s.%d", h, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
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
