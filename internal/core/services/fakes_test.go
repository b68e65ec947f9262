package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// sliceSource yields records from a slice, optionally failing at failAt.
type sliceSource struct {
	records []domain.Record
	pos     int
	failAt  int
	failErr error
	closed  bool
}

func newSliceSource(n int) *sliceSource {
	return &sliceSource{records: makeRecords(n), failAt: -1}
}

func (s *sliceSource) Next(_ context.Context) (domain.Record, error) {
	if s.pos == s.failAt {
		return nil, s.failErr
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func makeRecords(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{
			{Key: "id", Value: int64(i)},
			{Key: "name", Value: fmt.Sprintf("listing %d", i)},
		}
	}
	return out
}

// scriptedCollection records every batch and fails or under-acknowledges on request.
type scriptedCollection struct {
	name     string
	batches  [][]domain.Record
	failOn   map[int]error
	shortAck map[int]int
}

func newScriptedCollection(name string) *scriptedCollection {
	return &scriptedCollection{name: name, failOn: map[int]error{}, shortAck: map[int]int{}}
}

func (c *scriptedCollection) Name() string { return c.name }

func (c *scriptedCollection) InsertMany(_ context.Context, records []domain.Record) (domain.Ack, error) {
	call := len(c.batches)
	if err, ok := c.failOn[call]; ok {
		c.batches = append(c.batches, nil)
		return domain.Ack{}, err
	}
	c.batches = append(c.batches, records)
	if n, ok := c.shortAck[call]; ok {
		return domain.Ack{Inserted: n}, nil
	}
	return domain.Ack{Inserted: len(records)}, nil
}

func (c *scriptedCollection) written() []domain.Record {
	var out []domain.Record
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

func (c *scriptedCollection) sizes() []int {
	out := make([]int, len(c.batches))
	for i, b := range c.batches {
		out[i] = len(b)
	}
	return out
}

const testTarget = "mongo:localhost:27017/airbnb"

// staticProvider hands out pre-built collections.
type staticProvider struct {
	collections map[string]driven.Collection
	target      string
	err         error
}

func (p *staticProvider) Target() string {
	if p.target == "" {
		return testTarget
	}
	return p.target
}

func (p *staticProvider) Collection(_ context.Context, name string) (driven.Collection, error) {
	if p.err != nil {
		return nil, p.err
	}
	c, ok := p.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	return c, nil
}

func (p *staticProvider) Close(_ context.Context) error { return nil }

// mapOpener serves sources by path.
type mapOpener struct {
	sources map[string]*sliceSource
}

func (o *mapOpener) Open(_ context.Context, path string) (driven.RecordSource, error) {
	src, ok := o.sources[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, errNoSuchFile)
	}
	return src, nil
}

var errNoSuchFile = errors.New("no such file")
