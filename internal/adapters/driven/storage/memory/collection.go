package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

// Ensure Store and Collection implement the interfaces.
var (
	_ driven.CollectionProvider = (*Store)(nil)
	_ driven.CollectionCounter  = (*Store)(nil)
	_ driven.Collection         = (*Collection)(nil)
)

// Store is an in-memory implementation of driven.CollectionProvider.
// Collections are created on first use and live until the process exits.
type Store struct {
	id          string
	mu          sync.Mutex
	collections map[string]*Collection
}

// NewStore creates a new in-memory document store.
func NewStore() *Store {
	return &Store{
		id:          uuid.NewString(),
		collections: make(map[string]*Collection),
	}
}

// Target identifies this store instance. Its contents do not outlive the
// process, so no two stores share a target.
func (s *Store) Target() string {
	return "memory:" + s.id
}

// Collection returns the named collection, creating it if absent.
func (s *Store) Collection(_ context.Context, name string) (driven.Collection, error) {
	return s.collection(name), nil
}

func (s *Store) collection(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = NewCollection(name)
		s.collections[name] = c
	}
	return c
}

// CountDocuments returns the number of documents in a collection.
func (s *Store) CountDocuments(_ context.Context, name string) (int64, error) {
	c, ok := s.lookup(name)
	if !ok {
		return 0, nil
	}
	return int64(c.Len()), nil
}

// Names returns the collection names in sorted order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// Collection is an append-only in-memory record list.
type Collection struct {
	name string

	mu      sync.RWMutex
	records []domain.Record
	batches []int
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{name: name}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// InsertMany appends a copy of records as one batch.
func (c *Collection) InsertMany(_ context.Context, records []domain.Record) (domain.Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
	c.batches = append(c.batches, len(records))
	return domain.Ack{Inserted: len(records)}, nil
}

// Records returns a copy of all stored records in insertion order.
func (c *Collection) Records() []domain.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Record, len(c.records))
	copy(out, c.records)
	return out
}

// BatchSizes returns the size of every InsertMany call, in order.
func (c *Collection) BatchSizes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int, len(c.batches))
	copy(out, c.batches)
	return out
}

// Len returns the number of stored records.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
