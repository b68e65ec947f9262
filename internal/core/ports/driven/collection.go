package driven

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// Collection is a named, schemaless, append-only container of records.
// The batch loader needs nothing beyond this single write capability.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// InsertMany writes records in one call and returns the store's acknowledgement.
	// Implementations must not retain or mutate the records slice.
	InsertMany(ctx context.Context, records []domain.Record) (domain.Ack, error)
}

// CollectionProvider resolves collections in a store.
// Collections are created implicitly by the first write if absent.
type CollectionProvider interface {
	// Collection returns a handle to the named collection.
	Collection(ctx context.Context, name string) (Collection, error)

	// Target identifies the backend and database, e.g. "sqlite:/data/cloudcluster.db".
	// It never contains credentials. Checkpoints are scoped by it.
	Target() string

	// Close releases connections held by the provider.
	Close(ctx context.Context) error
}

// CollectionCounter reports the number of documents in a collection.
type CollectionCounter interface {
	CountDocuments(ctx context.Context, name string) (int64, error)
}

// CollectionQuerier runs read queries against stored listings.
type CollectionQuerier interface {
	// CollectionExists reports whether the named collection holds documents.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// FindListings returns matching listings projected to domain.ListingFields,
	// cheapest first.
	FindListings(ctx context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error)

	// CountListings counts listings matching a bedroom count query.
	CountListings(ctx context.Context, collection string, q domain.BedroomCountQuery) (int64, error)
}
