package driving

import (
	"context"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

// QueryService runs read queries against loaded listings.
type QueryService interface {
	// Exists reports whether a collection holds documents in the store.
	Exists(ctx context.Context, collection string) (bool, error)

	// Listings returns listings matching q, cheapest first.
	Listings(ctx context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error)

	// CountBedrooms counts listings matching q.
	CountBedrooms(ctx context.Context, collection string, q domain.BedroomCountQuery) (int64, error)
}
