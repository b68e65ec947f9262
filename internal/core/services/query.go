package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
	"github.com/PieMyth/CloudCluster/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers listing queries from the configured store.
type QueryService struct {
	stores driven.CollectionProvider
}

// NewQueryService creates a new query service.
func NewQueryService(stores driven.CollectionProvider) *QueryService {
	return &QueryService{stores: stores}
}

// Exists reports whether a collection holds documents.
func (s *QueryService) Exists(ctx context.Context, collection string) (bool, error) {
	querier, err := s.querier(collection)
	if err != nil {
		return false, err
	}
	ok, err := querier.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return ok, nil
}

// Listings returns listings matching q, cheapest first.
func (s *QueryService) Listings(ctx context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	querier, err := s.querier(collection)
	if err != nil {
		return nil, err
	}

	logger.Debug("querying %s: price <= %g, minimum nights %g", collection, q.MaxPrice, q.MinimumNights)
	records, err := querier.FindListings(ctx, collection, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return records, nil
}

// CountBedrooms counts listings matching q.
func (s *QueryService) CountBedrooms(ctx context.Context, collection string, q domain.BedroomCountQuery) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	querier, err := s.querier(collection)
	if err != nil {
		return 0, err
	}

	logger.Debug("counting %s: %s", collection, q)
	n, err := querier.CountListings(ctx, collection, q)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

func (s *QueryService) querier(collection string) (driven.CollectionQuerier, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("%w: collection name is required", domain.ErrInvalidInput)
	}
	querier, ok := s.stores.(driven.CollectionQuerier)
	if !ok {
		return nil, fmt.Errorf("%w: store cannot run queries", domain.ErrUnsupportedType)
	}
	return querier, nil
}
