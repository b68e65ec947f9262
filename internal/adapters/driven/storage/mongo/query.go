package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

var _ driven.CollectionQuerier = (*Store)(nil)

// ListingFilter matches listings costing at most q.MaxPrice with an average
// minimum stay of exactly q.MinimumNights.
func ListingFilter(q domain.ListingQuery) bson.D {
	return bson.D{
		{Key: "price", Value: bson.D{{Key: "$lte", Value: q.MaxPrice}}},
		{Key: "minimum_nights_avg_ntm", Value: q.MinimumNights},
	}
}

// ListingProjection keeps domain.ListingFields and drops _id.
func ListingProjection() bson.D {
	proj := bson.D{{Key: "_id", Value: 0}}
	for _, f := range domain.ListingFields {
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}

// BedroomCountFilter matches listings with more than q.MinBedrooms bedrooms
// in the zipcode range, or in q.City when no range is set. Zipcodes stored
// as strings are converted before comparing; unconvertible ones never match.
func BedroomCountFilter(q domain.BedroomCountQuery) bson.D {
	filter := bson.D{{Key: "bedrooms", Value: bson.D{{Key: "$gt", Value: q.MinBedrooms}}}}
	if !q.ByZipcode() {
		return append(filter, bson.E{Key: "city", Value: q.City})
	}

	zipcode := bson.D{{Key: "$convert", Value: bson.D{
		{Key: "input", Value: "$zipcode"},
		{Key: "to", Value: "int"},
		{Key: "onError", Value: nil},
		{Key: "onNull", Value: nil},
	}}}
	return append(filter, bson.E{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$gte", Value: bson.A{zipcode, q.ZipFrom}}},
		bson.D{{Key: "$lte", Value: bson.A{zipcode, q.ZipTo}}},
	}}}})
}

// CollectionExists reports whether the database lists the collection.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("listing collections: %w", err)
	}
	return len(names) > 0, nil
}

// FindListings returns matching listings sorted by price.
func (s *Store) FindListings(ctx context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error) {
	opts := options.Find().
		SetProjection(ListingProjection()).
		SetSort(bson.D{{Key: "price", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(collection).Find(ctx, ListingFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}

	out := make([]domain.Record, len(docs))
	for i, doc := range docs {
		out[i] = FromDocument(doc).Project(domain.ListingFields)
	}
	return out, nil
}

// CountListings counts listings matching q.
func (s *Store) CountListings(ctx context.Context, collection string, q domain.BedroomCountQuery) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, BedroomCountFilter(q))
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}
