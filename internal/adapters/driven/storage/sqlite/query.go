package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

var _ driven.CollectionQuerier = (*Store)(nil)

// Numeric filters only match JSON numbers; text never compares as a number.
const (
	findListingsSQL = `
		SELECT body FROM documents
		WHERE collection = ?
			AND json_type(body, '$.price') IN ('integer', 'real')
			AND json_extract(body, '$.price') <= ?
			AND json_type(body, '$.minimum_nights_avg_ntm') IN ('integer', 'real')
			AND json_extract(body, '$.minimum_nights_avg_ntm') = ?
		ORDER BY json_extract(body, '$.price'), id
		LIMIT ?`

	countBedroomsSQL = `
		SELECT COUNT(*) FROM documents
		WHERE collection = ?
			AND json_type(body, '$.bedrooms') IN ('integer', 'real')
			AND json_extract(body, '$.bedrooms') > ?`

	// Zipcodes are numbers or digit-only strings.
	zipcodeRangeSQL = `
			AND (json_type(body, '$.zipcode') IN ('integer', 'real')
				OR (json_type(body, '$.zipcode') = 'text'
					AND json_extract(body, '$.zipcode') <> ''
					AND json_extract(body, '$.zipcode') NOT GLOB '*[^0-9]*'))
			AND CAST(json_extract(body, '$.zipcode') AS INTEGER) BETWEEN ? AND ?`

	citySQL = `
			AND json_extract(body, '$.city') = ?`
)

// CollectionExists reports whether any document is stored under name.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	row := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM documents WHERE collection = ?)", name)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return exists, nil
}

// FindListings returns listings matching q, cheapest first.
func (s *Store) FindListings(ctx context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error) {
	limit := -1
	if q.Limit > 0 {
		limit = q.Limit
	}

	rows, err := s.db.QueryContext(ctx, findListingsSQL, collection, q.MaxPrice, q.MinimumNights, limit)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decoding listing: %w", err)
		}
		out = append(out, rec.Project(domain.ListingFields))
	}
	return out, rows.Err()
}

// CountListings counts listings matching q.
func (s *Store) CountListings(ctx context.Context, collection string, q domain.BedroomCountQuery) (int64, error) {
	query := countBedroomsSQL
	args := []any{collection, q.MinBedrooms}
	if q.ByZipcode() {
		query += zipcodeRangeSQL
		args = append(args, q.ZipFrom, q.ZipTo)
	} else {
		query += citySQL
		args = append(args, q.City)
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}
	return n, nil
}
