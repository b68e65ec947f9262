package memory

import (
	"context"
	"sort"
	"strconv"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

var _ driven.CollectionQuerier = (*Store)(nil)

// CollectionExists reports whether the collection holds any records.
func (s *Store) CollectionExists(_ context.Context, name string) (bool, error) {
	c, ok := s.lookup(name)
	return ok && c.Len() > 0, nil
}

// FindListings scans the collection for listings matching q.
func (s *Store) FindListings(_ context.Context, collection string, q domain.ListingQuery) ([]domain.Record, error) {
	c, ok := s.lookup(collection)
	if !ok {
		return nil, nil
	}

	type match struct {
		price float64
		rec   domain.Record
	}
	var matches []match
	for _, rec := range c.Records() {
		price, ok := numberField(rec, "price")
		if !ok || price > q.MaxPrice {
			continue
		}
		nights, ok := numberField(rec, "minimum_nights_avg_ntm")
		if !ok || nights != q.MinimumNights {
			continue
		}
		matches = append(matches, match{price: price, rec: rec.Project(domain.ListingFields)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].price < matches[j].price })

	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	out := make([]domain.Record, len(matches))
	for i, m := range matches {
		out[i] = m.rec
	}
	return out, nil
}

// CountListings counts listings matching q.
func (s *Store) CountListings(_ context.Context, collection string, q domain.BedroomCountQuery) (int64, error) {
	c, ok := s.lookup(collection)
	if !ok {
		return 0, nil
	}

	var n int64
	for _, rec := range c.Records() {
		bedrooms, ok := numberField(rec, "bedrooms")
		if !ok || bedrooms <= float64(q.MinBedrooms) {
			continue
		}
		if q.ByZipcode() {
			zip, ok := zipcodeField(rec)
			if !ok || zip < q.ZipFrom || zip > q.ZipTo {
				continue
			}
		} else if city, _ := rec.Get("city"); city != q.City {
			continue
		}
		n++
	}
	return n, nil
}

func (s *Store) lookup(name string) (*Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	return c, ok
}

func numberField(rec domain.Record, key string) (float64, bool) {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// zipcodeField reads zipcodes stored either as numbers or as digit strings.
func zipcodeField(rec domain.Record) (int, bool) {
	v, _ := rec.Get("zipcode")
	switch z := v.(type) {
	case string:
		n, err := strconv.Atoi(z)
		return n, err == nil
	default:
		f, ok := numberField(rec, "zipcode")
		return int(f), ok
	}
}
