package domain

import "fmt"

// ListingFields are the fields returned by a listing query, in display order.
var ListingFields = []string{
	"id",
	"price",
	"neighbourhood_cleansed",
	"accommodates",
	"smart_location",
	"minimum_nights_avg_ntm",
}

// ListingQuery selects listings costing at most MaxPrice whose average
// minimum stay equals MinimumNights. Results are sorted by price, cheapest
// first, and carry only ListingFields.
type ListingQuery struct {
	MaxPrice      float64
	MinimumNights float64

	// Limit caps the number of results; 0 returns all matches.
	Limit int
}

// Validate checks the query bounds.
func (q ListingQuery) Validate() error {
	if q.MaxPrice < 0 {
		return fmt.Errorf("%w: max price must not be negative", ErrInvalidInput)
	}
	if q.MinimumNights < 0 {
		return fmt.Errorf("%w: minimum nights must not be negative", ErrInvalidInput)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	return nil
}

// DefaultListingQueries are the price and stay pairs queried when none are given.
func DefaultListingQueries() []ListingQuery {
	return []ListingQuery{
		{MaxPrice: 20, MinimumNights: 1},
		{MaxPrice: 100, MinimumNights: 7},
		{MaxPrice: 700, MinimumNights: 31},
	}
}

// BedroomCountQuery counts listings with more than MinBedrooms bedrooms in
// an inclusive zipcode range or, when no range is set, in one city.
type BedroomCountQuery struct {
	MinBedrooms int

	ZipFrom int
	ZipTo   int

	City string
}

// ByZipcode reports whether the query filters on the zipcode range.
func (q BedroomCountQuery) ByZipcode() bool {
	return q.ZipFrom >= 0 && q.ZipTo > 0
}

// Validate requires a usable zipcode range or a city.
func (q BedroomCountQuery) Validate() error {
	switch {
	case q.ByZipcode():
		if q.ZipFrom > q.ZipTo {
			return fmt.Errorf("%w: zipcode range %d-%d is reversed", ErrInvalidInput, q.ZipFrom, q.ZipTo)
		}
		return nil
	case q.City != "":
		return nil
	default:
		return fmt.Errorf("%w: a zipcode range or a city is required", ErrInvalidInput)
	}
}

// String describes the filter for log and report lines.
func (q BedroomCountQuery) String() string {
	if q.ByZipcode() {
		return fmt.Sprintf("over %d bedrooms in zipcodes %d-%d", q.MinBedrooms, q.ZipFrom, q.ZipTo)
	}
	return fmt.Sprintf("over %d bedrooms in %s", q.MinBedrooms, q.City)
}

// DefaultBedroomCountQueries count downtown Portland listings with more than
// two bedrooms, once by zipcode and once by city.
func DefaultBedroomCountQueries() []BedroomCountQuery {
	return []BedroomCountQuery{
		{MinBedrooms: 2, ZipFrom: 97201, ZipTo: 97210},
		{MinBedrooms: 2, City: "Portland"},
	}
}

// Project returns a record holding only the named fields present in r, in
// the order of fields.
func (r Record) Project(fields []string) Record {
	out := make(Record, 0, len(fields))
	for _, key := range fields {
		if v, ok := r.Get(key); ok {
			out = append(out, Field{Key: key, Value: v})
		}
	}
	return out
}
