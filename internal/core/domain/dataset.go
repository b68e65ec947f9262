package domain

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// RecordKind identifies the type of rows held by a dataset file.
type RecordKind string

// Known record kinds.
const (
	// KindListings holds one row per rental listing.
	KindListings RecordKind = "listings"

	// KindReviews holds one row per guest review.
	KindReviews RecordKind = "reviews"
)

// AllKinds returns every known record kind in load order.
func AllKinds() []RecordKind {
	return []RecordKind{KindListings, KindReviews}
}

// IsValid returns true if the kind is recognised.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindListings, KindReviews:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k RecordKind) String() string {
	return string(k)
}

// DatasetFileName returns the staged name of a dataset file, e.g. "82listings.json".
func DatasetFileName(index int, kind RecordKind, ext string) string {
	return strconv.Itoa(index) + string(kind) + "." + strings.TrimPrefix(ext, ".")
}

// ParseDatasetFileName splits a staged file name into its index, kind and extension.
// It returns ok=false for names that do not follow the "<index><kind>.<ext>" pattern.
func ParseDatasetFileName(name string) (index int, kind RecordKind, ext string, ok bool) {
	base := path.Base(name)
	dot := strings.IndexByte(base, '.')
	if dot <= 0 {
		return 0, "", "", false
	}
	stem, ext := base[:dot], base[dot+1:]

	digits := 0
	for digits < len(stem) && stem[digits] >= '0' && stem[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return 0, "", "", false
	}

	index, err := strconv.Atoi(stem[:digits])
	if err != nil {
		return 0, "", "", false
	}
	kind = RecordKind(stem[digits:])
	if !kind.IsValid() {
		return 0, "", "", false
	}
	return index, kind, ext, true
}

// ParseIndices parses a comma-separated index list. Inclusive ranges such
// as "1-5" are expanded and duplicates are dropped.
func ParseIndices(s string) ([]int, error) {
	var out []int
	seen := make(map[int]bool)
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || first < 0 {
			return nil, fmt.Errorf("%w: bad index %q", ErrInvalidInput, part)
		}
		if !isRange {
			add(first)
			continue
		}
		last, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || last < first {
			return nil, fmt.Errorf("%w: bad index range %q", ErrInvalidInput, part)
		}
		for n := first; n <= last; n++ {
			add(n)
		}
	}
	return out, nil
}

// DatasetLink is one downloadable archive found on the dataset listing page.
type DatasetLink struct {
	URL     string
	Country string
	Region  string
	City    string

	// Date is the snapshot date as published (YYYY-MM-DD).
	Date string

	Kind RecordKind

	// Archived is true when the link belongs to an older snapshot row.
	Archived bool
}

// RelPath returns the download location relative to the download root.
func (l DatasetLink) RelPath() string {
	return path.Join(l.Country, l.Region, l.City, l.Date, string(l.Kind)+".csv")
}

// StagedFile records one file moved into the staging directory.
type StagedFile struct {
	From  string
	To    string
	Index int
}

// ConvertResult describes one CSV file converted to a JSON record array.
type ConvertResult struct {
	Source      string
	Destination string
	Records     int
}

// FileSummary describes one JSON dataset file.
type FileSummary struct {
	Name  string `json:"name" yaml:"name"`
	Index int    `json:"index" yaml:"index"`
	Kind  string `json:"kind" yaml:"kind"`

	Records int `json:"records" yaml:"records"`

	// SizeMiB is the file size in whole mebibytes, rounded down.
	SizeMiB int64 `json:"size_mib" yaml:"size_mib"`

	// HostLocation is the host_location of the first record, if any.
	HostLocation string `json:"host_location" yaml:"host_location"`
}
