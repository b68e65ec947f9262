package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// StoreBackend identifies the document store records are loaded into.
type StoreBackend string

// Available store backends.
const (
	// StoreMongo is a remote MongoDB deployment (Atlas or self-hosted).
	StoreMongo StoreBackend = "mongo"

	// StoreSQLite is a local SQLite document table.
	StoreSQLite StoreBackend = "sqlite"

	// StoreMemory keeps documents in process memory (dry runs).
	StoreMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreMongo, StoreSQLite, StoreMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreMongo:
		return "MongoDB (remote)"
	case StoreSQLite:
		return "SQLite (local file)"
	case StoreMemory:
		return "In-memory (dry run)"
	default:
		return unknownDescription
	}
}

// StoreSettings configures the target document store.
type StoreSettings struct {
	Backend StoreBackend

	// URI is the connection string, including credentials and options.
	URI string

	// Database is the database that holds the collections.
	Database string

	// WriteConcern is "majority", a replica count such as "1", or empty to
	// use whatever the connection string specifies.
	WriteConcern string

	// DataDir holds local state: the SQLite store and load checkpoints.
	DataDir string
}

// PathSettings configures the on-disk pipeline directories.
type PathSettings struct {
	// DownloadDir receives decompressed archives in <country>/<region>/<city>/<date>/ folders.
	DownloadDir string

	// StagingDir holds flat, indexed CSV files (<index><kind>.csv).
	StagingDir string

	// JSONDir holds converted record arrays (<index><kind>.json).
	JSONDir string
}

// CollectionSettings configures loading of one record kind.
type CollectionSettings struct {
	// Name is the target collection.
	Name string

	// BatchSize is the maximum number of records per write call.
	BatchSize int

	// Indices lists the staged file indices to load.
	Indices []int
}

// FetchSettings configures dataset discovery and download.
type FetchSettings struct {
	IndexURL          string
	RequestsPerSecond float64
	Workers           int
	Kinds             []RecordKind

	// LatestOnly keeps only the newest snapshot per city.
	LatestOnly bool
}

// CleanSettings configures CSV cell cleanup during conversion.
type CleanSettings struct {
	// CurrencyFields have "$" and "," stripped and are parsed as floats.
	CurrencyFields []string

	// PercentFields have "%" and "," stripped and are parsed as floats.
	PercentFields []string

	// ZipcodeFields keep only their first run of digits.
	ZipcodeFields []string

	// DropEmpty omits empty cells from records.
	DropEmpty bool
}

// LoggingSettings configures diagnostic output.
type LoggingSettings struct {
	Level  string
	Format string
}

// AppSettings holds all application configuration.
type AppSettings struct {
	Store    StoreSettings
	Paths    PathSettings
	Listings CollectionSettings
	Reviews  CollectionSettings
	Fetch    FetchSettings
	Clean    CleanSettings
	Logging  LoggingSettings
}

// Default batch sizes. Review rows are smaller than listing rows, so more
// of them fit under the same request payload ceiling.
const (
	DefaultListingsBatchSize = 100
	DefaultReviewsBatchSize  = 1000
)

// DefaultIndexURL is the public dataset listing page.
const DefaultIndexURL = "https://insideairbnb.com/get-the-data/"

// DefaultAppSettings returns the default application settings.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			Backend:      StoreMongo,
			Database:     "airbnb",
			WriteConcern: "majority",
		},
		Paths: PathSettings{
			DownloadDir: "csv_files",
			StagingDir:  "all_files",
			JSONDir:     "all_json",
		},
		Listings: CollectionSettings{
			Name:      "listings",
			BatchSize: DefaultListingsBatchSize,
		},
		Reviews: CollectionSettings{
			Name:      "reviews",
			BatchSize: DefaultReviewsBatchSize,
		},
		Fetch: FetchSettings{
			IndexURL:          DefaultIndexURL,
			RequestsPerSecond: 2,
			Workers:           2,
			Kinds:             AllKinds(),
		},
		Clean: CleanSettings{
			CurrencyFields: []string{
				"price", "weekly_price", "monthly_price",
				"security_deposit", "cleaning_fee", "extra_people",
			},
			PercentFields: []string{"host_response_rate", "host_acceptance_rate"},
			ZipcodeFields: []string{"zipcode"},
			DropEmpty:     true,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// CollectionFor returns the collection settings for a record kind.
func (s *AppSettings) CollectionFor(kind RecordKind) (CollectionSettings, error) {
	switch kind {
	case KindListings:
		return s.Listings, nil
	case KindReviews:
		return s.Reviews, nil
	default:
		return CollectionSettings{}, fmt.Errorf("%w: record kind %q", ErrUnsupportedType, kind)
	}
}

// Validate checks that the settings are usable for loading.
func (s *AppSettings) Validate() error {
	if !s.Store.Backend.IsValid() {
		return fmt.Errorf("%w: store backend %q", ErrUnsupportedType, s.Store.Backend)
	}
	if s.Store.Backend == StoreMongo {
		if s.Store.URI == "" {
			return fmt.Errorf("%w: store.uri is required for the mongo backend", ErrInvalidInput)
		}
		if s.Store.Database == "" {
			return fmt.Errorf("%w: store.database is required", ErrInvalidInput)
		}
	}
	for _, c := range []CollectionSettings{s.Listings, s.Reviews} {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: collection name is required", ErrInvalidInput)
		}
		if c.BatchSize < 1 {
			return fmt.Errorf("%w: %s batch size must be at least 1, got %d",
				ErrInvalidInput, c.Name, c.BatchSize)
		}
	}
	return nil
}
