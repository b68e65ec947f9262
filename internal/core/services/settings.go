package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
	"github.com/PieMyth/CloudCluster/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyStoreBackend      = "store.backend"
	keyStoreURI          = "store.uri"
	keyStoreDatabase     = "store.database"
	keyStoreWriteConcern = "store.write_concern"
	keyStoreDataDir      = "store.data_dir"

	keyDownloadDir = "paths.download_dir"
	keyStagingDir  = "paths.staging_dir"
	keyJSONDir     = "paths.json_dir"

	keyListingsCollection = "listings.collection"
	keyListingsBatchSize  = "listings.batch_size"
	keyListingsIndices    = "listings.indices"
	keyReviewsCollection  = "reviews.collection"
	keyReviewsBatchSize   = "reviews.batch_size"
	keyReviewsIndices     = "reviews.indices"

	keyFetchIndexURL   = "fetch.index_url"
	keyFetchRate       = "fetch.requests_per_second"
	keyFetchWorkers    = "fetch.workers"
	keyFetchKinds      = "fetch.kinds"
	keyFetchLatestOnly = "fetch.latest_only"

	keyCleanCurrency = "clean.currency_fields"
	keyCleanPercent  = "clean.percent_fields"
	keyCleanZipcode  = "clean.zipcode_fields"
	keyCleanDrop     = "clean.drop_empty"

	keyLogLevel  = "logging.level"
	keyLogFormat = "logging.format"
)

// Environment variables that override the config file.
const (
	EnvMongoURI = "CLOUDCLUSTER_MONGO_URI"
	EnvDatabase = "CLOUDCLUSTER_DATABASE"
	EnvStore    = "CLOUDCLUSTER_STORE"
	EnvLogLevel = "CLOUDCLUSTER_LOG_LEVEL"
)

type valueType int

const (
	typeString valueType = iota
	typeInt
	typeFloat
	typeBool
	typeStringList
	typeIntList
)

var settingTypes = map[string]valueType{
	keyStoreBackend:       typeString,
	keyStoreURI:           typeString,
	keyStoreDatabase:      typeString,
	keyStoreWriteConcern:  typeString,
	keyStoreDataDir:       typeString,
	keyDownloadDir:        typeString,
	keyStagingDir:         typeString,
	keyJSONDir:            typeString,
	keyListingsCollection: typeString,
	keyListingsBatchSize:  typeInt,
	keyListingsIndices:    typeIntList,
	keyReviewsCollection:  typeString,
	keyReviewsBatchSize:   typeInt,
	keyReviewsIndices:     typeIntList,
	keyFetchIndexURL:      typeString,
	keyFetchRate:          typeFloat,
	keyFetchWorkers:       typeInt,
	keyFetchKinds:         typeStringList,
	keyFetchLatestOnly:    typeBool,
	keyCleanCurrency:      typeStringList,
	keyCleanPercent:       typeStringList,
	keyCleanZipcode:       typeStringList,
	keyCleanDrop:          typeBool,
	keyLogLevel:           typeString,
	keyLogFormat:          typeString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get returns the defaults overlaid by the config file, then by the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Backend:      domain.StoreBackend(s.getString(keyStoreBackend, d.Store.Backend.String())),
			URI:          s.configStore.GetString(keyStoreURI),
			Database:     s.getString(keyStoreDatabase, d.Store.Database),
			WriteConcern: s.getString(keyStoreWriteConcern, d.Store.WriteConcern),
			DataDir:      s.getString(keyStoreDataDir, s.defaultDataDir()),
		},
		Paths: domain.PathSettings{
			DownloadDir: s.getString(keyDownloadDir, d.Paths.DownloadDir),
			StagingDir:  s.getString(keyStagingDir, d.Paths.StagingDir),
			JSONDir:     s.getString(keyJSONDir, d.Paths.JSONDir),
		},
		Listings: domain.CollectionSettings{
			Name:      s.getString(keyListingsCollection, d.Listings.Name),
			BatchSize: s.getInt(keyListingsBatchSize, d.Listings.BatchSize),
			Indices:   s.configStore.GetIntSlice(keyListingsIndices),
		},
		Reviews: domain.CollectionSettings{
			Name:      s.getString(keyReviewsCollection, d.Reviews.Name),
			BatchSize: s.getInt(keyReviewsBatchSize, d.Reviews.BatchSize),
			Indices:   s.configStore.GetIntSlice(keyReviewsIndices),
		},
		Fetch: domain.FetchSettings{
			IndexURL:          s.getString(keyFetchIndexURL, d.Fetch.IndexURL),
			RequestsPerSecond: s.getFloat(keyFetchRate, d.Fetch.RequestsPerSecond),
			Workers:           s.getInt(keyFetchWorkers, d.Fetch.Workers),
			Kinds:             s.getKinds(keyFetchKinds, d.Fetch.Kinds),
			LatestOnly:        s.getBool(keyFetchLatestOnly, d.Fetch.LatestOnly),
		},
		Clean: domain.CleanSettings{
			CurrencyFields: s.getStrings(keyCleanCurrency, d.Clean.CurrencyFields),
			PercentFields:  s.getStrings(keyCleanPercent, d.Clean.PercentFields),
			ZipcodeFields:  s.getStrings(keyCleanZipcode, d.Clean.ZipcodeFields),
			DropEmpty:      s.getBool(keyCleanDrop, d.Clean.DropEmpty),
		},
		Logging: domain.LoggingSettings{
			Level:  s.getString(keyLogLevel, d.Logging.Level),
			Format: s.getString(keyLogFormat, d.Logging.Format),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v, ok := s.env(EnvMongoURI); ok {
		settings.Store.URI = v
	}
	if v, ok := s.env(EnvDatabase); ok {
		settings.Store.Database = v
	}
	if v, ok := s.env(EnvStore); ok {
		settings.Store.Backend = domain.StoreBackend(strings.ToLower(v))
	}
	if v, ok := s.env(EnvLogLevel); ok {
		settings.Logging.Level = strings.ToLower(v)
	}
}

func (s *SettingsService) env(name string) (string, bool) {
	v, ok := s.lookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// defaultDataDir keeps local state next to the config file.
func (s *SettingsService) defaultDataDir() string {
	p := s.configStore.Path()
	if p == "" || !filepath.IsAbs(p) {
		return ""
	}
	return filepath.Dir(p)
}

// Set coerces value to the key's type, validates it and persists it.
// List values are comma separated; index lists accept ranges such as "1-5".
func (s *SettingsService) Set(key, value string) error {
	typ, ok := settingTypes[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	v, err := coerce(typ, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := validateSetting(key, v); err != nil {
		return err
	}
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingTypes))
	for k := range settingTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func coerce(typ valueType, value string) (any, error) {
	switch typ {
	case typeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, value)
		}
		return n, nil
	case typeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, value)
		}
		return f, nil
	case typeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, value)
		}
		return b, nil
	case typeStringList:
		out := []string{}
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	case typeIntList:
		out, err := domain.ParseIndices(value)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = []int{}
		}
		return out, nil
	default:
		return value, nil
	}
}

func validateSetting(key string, v any) error {
	switch key {
	case keyStoreBackend:
		if b := domain.StoreBackend(v.(string)); !b.IsValid() {
			return fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, b)
		}
	case keyListingsBatchSize, keyReviewsBatchSize, keyFetchWorkers:
		if n := v.(int); n < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", domain.ErrInvalidInput, key, n)
		}
	case keyFetchRate:
		if f := v.(float64); f <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case keyFetchKinds:
		for _, k := range v.([]string) {
			if !domain.RecordKind(k).IsValid() {
				return fmt.Errorf("%w: record kind %q", domain.ErrUnsupportedType, k)
			}
		}
	case keyLogFormat:
		if f := v.(string); f != "console" && f != "json" {
			return fmt.Errorf("%w: log format must be console or json, got %q", domain.ErrInvalidInput, f)
		}
	case keyListingsCollection, keyReviewsCollection:
		if v.(string) == "" {
			return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getKinds(key string, defaultVal []domain.RecordKind) []domain.RecordKind {
	names := s.configStore.GetStringSlice(key)
	if len(names) == 0 {
		return defaultVal
	}
	kinds := make([]domain.RecordKind, 0, len(names))
	for _, n := range names {
		if k := domain.RecordKind(n); k.IsValid() {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) == 0 {
		return defaultVal
	}
	return kinds
}
