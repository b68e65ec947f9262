package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreBackend_IsValid(t *testing.T) {
	for _, b := range []StoreBackend{StoreMongo, StoreSQLite, StoreMemory} {
		assert.True(t, b.IsValid(), b)
		assert.NotEqual(t, unknownDescription, b.Description())
	}
	assert.False(t, StoreBackend("postgres").IsValid())
	assert.Equal(t, unknownDescription, StoreBackend("postgres").Description())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, StoreMongo, s.Store.Backend)
	assert.Equal(t, "airbnb", s.Store.Database)
	assert.Equal(t, "majority", s.Store.WriteConcern)
	assert.Equal(t, 100, s.Listings.BatchSize)
	assert.Equal(t, 1000, s.Reviews.BatchSize)
	assert.Contains(t, s.Clean.CurrencyFields, "price")
	assert.Contains(t, s.Clean.PercentFields, "host_response_rate")
	assert.Empty(t, s.Store.URI, "credentials must never have a default")
}

func TestAppSettings_CollectionFor(t *testing.T) {
	s := DefaultAppSettings()

	c, err := s.CollectionFor(KindReviews)
	require.NoError(t, err)
	assert.Equal(t, "reviews", c.Name)

	_, err = s.CollectionFor("calendar")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *AppSettings)
		wantErr error
	}{
		{"mongo without uri", func(_ *AppSettings) {}, ErrInvalidInput},
		{"mongo with uri", func(s *AppSettings) { s.Store.URI = "mongodb://localhost:27017" }, nil},
		{"sqlite needs no uri", func(s *AppSettings) { s.Store.Backend = StoreSQLite }, nil},
		{"unknown backend", func(s *AppSettings) { s.Store.Backend = "redis" }, ErrUnsupportedType},
		{"zero batch size", func(s *AppSettings) {
			s.Store.Backend = StoreMemory
			s.Reviews.BatchSize = 0
		}, ErrInvalidInput},
		{"empty collection name", func(s *AppSettings) {
			s.Store.Backend = StoreMemory
			s.Listings.Name = " "
		}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
