package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

func TestQueryCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range queryCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"exists", "test", "count"}, names)
	assert.Equal(t, "true", queryTestCmd.Annotations[annotationStore])
}

func TestQueryExistsCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.exists = true

	out, err := executeCommand(t, "query", "exists")

	require.NoError(t, err)
	assert.Equal(t, "listings", ts.query.collection)
	assert.Contains(t, out, "Collection listings exists.")
}

func TestQueryExistsCmd_Missing(t *testing.T) {
	ts := setupTestServices(t)

	out, err := executeCommand(t, "query", "exists", "calendar")

	require.NoError(t, err)
	assert.Equal(t, "calendar", ts.query.collection)
	assert.Contains(t, out, "Collection calendar does not exist.")
}

func TestQueryTestCmd_DefaultQueries(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.listings = []domain.Record{{
		{Key: "id", Value: int64(2818)},
		{Key: "price", Value: 95.5},
		{Key: "neighbourhood_cleansed", Value: "Pearl"},
		{Key: "smart_location", Value: "Portland, OR"},
		{Key: "minimum_nights_avg_ntm", Value: 7.0},
	}}

	out, err := executeCommand(t, "query", "test")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultListingQueries(), ts.query.listingQs)
	assert.Contains(t, out, "1-night stays costing at most $20:")
	assert.Contains(t, out, "31-night stays costing at most $700:")
	assert.Contains(t, out, "neighbourhood_cleansed")
	assert.Contains(t, out, "2818")
	assert.Contains(t, out, "95.5")
	assert.Contains(t, out, "Returned 1 records")
}

func TestQueryTestCmd_Flags(t *testing.T) {
	ts := setupTestServices(t)

	out, err := executeCommand(t, "query", "test", "--max-price", "250", "--limit", "5", "--collection", "portland")

	require.NoError(t, err)
	assert.Equal(t, "portland", ts.query.collection)
	assert.Equal(t, []domain.ListingQuery{{MaxPrice: 250, MinimumNights: 7, Limit: 5}}, ts.query.listingQs)
	assert.Contains(t, out, "Returned 0 records")
	assert.NotContains(t, out, "neighbourhood_cleansed")
}

func TestQueryCountCmd_DefaultQueries(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.count = 1234

	out, err := executeCommand(t, "query", "count")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBedroomCountQueries(), ts.query.countQs)
	assert.Contains(t, out, "1,234 listings with over 2 bedrooms in zipcodes 97201-97210")
	assert.Contains(t, out, "1,234 listings with over 2 bedrooms in Portland")
}

func TestQueryCountCmd_City(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.count = 7

	out, err := executeCommand(t, "query", "count", "--city", "Seattle", "--min-bedrooms", "3")

	require.NoError(t, err)
	assert.Equal(t, []domain.BedroomCountQuery{{MinBedrooms: 3, City: "Seattle"}}, ts.query.countQs)
	assert.Contains(t, out, "7 listings with over 3 bedrooms in Seattle")
}

func TestQueryCountCmd_ZipcodeRange(t *testing.T) {
	ts := setupTestServices(t)

	_, err := executeCommand(t, "query", "count", "--zip-from", "98101", "--zip-to", "98109")

	require.NoError(t, err)
	assert.Equal(t, []domain.BedroomCountQuery{{MinBedrooms: 2, ZipFrom: 98101, ZipTo: 98109}}, ts.query.countQs)
}

func TestQueryCountCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.query.err = domain.ErrInvalidInput

	_, err := executeCommand(t, "query", "count", "--zip-to", "5", "--zip-from", "9")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "count query failed")
}

func TestQueryCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	queryService = nil

	_, err := executeCommand(t, "query", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "100", formatValue(100.0))
	assert.Equal(t, "59.95", formatValue(59.95))
	assert.Equal(t, "2818", formatValue(int64(2818)))
	assert.Equal(t, "Pearl", formatValue("Pearl"))
}
