package jsonfile

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "3listings.json")
	records := []domain.Record{
		{{Key: "id", Value: int64(1)}, {Key: "price", Value: 85.0}, {Key: "name", Value: "Loft"}},
		{{Key: "id", Value: int64(2)}, {Key: "tags", Value: []any{"a", "b"}}},
	}

	w, err := Create(path)
	require.NoError(t, err)
	for _, rec := range records {
		require.NoError(t, w.Write(rec))
	}
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), `{"id":1,"price":85,"name":"Loft"}`)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	got, err := readAll(t, r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"id", "price", "name"}, got[0].Keys())
	tags, _ := got[1].Get("tags")
	assert.Equal(t, []any{"a", "b"}, tags)
}

func TestWriter_EmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0reviews.json")

	w, err := Factory{}.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestWriter_AbortLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1listings.json")

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(domain.Record{{Key: "id", Value: int64(1)}}))
	require.NoError(t, w.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriter_DestinationReplacedOnlyOnClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1listings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"old":true}]`), 0600))

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(domain.Record{{Key: "new", Value: true}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "old")

	require.NoError(t, w.Close())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "new")
}
