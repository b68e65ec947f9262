package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PieMyth/CloudCluster/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("store.uri", "mongodb://localhost"))
	require.NoError(t, store.Set("store.uri", "mongodb://db"))

	val, ok := store.Get("store.uri")
	assert.True(t, ok)
	assert.Equal(t, "mongodb://db", val)

	_, ok = store.Get("store.database")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("store.database", "airbnb")
	_ = store.Set("listings.batch_size", 100)
	_ = store.Set("reviews.batch_size", int64(1000))
	_ = store.Set("fetch.workers", 2.9)
	_ = store.Set("clean.drop_empty", true)
	_ = store.Set("clean.currency_fields", []any{"price", 7, "cleaning_fee"})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("store.database"), "airbnb"},
		{"string wrong type", store.GetString("listings.batch_size"), ""},
		{"int", store.GetInt("listings.batch_size"), 100},
		{"int from int64", store.GetInt("reviews.batch_size"), 1000},
		{"int from float64 truncates", store.GetInt("fetch.workers"), 2},
		{"int wrong type", store.GetInt("store.database"), 0},
		{"bool", store.GetBool("clean.drop_empty"), true},
		{"bool missing", store.GetBool("fetch.latest_only"), false},
		{"string slice skips non-strings", store.GetStringSlice("clean.currency_fields"), []string{"price", "cleaning_fee"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("rate", 2.5)
	_ = store.Set("whole", int64(3))
	_ = store.Set("name", "x")

	assert.InDelta(t, 2.5, store.GetFloat("rate"), 0.0001)
	assert.InDelta(t, 3.0, store.GetFloat("whole"), 0.0001)
	assert.Zero(t, store.GetFloat("name"))
	assert.Zero(t, store.GetFloat("missing"))
}

func TestConfigStore_GetIntSlice(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("native", []int{1, 2})
	_ = store.Set("decoded", []any{int64(82), int64(83), "skip"})

	assert.Equal(t, []int{1, 2}, store.GetIntSlice("native"))
	assert.Equal(t, []int{82, 83}, store.GetIntSlice("decoded"))
	assert.Nil(t, store.GetIntSlice("missing"))
}

func TestConfigStore_DeleteAndKeys(t *testing.T) {
	store := NewConfigStore()

	_ = store.Set("b.key", 1)
	_ = store.Set("a.key", 2)
	assert.Equal(t, []string{"a.key", "b.key"}, store.Keys())

	require.NoError(t, store.Delete("a.key"))
	require.NoError(t, store.Delete("never.set"))
	assert.Equal(t, []string{"b.key"}, store.Keys())
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("logging.level", "debug")

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "debug", store.GetString("logging.level"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("k%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("k%d", n))
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
