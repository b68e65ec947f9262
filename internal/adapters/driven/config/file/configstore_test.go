package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cloudcluster"), dir)
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("store.database", "airbnb"))

	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("store.uri", "mongodb://localhost"))
	require.NoError(t, store.Set("listings.batch_size", 100))
	require.NoError(t, store.Set("fetch.requests_per_second", 1.5))
	require.NoError(t, store.Set("clean.drop_empty", true))
	require.NoError(t, store.Set("clean.currency_fields", []string{"price"}))
	require.NoError(t, store.Set("listings.indices", []int{1, 2}))

	assert.Equal(t, "mongodb://localhost", store.GetString("store.uri"))
	assert.Equal(t, 100, store.GetInt("listings.batch_size"))
	assert.InDelta(t, 1.5, store.GetFloat("fetch.requests_per_second"), 0.0001)
	assert.InDelta(t, 100.0, store.GetFloat("listings.batch_size"), 0.0001)
	assert.True(t, store.GetBool("clean.drop_empty"))
	assert.Equal(t, []string{"price"}, store.GetStringSlice("clean.currency_fields"))
	assert.Equal(t, []int{1, 2}, store.GetIntSlice("listings.indices"))

	// Wrong types fall back to zero values.
	assert.Empty(t, store.GetString("listings.batch_size"))
	assert.Zero(t, store.GetInt("store.uri"))
	assert.False(t, store.GetBool("store.uri"))
	assert.Nil(t, store.GetStringSlice("store.uri"))
	assert.Nil(t, store.GetIntSlice("missing"))
}

func TestConfigStore_ReloadRestoresTypes(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("store.backend", "sqlite"))
	require.NoError(t, store.Set("reviews.batch_size", 1000))
	require.NoError(t, store.Set("reviews.indices", []int{82, 83}))
	require.NoError(t, store.Set("fetch.kinds", []string{"listings"}))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", reloaded.GetString("store.backend"))
	assert.Equal(t, 1000, reloaded.GetInt("reviews.batch_size"))
	assert.Equal(t, []int{82, 83}, reloaded.GetIntSlice("reviews.indices"))
	assert.Equal(t, []string{"listings"}, reloaded.GetStringSlice("fetch.kinds"))
	assert.Equal(t, []string{"fetch.kinds", "reviews.batch_size", "reviews.indices", "store.backend"}, reloaded.Keys())
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("store.uri", "mongodb://db"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[store]")
	assert.Contains(t, string(data), "uri = ")
	assert.Contains(t, string(data), "mongodb://db")
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[store]
backend = "mongo"
uri = "mongodb+srv://user:pw@cluster0.example.net"

[listings]
batch_size = 250
indices = [1, 2, 3]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "mongo", store.GetString("store.backend"))
	assert.Equal(t, 250, store.GetInt("listings.batch_size"))
	assert.Equal(t, []int{1, 2, 3}, store.GetIntSlice("listings.indices"))
}

func TestConfigStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("store.uri", "x"))
	require.NoError(t, store.Set("store.database", "airbnb"))
	require.NoError(t, store.Delete("store.uri"))
	require.NoError(t, store.Delete("not.there"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := reloaded.Get("store.uri")
	assert.False(t, ok)
	assert.Equal(t, "airbnb", reloaded.GetString("store.database"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[store\nuri ="), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes differ on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("store.uri", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("listings.batch_size", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("listings.batch_size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("listings.batch_size")
	assert.True(t, ok)
}

func TestNest(t *testing.T) {
	nested := nest(map[string]any{
		"store.uri":     "u",
		"store.backend": "mongo",
		"verbose":       true,
	})

	assert.Equal(t, map[string]any{
		"store":   map[string]any{"uri": "u", "backend": "mongo"},
		"verbose": true,
	}, nested)
	assert.Equal(t, map[string]any{
		"store.uri":     "u",
		"store.backend": "mongo",
		"verbose":       true,
	}, flatten(nested, ""))
}
