package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nestedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.bucket", "jelly-images"))
	require.NoError(t, store.Set("pipeline.max_concurrency", 8))
	require.NoError(t, store.Set("pipeline.fetch_rate", 2.5))
	require.NoError(t, store.Set("storage.use_ssl", true))
	require.NoError(t, store.Set("pipeline.image_cache_ttl", "90s"))

	assert.Equal(t, "jelly-images", store.GetString("storage.bucket"))
	assert.Equal(t, 8, store.GetInt("pipeline.max_concurrency"))
	assert.InDelta(t, 2.5, store.GetFloat("pipeline.fetch_rate"), 0.0001)
	assert.InDelta(t, 8.0, store.GetFloat("pipeline.max_concurrency"), 0.0001)
	assert.True(t, store.GetBool("storage.use_ssl"))
	assert.Equal(t, 90*time.Second, store.GetDuration("pipeline.image_cache_ttl"))
}

func TestConfigStore_TypedGetters_WrongTypeOrMissing(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("nats.url", "nats://localhost:4222"))

	assert.Equal(t, "", store.GetString("missing"))
	assert.Equal(t, 0, store.GetInt("nats.url"))
	assert.Zero(t, store.GetFloat("nats.url"))
	assert.False(t, store.GetBool("nats.url"))
	assert.Zero(t, store.GetDuration("nats.url"))

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence_WritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store1.Set("firestore.project_id", "jelly-prod"))
	require.NoError(t, store1.Set("firestore.collection", "Jellies"))
	require.NoError(t, store1.Set("pipeline.fetch_retries", 3))

	content, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "[firestore]")
	assert.Contains(t, string(content), "[pipeline]")

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "jelly-prod", store2.GetString("firestore.project_id"))
	assert.Equal(t, "Jellies", store2.GetString("firestore.collection"))
	assert.Equal(t, 3, store2.GetInt("pipeline.fetch_retries"))
}

func TestConfigStore_Load_HandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[geo]
collection = "JellyLocations"

[storage]
endpoint = "localhost:9000"
use_ssl = false
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "JellyLocations", store.GetString("geo.collection"))
	assert.Equal(t, "localhost:9000", store.GetString("storage.endpoint"))
	val, ok := store.Get("storage.use_ssl")
	assert.True(t, ok)
	assert.Equal(t, false, val)
}

func TestConfigStore_Set_ConflictingKey(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("storage", "flat"))
	err = store.Set("storage.bucket", "images")

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.secret_key", "s3cr3t"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_Save_Explicit(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	store.mu.Lock()
	store.data["nats.subject_prefix"] = "map"
	store.mu.Unlock()

	require.NoError(t, store.Save())

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "map", store2.GetString("nats.subject_prefix"))
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err = store.Set("another", "value")
	assert.Error(t, err)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "pipeline.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, store.GetInt("pipeline.key3"))
}

func TestNestMap_RoundTrip(t *testing.T) {
	flat := map[string]any{
		"a.b":   int64(1),
		"a.c.d": "x",
		"e":     true,
	}

	nested, err := nestMap(flat)
	require.NoError(t, err)

	assert.Equal(t, flat, flattenMap(nested, ""))
}
