package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var store driven.ConfigStore = NewConfigStore()

	require.NoError(t, store.Load())
	require.NoError(t, store.Save())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("firestore.project_id", "jelly-dev"))
	require.NoError(t, store.Set("firestore.project_id", "jelly-prod"))

	val, ok := store.Get("firestore.project_id")
	assert.True(t, ok)
	assert.Equal(t, "jelly-prod", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 7))
	require.NoError(t, store.Set("i64", int64(9)))
	require.NoError(t, store.Set("f", 1.5))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("d", "2m"))
	require.NoError(t, store.Set("dd", 3*time.Second))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "hello"},
		{"string wrong type", store.GetString("i"), ""},
		{"int", store.GetInt("i"), 7},
		{"int from int64", store.GetInt("i64"), 9},
		{"int from float", store.GetInt("f"), 1},
		{"int wrong type", store.GetInt("s"), 0},
		{"float", store.GetFloat("f"), 1.5},
		{"float from int", store.GetFloat("i"), 7.0},
		{"float wrong type", store.GetFloat("b"), 0.0},
		{"bool", store.GetBool("b"), true},
		{"bool wrong type", store.GetBool("s"), false},
		{"duration string", store.GetDuration("d"), 2 * time.Minute},
		{"duration native", store.GetDuration("dd"), 3 * time.Second},
		{"duration unparseable", store.GetDuration("s"), time.Duration(0)},
		{"duration missing", store.GetDuration("missing"), time.Duration(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("pipeline.max_concurrency", n)
			_ = store.GetInt("pipeline.max_concurrency")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("pipeline.max_concurrency")
	assert.True(t, ok)
}

func TestConfigStore_FailSetsAndSaves(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Save())
	require.NoError(t, store.Save())
	assert.Equal(t, 2, store.Saves())

	boom := assert.AnError
	store.FailSets(boom)
	assert.ErrorIs(t, store.Set("nats.url", "nats://localhost:4222"), boom)
	assert.Empty(t, store.GetString("nats.url"))
}
