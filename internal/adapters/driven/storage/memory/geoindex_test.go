package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

func drainUntilReady(t *testing.T, keys <-chan domain.GeoKey, errs <-chan error) []domain.GeoKey {
	t.Helper()
	var got []domain.GeoKey
	timeout := time.After(2 * time.Second)
	for {
		select {
		case key := <-keys:
			got = append(got, key)
		case err := <-errs:
			require.True(t, driven.IsQueryReady(err), "unexpected error: %v", err)
			return got
		case <-timeout:
			t.Fatal("query never became ready")
		}
	}
}

func TestGeoIndex_Query_ReportsKeysInRegion(t *testing.T) {
	index := NewGeoIndex()
	index.Add("inside", 37.77, -122.42)
	index.Add("outside", 40.71, -74.00)
	index.Add("inside-2", 37.80, -122.40)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys, errs := index.Query(ctx, domain.NewRegion(37.78, -122.41, 0.2, 0.2))
	got := drainUntilReady(t, keys, errs)

	assert.Equal(t, []domain.GeoKey{"inside", "inside-2"}, got)
	assert.Equal(t, 1, index.Queries())
}

func TestGeoIndex_Query_EmptyRegionStillReady(t *testing.T) {
	index := NewGeoIndex()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	keys, errs := index.Query(ctx, domain.NewRegion(0, 0, 1, 1))
	got := drainUntilReady(t, keys, errs)

	assert.Empty(t, got)
}

func TestGeoIndex_Query_Failure(t *testing.T) {
	index := NewGeoIndex()
	boom := errors.New("permission denied")
	index.FailQueries(boom)

	keys, errs := index.Query(context.Background(), domain.NewRegion(0, 0, 1, 1))

	err := <-errs
	assert.ErrorIs(t, err, boom)
	_, open := <-keys
	assert.False(t, open)
}

func TestGeoIndex_RemoveAllObservers_ClosesQueries(t *testing.T) {
	index := NewGeoIndex()
	index.Add("k", 1, 1)

	keys, errs := index.Query(context.Background(), domain.NewRegion(1, 1, 1, 1))
	drainUntilReady(t, keys, errs)
	assert.Equal(t, 1, index.Observers())

	index.RemoveAllObservers()

	_, open := <-errs
	assert.False(t, open)
	assert.Eventually(t, func() bool { return index.Observers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestGeoIndex_HoldReady(t *testing.T) {
	index := NewGeoIndex()
	release := index.HoldReady()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, errs := index.Query(ctx, domain.NewRegion(0, 0, 1, 1))

	select {
	case <-errs:
		t.Fatal("ready sent before release")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	assert.True(t, driven.IsQueryReady(<-errs))
}
