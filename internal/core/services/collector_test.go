package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// collectAll reads a stream to completion.
func collectAll(t *testing.T, stream *KeyStream) ([]domain.GeoKey, error) {
	t.Helper()
	var keys []domain.GeoKey
	for key := range stream.Keys {
		keys = append(keys, key)
	}
	select {
	case err := <-stream.Ready:
		return keys, err
	case <-time.After(2 * time.Second):
		t.Fatal("ready never fired")
		return nil, nil
	}
}

func TestGeoKeyCollector_StreamsKeysThenReady(t *testing.T) {
	index := memory.NewGeoIndex()
	index.Add("a1", 34.0, -118.2)
	index.Add("b2", 34.1, -118.1)
	index.Add("far", 51.5, -0.1)

	collector := NewGeoKeyCollector(index, nil)
	keys, err := collectAll(t, collector.Collect(context.Background(), losAngeles()))

	require.NoError(t, err)
	assert.Equal(t, []domain.GeoKey{"a1", "b2"}, keys)
}

func TestGeoKeyCollector_EmptyRegionIsReady(t *testing.T) {
	collector := NewGeoKeyCollector(memory.NewGeoIndex(), nil)

	keys, err := collectAll(t, collector.Collect(context.Background(), losAngeles()))

	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGeoKeyCollector_DeduplicatesKeys(t *testing.T) {
	index := memory.NewGeoIndex()
	index.Add("a1", 34.0, -118.2)
	index.Add("a1", 34.0, -118.2)
	index.Add("b2", 34.1, -118.1)

	stream := NewGeoKeyCollector(index, nil).Collect(context.Background(), losAngeles())
	keys, err := collectAll(t, stream)

	require.NoError(t, err)
	assert.Equal(t, []domain.GeoKey{"a1", "b2"}, keys)
	assert.Equal(t, 1, stream.Duplicates())
}

func TestGeoKeyCollector_IndexFailureIsNotEmptyRegion(t *testing.T) {
	index := memory.NewGeoIndex()
	boom := errors.New("permission denied")
	index.FailQueries(boom)

	_, err := collectAll(t, NewGeoKeyCollector(index, nil).Collect(context.Background(), losAngeles()))

	var indexErr *domain.IndexConnectionError
	require.ErrorAs(t, err, &indexErr)
	assert.ErrorIs(t, err, boom)
}

func TestGeoKeyCollector_ReadyClosesChannel(t *testing.T) {
	stream := NewGeoKeyCollector(memory.NewGeoIndex(), nil).Collect(context.Background(), losAngeles())
	_, err := collectAll(t, stream)
	require.NoError(t, err)

	_, open := <-stream.Ready
	assert.False(t, open)
}

func TestGeoKeyCollector_StopsIndexAfterReady(t *testing.T) {
	index := memory.NewGeoIndex()
	collector := NewGeoKeyCollector(index, nil)

	_, err := collectAll(t, collector.Collect(context.Background(), losAngeles()))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return index.Observers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestGeoKeyCollector_NewQueryCancelsPrevious(t *testing.T) {
	index := memory.NewGeoIndex()
	release := index.HoldReady()
	collector := NewGeoKeyCollector(index, nil)

	first := collector.Collect(context.Background(), losAngeles())
	second := collector.Collect(context.Background(), losAngeles())
	release()

	_, err := collectAll(t, first)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = collectAll(t, second)
	assert.NoError(t, err)
	assert.Equal(t, 2, index.Queries())
}

func TestGeoKeyCollector_CancelledContext(t *testing.T) {
	index := memory.NewGeoIndex()
	defer index.HoldReady()()
	ctx, cancel := context.WithCancel(context.Background())

	stream := NewGeoKeyCollector(index, nil).Collect(ctx, losAngeles())
	cancel()

	_, err := collectAll(t, stream)
	assert.ErrorIs(t, err, context.Canceled)
}

// closingIndex closes both channels without signalling ready.
type closingIndex struct{}

func (closingIndex) Query(context.Context, domain.Region) (<-chan domain.GeoKey, <-chan error) {
	keys := make(chan domain.GeoKey)
	errs := make(chan error)
	close(keys)
	close(errs)
	return keys, errs
}

func (closingIndex) RemoveAllObservers() {}

var _ driven.GeoIndex = closingIndex{}

func TestGeoKeyCollector_ChannelsClosedWithoutReady(t *testing.T) {
	_, err := collectAll(t, NewGeoKeyCollector(closingIndex{}, nil).Collect(context.Background(), losAngeles()))

	var indexErr *domain.IndexConnectionError
	assert.ErrorAs(t, err, &indexErr)
}
