package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// errQueryEnded is reported when an index closes its channels without
// sending the ready signal.
var errQueryEnded = errors.New("query ended before ready signal")

// KeyStream is the output of one region query.
//
// Keys delivers each unique key once and is closed before Ready fires.
// Ready receives exactly one value and is then closed: nil when the index
// has reported every key in the region, otherwise the reason the query
// failed (an *domain.IndexConnectionError, or the context error when the
// query was cancelled).
type KeyStream struct {
	Keys  <-chan domain.GeoKey
	Ready <-chan error

	duplicates atomic.Int64
}

// Duplicates returns how many repeated keys were dropped so far.
func (s *KeyStream) Duplicates() int {
	return int(s.duplicates.Load())
}

// GeoKeyCollector issues region queries against the geo index.
// At most one query is active per collector; starting a new one stops
// the previous observation.
type GeoKeyCollector struct {
	index   driven.GeoIndex
	metrics driven.PipelineMetrics

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewGeoKeyCollector creates a collector. metrics may be nil.
func NewGeoKeyCollector(index driven.GeoIndex, metrics driven.PipelineMetrics) *GeoKeyCollector {
	return &GeoKeyCollector{
		index:   index,
		metrics: metrics,
	}
}

// Collect starts observing region and streams matching keys.
func (c *GeoKeyCollector) Collect(ctx context.Context, region domain.Region) *KeyStream {
	keys := make(chan domain.GeoKey)
	ready := make(chan error, 1)
	stream := &KeyStream{Keys: keys, Ready: ready}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.index.RemoveAllObservers()
	qctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		defer close(ready)
		err := c.observe(qctx, region, keys, stream)
		// Stop the index query: keys arriving after ready do not belong to it.
		cancel()
		ready <- err
	}()

	return stream
}

// Stop cancels the active query, if any.
func (c *GeoKeyCollector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.index.RemoveAllObservers()
}

// observe forwards unique keys until the index reports ready.
//
//nolint:gocognit // Select loop over two channels with dedup.
func (c *GeoKeyCollector) observe(
	ctx context.Context,
	region domain.Region,
	out chan<- domain.GeoKey,
	stream *KeyStream,
) error {
	defer close(out)

	logger.Debug("Querying geo index for region %s", region)
	keysCh, errsCh := c.index.Query(ctx, region)
	seen := make(map[domain.GeoKey]struct{})

	forward := func(key domain.GeoKey) error {
		if _, dup := seen[key]; dup {
			stream.duplicates.Add(1)
			logger.Debug("Skipping duplicate key %s", key)
			return nil
		}
		seen[key] = struct{}{}
		if c.metrics != nil {
			c.metrics.KeyCollected()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- key:
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				if keysCh == nil {
					return &domain.IndexConnectionError{Err: errQueryEnded}
				}
				continue
			}
			if driven.IsQueryReady(err) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Keys already buffered by the index were sent before ready.
				for i := len(keysCh); i > 0; i-- {
					if err := forward(<-keysCh); err != nil {
						return err
					}
				}
				logger.Debug("Geo index ready: %d keys", len(seen))
				return nil
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &domain.IndexConnectionError{Err: err}
			}

		case key, ok := <-keysCh:
			if !ok {
				keysCh = nil
				if errsCh == nil {
					return &domain.IndexConnectionError{Err: errQueryEnded}
				}
				continue
			}
			if err := forward(key); err != nil {
				return err
			}
		}
	}
}
