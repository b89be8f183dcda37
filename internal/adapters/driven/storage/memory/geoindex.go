package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure GeoIndex implements the interface.
var _ driven.GeoIndex = (*GeoIndex)(nil)

type geoEntry struct {
	key   domain.GeoKey
	point domain.GeoPoint
}

// GeoIndex is an in-memory implementation of driven.GeoIndex.
//
// A query reports every entry inside the region in insertion order, sends
// the ready signal and then keeps observing until cancelled, like a live
// index subscription.
type GeoIndex struct {
	mu        sync.Mutex
	entries   []geoEntry
	queryErr  error
	gate      chan struct{}
	observers map[int]context.CancelFunc
	nextObs   int
	queries   int
}

// NewGeoIndex creates an empty index.
func NewGeoIndex() *GeoIndex {
	return &GeoIndex{observers: make(map[int]context.CancelFunc)}
}

// Add indexes a key at a coordinate. Adding the same key twice makes the
// index report it twice.
func (g *GeoIndex) Add(key domain.GeoKey, lat, lng float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries = append(g.entries, geoEntry{key: key, point: domain.GeoPoint{Latitude: lat, Longitude: lng}})
}

// FailQueries makes every following query fail with err. Nil restores normal queries.
func (g *GeoIndex) FailQueries(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queryErr = err
}

// HoldReady delays the ready signal of following queries until release is called.
func (g *GeoIndex) HoldReady() (release func()) {
	gate := make(chan struct{})
	g.mu.Lock()
	g.gate = gate
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Queries returns the number of queries started.
func (g *GeoIndex) Queries() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queries
}

// Observers returns the number of live queries.
func (g *GeoIndex) Observers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.observers)
}

// Query streams keys inside region.
func (g *GeoIndex) Query(ctx context.Context, region domain.Region) (<-chan domain.GeoKey, <-chan error) {
	keys := make(chan domain.GeoKey)
	errs := make(chan error, 1)

	g.mu.Lock()
	g.queries++
	qctx, cancel := context.WithCancel(ctx)
	id := g.nextObs
	g.nextObs++
	g.observers[id] = cancel
	queryErr := g.queryErr
	gate := g.gate
	matched := make([]domain.GeoKey, 0, len(g.entries))
	for _, e := range g.entries {
		if region.Contains(e.point.Latitude, e.point.Longitude) {
			matched = append(matched, e.key)
		}
	}
	g.mu.Unlock()

	go func() {
		defer func() {
			g.mu.Lock()
			delete(g.observers, id)
			g.mu.Unlock()
			cancel()
			close(keys)
			close(errs)
		}()

		if queryErr != nil {
			errs <- queryErr
			return
		}

		for _, key := range matched {
			select {
			case <-qctx.Done():
				return
			case keys <- key:
			}
		}

		if gate != nil {
			select {
			case <-qctx.Done():
				return
			case <-gate:
			}
		}

		select {
		case <-qctx.Done():
			return
		case errs <- driven.QueryReady{}:
		}

		<-qctx.Done()
	}()

	return keys, errs
}

// RemoveAllObservers cancels every live query.
func (g *GeoIndex) RemoveAllObservers() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, cancel := range g.observers {
		cancel()
		delete(g.observers, id)
	}
}
