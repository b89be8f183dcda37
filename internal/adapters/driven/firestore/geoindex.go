package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// Ensure GeoIndex implements the interface.
var _ driven.GeoIndex = (*GeoIndex)(nil)

const (
	geohashField  = "g"
	locationField = "l"
)

// locationSource scans location documents whose geohash is in [start, end].
type locationSource interface {
	Scan(ctx context.Context, start, end string, fn func(id string, data map[string]any) error) error
}

// collectionSource scans a Firestore collection.
type collectionSource struct {
	collection *firestore.CollectionRef
}

func (s collectionSource) Scan(
	ctx context.Context,
	start, end string,
	fn func(id string, data map[string]any) error,
) error {
	iter := s.collection.
		Where(geohashField, ">=", start).
		Where(geohashField, "<=", end).
		OrderBy(geohashField, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(doc.Ref.ID, doc.Data()); err != nil {
			return err
		}
	}
}

// GeoIndex answers region queries from a GeoFire-style location collection.
type GeoIndex struct {
	source locationSource

	mu        sync.Mutex
	observers map[int]context.CancelFunc
	nextID    int
}

// NewGeoIndex creates an index over the named location collection.
func NewGeoIndex(client *firestore.Client, collection string) *GeoIndex {
	return newGeoIndex(collectionSource{collection: client.Collection(collection)})
}

func newGeoIndex(source locationSource) *GeoIndex {
	return &GeoIndex{
		source:    source,
		observers: make(map[int]context.CancelFunc),
	}
}

// Query scans the ranges covering region, then keeps the query open until
// ctx is cancelled or RemoveAllObservers is called.
func (g *GeoIndex) Query(ctx context.Context, region domain.Region) (<-chan domain.GeoKey, <-chan error) {
	keys := make(chan domain.GeoKey)
	errs := make(chan error, 1)

	g.mu.Lock()
	qctx, cancel := context.WithCancel(ctx)
	id := g.nextID
	g.nextID++
	g.observers[id] = cancel
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

		if err := g.scan(qctx, region, keys); err != nil {
			if qctx.Err() == nil {
				errs <- err
			}
			return
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

// RemoveAllObservers cancels every open query.
func (g *GeoIndex) RemoveAllObservers() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, cancel := range g.observers {
		cancel()
		delete(g.observers, id)
	}
}

func (g *GeoIndex) scan(ctx context.Context, region domain.Region, out chan<- domain.GeoKey) error {
	seen := make(map[string]struct{})
	for _, prefix := range coveringPrefixes(region) {
		start, end := prefixRange(prefix)
		err := g.source.Scan(ctx, start, end, func(id string, data map[string]any) error {
			point, ok := toPoint(data[locationField])
			if !ok {
				logger.Debug("Skipping location %s: unreadable %q field", id, locationField)
				return nil
			}
			if !region.Contains(point.Latitude, point.Longitude) {
				return nil
			}
			if _, dup := seen[id]; dup {
				return nil
			}
			seen[id] = struct{}{}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- domain.GeoKey(id):
				return nil
			}
		})
		if err != nil {
			return fmt.Errorf("scanning geohash %q: %w", prefix, err)
		}
	}
	return nil
}
