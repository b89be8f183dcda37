package firestore

import (
	"context"
	"sort"
	"sync"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

type location struct {
	id   string
	hash string
	l    any
}

// fakeSource is an in-memory location collection ordered by geohash.
type fakeSource struct {
	mu      sync.Mutex
	docs    []location
	scanErr error
	ranges  [][2]string
}

func (f *fakeSource) add(id string, lat, lng float64) {
	f.addRaw(id, geohash.EncodeWithPrecision(lat, lng, maxPrecision), []any{lat, lng})
}

func (f *fakeSource) addRaw(id, hash string, l any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, location{id: id, hash: hash, l: l})
	sort.Slice(f.docs, func(i, j int) bool { return f.docs[i].hash < f.docs[j].hash })
}

func (f *fakeSource) Scan(
	ctx context.Context,
	start, end string,
	fn func(id string, data map[string]any) error,
) error {
	f.mu.Lock()
	f.ranges = append(f.ranges, [2]string{start, end})
	docs := append([]location(nil), f.docs...)
	scanErr := f.scanErr
	f.mu.Unlock()

	if scanErr != nil {
		return scanErr
	}
	for _, d := range docs {
		if d.hash < start || d.hash > end {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(d.id, map[string]any{geohashField: d.hash, locationField: d.l}); err != nil {
			return err
		}
	}
	return nil
}
