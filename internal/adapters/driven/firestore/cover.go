package firestore

import (
	"math"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// maxPrecision is the geohash length stored in the g field.
const maxPrecision = 10

// cellSize returns the height and width in degrees of a geohash cell.
func cellSize(precision int) (height, width float64) {
	bits := 5 * precision
	lngBits := (bits + 1) / 2
	latBits := bits / 2
	return 180 / math.Pow(2, float64(latBits)), 360 / math.Pow(2, float64(lngBits))
}

// precisionFor returns the longest geohash whose cells are at least as
// large as the bounds. Zero means only the whole world covers them.
func precisionFor(b domain.Bounds) int {
	height := b.North - b.South
	width := b.East - b.West
	if width < 0 {
		width += 360
	}
	for p := maxPrecision; p >= 1; p-- {
		h, w := cellSize(p)
		if h >= height && w >= width {
			return p
		}
	}
	return 0
}

// coveringPrefixes returns geohash prefixes whose cells together contain
// the region's bounding box. A box no larger than one cell touches at most
// two cells per axis, so the cells of its corners cover it.
func coveringPrefixes(region domain.Region) []string {
	b := region.Bounds()
	precision := precisionFor(b)
	if precision == 0 {
		return []string{""}
	}

	seen := make(map[string]struct{}, 4)
	for _, corner := range [][2]float64{
		{b.South, b.West},
		{b.South, b.East},
		{b.North, b.West},
		{b.North, b.East},
	} {
		seen[geohash.EncodeWithPrecision(corner[0], corner[1], precision)] = struct{}{}
	}

	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// prefixRange returns the inclusive g range matching every hash that
// starts with prefix.
func prefixRange(prefix string) (start, end string) {
	return prefix, prefix + "~"
}
