package domain

import (
	"fmt"
	"math"
)

// Region is a geographic viewport expressed as a center point and a span.
// All values are decimal degrees.
type Region struct {
	// CenterLatitude is the latitude of the viewport centre.
	CenterLatitude float64

	// CenterLongitude is the longitude of the viewport centre.
	CenterLongitude float64

	// LatitudeDelta is the full north-south extent of the viewport.
	LatitudeDelta float64

	// LongitudeDelta is the full east-west extent of the viewport.
	LongitudeDelta float64
}

// Bounds is the south-west / north-east box covered by a region.
// West may be greater than East when the region crosses the antimeridian.
type Bounds struct {
	South float64
	West  float64
	North float64
	East  float64
}

// NewRegion creates a region from a centre point and span.
func NewRegion(lat, lng, latDelta, lngDelta float64) Region {
	return Region{
		CenterLatitude:  lat,
		CenterLongitude: lng,
		LatitudeDelta:   latDelta,
		LongitudeDelta:  lngDelta,
	}
}

// Validate checks the region describes a usable viewport.
func (r Region) Validate() error {
	for _, v := range []float64{r.CenterLatitude, r.CenterLongitude, r.LatitudeDelta, r.LongitudeDelta} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: region contains a non-finite value", ErrInvalidInput)
		}
	}
	if r.CenterLatitude < -90 || r.CenterLatitude > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidInput, r.CenterLatitude)
	}
	if r.CenterLongitude < -180 || r.CenterLongitude > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidInput, r.CenterLongitude)
	}
	if r.LatitudeDelta <= 0 || r.LatitudeDelta > 180 {
		return fmt.Errorf("%w: latitude delta %f out of range", ErrInvalidInput, r.LatitudeDelta)
	}
	if r.LongitudeDelta <= 0 || r.LongitudeDelta > 360 {
		return fmt.Errorf("%w: longitude delta %f out of range", ErrInvalidInput, r.LongitudeDelta)
	}
	return nil
}

// Bounds returns the box covered by the region.
// Latitudes are clamped to the poles; longitudes wrap into [-180, 180].
func (r Region) Bounds() Bounds {
	halfLat := r.LatitudeDelta / 2
	halfLng := r.LongitudeDelta / 2
	b := Bounds{
		South: math.Max(r.CenterLatitude-halfLat, -90),
		North: math.Min(r.CenterLatitude+halfLat, 90),
		West:  wrapLongitude(r.CenterLongitude - halfLng),
		East:  wrapLongitude(r.CenterLongitude + halfLng),
	}
	if r.LongitudeDelta >= 360 {
		b.West, b.East = -180, 180
	}
	return b
}

// CrossesAntimeridian reports whether the region spans the 180th meridian.
func (r Region) CrossesAntimeridian() bool {
	b := r.Bounds()
	return b.West > b.East
}

// Contains reports whether a point lies inside the region.
func (r Region) Contains(lat, lng float64) bool {
	b := r.Bounds()
	if lat < b.South || lat > b.North {
		return false
	}
	lng = wrapLongitude(lng)
	if b.West <= b.East {
		return lng >= b.West && lng <= b.East
	}
	return lng >= b.West || lng <= b.East
}

// String returns a compact representation for logs.
func (r Region) String() string {
	return fmt.Sprintf("(%.5f,%.5f ±%.5f/%.5f)",
		r.CenterLatitude, r.CenterLongitude, r.LatitudeDelta, r.LongitudeDelta)
}

func wrapLongitude(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

// GeoKey identifies a geo-indexed location and the document it belongs to.
// Keys only live for the duration of one region query.
type GeoKey string

// String returns the key as a plain string.
func (k GeoKey) String() string {
	return string(k)
}
