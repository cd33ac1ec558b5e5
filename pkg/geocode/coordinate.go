package geocode

import (
	"fmt"
	"math"
)

const (
	LatMin = -90.0
	LatMax = 90.0
	LngMin = -180.0
	LngMax = 180.0
)

var (
	latRange = Range{Start: LatMin, End: LatMax}
	lngRange = Range{Start: LngMin, End: LngMax}
)

// Coordinate is a validated latitude/longitude pair. The zero value is the
// point (0, 0), which is valid.
type Coordinate struct {
	lat float64
	lng float64
}

// NewCoordinate returns a Coordinate if latitude is in [-90, 90) and
// longitude is in [-180, 180).
func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if !latRange.Contains(lat) {
		return Coordinate{}, fmt.Errorf("%w: latitude %v not in [%v, %v)",
			ErrInvalidCoordinate, lat, LatMin, LatMax)
	}
	if !lngRange.Contains(lng) {
		return Coordinate{}, fmt.Errorf("%w: longitude %v not in [%v, %v)",
			ErrInvalidCoordinate, lng, LngMin, LngMax)
	}
	return Coordinate{lat: lat, lng: lng}, nil
}

// Latitude returns the latitude in degrees.
func (c Coordinate) Latitude() float64 { return c.lat }

// Longitude returns the longitude in degrees.
func (c Coordinate) Longitude() float64 { return c.lng }

// Distance returns the Euclidean distance between c and o measured in raw
// degrees. It treats lat/lng as a flat plane and is not a great-circle
// distance.
func (c Coordinate) Distance(o Coordinate) float64 {
	dLat := c.lat - o.lat
	dLng := c.lng - o.lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.lat, c.lng)
}
