package geocode

import "fmt"

// Range is a half-open interval [Start, End).
type Range struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Length returns End - Start.
func (r Range) Length() float64 {
	return r.End - r.Start
}

// Center returns the midpoint of the range.
func (r Range) Center() float64 {
	return (r.Start + r.End) / 2
}

// Contains reports whether Start <= v < End.
func (r Range) Contains(v float64) bool {
	return r.Start <= v && v < r.End
}

func (r Range) overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r Range) covers(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Area is the bounding box of a GeoCode cell. Both ranges are half-open.
type Area struct {
	Lat Range `json:"lat" yaml:"lat"`
	Lng Range `json:"lng" yaml:"lng"`
}

// Center returns the midpoint of the area.
func (a Area) Center() Coordinate {
	return Coordinate{lat: a.Lat.Center(), lng: a.Lng.Center()}
}

// Contains reports whether c lies inside the area on both axes.
func (a Area) Contains(c Coordinate) bool {
	return a.Lat.Contains(c.lat) && a.Lng.Contains(c.lng)
}

// Intersects reports whether a and o share a region of non-zero size.
func (a Area) Intersects(o Area) bool {
	return a.Lat.overlaps(o.Lat) && a.Lng.overlaps(o.Lng)
}

// ContainsArea reports whether o lies entirely within a.
func (a Area) ContainsArea(o Area) bool {
	return a.Lat.covers(o.Lat) && a.Lng.covers(o.Lng)
}

func (a Area) String() string {
	return fmt.Sprintf("lat[%v, %v) lng[%v, %v)", a.Lat.Start, a.Lat.End, a.Lng.Start, a.Lng.End)
}
