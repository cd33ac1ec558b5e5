package models

import (
	"fmt"

	"github.com/kass/go-geocode/pkg/geocode"
)

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" msgpack:"lat"`
	Lon float64 `json:"lon" yaml:"lon" msgpack:"lon"`
}

// Coordinate validates the location.
func (l Location) Coordinate() (geocode.Coordinate, error) {
	return geocode.NewCoordinate(l.Lat, l.Lon)
}

// Cell is the serializable form of a GeoCode
type Cell struct {
	Bits      uint64 `json:"bits" yaml:"bits" msgpack:"bits"`
	Precision uint8  `json:"precision" yaml:"precision" msgpack:"precision"`
}

// NewCell converts a GeoCode for storage or output
func NewCell(g geocode.GeoCode) Cell {
	return Cell{Bits: g.Bits(), Precision: g.Precision()}
}

// GeoCode validates the cell and converts it back
func (c Cell) GeoCode() (geocode.GeoCode, error) {
	return geocode.FromBits(c.Bits, c.Precision)
}

// Point represents a geo point with an ID, location and the cell it was
// indexed under
type Point struct {
	ID       string    `json:"id" yaml:"id"`
	Location *Location `json:"location" yaml:"location"`
	Cell     *Cell     `json:"cell,omitempty" yaml:"cell,omitempty"`
}

// Encode fills in p.Cell at the given precision
func (p *Point) Encode(precision uint8) error {
	if p.Location == nil {
		return fmt.Errorf("point %s has no location", p.ID)
	}
	g, err := geocode.EncodeLatLng(p.Location.Lat, p.Location.Lon, precision)
	if err != nil {
		return fmt.Errorf("failed to encode point %s: %w", p.ID, err)
	}
	cell := NewCell(g)
	p.Cell = &cell
	return nil
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location `json:"bottom_left" yaml:"bottom_left"`
	TopRight   Location `json:"top_right" yaml:"top_right"`
}

// Area converts the box to half-open ranges, checking the corners are
// ordered and inside the coordinate domain. TopRight may sit on the
// upper bounds (90, 180).
func (b BoundingBox) Area() (geocode.Area, error) {
	if _, err := b.BottomLeft.Coordinate(); err != nil {
		return geocode.Area{}, fmt.Errorf("invalid bounding box: %w", err)
	}
	if b.TopRight.Lat <= b.BottomLeft.Lat || b.TopRight.Lon <= b.BottomLeft.Lon {
		return geocode.Area{}, fmt.Errorf("invalid bounding box: top right %v must be north east of bottom left %v",
			b.TopRight, b.BottomLeft)
	}
	if b.TopRight.Lat > geocode.LatMax || b.TopRight.Lon > geocode.LngMax {
		return geocode.Area{}, fmt.Errorf("invalid bounding box: %w: top right %v",
			geocode.ErrInvalidCoordinate, b.TopRight)
	}
	return geocode.Area{
		Lat: geocode.Range{Start: b.BottomLeft.Lat, End: b.TopRight.Lat},
		Lng: geocode.Range{Start: b.BottomLeft.Lon, End: b.TopRight.Lon},
	}, nil
}
