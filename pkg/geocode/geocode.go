// Package geocode maps coordinates onto a Z-order (Morton) curve.
//
// A GeoCode is the interleaved bit address of a rectangular cell together
// with its precision, the number of bits spent on each axis. Codes of equal
// precision sort roughly by spatial locality, so Bits() can serve as a key in
// an ordered store. Every value in this package is immutable and every
// operation returns a new value, so codes can be shared between goroutines
// freely.
package geocode

import (
	"fmt"
	"strconv"
)

const (
	MinPrecision uint8 = 1
	MaxPrecision uint8 = 32
)

// GeoCode is an interleaved cell address. Only the low 2*precision bits of
// bits are set.
type GeoCode struct {
	bits      uint64
	precision uint8
}

func checkPrecision(precision uint8) error {
	if precision < MinPrecision || precision > MaxPrecision {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidPrecision, precision, MinPrecision, MaxPrecision)
	}
	return nil
}

// activeMask returns a mask over the low 2*precision bits.
func activeMask(precision uint8) uint64 {
	return ^uint64(0) >> (64 - 2*uint(precision))
}

// Encode returns the cell of the given precision that contains c.
func Encode(c Coordinate, precision uint8) (GeoCode, error) {
	if err := checkPrecision(precision); err != nil {
		return GeoCode{}, err
	}
	lat := scale(c.lat, latRange, precision)
	lng := scale(c.lng, lngRange, precision)
	return GeoCode{bits: Interleave64(lat, lng), precision: precision}, nil
}

// EncodeLatLng validates the raw degrees and encodes them.
func EncodeLatLng(lat, lng float64, precision uint8) (GeoCode, error) {
	c, err := NewCoordinate(lat, lng)
	if err != nil {
		return GeoCode{}, err
	}
	return Encode(c, precision)
}

// scale converts v to a precision-bit fixed point index within r. The
// fraction is truncated, never rounded, so a value on a cell boundary
// always belongs to the upper cell.
func scale(v float64, r Range, precision uint8) uint32 {
	cells := uint64(1) << precision
	idx := uint64((v - r.Start) / r.Length() * float64(cells))
	// Values a hair below r.End can round up to exactly 1.0.
	if idx >= cells {
		idx = cells - 1
	}
	return uint32(idx)
}

// FromBits rebuilds a GeoCode from a stored key. It fails if precision is
// out of range or if any bit above the active range is set.
func FromBits(bits uint64, precision uint8) (GeoCode, error) {
	if err := checkPrecision(precision); err != nil {
		return GeoCode{}, err
	}
	if bits&^activeMask(precision) != 0 {
		return GeoCode{}, fmt.Errorf("%w: %#x has bits above position %d", ErrInvalidBits, bits, 2*precision)
	}
	return GeoCode{bits: bits, precision: precision}, nil
}

// Bits returns the interleaved address.
func (g GeoCode) Bits() uint64 { return g.bits }

// Precision returns the number of bits per axis.
func (g GeoCode) Precision() uint8 { return g.precision }

// Latitude returns the latitude cell index.
func (g GeoCode) Latitude() uint32 {
	_, lat := Deinterleave64(g.bits)
	return lat
}

// Longitude returns the longitude cell index.
func (g GeoCode) Longitude() uint32 {
	lng, _ := Deinterleave64(g.bits)
	return lng
}

// Decode returns the bounding box of the cell.
func (g GeoCode) Decode() Area {
	lng, lat := Deinterleave64(g.bits)

	// Along one axis every cell is the previous one plus one:
	//
	//	|---------------|---------------|
	//	        0               1
	//	|-------|-------|-------|-------|
	//	    00      01      10      11
	//
	// so the upper bound is the lower bound of index+1. The increment is
	// done in 64 bits because index can be 2^32-1.
	cells := float64(uint64(1) << g.precision)
	return Area{
		Lat: Range{
			Start: LatMin + float64(lat)/cells*latRange.Length(),
			End:   LatMin + float64(uint64(lat)+1)/cells*latRange.Length(),
		},
		Lng: Range{
			Start: LngMin + float64(lng)/cells*lngRange.Length(),
			End:   LngMin + float64(uint64(lng)+1)/cells*lngRange.Length(),
		},
	}
}

// CanSubdivide reports whether g has children.
func (g GeoCode) CanSubdivide() bool {
	return g.precision < MaxPrecision
}

// child appends a two bit quadrant selector. The high bit of the selector
// picks the longitude half and the low bit the latitude half.
func (g GeoCode) child(quadrant uint64) (GeoCode, error) {
	if !g.CanSubdivide() {
		return GeoCode{}, fmt.Errorf("%w: precision %d cells have no children", ErrInvalidPrecision, g.precision)
	}
	return GeoCode{bits: g.bits<<2 | quadrant, precision: g.precision + 1}, nil
}

// LeftBottom returns the south-west child.
func (g GeoCode) LeftBottom() (GeoCode, error) { return g.child(0) }

// LeftTop returns the north-west child.
func (g GeoCode) LeftTop() (GeoCode, error) { return g.child(1) }

// RightBottom returns the south-east child.
func (g GeoCode) RightBottom() (GeoCode, error) { return g.child(2) }

// RightTop returns the north-east child.
func (g GeoCode) RightTop() (GeoCode, error) { return g.child(3) }

// Children returns the four children in the order left-bottom, left-top,
// right-bottom, right-top. Their areas partition the area of g.
func (g GeoCode) Children() ([4]GeoCode, error) {
	var out [4]GeoCode
	for q := range out {
		c, err := g.child(uint64(q))
		if err != nil {
			return out, err
		}
		out[q] = c
	}
	return out, nil
}

// Parent returns the cell one level up. The second result is false for
// precision 1 cells.
func (g GeoCode) Parent() (GeoCode, bool) {
	if g.precision <= MinPrecision {
		return GeoCode{}, false
	}
	return GeoCode{bits: g.bits >> 2, precision: g.precision - 1}, true
}

// String renders the code as zero padded binary followed by the precision,
// for debugging.
func (g GeoCode) String() string {
	s := strconv.FormatUint(g.bits, 2)
	width := 2 * int(g.precision)
	for len(s) < width {
		s = "0" + s
	}
	return s + "/" + strconv.Itoa(int(g.precision))
}
