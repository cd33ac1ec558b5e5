package geocode

import "fmt"

// Direction names one of the eight adjacent cells.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
	NorthEast
	SouthEast
	SouthWest
	NorthWest
)

var directionNames = [...]string{
	North:     "north",
	East:      "east",
	South:     "south",
	West:      "west",
	NorthEast: "northeast",
	SouthEast: "southeast",
	SouthWest: "southwest",
	NorthWest: "northwest",
}

// Directions returns every direction in declaration order.
func Directions() []Direction {
	return []Direction{North, East, South, West, NorthEast, SouthEast, SouthWest, NorthWest}
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection maps a name produced by String back to a Direction.
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Neighbors holds the eight cells around a GeoCode.
type Neighbors struct {
	North     GeoCode
	East      GeoCode
	South     GeoCode
	West      GeoCode
	NorthEast GeoCode
	SouthEast GeoCode
	SouthWest GeoCode
	NorthWest GeoCode
}

// Get returns the neighbor in direction d.
func (n Neighbors) Get(d Direction) GeoCode {
	switch d {
	case North:
		return n.North
	case East:
		return n.East
	case South:
		return n.South
	case West:
		return n.West
	case NorthEast:
		return n.NorthEast
	case SouthEast:
		return n.SouthEast
	case SouthWest:
		return n.SouthWest
	case NorthWest:
		return n.NorthWest
	}
	return GeoCode{}
}

// All returns the neighbors in Directions() order.
func (n Neighbors) All() []GeoCode {
	return []GeoCode{n.North, n.East, n.South, n.West, n.NorthEast, n.SouthEast, n.SouthWest, n.NorthWest}
}

const (
	// LatBits selects the latitude (even) bit positions.
	LatBits uint64 = 0x5555555555555555
	// LngBits selects the longitude (odd) bit positions.
	LngBits uint64 = 0xAAAAAAAAAAAAAAAA
)

// moveX steps one cell east, or west when west is set. The result wraps
// within the active bit width, not across the antimeridian.
func (g GeoCode) moveX(west bool) GeoCode {
	lng := g.bits & LngBits
	lat := g.bits & LatBits

	unused := 64 - 2*uint(g.precision)
	// Filling the latitude slots with ones lets a carry or borrow run
	// through them to the next longitude bit.
	fill := LatBits >> unused
	if west {
		lng |= fill
		lng -= fill + 1
	} else {
		lng += fill + 1
	}
	lng &= LngBits >> unused
	return GeoCode{bits: lng | lat, precision: g.precision}
}

// moveY steps one cell north, or south when south is set.
func (g GeoCode) moveY(south bool) GeoCode {
	lng := g.bits & LngBits
	lat := g.bits & LatBits

	unused := 64 - 2*uint(g.precision)
	fill := LngBits >> unused
	if south {
		lat |= fill
		lat -= fill + 1
	} else {
		lat += fill + 1
	}
	lat &= LatBits >> unused
	return GeoCode{bits: lng | lat, precision: g.precision}
}

// Neighbor returns the adjacent cell of the same precision in direction d.
// At the edge of the grid the result wraps to the opposite edge.
func (g GeoCode) Neighbor(d Direction) GeoCode {
	switch d {
	case North:
		return g.moveY(false)
	case East:
		return g.moveX(false)
	case South:
		return g.moveY(true)
	case West:
		return g.moveX(true)
	case NorthEast:
		return g.moveY(false).moveX(false)
	case SouthEast:
		return g.moveY(true).moveX(false)
	case SouthWest:
		return g.moveY(true).moveX(true)
	case NorthWest:
		return g.moveY(false).moveX(true)
	}
	return g
}

// Neighbors returns all eight adjacent cells.
func (g GeoCode) Neighbors() Neighbors {
	return Neighbors{
		North:     g.Neighbor(North),
		East:      g.Neighbor(East),
		South:     g.Neighbor(South),
		West:      g.Neighbor(West),
		NorthEast: g.Neighbor(NorthEast),
		SouthEast: g.Neighbor(SouthEast),
		SouthWest: g.Neighbor(SouthWest),
		NorthWest: g.Neighbor(NorthWest),
	}
}
