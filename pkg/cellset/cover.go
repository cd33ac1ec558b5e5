package cellset

import (
	"errors"
	"fmt"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/models"
)

// ErrTooManyCells is returned when a cover needs more cells than allowed.
var ErrTooManyCells = errors.New("cover exceeds cell limit")

const DefaultMaxCells = 4096

// Coverer approximates a bounding box by a set of cells. Cells entirely
// inside the box are kept whole; cells straddling the edge are split until
// MaxPrecision is reached, so the cover can extend past the box by at most
// one MaxPrecision cell on each side.
type Coverer struct {
	MaxPrecision uint8
	// MaxCells bounds the result size. Zero means DefaultMaxCells.
	MaxCells int
}

// Cover returns the cells covering box, ordered by precision then bits.
func (c Coverer) Cover(box models.BoundingBox) ([]geocode.GeoCode, error) {
	if c.MaxPrecision < geocode.MinPrecision || c.MaxPrecision > geocode.MaxPrecision {
		return nil, fmt.Errorf("%w: max precision %d", geocode.ErrInvalidPrecision, c.MaxPrecision)
	}
	area, err := box.Area()
	if err != nil {
		return nil, err
	}
	limit := c.MaxCells
	if limit <= 0 {
		limit = DefaultMaxCells
	}

	var out []geocode.GeoCode
	var walk func(g geocode.GeoCode) error
	walk = func(g geocode.GeoCode) error {
		cell := g.Decode()
		if !area.Intersects(cell) {
			return nil
		}
		if area.ContainsArea(cell) || g.Precision() >= c.MaxPrecision {
			if len(out) >= limit {
				return fmt.Errorf("%w: more than %d cells at max precision %d", ErrTooManyCells, limit, c.MaxPrecision)
			}
			out = append(out, g)
			return nil
		}
		children, err := g.Children()
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	for quadrant := uint64(0); quadrant < 4; quadrant++ {
		root, err := geocode.FromBits(quadrant, geocode.MinPrecision)
		if err != nil {
			return nil, err
		}
		if err := walk(root); err != nil {
			return nil, err
		}
	}

	sortCells(out)
	cellLog.Debugf("covered %v with %d cells up to precision %d", area, len(out), c.MaxPrecision)
	return out, nil
}

// CoverSet builds a CellSet from the cover of box.
func (c Coverer) CoverSet(box models.BoundingBox) (*CellSet, error) {
	codes, err := c.Cover(box)
	if err != nil {
		return nil, err
	}
	return New(codes...)
}
