// Package cellset keeps a set of geocode cells of mixed precision in an
// R-Tree so that the cells holding a coordinate can be found quickly. A set
// built by Cover acts as a geofence for a bounding box.
package cellset

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/logging"
)

const (
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	// half width of the probe rectangle used for point lookups; the
	// half-open check on the decoded area decides the result
	probe = 1e-9
)

var cellLog = logging.NewLevelLogger(logging.LevelInfo, logging.NewDefaultLogger("cellset"))

// SetLogger replaces the package logger. A nil logger silences it.
func SetLogger(level int32, logger logging.Logger) {
	cellLog.Logger = logger
	cellLog.SetLevel(level)
}

// spatialCell wraps a cell to implement rtreego.Spatial
type spatialCell struct {
	code geocode.GeoCode
	area geocode.Area
	rect rtreego.Rect
}

func (sc *spatialCell) Bounds() rtreego.Rect {
	return sc.rect
}

func newSpatialCell(g geocode.GeoCode) (*spatialCell, error) {
	area := g.Decode()
	rect, err := rtreego.NewRect(
		rtreego.Point{area.Lat.Start, area.Lng.Start},
		[]float64{area.Lat.Length(), area.Lng.Length()},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid cell %v: %w", g, err)
	}
	return &spatialCell{code: g, area: area, rect: rect}, nil
}

// CellSet is a thread-safe set of cells
type CellSet struct {
	mu    sync.RWMutex
	tree  *rtreego.Rtree
	cells map[geocode.GeoCode]*spatialCell
}

// New creates a set holding codes
func New(codes ...geocode.GeoCode) (*CellSet, error) {
	s := &CellSet{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		cells: make(map[geocode.GeoCode]*spatialCell),
	}
	if err := s.Add(codes...); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts codes that are not already present
func (s *CellSet) Add(codes ...geocode.GeoCode) error {
	items := make([]*spatialCell, 0, len(codes))
	for _, g := range codes {
		item, err := newSpatialCell(g)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, ok := s.cells[item.code]; ok {
			continue
		}
		s.cells[item.code] = item
		s.tree.Insert(item)
	}
	return nil
}

// Remove deletes g and reports whether it was present
func (s *CellSet) Remove(g geocode.GeoCode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cells[g]
	if !ok {
		return false
	}
	delete(s.cells, g)
	return s.tree.Delete(item)
}

// Has reports whether g itself is in the set
func (s *CellSet) Has(g geocode.GeoCode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cells[g]
	return ok
}

// Len returns the number of cells
func (s *CellSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Cells returns the cells ordered by precision, then by bits
func (s *CellSet) Cells() []geocode.GeoCode {
	s.mu.RLock()
	out := make([]geocode.GeoCode, 0, len(s.cells))
	for g := range s.cells {
		out = append(out, g)
	}
	s.mu.RUnlock()

	sortCells(out)
	return out
}

func sortCells(codes []geocode.GeoCode) {
	sort.Slice(codes, func(i, j int) bool {
		if codes[i].Precision() != codes[j].Precision() {
			return codes[i].Precision() < codes[j].Precision()
		}
		return codes[i].Bits() < codes[j].Bits()
	})
}

// Locate returns every cell whose area contains c, coarsest first
func (s *CellSet) Locate(c geocode.Coordinate) []geocode.GeoCode {
	s.mu.RLock()
	results := s.tree.SearchIntersect(rtreego.Point{c.Latitude(), c.Longitude()}.ToRect(probe))
	s.mu.RUnlock()

	var out []geocode.GeoCode
	for _, result := range results {
		item, ok := result.(*spatialCell)
		if !ok {
			continue
		}
		if item.area.Contains(c) {
			out = append(out, item.code)
		}
	}
	sortCells(out)
	return out
}

// Contains reports whether any cell in the set contains c
func (s *CellSet) Contains(c geocode.Coordinate) bool {
	return len(s.Locate(c)) > 0
}

// Clear removes all cells
func (s *CellSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	s.cells = make(map[geocode.GeoCode]*spatialCell)
}
