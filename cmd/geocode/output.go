package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/models"
)

// formatter writes command results as text, JSON or YAML. Text output
// uses the result's String method.
type formatter struct {
	format string
	w      io.Writer
}

func (f *formatter) print(v fmt.Stringer) error {
	switch f.format {
	case "json":
		enc := json.NewEncoder(f.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(f.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(f.w, v.String())
		return err
	}
}

func parseBits(s string) (uint64, error) {
	bits, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cell %q: %w", s, err)
	}
	return bits, nil
}

type cellView struct {
	Bits      uint64       `json:"bits" yaml:"bits"`
	Binary    string       `json:"binary" yaml:"binary"`
	Precision uint8        `json:"precision" yaml:"precision"`
	LatIndex  uint32       `json:"lat_index" yaml:"lat_index"`
	LngIndex  uint32       `json:"lng_index" yaml:"lng_index"`
	Area      geocode.Area `json:"area" yaml:"area"`
}

func newCellView(g geocode.GeoCode) cellView {
	binary, _, _ := strings.Cut(g.String(), "/")
	return cellView{
		Bits:      g.Bits(),
		Binary:    binary,
		Precision: g.Precision(),
		LatIndex:  g.Latitude(),
		LngIndex:  g.Longitude(),
		Area:      g.Decode(),
	}
}

func (c cellView) String() string {
	return fmt.Sprintf("%d\t%s/%d\t%v", c.Bits, c.Binary, c.Precision, c.Area)
}

type cellList []cellView

func newCellList(codes []geocode.GeoCode) cellList {
	out := make(cellList, 0, len(codes))
	for _, g := range codes {
		out = append(out, newCellView(g))
	}
	return out
}

func (l cellList) String() string {
	lines := make([]string, 0, len(l))
	for _, c := range l {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}

type neighborView struct {
	Direction string   `json:"direction" yaml:"direction"`
	Cell      cellView `json:"cell" yaml:"cell"`
}

type neighborList []neighborView

func newNeighborList(g geocode.GeoCode) neighborList {
	n := g.Neighbors()
	out := make(neighborList, 0, 8)
	for _, d := range geocode.Directions() {
		out = append(out, neighborView{Direction: d.String(), Cell: newCellView(n.Get(d))})
	}
	return out
}

func (l neighborList) String() string {
	lines := make([]string, 0, len(l))
	for _, n := range l {
		lines = append(lines, fmt.Sprintf("%-9s\t%v", n.Direction, n.Cell))
	}
	return strings.Join(lines, "\n")
}

type pointList []*models.Point

func (l pointList) String() string {
	if len(l) == 0 {
		return "no points"
	}
	lines := make([]string, 0, len(l))
	for _, p := range l {
		line := fmt.Sprintf("%s\t%.6f\t%.6f", p.ID, p.Location.Lat, p.Location.Lon)
		if p.Cell != nil {
			line += "\t" + strconv.FormatUint(p.Cell.Bits, 10)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

type loadResult struct {
	Points    int           `json:"points" yaml:"points"`
	Total     int64         `json:"total" yaml:"total"`
	Precision uint8         `json:"precision" yaml:"precision"`
	Elapsed   time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
}

func (r loadResult) String() string {
	return fmt.Sprintf("Loaded %d points at precision %d in %v (%.0f points/sec)\nTotal points in store: %d",
		r.Points, r.Precision, r.Elapsed, float64(r.Points)/r.Elapsed.Seconds(), r.Total)
}

type benchResult struct {
	Ops       int64         `json:"ops" yaml:"ops"`
	Workers   int           `json:"workers" yaml:"workers"`
	Precision uint8         `json:"precision" yaml:"precision"`
	Elapsed   time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
	OpsPerSec float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
}

func (r benchResult) String() string {
	return fmt.Sprintf("Total operations: %d\nWorkers: %d\nPrecision: %d\nTotal time: %v\nOperations per second: %.0f",
		r.Ops, r.Workers, r.Precision, r.Elapsed, r.OpsPerSec)
}
