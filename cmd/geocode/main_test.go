package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kass/go-geocode/pkg/geocode"
	"github.com/kass/go-geocode/pkg/models"
)

const taipeiBits uint64 = 0b111001100010110101100011101010

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "geocode", cmd.Use)

	commands := []string{"encode", "decode", "neighbors", "children", "parent", "cover", "locate", "load", "query", "bench"}
	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := newRootCmd()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	precision := cmd.PersistentFlags().Lookup("precision")
	require.NotNil(t, precision)
	assert.Equal(t, "26", precision.DefValue)
}

func TestEncode(t *testing.T) {
	out, err := execute(t, "encode", "25.006", "121.46", "-p", "15", "--format", "json")
	require.NoError(t, err)

	var cell cellView
	require.NoError(t, json.Unmarshal([]byte(out), &cell))
	assert.Equal(t, taipeiBits, cell.Bits)
	assert.Equal(t, uint8(15), cell.Precision)
	assert.Equal(t, "111001100010110101100011101010", cell.Binary)
	assert.Equal(t, uint32(20936), cell.LatIndex)
	assert.Equal(t, uint32(27439), cell.LngIndex)
	assert.Equal(t, 25.0048828125, cell.Area.Lat.Start)
}

func TestEncodeNegativeCoordinate(t *testing.T) {
	out, err := execute(t, "encode", "-p", "1", "--", "-45", "-90")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0\t00/1\t"), out)
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	_, err := execute(t, "encode", "95", "0")
	assert.True(t, errors.Is(err, geocode.ErrInvalidCoordinate), "got %v", err)

	_, err = execute(t, "encode", "north", "0")
	assert.ErrorContains(t, err, "invalid latitude")

	_, err = execute(t, "encode", "1", "1", "-p", "33")
	assert.True(t, errors.Is(err, geocode.ErrInvalidPrecision), "got %v", err)

	_, err = execute(t, "encode", "1", "1", "--format", "xml")
	assert.ErrorContains(t, err, "format")
}

func TestDecodeYAML(t *testing.T) {
	out, err := execute(t, "decode", "965433578", "-p", "15", "--format", "yaml")
	require.NoError(t, err)

	var cell cellView
	require.NoError(t, yaml.Unmarshal([]byte(out), &cell))
	assert.Equal(t, taipeiBits, cell.Bits)
	assert.Equal(t, geocode.Range{Start: 121.453857421875, End: 121.46484375}, cell.Area.Lng)
}

func TestDecodeText(t *testing.T) {
	out, err := execute(t, "decode", "0b0110", "-p", "2")
	require.NoError(t, err)
	assert.Equal(t, "6\t0110/2\tlat[0, 45) lng[-90, 0)\n", out)

	_, err = execute(t, "decode", "0b10000", "-p", "2")
	assert.True(t, errors.Is(err, geocode.ErrInvalidBits), "got %v", err)

	_, err = execute(t, "decode", "cell", "-p", "2")
	assert.ErrorContains(t, err, "invalid cell")
}

func TestNeighbors(t *testing.T) {
	out, err := execute(t, "neighbors", "0b0110", "-p", "2", "--format", "json")
	require.NoError(t, err)

	var neighbors []neighborView
	require.NoError(t, json.Unmarshal([]byte(out), &neighbors))
	require.Len(t, neighbors, 8)

	expected := []uint64{0b0111, 0b1100, 0b0011, 0b0100, 0b1101, 0b1001, 0b0001, 0b0101}
	for i, d := range geocode.Directions() {
		assert.Equal(t, d.String(), neighbors[i].Direction)
		assert.Equal(t, expected[i], neighbors[i].Cell.Bits, d.String())
	}
}

func TestChildrenAndParent(t *testing.T) {
	out, err := execute(t, "children", "0b0110", "-p", "2", "--format", "json")
	require.NoError(t, err)

	var children []cellView
	require.NoError(t, json.Unmarshal([]byte(out), &children))
	require.Len(t, children, 4)
	for i, c := range children {
		assert.Equal(t, uint64(0b0110<<2|i), c.Bits)
		assert.Equal(t, uint8(3), c.Precision)
	}

	out, err = execute(t, "parent", "0b011011", "-p", "3", "--format", "json")
	require.NoError(t, err)
	var parent cellView
	require.NoError(t, json.Unmarshal([]byte(out), &parent))
	assert.Equal(t, uint64(0b0110), parent.Bits)
	assert.Equal(t, uint8(2), parent.Precision)

	_, err = execute(t, "parent", "1", "-p", "1")
	assert.ErrorContains(t, err, "no parent")

	_, err = execute(t, "children", "0", "-p", "32")
	assert.True(t, errors.Is(err, geocode.ErrInvalidPrecision), "got %v", err)
}

func TestCoverAndLocate(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "cells.msgpack")

	out, err := execute(t, "cover",
		"--min-lat=0", "--min-lon=-90", "--max-lat=45", "--max-lon=0",
		"-p", "10", "--save", "--snapshot", snapshot, "--format", "json")
	require.NoError(t, err)

	var cells []cellView
	require.NoError(t, json.Unmarshal([]byte(out), &cells))
	require.Len(t, cells, 1)
	assert.Equal(t, uint64(0b0110), cells[0].Bits)
	assert.FileExists(t, snapshot)

	out, err = execute(t, "locate", "--snapshot", snapshot, "--format", "json", "--", "30", "-30")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &cells))
	require.Len(t, cells, 1)
	assert.Equal(t, uint64(0b0110), cells[0].Bits)

	out, err = execute(t, "locate", "60", "30", "--snapshot", snapshot, "--format", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &cells))
	assert.Empty(t, cells)

	_, err = execute(t, "locate", "1", "1", "--snapshot", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocode.toml")
	require.NoError(t, os.WriteFile(path, []byte("precision = 15\nformat = \"json\"\n"), 0644))

	out, err := execute(t, "encode", "25.006", "121.46", "--config", path)
	require.NoError(t, err)
	var cell cellView
	require.NoError(t, json.Unmarshal([]byte(out), &cell))
	assert.Equal(t, taipeiBits, cell.Bits)

	// flags win over the file
	out, err = execute(t, "encode", "25.006", "121.46", "--config", path, "-p", "14", "--format", "yaml")
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &cell))
	assert.Equal(t, taipeiBits>>2, cell.Bits)
}

func TestBench(t *testing.T) {
	res, err := runBench(2000, 4, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.Ops)
	assert.Equal(t, 4, res.Workers)
	assert.Greater(t, res.OpsPerSec, 0.0)

	out, err := execute(t, "bench", "-n", "100", "-w", "2", "--format", "json")
	require.NoError(t, err)
	var decoded benchResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, int64(100), decoded.Ops)
}

func TestMetricsOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.prom")
	_, err := execute(t, "bench", "-n", "50", "-w", "2", "--metrics-out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE geocode_cell_op_cnt counter")
	assert.Contains(t, string(data), `geocode_cell_op_cnt{source="bench"}`)

	// a failing command still writes its error counters
	snapshot := filepath.Join(t.TempDir(), "broken.msgpack")
	require.NoError(t, os.WriteFile(snapshot, []byte{0xc1}, 0644))
	_, err = execute(t, "locate", "1", "1", "--snapshot", snapshot, "--metrics-out", path)
	assert.ErrorContains(t, err, "failed to decode snapshot")

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `geocode_error_cnt{component="cellset",error_info="snapshot_decode"}`)
}

func TestMetricsOutStderr(t *testing.T) {
	cmd := newRootCmd()
	stderr := &bytes.Buffer{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"bench", "-n", "10", "-w", "1", "--metrics-out", "-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "geocode_cell_op_cnt")
}

func TestGlogFlag(t *testing.T) {
	t.Cleanup(func() { flag.Set("v", "0") })

	_, err := execute(t, "encode", "1", "1", "--glog", "-v")
	require.NoError(t, err)
	assert.Equal(t, "true", flag.Lookup("logtostderr").Value.String())
	assert.Equal(t, "3", flag.Lookup("v").Value.String())
}

func TestGenerateRandomPoints(t *testing.T) {
	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: 25, Lon: -125},
		TopRight:   models.Location{Lat: 49, Lon: -66},
	}
	points := generateRandomPoints(1001, box, 4, 42)
	require.Len(t, points, 1001)

	area, err := box.Area()
	require.NoError(t, err)
	for i, p := range points {
		require.NotNil(t, p, "point %d", i)
		c, err := p.Location.Coordinate()
		require.NoError(t, err)
		assert.True(t, area.Contains(c), "point %d at %v", i, c)
	}

	again := generateRandomPoints(1001, box, 4, 42)
	assert.Equal(t, points, again)
}
