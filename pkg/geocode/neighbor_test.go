package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeighbor(t *testing.T) {
	g, err := FromBits(taipeiBits, 15)
	require.NoError(t, err)

	expected := map[Direction]uint64{
		North:     0b111001100010110101100011101011,
		East:      0b111001100010110101101001000000,
		South:     0b111001100010110101100010111111,
		West:      0b111001100010110101100011101000,
		NorthEast: 0b111001100010110101101001000001,
		SouthEast: 0b111001100010110101101000010101,
		SouthWest: 0b111001100010110101100010111101,
		NorthWest: 0b111001100010110101100011101001,
	}

	neighbors := g.Neighbors()
	for _, d := range Directions() {
		t.Run(d.String(), func(t *testing.T) {
			n := g.Neighbor(d)
			assert.Equal(t, expected[d], n.Bits())
			assert.Equal(t, g.Precision(), n.Precision())
			assert.Equal(t, n, neighbors.Get(d))
		})
	}
	assert.Len(t, neighbors.All(), 8)
}

func TestNeighborIsAdjacent(t *testing.T) {
	g := mustEncode(t, 25.006, 121.46, 15)
	lng, lat := g.Longitude(), g.Latitude()

	testCases := []struct {
		d          Direction
		dLng, dLat int64
	}{
		{North, 0, 1},
		{East, 1, 0},
		{South, 0, -1},
		{West, -1, 0},
		{NorthEast, 1, 1},
		{SouthEast, 1, -1},
		{SouthWest, -1, -1},
		{NorthWest, -1, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.d.String(), func(t *testing.T) {
			n := g.Neighbor(tc.d)
			assert.Equal(t, int64(lng)+tc.dLng, int64(n.Longitude()))
			assert.Equal(t, int64(lat)+tc.dLat, int64(n.Latitude()))
		})
	}
}

func TestNeighborInverse(t *testing.T) {
	for p := MinPrecision + 1; p <= MaxPrecision; p++ {
		g := mustEncode(t, 12.345, -67.89, p)
		assert.Equal(t, g, g.Neighbor(East).Neighbor(West), "precision %d", p)
		assert.Equal(t, g, g.Neighbor(West).Neighbor(East), "precision %d", p)
		assert.Equal(t, g, g.Neighbor(North).Neighbor(South), "precision %d", p)
		assert.Equal(t, g, g.Neighbor(South).Neighbor(North), "precision %d", p)
		assert.Equal(t, g, g.Neighbor(NorthEast).Neighbor(SouthWest), "precision %d", p)
		assert.Equal(t, g, g.Neighbor(NorthWest).Neighbor(SouthEast), "precision %d", p)
	}
}

func TestNeighborSharesEdge(t *testing.T) {
	g := mustEncode(t, 48.8566, 2.3522, 20)
	area := g.Decode()

	assert.Equal(t, area.Lat.End, g.Neighbor(North).Decode().Lat.Start)
	assert.Equal(t, area.Lat.Start, g.Neighbor(South).Decode().Lat.End)
	assert.Equal(t, area.Lng.End, g.Neighbor(East).Decode().Lng.Start)
	assert.Equal(t, area.Lng.Start, g.Neighbor(West).Decode().Lng.End)
}

func TestNeighborWrapsWithinActiveBits(t *testing.T) {
	// Precision 2 grid, lng index 0 and lat index 1.
	westmost, err := FromBits(0b0001, 2)
	require.NoError(t, err)

	west := westmost.Neighbor(West)
	assert.Equal(t, uint64(0b1011), west.Bits())
	assert.Equal(t, uint32(3), west.Longitude())
	assert.Equal(t, uint32(1), west.Latitude())
	assert.Equal(t, westmost, west.Neighbor(East))

	// lat index 3, lng index 1: north wraps to lat index 0.
	northmost, err := FromBits(0b0111, 2)
	require.NoError(t, err)
	north := northmost.Neighbor(North)
	assert.Equal(t, uint64(0b0010), north.Bits())

	// Wrapping never leaks into bits above the active range.
	for p := MinPrecision; p <= MaxPrecision; p++ {
		corner, err := FromBits(activeMask(p), p)
		require.NoError(t, err)
		for _, d := range Directions() {
			n := corner.Neighbor(d)
			assert.Zero(t, n.Bits()&^activeMask(p), "precision %d %s", p, d)
		}
		origin, err := FromBits(0, p)
		require.NoError(t, err)
		assert.Equal(t, LngBits&activeMask(p), origin.Neighbor(West).Bits(), "precision %d", p)
		assert.Equal(t, LatBits&activeMask(p), origin.Neighbor(South).Bits(), "precision %d", p)
	}
}

func TestDirection(t *testing.T) {
	for _, d := range Directions() {
		parsed, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, err := ParseDirection("up")
	assert.Error(t, err)
	assert.Equal(t, "Direction(9)", Direction(9).String())
}

func BenchmarkNeighbors(b *testing.B) {
	g := mustEncode(b, 25.006, 121.46, 26)
	for i := 0; i < b.N; i++ {
		_ = g.Neighbors()
	}
}
