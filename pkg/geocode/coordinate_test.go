package geocode

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	testCases := []struct {
		name     string
		lat, lng float64
		valid    bool
	}{
		{"origin", 0, 0, true},
		{"south west corner", -90, -180, true},
		{"just below north", 89.999999, 0, true},
		{"just below east", 0, 179.999999, true},
		{"north pole", 90, 0, false},
		{"below south pole", -90.0001, 0, false},
		{"antimeridian", 0, 180, false},
		{"west of range", 0, -180.0001, false},
		{"nan latitude", math.NaN(), 0, false},
		{"infinite longitude", 0, math.Inf(1), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCoordinate(tc.lat, tc.lng)
			if !tc.valid {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.lat, c.Latitude())
			assert.Equal(t, tc.lng, c.Longitude())
		})
	}
}

func TestCoordinateDistance(t *testing.T) {
	a, err := NewCoordinate(0, 0)
	require.NoError(t, err)
	b, err := NewCoordinate(3, 4)
	require.NoError(t, err)

	assert.Equal(t, 5.0, a.Distance(b))
	assert.Equal(t, 5.0, b.Distance(a))
	assert.Equal(t, 0.0, a.Distance(a))
}
