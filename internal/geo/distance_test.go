package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_KnownPairs(t *testing.T) {
	tests := []struct {
		name     string
		a, b     LatLon
		expected float64
		delta    float64
	}{
		{
			name:     "Austin to Dallas",
			a:        LatLon{Lat: 30.2672, Lon: -97.7431},
			b:        LatLon{Lat: 32.7767, Lon: -96.7970},
			expected: 290,
			delta:    10,
		},
		{
			name:     "one degree of longitude on the equator",
			a:        LatLon{Lat: 0, Lon: 0},
			b:        LatLon{Lat: 0, Lon: 1},
			expected: EarthRadiusKm * math.Pi / 180,
			delta:    1e-9,
		},
		{
			name:     "Mendoza city blocks",
			a:        LatLon{Lat: -32.8894, Lon: -68.8458},
			b:        LatLon{Lat: -32.8904, Lon: -68.8458},
			expected: 0.1112,
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a.Lat, tt.a.Lon, tt.b.Lat, tt.b.Lon)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestDistanceKm_IdenticalPointsAreZero(t *testing.T) {
	for _, p := range []LatLon{
		{Lat: 0, Lon: 0},
		{Lat: -32.8894, Lon: -68.8458},
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
	} {
		assert.Equal(t, 0.0, DistanceKm(p.Lat, p.Lon, p.Lat, p.Lon))
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := LatLon{Lat: -34.6037, Lon: -58.3816}
	b := LatLon{Lat: -32.8894, Lon: -68.8458}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-12)
}

func TestDistanceKm_Antipodal(t *testing.T) {
	d := DistanceKm(0, 0, 0, 180)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)

	d = DistanceKm(90, 0, -90, 0)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
}

func TestPolylineLengthKm(t *testing.T) {
	assert.Equal(t, 0.0, PolylineLengthKm(nil))
	assert.Equal(t, 0.0, PolylineLengthKm([]LatLon{}))
	assert.Equal(t, 0.0, PolylineLengthKm([]LatLon{{Lat: 10, Lon: 10}}))

	path := []LatLon{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 2}}
	assert.InDelta(t, 2*Distance(path[0], path[1]), PolylineLengthKm(path), 1e-9)

	// Backtracking is summed, not netted.
	back := []LatLon{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 0}}
	assert.InDelta(t, 2*Distance(back[0], back[1]), PolylineLengthKm(back), 1e-9)
}

func TestAxisOrderConversion(t *testing.T) {
	p := FromXY(-68.8458, -32.8894)
	assert.Equal(t, -32.8894, p.Lat)
	assert.Equal(t, -68.8458, p.Lon)
	assert.Equal(t, []float64{-68.8458, -32.8894}, p.XY())
}
