// Package geo provides great-circle distance and nearest-neighbour helpers
// for WGS84 coordinates.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// LatLon is a WGS84 coordinate stored latitude first.
type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// DistanceKm returns the great-circle distance between two points in
// kilometers. Inputs are not range-checked.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Rounding can push a slightly outside [0,1] for antipodal points.
	a = math.Max(0, math.Min(1, a))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Distance is DistanceKm for LatLon values.
func Distance(a, b LatLon) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// PolylineLengthKm sums the great-circle distance of consecutive points.
// Paths with fewer than two points have no segment and measure zero.
func PolylineLengthKm(points []LatLon) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FromXY builds a LatLon from an x/y (longitude/latitude) pair, the axis
// order used by KML and GeoJSON. It and XY are the only places that know
// about the swap.
func FromXY(x, y float64) LatLon {
	return LatLon{Lat: y, Lon: x}
}

// XY returns the coordinate in longitude/latitude order.
func (p LatLon) XY() []float64 {
	return []float64{p.Lon, p.Lat}
}
