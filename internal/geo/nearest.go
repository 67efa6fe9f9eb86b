package geo

// Locatable is anything with a single coordinate.
type Locatable interface {
	Position() LatLon
}

// Nearest returns the candidate closest to (lat, lon) and its distance in
// kilometers. ok is false when candidates is empty. Ties go to the earliest
// candidate in slice order.
func Nearest[T Locatable](lat, lon float64, candidates []T) (best T, distanceKm float64, ok bool) {
	for i, c := range candidates {
		p := c.Position()
		d := DistanceKm(lat, lon, p.Lat, p.Lon)
		if i == 0 || d < distanceKm {
			best, distanceKm = c, d
		}
	}
	return best, distanceKm, len(candidates) > 0
}
