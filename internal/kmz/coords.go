package kmz

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/ftth-cli/internal/geo"
)

// parseCoordinates parses a KML coordinates string: whitespace-separated
// "lon,lat[,alt]" tuples. Tokens without two finite numbers are skipped and
// counted.
func parseCoordinates(s string) (points []geo.LatLon, skipped int) {
	for _, tok := range strings.Fields(s) {
		p, ok := parseTuple(tok)
		if !ok {
			skipped++
			continue
		}
		points = append(points, p)
	}
	return points, skipped
}

func parseTuple(tok string) (geo.LatLon, bool) {
	parts := strings.Split(tok, ",")
	if len(parts) < 2 {
		return geo.LatLon{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return geo.LatLon{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return geo.LatLon{}, false
	}
	return geo.FromXY(lon, lat), true
}
