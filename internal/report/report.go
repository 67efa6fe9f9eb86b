// Package report aggregates a design model into summary tables: entity
// counts, cable lengths per class, a drop-length histogram and the nearest
// NAP box for every preconnectorized drop.
package report

import (
	"math"

	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/geo"
)

// NoNAPFound is the destination reported when the design has no NAP boxes.
const NoNAPFound = "no NAP found"

// OverflowLabel names the bucket for drops longer than the last edge.
const OverflowLabel = ">300"

// Bucket is one histogram bin with closed meter bounds. The overflow bin
// has no upper bound and MaxM is zero.
type Bucket struct {
	Label    string  `json:"label" yaml:"label"`
	MinM     float64 `json:"min_m" yaml:"min_m"`
	MaxM     float64 `json:"max_m,omitempty" yaml:"max_m,omitempty"`
	Overflow bool    `json:"overflow,omitempty" yaml:"overflow,omitempty"`
	Count    int     `json:"count" yaml:"count"`
}

// bucketEdges are evaluated in order; a length falls in the first closed
// interval that contains it.
var bucketEdges = []Bucket{
	{Label: "0-50", MinM: 0, MaxM: 50},
	{Label: "51-100", MinM: 51, MaxM: 100},
	{Label: "101-150", MinM: 101, MaxM: 150},
	{Label: "151-200", MinM: 151, MaxM: 200},
	{Label: "201-250", MinM: 201, MaxM: 250},
	{Label: "251-300", MinM: 251, MaxM: 300},
}

// ClassSummary is the cable count and total length of one class.
type ClassSummary struct {
	Class  design.CableClass `json:"class" yaml:"class"`
	Count  int               `json:"count" yaml:"count"`
	TotalM float64           `json:"total_m" yaml:"total_m"`
}

// CategoryCount is the number of points in one category.
type CategoryCount struct {
	Category design.Category `json:"category" yaml:"category"`
	Count    int             `json:"count" yaml:"count"`
}

// Destination links a preconnectorized drop to the NAP box nearest its
// last coordinate.
type Destination struct {
	Cable     string  `json:"cable" yaml:"cable"`
	LengthM   float64 `json:"length_m" yaml:"length_m"`
	NAP       string  `json:"nap" yaml:"nap"`
	DistanceM float64 `json:"distance_m" yaml:"distance_m"`
	Found     bool    `json:"found" yaml:"found"`
}

// Report is the aggregated view of a design.
type Report struct {
	Points       []CategoryCount `json:"points" yaml:"points"`
	Cables       []ClassSummary  `json:"cables" yaml:"cables"`
	Histogram    []Bucket        `json:"histogram" yaml:"histogram"`
	Destinations []Destination   `json:"destinations" yaml:"destinations"`
}

// TotalCableM returns the summed length of every cable class.
func (r *Report) TotalCableM() float64 {
	var total float64
	for _, c := range r.Cables {
		total += c.TotalM
	}
	return total
}

// Build computes the report for m. A nil model yields zero counts.
func Build(m *design.Model) *Report {
	r := &Report{}

	for _, c := range design.Categories() {
		r.Points = append(r.Points, CategoryCount{Category: c, Count: m.PointCount(c)})
	}

	for _, class := range design.CableClasses() {
		s := ClassSummary{Class: class}
		for _, c := range m.Cables(class) {
			s.Count++
			s.TotalM += c.LengthM()
		}
		r.Cables = append(r.Cables, s)
	}

	drops := m.PreconnectorizedCables()
	r.Histogram = histogram(drops)
	r.Destinations = destinations(drops, m.NAPBoxes())
	return r
}

// BucketLabel returns the histogram label for a length in meters. The
// length is rounded to the nearest whole meter before the edges are tested.
func BucketLabel(lengthM float64) string {
	if i := bucketIndex(lengthM); i >= 0 {
		return bucketEdges[i].Label
	}
	return OverflowLabel
}

func bucketIndex(lengthM float64) int {
	m := math.Round(lengthM)
	for i, b := range bucketEdges {
		if m >= b.MinM && m <= b.MaxM {
			return i
		}
	}
	return -1
}

func histogram(drops []design.Cable) []Bucket {
	out := make([]Bucket, 0, len(bucketEdges)+1)
	out = append(out, bucketEdges...)
	overflow := Bucket{Label: OverflowLabel, MinM: bucketEdges[len(bucketEdges)-1].MaxM + 1, Overflow: true}

	for _, c := range drops {
		if i := bucketIndex(c.LengthM()); i >= 0 {
			out[i].Count++
		} else {
			overflow.Count++
		}
	}
	return append(out, overflow)
}

func destinations(drops []design.Cable, naps []design.Point) []Destination {
	out := make([]Destination, 0, len(drops))
	for _, c := range drops {
		d := Destination{Cable: c.Name, LengthM: c.LengthM(), NAP: NoNAPFound}
		if end, ok := c.Last(); ok {
			if nap, km, found := geo.Nearest(end.Lat, end.Lon, naps); found {
				d.NAP = nap.Name
				d.DistanceM = km * 1000
				d.Found = true
			}
		}
		out = append(out, d)
	}
	return out
}
