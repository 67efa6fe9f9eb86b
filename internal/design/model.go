// Package design holds the typed network entities recovered from an FTTH
// design document.
package design

import (
	"encoding/json"

	"github.com/sells-group/ftth-cli/internal/geo"
)

// LatLon is a latitude-first coordinate.
type LatLon = geo.LatLon

// Category classifies a point entity.
type Category string

// Point categories.
const (
	CategoryNode            Category = "NODE"
	CategoryHubBox          Category = "HUB_BOX"
	CategoryNAPBox          Category = "NAP_BOX"
	CategorySpliceEnclosure Category = "SPLICE_ENCLOSURE"
)

// Categories lists point categories in reporting order.
func Categories() []Category {
	return []Category{CategoryNode, CategoryHubBox, CategoryNAPBox, CategorySpliceEnclosure}
}

// CableClass classifies a cable run.
type CableClass string

// Cable classes.
const (
	ClassTrunk            CableClass = "TRUNK"
	ClassDistribution     CableClass = "DISTRIBUTION"
	ClassPreconnectorized CableClass = "PRECONNECTORIZED"
)

// CableClasses lists cable classes in reporting order.
func CableClasses() []CableClass {
	return []CableClass{ClassTrunk, ClassDistribution, ClassPreconnectorized}
}

// Point is a network element at a single coordinate. Its category is fixed
// when the point is created.
type Point struct {
	Name     string
	Lat      float64
	Lon      float64
	category Category
}

// NewPoint creates a point with the given category.
func NewPoint(name string, lat, lon float64, category Category) Point {
	return Point{Name: name, Lat: lat, Lon: lon, category: category}
}

// Category returns the point's category.
func (p Point) Category() Category { return p.category }

// Position implements geo.Locatable.
func (p Point) Position() LatLon { return LatLon{Lat: p.Lat, Lon: p.Lon} }

type pointJSON struct {
	Name     string   `json:"name" yaml:"name"`
	Lat      float64  `json:"lat" yaml:"lat"`
	Lon      float64  `json:"lon" yaml:"lon"`
	Category Category `json:"category" yaml:"category"`
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{Name: p.Name, Lat: p.Lat, Lon: p.Lon, Category: p.category})
}

// MarshalYAML implements yaml.Marshaler.
func (p Point) MarshalYAML() (any, error) {
	return pointJSON{Name: p.Name, Lat: p.Lat, Lon: p.Lon, Category: p.category}, nil
}

// Cable is a fiber run along an ordered path.
type Cable struct {
	Name   string
	coords []LatLon
	class  CableClass
}

// NewCable creates a cable. The coordinate slice is copied.
func NewCable(name string, coords []LatLon, class CableClass) Cable {
	return Cable{Name: name, coords: append([]LatLon(nil), coords...), class: class}
}

// Class returns the cable's class.
func (c Cable) Class() CableClass { return c.class }

// Coords returns a copy of the cable path.
func (c Cable) Coords() []LatLon { return append([]LatLon(nil), c.coords...) }

// NumCoords returns the number of path vertices.
func (c Cable) NumCoords() int { return len(c.coords) }

// LengthKm returns the great-circle length of the path.
func (c Cable) LengthKm() float64 { return geo.PolylineLengthKm(c.coords) }

// LengthM returns the path length in meters.
func (c Cable) LengthM() float64 { return c.LengthKm() * 1000 }

// First returns the first vertex.
func (c Cable) First() (LatLon, bool) {
	if len(c.coords) == 0 {
		return LatLon{}, false
	}
	return c.coords[0], true
}

// Last returns the last vertex.
func (c Cable) Last() (LatLon, bool) {
	if len(c.coords) == 0 {
		return LatLon{}, false
	}
	return c.coords[len(c.coords)-1], true
}

type cableJSON struct {
	Name    string     `json:"name" yaml:"name"`
	Class   CableClass `json:"class" yaml:"class"`
	LengthM float64    `json:"length_m" yaml:"length_m"`
	Coords  []LatLon   `json:"coords" yaml:"coords"`
}

// MarshalJSON implements json.Marshaler.
func (c Cable) MarshalJSON() ([]byte, error) {
	return json.Marshal(cableJSON{Name: c.Name, Class: c.class, LengthM: c.LengthM(), Coords: c.coords})
}

// MarshalYAML implements yaml.Marshaler.
func (c Cable) MarshalYAML() (any, error) {
	return cableJSON{Name: c.Name, Class: c.class, LengthM: c.LengthM(), Coords: c.coords}, nil
}

// Model is the parsed design: disjoint point collections per category and
// cable collections per class. A Model is never modified after Build;
// accessors return copies.
type Model struct {
	points map[Category][]Point
	cables map[CableClass][]Cable
}

// Points returns the points of one category in document order.
func (m *Model) Points(c Category) []Point {
	if m == nil {
		return nil
	}
	return append([]Point(nil), m.points[c]...)
}

// Cables returns the cables of one class in document order.
func (m *Model) Cables(c CableClass) []Cable {
	if m == nil {
		return nil
	}
	return append([]Cable(nil), m.cables[c]...)
}

// Nodes returns the NODE points.
func (m *Model) Nodes() []Point { return m.Points(CategoryNode) }

// HubBoxes returns the HUB_BOX points.
func (m *Model) HubBoxes() []Point { return m.Points(CategoryHubBox) }

// NAPBoxes returns the NAP_BOX points.
func (m *Model) NAPBoxes() []Point { return m.Points(CategoryNAPBox) }

// SpliceEnclosures returns the SPLICE_ENCLOSURE points.
func (m *Model) SpliceEnclosures() []Point { return m.Points(CategorySpliceEnclosure) }

// TrunkCables returns the TRUNK cables.
func (m *Model) TrunkCables() []Cable { return m.Cables(ClassTrunk) }

// DistributionCables returns the DISTRIBUTION cables.
func (m *Model) DistributionCables() []Cable { return m.Cables(ClassDistribution) }

// PreconnectorizedCables returns the PRECONNECTORIZED cables.
func (m *Model) PreconnectorizedCables() []Cable { return m.Cables(ClassPreconnectorized) }

// PointCount returns the number of points in a category.
func (m *Model) PointCount(c Category) int {
	if m == nil {
		return 0
	}
	return len(m.points[c])
}

// CableCount returns the number of cables in a class.
func (m *Model) CableCount(c CableClass) int {
	if m == nil {
		return 0
	}
	return len(m.cables[c])
}

// Empty reports whether the model holds no entities at all.
func (m *Model) Empty() bool {
	for _, c := range Categories() {
		if m.PointCount(c) > 0 {
			return false
		}
	}
	for _, c := range CableClasses() {
		if m.CableCount(c) > 0 {
			return false
		}
	}
	return true
}

type modelJSON struct {
	Nodes                  []Point `json:"nodes" yaml:"nodes"`
	HubBoxes               []Point `json:"hub_boxes" yaml:"hub_boxes"`
	NAPBoxes               []Point `json:"nap_boxes" yaml:"nap_boxes"`
	SpliceEnclosures       []Point `json:"splice_enclosures" yaml:"splice_enclosures"`
	TrunkCables            []Cable `json:"trunk_cables" yaml:"trunk_cables"`
	DistributionCables     []Cable `json:"distribution_cables" yaml:"distribution_cables"`
	PreconnectorizedCables []Cable `json:"preconnectorized_cables" yaml:"preconnectorized_cables"`
}

func (m *Model) view() modelJSON {
	return modelJSON{
		Nodes:                  m.Nodes(),
		HubBoxes:               m.HubBoxes(),
		NAPBoxes:               m.NAPBoxes(),
		SpliceEnclosures:       m.SpliceEnclosures(),
		TrunkCables:            m.TrunkCables(),
		DistributionCables:     m.DistributionCables(),
		PreconnectorizedCables: m.PreconnectorizedCables(),
	}
}

// MarshalJSON implements json.Marshaler.
func (m *Model) MarshalJSON() ([]byte, error) { return json.Marshal(m.view()) }

// MarshalYAML implements yaml.Marshaler.
func (m *Model) MarshalYAML() (any, error) { return m.view(), nil }

// Builder accumulates entities for a single Model.
type Builder struct {
	points map[Category][]Point
	cables map[CableClass][]Cable
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		points: make(map[Category][]Point),
		cables: make(map[CableClass][]Cable),
	}
}

// AddPoint appends a point to its category collection.
func (b *Builder) AddPoint(p Point) {
	b.points[p.category] = append(b.points[p.category], p)
}

// AddCable appends a cable to its class collection. Cables without any
// coordinate are dropped and AddCable reports false.
func (b *Builder) AddCable(c Cable) bool {
	if len(c.coords) == 0 {
		return false
	}
	b.cables[c.class] = append(b.cables[c.class], c)
	return true
}

// Build returns the Model and resets the builder so later additions cannot
// reach the returned value.
func (b *Builder) Build() *Model {
	m := &Model{points: b.points, cables: b.cables}
	b.points = make(map[Category][]Point)
	b.cables = make(map[CableClass][]Cable)
	return m
}
