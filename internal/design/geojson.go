package design

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Geometry returns the point as a go-geom Point with SRID 4326.
func (p Point) Geometry() *geom.Point {
	return geom.NewPointFlat(geom.XY, p.Position().XY()).SetSRID(4326)
}

// Geometry returns the cable path as a go-geom LineString with SRID 4326.
func (c Cable) Geometry() *geom.LineString {
	flat := make([]float64, 0, 2*len(c.coords))
	for _, ll := range c.coords {
		flat = append(flat, ll.XY()...)
	}
	return geom.NewLineStringFlat(geom.XY, flat).SetSRID(4326)
}

// Bounds returns the bounding box of every entity in the model, or nil for
// an empty model.
func (m *Model) Bounds() *geom.Bounds {
	if m.Empty() {
		return nil
	}
	b := geom.NewBounds(geom.XY)
	for _, c := range Categories() {
		for _, p := range m.Points(c) {
			b.Extend(p.Geometry())
		}
	}
	for _, c := range CableClasses() {
		for _, cb := range m.Cables(c) {
			b.Extend(cb.Geometry())
		}
	}
	return b
}

// FeatureCollection converts the model into GeoJSON features. Points carry
// "category" and cables carry "class" and "length_m" properties.
func (m *Model) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{BBox: m.Bounds()}
	for _, c := range Categories() {
		for _, p := range m.Points(c) {
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: p.Geometry(),
				Properties: map[string]any{
					"name":     p.Name,
					"category": string(p.Category()),
				},
			})
		}
	}
	for _, c := range CableClasses() {
		for _, cb := range m.Cables(c) {
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: cb.Geometry(),
				Properties: map[string]any{
					"name":     cb.Name,
					"class":    string(cb.Class()),
					"length_m": cb.LengthM(),
				},
			})
		}
	}
	return fc
}

// GeoJSON encodes the model as a GeoJSON FeatureCollection.
func (m *Model) GeoJSON() ([]byte, error) {
	data, err := m.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "design: encode geojson")
	}
	return data, nil
}
