package design

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *Model {
	b := NewBuilder()
	b.AddPoint(NewPoint("HUB-01", -32.8890, -68.8450, CategoryHubBox))
	b.AddPoint(NewPoint("NODO Centro", -32.8894, -68.8458, CategoryNode))
	b.AddPoint(NewPoint("NAP-01", -32.8900, -68.8460, CategoryNAPBox))
	b.AddPoint(NewPoint("NAP-02", -32.8910, -68.8470, CategoryNAPBox))
	b.AddPoint(NewPoint("FOSC-1", -32.8895, -68.8455, CategorySpliceEnclosure))
	b.AddCable(NewCable("Troncal 1", []LatLon{{Lat: -32.8890, Lon: -68.8450}, {Lat: -32.8894, Lon: -68.8458}}, ClassTrunk))
	b.AddCable(NewCable("Drop 1", []LatLon{{Lat: -32.8894, Lon: -68.8458}, {Lat: -32.8900, Lon: -68.8460}}, ClassPreconnectorized))
	return b.Build()
}

func TestBuilder_CollectionsAreDisjoint(t *testing.T) {
	m := sampleModel()

	assert.Len(t, m.Nodes(), 1)
	assert.Len(t, m.HubBoxes(), 1)
	assert.Len(t, m.NAPBoxes(), 2)
	assert.Len(t, m.SpliceEnclosures(), 1)
	assert.Len(t, m.TrunkCables(), 1)
	assert.Empty(t, m.DistributionCables())
	assert.Len(t, m.PreconnectorizedCables(), 1)

	for _, p := range m.NAPBoxes() {
		assert.Equal(t, CategoryNAPBox, p.Category())
	}
	assert.False(t, m.Empty())
}

func TestBuilder_DropsEmptyCables(t *testing.T) {
	b := NewBuilder()
	assert.False(t, b.AddCable(NewCable("empty", nil, ClassTrunk)))
	assert.True(t, b.AddCable(NewCable("single", []LatLon{{Lat: 1, Lon: 1}}, ClassTrunk)))

	m := b.Build()
	require.Len(t, m.TrunkCables(), 1)
	assert.Equal(t, 0.0, m.TrunkCables()[0].LengthKm())
}

func TestBuilder_BuildDetachesModel(t *testing.T) {
	b := NewBuilder()
	b.AddPoint(NewPoint("a", 0, 0, CategoryNode))
	m := b.Build()

	b.AddPoint(NewPoint("b", 1, 1, CategoryNode))
	assert.Len(t, m.Nodes(), 1)
	assert.Len(t, b.Build().Nodes(), 1)
}

func TestModel_AccessorsReturnCopies(t *testing.T) {
	m := sampleModel()

	naps := m.NAPBoxes()
	naps[0].Name = "mutated"
	assert.Equal(t, "NAP-01", m.NAPBoxes()[0].Name)

	coords := m.TrunkCables()[0].Coords()
	coords[0].Lat = 0
	assert.Equal(t, -32.8890, m.TrunkCables()[0].Coords()[0].Lat)
}

func TestNewCable_CopiesInput(t *testing.T) {
	path := []LatLon{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}
	c := NewCable("c", path, ClassDistribution)
	path[0].Lat = 99

	first, ok := c.First()
	require.True(t, ok)
	assert.Equal(t, 1.0, first.Lat)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, LatLon{Lat: 3, Lon: 4}, last)
}

func TestCable_EmptyEndpoints(t *testing.T) {
	var c Cable
	_, ok := c.First()
	assert.False(t, ok)
	_, ok = c.Last()
	assert.False(t, ok)
	assert.Equal(t, 0.0, c.LengthM())
}

func TestNilModel(t *testing.T) {
	var m *Model
	assert.Nil(t, m.Nodes())
	assert.Equal(t, 0, m.CableCount(ClassTrunk))
	assert.True(t, m.Empty())
	assert.Nil(t, m.Bounds())
}

func TestModel_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(sampleModel())
	require.NoError(t, err)

	var decoded struct {
		NAPBoxes []struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"nap_boxes"`
		TrunkCables []struct {
			Class   string  `json:"class"`
			LengthM float64 `json:"length_m"`
		} `json:"trunk_cables"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.NAPBoxes, 2)
	assert.Equal(t, "NAP_BOX", decoded.NAPBoxes[0].Category)
	require.Len(t, decoded.TrunkCables, 1)
	assert.Equal(t, "TRUNK", decoded.TrunkCables[0].Class)
	assert.Greater(t, decoded.TrunkCables[0].LengthM, 0.0)
}
