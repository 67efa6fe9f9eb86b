package kmz

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name string
	body []byte
}

// buildArchive writes the entries, in order, into an in-memory zip.
func buildArchive(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
  <name>Red Centro</name>
  <Folder>
    <name>Proyecto</name>
    <Folder>
      <name>CAJAS_NAP</name>
      <Placemark>
        <name>Box1</name>
        <Point><coordinates>-68.8460,-32.8900,0</coordinates></Point>
      </Placemark>
    </Folder>
    <Folder>
      <name>Cajas Hub</name>
      <Placemark>
        <name>HUB-01</name>
        <Point><coordinates>-68.8450,-32.8890,0</coordinates></Point>
      </Placemark>
    </Folder>
    <Folder>
      <name>FOSC</name>
      <Placemark>
        <name>Empalme 1</name>
        <Point><coordinates>-68.8455,-32.8895,0</coordinates></Point>
      </Placemark>
    </Folder>
    <Folder>
      <name>NODOS</name>
      <Placemark>
        <name>NODO Centro</name>
        <Point><coordinates>-68.8458,-32.8894,0</coordinates></Point>
      </Placemark>
    </Folder>
    <Folder>
      <name>Varios</name>
      <Placemark>
        <name>Poste 7</name>
        <Point><coordinates>-68.8470,-32.8910,0</coordinates></Point>
      </Placemark>
    </Folder>
    <Folder>
      <name>CABLES TRONCALES</name>
      <Placemark>
        <name>Troncal 1</name>
        <LineString>
          <coordinates>
            -68.8450,-32.8890,0 abc
            -68.8458,-32.8894,0
          </coordinates>
        </LineString>
      </Placemark>
    </Folder>
    <Folder>
      <name>CABLES DERIVACIONES</name>
      <Placemark>
        <name>Deriv 1</name>
        <MultiGeometry>
          <LineString><coordinates>-68.8458,-32.8894,0 -68.8460,-32.8900,0</coordinates></LineString>
          <LineString><coordinates>-68.8460,-32.8900,0 -68.8470,-32.8910,0</coordinates></LineString>
        </MultiGeometry>
      </Placemark>
    </Folder>
    <Folder>
      <name>CABLES PRECONECTORIZADOS</name>
      <Placemark>
        <name>Drop 1</name>
        <LineString><coordinates>-68.8458,-32.8894,0 -68.8461,-32.8901,0</coordinates></LineString>
      </Placemark>
      <Placemark>
        <name>Drop vacio</name>
        <LineString><coordinates> </coordinates></LineString>
      </Placemark>
    </Folder>
    <Folder>
      <name>Otros</name>
      <Placemark>
        <name>Linea suelta</name>
        <LineString><coordinates>-68.80,-32.80,0 -68.81,-32.81,0</coordinates></LineString>
      </Placemark>
    </Folder>
  </Folder>
  <Placemark>
    <name>Zona</name>
    <Polygon><outerBoundaryIs><LinearRing><coordinates>-68.8,-32.8,0 -68.9,-32.8,0 -68.9,-32.9,0 -68.8,-32.8,0</coordinates></LinearRing></outerBoundaryIs></Polygon>
  </Placemark>
</Document>
</kml>`
