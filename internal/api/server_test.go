package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/ftth-cli/internal/budget"
	"github.com/sells-group/ftth-cli/internal/kmz"
	"github.com/sells-group/ftth-cli/internal/session"
)

const designKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
<Folder><name>CAJAS HUB</name>
  <Placemark><name>HUB-01</name><Point><coordinates>-68.8450,-32.8890,0</coordinates></Point></Placemark>
</Folder>
<Folder><name>NODOS</name>
  <Placemark><name>NODO Centro</name><Point><coordinates>-68.8458,-32.8894,0</coordinates></Point></Placemark>
</Folder>
<Folder><name>CAJAS_NAP</name>
  <Placemark><name>NAP-01</name><Point><coordinates>-68.8460,-32.8900,0</coordinates></Point></Placemark>
  <Placemark><name>NAP-02</name><Point><coordinates>-68.8470,-32.8910,0</coordinates></Point></Placemark>
</Folder>
<Folder><name>CABLES PRECONECTORIZADOS</name>
  <Placemark><name>Drop 1</name><LineString><coordinates>-68.8458,-32.8894,0 -68.8460,-32.8900,0</coordinates></LineString></Placemark>
</Folder>
</Document></kml>`

func archive(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	s := NewServer(session.NewStore(), kmz.NewParser(kmz.WithLogger(zap.NewNop())), opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func upload(t *testing.T, srv *httptest.Server) designResponse {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/v1/designs", archive(t, "doc.kml", designKML))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[designResponse](t, resp)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateDesign(t *testing.T) {
	srv := newTestServer(t)
	got := upload(t, srv)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 1, got.Revision)
	assert.Equal(t, "doc.kml", got.Stats.Payload)
	assert.Equal(t, 4, got.Stats.Points)
	require.NotNil(t, got.Report)
	require.Len(t, got.Report.Destinations, 1)
	assert.Equal(t, "NAP-01", got.Report.Destinations[0].NAP)
}

func TestCreateDesign_ParserFailures(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   []byte
		status int
		reason string
	}{
		{name: "not an archive", body: []byte("plain text"), status: http.StatusUnprocessableEntity, reason: ReasonMalformedArchive},
		{name: "no kml entry", body: archive(t, "notes.txt", "hola"), status: http.StatusUnprocessableEntity, reason: ReasonMissingPayload},
		{name: "broken markup", body: archive(t, "doc.kml", "<kml><Document>"), status: http.StatusUnprocessableEntity, reason: ReasonMalformedMarkup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/v1/designs", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[errorBody](t, resp)
			assert.Equal(t, tt.reason, body.Reason)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestCreateDesign_TooLarge(t *testing.T) {
	srv := newTestServer(t, WithMaxUploadBytes(32))
	resp := do(t, http.MethodPost, srv.URL+"/v1/designs", archive(t, "doc.kml", designKML))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, ReasonTooLarge, decode[errorBody](t, resp).Reason)
}

func TestReplaceDesign(t *testing.T) {
	srv := newTestServer(t)
	created := upload(t, srv)

	smaller := strings.Replace(designKML,
		`<Placemark><name>NAP-02</name><Point><coordinates>-68.8470,-32.8910,0</coordinates></Point></Placemark>`, "", 1)
	resp := do(t, http.MethodPut, srv.URL+"/v1/designs/"+created.ID, archive(t, "doc.kml", smaller))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[designResponse](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 2, got.Revision)
	assert.Equal(t, 3, got.Stats.Points)

	// A failed re-parse leaves the current design in place.
	resp = do(t, http.MethodPut, srv.URL+"/v1/designs/"+created.ID, []byte("garbage"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/v1/designs/"+created.ID+"/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[designResponse](t, resp).Revision)
}

func TestReplaceDesign_UnknownID(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, http.MethodPut, srv.URL+"/v1/designs/nope", archive(t, "doc.kml", designKML))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGeoJSON(t *testing.T) {
	srv := newTestServer(t)
	created := upload(t, srv)

	resp := do(t, http.MethodGet, srv.URL+"/v1/designs/"+created.ID+"/geojson", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	fc := decode[struct {
		Type     string           `json:"type"`
		Features []map[string]any `json:"features"`
	}](t, resp)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 5)
}

func TestDeleteDesign(t *testing.T) {
	srv := newTestServer(t)
	created := upload(t, srv)

	resp := do(t, http.MethodDelete, srv.URL+"/v1/designs/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/v1/designs/"+created.ID+"/report", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, srv.URL+"/v1/designs/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoutes_StraightLineWithoutRouter(t *testing.T) {
	srv := newTestServer(t)
	created := upload(t, srv)

	resp := do(t, http.MethodPost, srv.URL+"/v1/designs/"+created.ID+"/routes", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[struct {
		ID    string `json:"id"`
		Links []struct {
			Kind string `json:"kind"`
			Path struct {
				Coords []map[string]float64 `json:"coords"`
				Routed bool                 `json:"routed"`
			} `json:"path"`
		} `json:"links"`
	}](t, resp)

	require.Len(t, got.Links, 3)
	assert.Equal(t, "HUB→NODE", got.Links[0].Kind)
	for _, l := range got.Links {
		assert.False(t, l.Path.Routed)
		assert.Len(t, l.Path.Coords, 2)
	}
}

func TestBudget(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/v1/budget", []byte(`{}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[budgetResponse](t, resp)
	assert.InDelta(t, 9.9295, got.Result.TotalLossDb, 1e-9)
	assert.Equal(t, budget.StatusOK, got.Result.Status)
	assert.Len(t, got.Breakdown, 5)

	resp = do(t, http.MethodPost, srv.URL+"/v1/budget",
		[]byte(`{"splitter_nap":"1:64","splitter_cto":"1:32","spans":{"olt_to_nap_km":20,"nap_to_cto_km":0,"cto_to_ont_km":0}}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[budgetResponse](t, resp)
	assert.InDelta(t, 20, got.Params.DistanceKm, 1e-9)
	assert.InDelta(t, 37.5, got.Result.SplitterLossDb, 1e-9)
	assert.Equal(t, budget.StatusOutOfRange, got.Result.Status)
}

func TestBudget_BadInput(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/v1/budget", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/v1/budget", []byte(`{"splitter_nap":"1:3"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
