package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ftth-cli/internal/budget"
	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/kmz"
	"github.com/sells-group/ftth-cli/internal/report"
	"github.com/sells-group/ftth-cli/internal/routing"
	"github.com/sells-group/ftth-cli/internal/session"
)

// Failure reasons reported for rejected design uploads.
const (
	ReasonMissingPayload   = "missing_payload"
	ReasonMalformedArchive = "malformed_archive"
	ReasonMalformedMarkup  = "malformed_markup"
	ReasonTooLarge         = "too_large"
	ReasonNotFound         = "not_found"
	ReasonBadRequest       = "bad_request"
)

type designResponse struct {
	ID       string         `json:"id"`
	Revision int            `json:"revision"`
	Stats    kmz.Stats      `json:"stats"`
	Report   *report.Report `json:"report"`
}

func newDesignResponse(e session.Entry) designResponse {
	return designResponse{ID: e.ID, Revision: e.Revision, Stats: e.Stats, Report: report.Build(e.Model)}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "designs": s.store.Len()})
}

// parseUpload reads and parses the archive in the request body, writing
// the error response itself on failure.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*design.Model, kmz.Stats, bool) {
	data, err := kmz.ReadLimited(r.Body, s.maxUploadBytes)
	if err != nil {
		if eris.Is(err, kmz.ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ReasonTooLarge, err)
		} else {
			writeError(w, http.StatusBadRequest, ReasonBadRequest, err)
		}
		return nil, kmz.Stats{}, false
	}

	m, stats, err := s.parser.Parse(data)
	if err != nil {
		status, reason := parseFailure(err)
		s.log.Warn("api: design rejected", zap.String("reason", reason), zap.Error(err))
		writeError(w, status, reason, err)
		return nil, kmz.Stats{}, false
	}
	return m, stats, true
}

// parseFailure maps parser errors onto an HTTP status and reason.
func parseFailure(err error) (int, string) {
	switch {
	case eris.Is(err, kmz.ErrMissingPayload):
		return http.StatusUnprocessableEntity, ReasonMissingPayload
	case eris.Is(err, kmz.ErrMalformedArchive):
		return http.StatusUnprocessableEntity, ReasonMalformedArchive
	case eris.Is(err, kmz.ErrMalformedMarkup):
		return http.StatusUnprocessableEntity, ReasonMalformedMarkup
	case eris.Is(err, kmz.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, ReasonTooLarge
	default:
		return http.StatusInternalServerError, ""
	}
}

func (s *Server) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	m, stats, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	e := s.store.Put(m, stats)
	s.log.Info("api: design loaded", zap.String("id", e.ID), zap.Int("placemarks", stats.Placemarks))
	writeJSON(w, http.StatusCreated, newDesignResponse(e))
}

func (s *Server) handleReplaceDesign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(id); err != nil {
		writeError(w, http.StatusNotFound, ReasonNotFound, err)
		return
	}

	m, stats, ok := s.parseUpload(w, r)
	if !ok {
		return
	}
	e, err := s.store.Replace(id, m, stats)
	if err != nil {
		writeError(w, http.StatusNotFound, ReasonNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, newDesignResponse(e))
}

// entry loads the design named in the URL or writes a 404.
func (s *Server) entry(w http.ResponseWriter, r *http.Request) (session.Entry, bool) {
	e, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, ReasonNotFound, err)
		return session.Entry{}, false
	}
	return e, true
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDesignResponse(e))
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	data, err := e.Model.GeoJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, ReasonNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type routesResponse struct {
	ID    string               `json:"id"`
	Links []routing.RoutedLink `json:"links"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entry(w, r)
	if !ok {
		return
	}
	links := routing.RouteLinks(r.Context(), s.router, design.Topology(e.Model), s.routeConcurrency)
	if links == nil {
		links = []routing.RoutedLink{}
	}
	writeJSON(w, http.StatusOK, routesResponse{ID: e.ID, Links: links})
}

// budgetRequest starts from budget.DefaultParams; any field present in the
// body overrides the default. Splitter ratios and spans, when given, take
// precedence over the raw loss and distance fields.
type budgetRequest struct {
	budget.Params
	SplitterNAP *string       `json:"splitter_nap"`
	SplitterCTO *string       `json:"splitter_cto"`
	Spans       *budget.Spans `json:"spans"`
}

type budgetResponse struct {
	Params    budget.Params `json:"params"`
	Result    budget.Result `json:"result"`
	Breakdown []budget.Line `json:"breakdown"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	req := budgetRequest{Params: budget.DefaultParams()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ReasonBadRequest, eris.Wrap(err, "invalid request body"))
		return
	}

	p := req.Params
	if req.SplitterNAP != nil {
		loss, err := budget.SplitterLoss(*req.SplitterNAP)
		if err != nil {
			writeError(w, http.StatusBadRequest, ReasonBadRequest, err)
			return
		}
		p.SplitterLossNAPDb = loss
	}
	if req.SplitterCTO != nil {
		loss, err := budget.SplitterLoss(*req.SplitterCTO)
		if err != nil {
			writeError(w, http.StatusBadRequest, ReasonBadRequest, err)
			return
		}
		p.SplitterLossCTODb = loss
	}
	if req.Spans != nil {
		p.DistanceKm = req.Spans.TotalKm()
	}

	res := budget.Compute(p)
	writeJSON(w, http.StatusOK, budgetResponse{Params: p, Result: res, Breakdown: res.Breakdown()})
}
