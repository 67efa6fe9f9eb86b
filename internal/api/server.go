// Package api exposes design ingestion, reporting, routing and the link
// budget over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/ftth-cli/internal/kmz"
	"github.com/sells-group/ftth-cli/internal/routing"
	"github.com/sells-group/ftth-cli/internal/session"
)

const defaultMaxUploadBytes = 64 << 20

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes caps request bodies carrying design archives.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithRouter sets the routing fallback used for topology links.
func WithRouter(f *routing.Fallback) Option {
	return func(s *Server) {
		if f != nil {
			s.router = f
		}
	}
}

// WithRouteConcurrency bounds parallel route lookups per request.
func WithRouteConcurrency(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.routeConcurrency = n
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	store            *session.Store
	parser           *kmz.Parser
	router           *routing.Fallback
	maxUploadBytes   int64
	routeConcurrency int
	corsOrigins      []string
	log              *zap.Logger
}

// NewServer creates a Server. Without WithRouter, route lookups return
// straight lines.
func NewServer(store *session.Store, parser *kmz.Parser, opts ...Option) *Server {
	s := &Server{
		store:            store,
		parser:           parser,
		maxUploadBytes:   defaultMaxUploadBytes,
		routeConcurrency: 4,
		corsOrigins:      []string{"*"},
		log:              zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("component", "api"))
	if s.router == nil {
		s.router = routing.WithFallback(nil, routing.WithFallbackLogger(s.log))
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/budget", s.handleBudget)

		r.Post("/designs", s.handleCreateDesign)
		r.Route("/designs/{id}", func(r chi.Router) {
			r.Put("/", s.handleReplaceDesign)
			r.Delete("/", s.handleDeleteDesign)
			r.Get("/report", s.handleReport)
			r.Get("/geojson", s.handleGeoJSON)
			r.Post("/routes", s.handleRoutes)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string, err error) {
	writeJSON(w, status, errorBody{Error: err.Error(), Reason: reason})
}
