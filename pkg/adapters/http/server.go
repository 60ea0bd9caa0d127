// Package http serves a ports.Catalog over HTTP and provides the matching
// client, so a flow catalog can live in another process.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/ussdflow"
	"github.com/aretw0/ussdflow/internal/logging"
	"github.com/aretw0/ussdflow/pkg/domain"
	"github.com/aretw0/ussdflow/pkg/flowdoc"
	"github.com/aretw0/ussdflow/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps the size of a published document.
const maxBodyBytes = 8 << 20

// Server handles the catalog routes.
type Server struct {
	Catalog ports.Catalog
	logger  *slog.Logger
}

type serverConfig struct {
	logger      *slog.Logger
	middlewares []func(http.Handler) http.Handler
	metrics     http.Handler
}

// Option configures NewHandler.
type Option func(*serverConfig)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *serverConfig) {
		c.logger = logger
	}
}

// WithMiddleware installs mw on the router before any route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(c *serverConfig) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(c *serverConfig) {
		c.metrics = h
	}
}

// NewHandler creates the HTTP handler for catalog.
func NewHandler(catalog ports.Catalog, opts ...Option) http.Handler {
	cfg := serverConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := &Server{Catalog: catalog, logger: cfg.logger}
	r := chi.NewRouter()
	r.Use(cfg.middlewares...)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Route("/flows", func(r chi.Router) {
		r.Get("/", server.ListFlows)
		r.Post("/", server.CreateFlow)
		r.Get("/{name}", server.GetFlow)
	})
	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Catalog.FetchAll(r.Context())
	if err != nil {
		s.fail(w, "ListFlows", http.StatusBadGateway, err)
		return
	}
	s.respond(w, http.StatusOK, docs)
}

// CreateFlow handles POST /flows. The body is one flow document; a flow with
// the same name is replaced.
func (s *Server) CreateFlow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.fail(w, "CreateFlow", http.StatusRequestEntityTooLarge, err)
		return
	}
	doc, err := flowdoc.Decode(body)
	if err != nil {
		s.fail(w, "CreateFlow", http.StatusBadRequest, err)
		return
	}

	if err := s.Catalog.Publish(r.Context(), doc); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrUnnamedFlow) {
			status = http.StatusUnprocessableEntity
		}
		s.fail(w, "CreateFlow", status, err)
		return
	}

	s.logger.Info("Flow published", "flow", doc.FlowName, "records", len(doc.Nodes))
	w.Header().Set("Location", "/flows/"+url.PathEscape(doc.FlowName))
	s.respond(w, http.StatusCreated, map[string]string{"flowName": doc.FlowName})
}

// GetFlow handles GET /flows/{name}.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	docs, err := s.Catalog.FetchByName(r.Context(), name)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrFlowNotFound) {
			status = http.StatusNotFound
		}
		s.fail(w, "GetFlow", status, err)
		return
	}
	s.respond(w, http.StatusOK, docs)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{
		"app":     "ussdflow-catalog",
		"version": strings.TrimSpace(ussdflow.Version),
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, op string, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err, "status", status)
	}
	s.respond(w, status, errorBody{Error: err.Error()})
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", fmt.Errorf("status %d: %w", status, err))
	}
}
