package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/domain"
	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/envelope"
	"github.com/kailas-cloud/srdex/internal/domain/record"
	"github.com/kailas-cloud/srdex/internal/logger"
	healthuc "github.com/kailas-cloud/srdex/internal/usecase/health"
	resourceuc "github.com/kailas-cloud/srdex/internal/usecase/resource"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeNotFound           = "not_found"
	CodeMethodNotAllowed   = "method_not_allowed"
	CodeServiceUnavailable = "service_unavailable"
	CodeInternalError      = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Resources is the read API the server exposes.
type Resources interface {
	Directory() map[string]string
	List(ctx context.Context, collection string, params url.Values) (envelope.List, error)
	Get(ctx context.Context, collection, index string) (record.Record, error)
	Nested(ctx context.Context, parent, index, route, level string) (resourceuc.Result, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the read-only SRD API.
type Server struct {
	resources     Resources
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(resources Resources, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{
		resources: resources,
		health:    health,
		logger:    logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
			sentinelHandler(domain.ErrServiceUnavailable, http.StatusServiceUnavailable, CodeServiceUnavailable),
		},
	}
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.NotFound(s.NotFound)
	r.MethodNotAllowed(s.MethodNotAllowed)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.Directory)
		r.Get("/{collection}", s.ListResources)
		r.Get("/{collection}/{index}", s.GetResource)
		r.Get("/{collection}/{index}/{route}", s.GetNested)
		r.Get("/{collection}/{index}/levels/{level}", s.GetLevel)
		r.Get("/{collection}/{index}/levels/{level}/{route}", s.GetLevelNested)
	})
}

// Handler returns a router with every route registered and no middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Directory handles GET /api.
func (s *Server) Directory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.resources.Directory())
}

// ListResources handles GET /api/{collection}.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	list, err := s.resources.List(r.Context(), chi.URLParam(r, "collection"), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetResource handles GET /api/{collection}/{index}.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	rec, err := s.resources.Get(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "index"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetNested handles GET /api/{collection}/{index}/{route}.
func (s *Server) GetNested(w http.ResponseWriter, r *http.Request) {
	s.nested(w, r, chi.URLParam(r, "route"), "")
}

// GetLevel handles GET /api/{collection}/{index}/levels/{level}.
func (s *Server) GetLevel(w http.ResponseWriter, r *http.Request) {
	s.nested(w, r, collection.RouteLevel, chi.URLParam(r, "level"))
}

// GetLevelNested handles GET /api/{collection}/{index}/levels/{level}/{route}.
func (s *Server) GetLevelNested(w http.ResponseWriter, r *http.Request) {
	s.nested(w, r, collection.RouteLevelPrefix+chi.URLParam(r, "route"), chi.URLParam(r, "level"))
}

func (s *Server) nested(w http.ResponseWriter, r *http.Request, route, level string) {
	res, err := s.resources.Nested(r.Context(),
		chi.URLParam(r, "collection"), chi.URLParam(r, "index"), route, level)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	switch res.Shape {
	case collection.ShapeSingle:
		writeJSON(w, http.StatusOK, res.Record)
	case collection.ShapeBare:
		writeJSON(w, http.StatusOK, res.List.Bare())
	default:
		writeJSON(w, http.StatusOK, res.List)
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NotFound answers unknown paths.
func (s *Server) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, domain.ErrNotFound.Error())
}

// MethodNotAllowed answers non-GET requests on known paths.
func (s *Server) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrServiceUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		log.Debug("domain error", zap.Error(err))
	} else {
		log.Warn("domain error", zap.Error(err))
	}

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
