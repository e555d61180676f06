// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/okian/locmetrics/internal/adapters/http/swagger"
	service "github.com/okian/locmetrics/internal/app"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/pkg/logger"
)

// Service identity reported by / and /api/metrics/health.
const (
	ServiceName = "ai-code-metrics-backend"
	Version     = "0.1.0"
)

const (
	defaultMaxTrendDays    = 365
	defaultMaxFeatureLimit = 100
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	MetricsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	metricsHandler *MetricsHandler

	maxTrendDays    int
	maxFeatureLimit int
	corsOrigins     []string
	logger          logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxTrendDays caps the days query parameter of /api/metrics/trends.
func WithMaxTrendDays(days int) Option {
	return func(s *Server) {
		if days > 0 {
			s.maxTrendDays = days
		}
	}
}

// WithMaxFeatureLimit caps the limit query parameter of /api/metrics/features.
func WithMaxFeatureLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxFeatureLimit = limit
		}
	}
}

// WithCORSOrigins sets the allowed origins. "*" allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used for request failures and recovered panics.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxTrendDays:    defaultMaxTrendDays,
		maxFeatureLimit: defaultMaxFeatureLimit,
		corsOrigins:     []string{"*"},
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.eventsHandler = NewEventsHandler(deps, s.logger)
	s.metricsHandler = NewMetricsHandler(deps, s.logger, s.maxTrendDays, s.maxFeatureLimit)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r *mux.Router) {
	r.HandleFunc("/", MetricsMiddleware(s.healthHandler.HandleRoot, "root")).Methods(http.MethodGet)
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/api/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events")).Methods(http.MethodPost)
	r.HandleFunc("/api/events/", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events")).Methods(http.MethodPost)
	r.HandleFunc("/api/events/{category:code|test|documentation}",
		MetricsMiddleware(s.eventsHandler.HandlePostCategoryEvent, "events_category")).Methods(http.MethodPost)

	m := r.PathPrefix("/api/metrics").Subrouter()
	m.HandleFunc("/developer/{developer_id}", MetricsMiddleware(s.metricsHandler.HandleDeveloper, "developer")).Methods(http.MethodGet)
	m.HandleFunc("/team", MetricsMiddleware(s.metricsHandler.HandleTeam, "team")).Methods(http.MethodGet)
	m.HandleFunc("/trends", MetricsMiddleware(s.metricsHandler.HandleTrends, "trends")).Methods(http.MethodGet)
	m.HandleFunc("/features", MetricsMiddleware(s.metricsHandler.HandleFeatures, "features")).Methods(http.MethodGet)
	m.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleServiceHealth, "health")).Methods(http.MethodGet)

	swagger.Register(ctx, r)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethod)
	})
}

// Handler returns the routed API wrapped with request ids, panic recovery
// and CORS.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := mux.NewRouter()
	s.Register(ctx, r)

	var h http.Handler = r
	h = RequestIDMiddleware(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)(h)
	return h
}

// recoveryLogger adapts logger.Logger to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	logger logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(context.Background(), "recovered from panic", logger.String("panic", fmt.Sprint(v...)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a dependency error to its HTTP status.
func writeFailure(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrValidation), errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	default:
		l.Error(ctx, "request failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFromContext(ctx)),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// Compile-time checks that the service satisfies the handler contracts.
var (
	_ Dependencies  = (*service.Service)(nil)
	_ StatsProvider = (*service.Service)(nil)
)
