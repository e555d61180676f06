package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/locmetrics/internal/domain/types"
	"github.com/okian/locmetrics/pkg/logger"
)

const (
	defaultTrendDays    = 30
	defaultFeatureLimit = 20
)

// MetricsDependencies defines the interface for report queries.
type MetricsDependencies interface {
	DeveloperReport(ctx context.Context, developerID string, start, end *time.Time) (types.DeveloperReport, error)
	TeamReport(ctx context.Context, start, end *time.Time) (types.TeamReport, error)
	Trends(ctx context.Context, developerID string, days int) (types.TrendsReport, error)
	FeatureReport(ctx context.Context, limit int) (types.FeatureReport, error)
}

// MetricsHandler serves the /api/metrics reports.
type MetricsHandler struct {
	deps            MetricsDependencies
	logger          logger.Logger
	maxTrendDays    int
	maxFeatureLimit int
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps MetricsDependencies, l logger.Logger, maxTrendDays, maxFeatureLimit int) *MetricsHandler {
	return &MetricsHandler{
		deps:            deps,
		logger:          l,
		maxTrendDays:    maxTrendDays,
		maxFeatureLimit: maxFeatureLimit,
	}
}

// HandleDeveloper handles GET /api/metrics/developer/{developer_id}.
func (h *MetricsHandler) HandleDeveloper(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_developer_metrics"
	start, end, ok := h.period(w, r, op)
	if !ok {
		return
	}
	report, err := h.deps.DeveloperReport(r.Context(), mux.Vars(r)["developer_id"], start, end)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleTeam handles GET /api/metrics/team.
func (h *MetricsHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_metrics"
	start, end, ok := h.period(w, r, op)
	if !ok {
		return
	}
	report, err := h.deps.TeamReport(r.Context(), start, end)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleTrends handles GET /api/metrics/trends?developer_id&days.
func (h *MetricsHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trends"
	q := r.URL.Query()
	days, err := intParam(q, "days", defaultTrendDays, 1, h.maxTrendDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.Trends(r.Context(), q.Get("developer_id"), days)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleFeatures handles GET /api/metrics/features?limit.
func (h *MetricsHandler) HandleFeatures(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_features"
	limit, err := intParam(r.URL.Query(), "limit", defaultFeatureLimit, 1, h.maxFeatureLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.FeatureReport(r.Context(), limit)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// period parses start_date and end_date. It writes a 400 and returns false
// when either is malformed.
func (h *MetricsHandler) period(w http.ResponseWriter, r *http.Request, op string) (start, end *time.Time, ok bool) {
	q := r.URL.Query()
	start, err := timeParam(q, "start_date")
	if err == nil {
		end, err = timeParam(q, "end_date")
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return nil, nil, false
	}
	return start, end, true
}
