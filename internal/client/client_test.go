package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/locmetrics/internal/adapters/http/api"
	service "github.com/okian/locmetrics/internal/app"
	"github.com/okian/locmetrics/internal/client"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
	"github.com/okian/locmetrics/pkg/logger"
)

var now = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	svc := service.New(
		service.WithDataDir(t.TempDir()),
		service.WithLogger(logger.Nop()),
		service.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(svc.Stop)

	srv := httptest.NewServer(api.NewServer(svc, svc, api.WithLogger(logger.Nop())).Handler(ctx))
	t.Cleanup(srv.Close)
	return srv
}

func codeEvent(dev string, source model.Source, lines int, ts time.Time, feature string) model.Event {
	e := model.Event{
		Category:    model.CategoryCode,
		Source:      source,
		Lines:       lines,
		FilePath:    "main.go",
		DeveloperID: dev,
		Timestamp:   ts,
	}
	if feature != "" {
		e.Metadata = model.Metadata{"feature_name": feature}
	}
	return e
}

func TestSubmitEvent(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL + "/")
	ctx := context.Background()

	tests := []struct {
		name     string
		event    model.Event
		wantType string
		wantID   string
	}{
		{
			name:     "code event",
			event:    codeEvent("d1", model.SourceCompletion, 10, now.Add(-time.Hour), ""),
			wantType: "code",
			wantID:   "d1_2025-06-30T11:00:00Z",
		},
		{
			name: "test event with coverage",
			event: model.Event{
				Category: model.CategoryTest, Source: model.SourceAgent, Lines: 4,
				FilePath: "x_test.go", DeveloperID: "d1", Timestamp: now,
				TestFramework: "goconvey", Coverage: func() *float64 { v := 70.0; return &v }(),
			},
			wantType: "test",
			wantID:   "d1_2025-06-30T12:00:00Z",
		},
		{
			name: "missing timestamp is stamped by the server",
			event: model.Event{
				Category: model.CategoryDocumentation, Source: model.SourceManual, Lines: 2,
				FilePath: "README.md", DeveloperID: "d2",
			},
			wantType: "documentation",
			wantID:   "d2_2025-06-30T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack, err := c.SubmitEvent(ctx, tt.event)
			require.NoError(t, err)
			assert.True(t, ack.Success)
			assert.Equal(t, tt.wantType, ack.EventType)
			assert.Equal(t, tt.wantID, ack.EventID)
		})
	}
}

func TestSubmitEvent_Errors(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	t.Run("rejected by the server", func(t *testing.T) {
		_, err := c.SubmitEvent(ctx, codeEvent("d1", model.SourceManual, 0, now, ""))
		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "bad_request", apiErr.Code)
		assert.Contains(t, apiErr.Error(), "400")
	})

	t.Run("unknown category never leaves the client", func(t *testing.T) {
		e := codeEvent("d1", model.SourceManual, 1, now, "")
		e.Category = "video"
		_, err := c.SubmitEvent(ctx, e)
		assert.ErrorIs(t, err, client.ErrRequest)
	})

	t.Run("unreachable server", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		_, err := client.New(dead.URL, client.WithTimeout(time.Second)).SubmitEvent(ctx, codeEvent("d1", model.SourceManual, 1, now, ""))
		assert.ErrorIs(t, err, client.ErrRequest)
	})
}

func TestReports(t *testing.T) {
	srv := newTestServer(t)
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	for _, e := range []model.Event{
		codeEvent("d1", model.SourceCompletion, 10, now.Add(-2*time.Hour), "auth"),
		codeEvent("d1", model.SourceManual, 90, now.Add(-time.Hour), "auth"),
		codeEvent("d2", model.SourceAgent, 30, now.Add(-48*time.Hour), "billing"),
	} {
		_, err := c.SubmitEvent(ctx, e)
		require.NoError(t, err)
	}

	t.Run("developer", func(t *testing.T) {
		r, err := c.DeveloperReport(ctx, "d1", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 100, r.CodeMetrics.TotalLines)
		assert.InDelta(t, 10.0, r.CodeMetrics.AIPercentage, 1e-9)
		assert.Equal(t, types.StatusOnTrack, r.Status.AILOC)
		assert.Nil(t, r.Period.Start)
	})

	t.Run("developer with period", func(t *testing.T) {
		start := now.Add(-90 * time.Minute)
		r, err := c.DeveloperReport(ctx, "d1", &start, nil)
		require.NoError(t, err)
		assert.Equal(t, 90, r.CodeMetrics.TotalLines)
		require.NotNil(t, r.Period.Start)
		assert.Equal(t, "2025-06-30T10:30:00Z", *r.Period.Start)
	})

	t.Run("team", func(t *testing.T) {
		r, err := c.TeamReport(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, r.TotalDevelopers)
		assert.Equal(t, 130, r.TeamMetrics.Code.TotalLines)
		require.NoError(t, client.VerifyLeaderboard(r))
	})

	t.Run("trends", func(t *testing.T) {
		r, err := c.Trends(ctx, "d1", 7)
		require.NoError(t, err)
		assert.Equal(t, 7, r.PeriodDays)
		require.NotNil(t, r.DeveloperID)
		require.Len(t, r.Trends, 1)
		assert.Equal(t, "2025-06-30", r.Trends[0].Date)
	})

	t.Run("features", func(t *testing.T) {
		r, err := c.FeatureReport(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, r.TotalFeatures)
		assert.Equal(t, 1, r.Showing)
		require.Len(t, r.Features, 1)
		assert.Equal(t, "auth", r.Features[0].FeatureName)
	})

	t.Run("invalid trends window", func(t *testing.T) {
		_, err := c.Trends(ctx, "", 1000)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, client.New(srv.URL).Health(context.Background()))

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer unhealthy.Close()
	assert.ErrorIs(t, client.New(unhealthy.URL).Health(context.Background()), client.ErrRequest)
}
