package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/locmetrics/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func keysOf(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestLOCMetricsFieldNames(t *testing.T) {
	Convey("Given a LOCMetrics value", t, func() {
		m := keysOf(t, types.LOCMetrics{})

		Convey("Then it should expose the documented field names", func() {
			for _, k := range []string{
				"total_lines", "ai_lines", "completion_lines", "agent_lines", "manual_lines",
				"ai_percentage", "completion_percentage", "agent_percentage", "manual_percentage",
			} {
				So(m, ShouldContainKey, k)
			}
			So(len(m), ShouldEqual, 9)
		})
	})
}

func TestDeveloperReportFieldNames(t *testing.T) {
	Convey("Given a DeveloperReport", t, func() {
		m := keysOf(t, types.DeveloperReport{})

		Convey("Then it should expose the documented field names", func() {
			for _, k := range []string{
				"developer_id", "period", "code_metrics", "test_metrics",
				"documentation_metrics", "targets", "status", "overall_score",
			} {
				So(m, ShouldContainKey, k)
			}
		})

		Convey("And an unbounded period should render as nulls", func() {
			period := m["period"].(map[string]any)
			So(period["start"], ShouldBeNil)
			So(period["end"], ShouldBeNil)
		})
	})
}

func TestTrendPointFlattening(t *testing.T) {
	Convey("Given a TrendPoint", t, func() {
		m := keysOf(t, types.TrendPoint{Date: "2025-01-01"})

		Convey("Then category metrics should be flattened next to the date", func() {
			So(m["date"], ShouldEqual, "2025-01-01")
			So(m, ShouldContainKey, "code")
			So(m, ShouldContainKey, "tests")
			So(m, ShouldContainKey, "documentation")
		})
	})
}

func TestReportFieldNames(t *testing.T) {
	Convey("Given the aggregate reports", t, func() {
		team := keysOf(t, types.TeamReport{})
		trends := keysOf(t, types.TrendsReport{})
		features := keysOf(t, types.FeatureReport{})

		So(team, ShouldContainKey, "period")
		So(team, ShouldContainKey, "team_metrics")
		So(team, ShouldContainKey, "leaderboard")
		So(team, ShouldContainKey, "total_developers")
		So(trends, ShouldContainKey, "developer_id")
		So(trends, ShouldContainKey, "period_days")
		So(trends, ShouldContainKey, "trends")
		So(features, ShouldContainKey, "features")
		So(features, ShouldContainKey, "total_features")
		So(features, ShouldContainKey, "showing")
	})
}

func TestNewPeriod(t *testing.T) {
	Convey("Given period bounds", t, func() {
		start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		Convey("When only the start is set", func() {
			p := types.NewPeriod(&start, nil)

			Convey("Then start is rendered and end stays nil", func() {
				So(*p.Start, ShouldEqual, "2025-01-01T00:00:00Z")
				So(p.End, ShouldBeNil)
			})
		})
	})
}
