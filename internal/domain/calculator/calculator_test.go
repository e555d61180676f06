package calculator_test

import (
	"testing"
	"time"

	"github.com/okian/locmetrics/internal/domain/calculator"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func ev(c model.Category, s model.Source, lines int) model.Event {
	return model.Event{
		Category:    c,
		Source:      s,
		Lines:       lines,
		DeveloperID: "dev",
		Timestamp:   time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLOCMetrics(t *testing.T) {
	Convey("Given a mixed set of events", t, func() {
		events := []model.Event{
			ev(model.CategoryCode, model.SourceCompletion, 10),
			ev(model.CategoryCode, model.SourceAgent, 20),
			ev(model.CategoryCode, model.SourceManual, 70),
			ev(model.CategoryTest, model.SourceAgent, 500),
		}

		Convey("When computing code metrics", func() {
			m := calculator.LOCMetrics(events, model.CategoryCode)

			Convey("Then only code events should be counted", func() {
				So(m.TotalLines, ShouldEqual, 100)
				So(m.CompletionLines, ShouldEqual, 10)
				So(m.AgentLines, ShouldEqual, 20)
				So(m.ManualLines, ShouldEqual, 70)
				So(m.AILines, ShouldEqual, 30)
			})

			Convey("And percentages should be shares of the total", func() {
				So(m.AIPercentage, ShouldEqual, 30.0)
				So(m.CompletionPercentage, ShouldEqual, 10.0)
				So(m.AgentPercentage, ShouldEqual, 20.0)
				So(m.ManualPercentage, ShouldEqual, 70.0)
			})
		})

		Convey("When percentages do not divide evenly", func() {
			odd := []model.Event{
				ev(model.CategoryDocumentation, model.SourceCompletion, 1),
				ev(model.CategoryDocumentation, model.SourceAgent, 1),
				ev(model.CategoryDocumentation, model.SourceManual, 1),
			}
			m := calculator.LOCMetrics(odd, model.CategoryDocumentation)

			Convey("Then they are rounded to two decimals and still add up", func() {
				So(m.CompletionPercentage, ShouldEqual, 33.33)
				So(m.AIPercentage, ShouldEqual, 66.67)
				So(m.AIPercentage+m.ManualPercentage, ShouldAlmostEqual, 100.0, 0.01)
				So(m.AIPercentage, ShouldAlmostEqual, m.CompletionPercentage+m.AgentPercentage, 0.011)
			})
		})

		Convey("When no event matches the category", func() {
			m := calculator.LOCMetrics(events, model.CategoryDocumentation)

			Convey("Then every value should be zero", func() {
				So(m, ShouldResemble, types.LOCMetrics{})
			})
		})

		Convey("When the event set is empty", func() {
			m := calculator.LOCMetrics(nil, model.CategoryCode)
			So(m.TotalLines, ShouldEqual, 0)
			So(m.AIPercentage, ShouldEqual, 0.0)
			So(m.ManualPercentage, ShouldEqual, 0.0)
		})
	})
}

func TestTargets(t *testing.T) {
	Convey("Given the target table", t, func() {
		tg := calculator.Targets()
		So(tg.AILOC, ShouldEqual, 15.0)
		So(tg.AITests, ShouldEqual, 20.0)
		So(tg.AIDocs, ShouldEqual, 10.0)
	})
}

func TestTargetStatus(t *testing.T) {
	Convey("Given a target of 15 with a tolerance of 5", t, func() {
		cases := []struct {
			actual float64
			want   types.Status
		}{
			{10, types.StatusOnTrack},
			{15, types.StatusOnTrack},
			{20, types.StatusOnTrack},
			{9.9, types.StatusBelowTarget},
			{0, types.StatusBelowTarget},
			{20.1, types.StatusAboveTarget},
			{100, types.StatusAboveTarget},
		}
		for _, c := range cases {
			So(calculator.TargetStatus(c.actual, 15, calculator.DefaultTolerance), ShouldEqual, c.want)
		}
	})

	Convey("Given a zero tolerance", t, func() {
		So(calculator.TargetStatus(15, 15, 0), ShouldEqual, types.StatusOnTrack)
		So(calculator.TargetStatus(15.01, 15, 0), ShouldEqual, types.StatusAboveTarget)
	})
}

func TestStatuses(t *testing.T) {
	Convey("Given metrics for all categories", t, func() {
		code := types.LOCMetrics{AIPercentage: 15}
		test := types.LOCMetrics{AIPercentage: 2}
		docs := types.LOCMetrics{AIPercentage: 90}

		s := calculator.Statuses(code, test, docs, calculator.Targets(), calculator.DefaultTolerance)

		So(s.AILOC, ShouldEqual, types.StatusOnTrack)
		So(s.AITests, ShouldEqual, types.StatusBelowTarget)
		So(s.AIDocs, ShouldEqual, types.StatusAboveTarget)
	})
}

func TestRound2(t *testing.T) {
	Convey("Given values to round", t, func() {
		So(calculator.Round2(1.005), ShouldAlmostEqual, 1.0, 0.011)
		So(calculator.Round2(66.6666), ShouldEqual, 66.67)
		So(calculator.Round2(12.344), ShouldEqual, 12.34)
	})
}
