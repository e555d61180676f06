package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/locmetrics/internal/adapters/repository"
	service "github.com/okian/locmetrics/internal/app"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var fixedNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{
		service.WithDataDir(t.TempDir()),
		service.WithLogger(logger.Nop()),
		service.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return svc
}

func codeEvent(dev string, src model.Source, lines int, ts time.Time) model.Event {
	return model.Event{
		Category:    model.CategoryCode,
		Source:      src,
		Lines:       lines,
		FilePath:    "main.go",
		DeveloperID: dev,
		Timestamp:   ts,
	}
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) Save(context.Context, model.Event) error { return f.err }
func (f failingStore) Load(context.Context, model.Category, repository.Filter) ([]model.Event, error) {
	return nil, f.err
}
func (f failingStore) GetAll(context.Context, repository.Filter) ([]model.Event, error) {
	return nil, f.err
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["dataDir"], ShouldEqual, "data")
			So(stats["tolerance"], ShouldEqual, 5.0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDataDir("/tmp/elsewhere"),
			service.WithTolerance(2),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["dataDir"], ShouldEqual, "/tmp/elsewhere")
			So(stats["tolerance"], ShouldEqual, 2.0)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithDataDir(t.TempDir()))

		Convey("When using it before start", func() {
			_, err := svc.Submit(context.Background(), codeEvent("d1", model.SourceManual, 1, fixedNow))

			Convey("Then it should report that it is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should be marked as started", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And stopping it should mark it as stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
				svc.Stop()
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()
		defer svc.Stop()

		Convey("When submitting an event without timestamp", func() {
			id, err := svc.Submit(ctx, model.Event{
				Category:    model.CategoryTest,
				Source:      model.SourceAgent,
				Lines:       12,
				DeveloperID: "d1",
			})

			Convey("Then it should be stamped with the current time", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "d1_2025-06-30T12:00:00Z")
				So(svc.GetStats()["eventsSubmitted"], ShouldEqual, int64(1))
				So(svc.GetStats()["linesSubmitted"], ShouldEqual, int64(12))
			})
		})

		Convey("When submitting the same event twice", func() {
			e := codeEvent("d1", model.SourceManual, 5, fixedNow.Add(-time.Hour))
			id1, err1 := svc.Submit(ctx, e)
			id2, err2 := svc.Submit(ctx, e)

			Convey("Then both copies should be counted", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(id1, ShouldEqual, id2)

				report, err := svc.DeveloperReport(ctx, "d1", nil, nil)
				So(err, ShouldBeNil)
				So(report.CodeMetrics.TotalLines, ShouldEqual, 10)
			})
		})

		Convey("When submitting an invalid event", func() {
			_, err := svc.Submit(ctx, codeEvent("d1", model.SourceManual, 0, fixedNow))

			Convey("Then it should be rejected as a validation error", func() {
				So(errors.Is(err, service.ErrValidation), ShouldBeTrue)
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestService_StorageFailures(t *testing.T) {
	Convey("Given a service whose store fails", t, func() {
		boom := errors.New("disk on fire")
		svc := newStartedService(t, service.WithStore(failingStore{err: boom}))
		ctx := context.Background()

		Convey("Then every operation should surface a storage error", func() {
			_, err := svc.Submit(ctx, codeEvent("d1", model.SourceManual, 1, fixedNow))
			So(errors.Is(err, service.ErrStorage), ShouldBeTrue)
			So(errors.Is(err, boom), ShouldBeTrue)

			_, err = svc.DeveloperReport(ctx, "d1", nil, nil)
			So(errors.Is(err, service.ErrStorage), ShouldBeTrue)

			_, err = svc.TeamReport(ctx, nil, nil)
			So(errors.Is(err, service.ErrStorage), ShouldBeTrue)

			_, err = svc.Trends(ctx, "", 30)
			So(errors.Is(err, service.ErrStorage), ShouldBeTrue)

			_, err = svc.FeatureReport(ctx, 20)
			So(errors.Is(err, service.ErrStorage), ShouldBeTrue)
		})
	})

	Convey("Given a service whose store sees a cancelled context", t, func() {
		svc := newStartedService(t, service.WithStore(failingStore{err: context.Canceled}))

		Convey("Then the cancellation should not be reported as storage failure", func() {
			_, err := svc.TeamReport(context.Background(), nil, nil)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(errors.Is(err, service.ErrStorage), ShouldBeFalse)
		})
	})
}
