package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	app "github.com/okian/locmetrics/internal/app"
	"github.com/okian/locmetrics/internal/config"
	"github.com/okian/locmetrics/pkg/logger"
	"github.com/okian/locmetrics/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)
		ctx := context.Background()

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("LOCMETRICS_ADDR", ":8080")
			_ = os.Setenv("LOCMETRICS_MAX_TREND_DAYS", "60")
			defer func() {
				_ = os.Unsetenv("LOCMETRICS_ADDR")
				_ = os.Unsetenv("LOCMETRICS_MAX_TREND_DAYS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxTrendDays, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			cfg := config.New(ctx)
			cfg.Addr = ":0"
			cfg.DataDir = t.TempDir()
			cfg.MaxTrendDays = 7

			svc := app.New(app.WithDataDir(cfg.DataDir), app.WithLogger(logger.Nop()))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			srv := newHTTPServer(ctx, cfg, svc)

			convey.Convey("Then the server should be properly configured", func() {
				convey.So(srv.Addr, convey.ShouldEqual, ":0")
				convey.So(srv.ReadTimeout, convey.ShouldEqual, readTimeout)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
				convey.So(srv.IdleTimeout, convey.ShouldEqual, idleTimeout)
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
			})

			convey.Convey("And configured limits should reach the handlers", func() {
				req := httptest.NewRequest(http.MethodGet, "/api/metrics/trends?days=8", http.NoBody)
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)

				req = httptest.NewRequest(http.MethodGet, "/api/metrics/trends?days=7", http.NoBody)
				w = httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When updating system metrics", func() {
			updateSystemMetrics()

			convey.Convey("Then the gauges should be exported", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(strings.Join(names, ","), convey.ShouldContainSubstring, "goroutine")
			})
		})
	})
}
