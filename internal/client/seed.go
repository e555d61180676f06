package client

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
	"github.com/okian/locmetrics/pkg/logger"
)

const (
	randomFloatDivisor = 1000000
	maxSeedLines       = 50
	hoursPerDay        = 24
	progressInterval   = time.Second
)

// SeedConfig describes a batch of synthetic events.
type SeedConfig struct {
	Developers         int
	EventsPerDeveloper int
	Workers            int
	// Days spreads timestamps over the trailing window.
	Days     int
	Features []string
}

// DefaultSeedConfig returns a small, dashboard friendly batch.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Developers:         5,
		EventsPerDeveloper: 40,
		Workers:            4,
		Days:               14,
		Features:           []string{"auth", "billing", "search", "onboarding"},
	}
}

// Validate checks that every count is positive.
func (c SeedConfig) Validate() error {
	switch {
	case c.Developers < 1:
		return fmt.Errorf("%w: developers must be positive", ErrInvalidConfig)
	case c.EventsPerDeveloper < 1:
		return fmt.Errorf("%w: events per developer must be positive", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Days < 1:
		return fmt.Errorf("%w: days must be positive", ErrInvalidConfig)
	}
	return nil
}

// SeedStats summarises a seeding run.
type SeedStats struct {
	Generated  int           `json:"generated"`
	Submitted  int           `json:"submitted"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// getRandomFloat returns a random float64 in [0,1).
func getRandomFloat() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	if err != nil {
		return 0
	}
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	return int(getRandomFloat() * float64(n))
}

// sourceFor gives each developer a different AI adoption level so the
// leaderboard spreads out.
func sourceFor(aiShare float64) model.Source {
	if getRandomFloat() >= aiShare {
		return model.SourceManual
	}
	if getRandomFloat() < 0.5 {
		return model.SourceCompletion
	}
	return model.SourceAgent
}

// GenerateEvents builds cfg.Developers*cfg.EventsPerDeveloper events with
// uuid based developer ids and timestamps within cfg.Days before now.
func GenerateEvents(cfg SeedConfig, now time.Time) ([]model.Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	window := time.Duration(cfg.Days) * hoursPerDay * time.Hour
	events := make([]model.Event, 0, cfg.Developers*cfg.EventsPerDeveloper)
	for d := 0; d < cfg.Developers; d++ {
		developerID := "dev-" + uuid.NewString()[:8]
		aiShare := getRandomFloat()

		for i := 0; i < cfg.EventsPerDeveloper; i++ {
			category := model.Categories[randomIndex(len(model.Categories))]
			e := model.Event{
				Category:    category,
				Source:      sourceFor(aiShare),
				Lines:       1 + randomIndex(maxSeedLines),
				FilePath:    fmt.Sprintf("src/module_%d.go", randomIndex(cfg.EventsPerDeveloper)),
				DeveloperID: developerID,
				Timestamp:   now.Add(-time.Duration(getRandomFloat() * float64(window))).UTC(),
			}
			if len(cfg.Features) > 0 {
				e.Metadata = model.Metadata{"feature_name": cfg.Features[randomIndex(len(cfg.Features))]}
			}
			switch category {
			case model.CategoryCode:
				e.Language = "go"
			case model.CategoryTest:
				e.TestFramework = "goconvey"
			case model.CategoryDocumentation:
				e.DocType = "markdown"
			}
			events = append(events, e)
		}
	}
	return events, nil
}

// SubmitEvents posts events through a pool of workers. Failed submissions
// are counted, not retried.
func (c *Client) SubmitEvents(ctx context.Context, events []model.Event, workers int) SeedStats {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	var submitted, successful, failed atomic.Int64
	var lastReport atomic.Int64

	eventChan := make(chan model.Event, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range eventChan {
				if ctx.Err() != nil {
					return
				}
				submitted.Add(1)
				if _, err := c.SubmitEvent(ctx, e); err != nil {
					failed.Add(1)
					c.logger.Debug(ctx, "event submission failed", logger.Error(err))
				} else {
					successful.Add(1)
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					c.logger.Info(ctx, "seeding progress",
						logger.Int("submitted", int(submitted.Load())),
						logger.Int("total", len(events)),
						logger.Int("failed", int(failed.Load())),
					)
				}
			}
		}()
	}

	go func() {
		defer close(eventChan)
		for _, e := range events {
			select {
			case <-ctx.Done():
				return
			case eventChan <- e:
			}
		}
	}()

	wg.Wait()

	return SeedStats{
		Generated:  len(events),
		Submitted:  int(submitted.Load()),
		Successful: int(successful.Load()),
		Failed:     int(failed.Load()),
		Duration:   time.Since(start),
	}
}

// Seed checks server health, generates a batch, submits it and verifies the
// resulting leaderboard.
func (c *Client) Seed(ctx context.Context, cfg SeedConfig) (SeedStats, error) {
	if err := c.Health(ctx); err != nil {
		return SeedStats{}, fmt.Errorf("health check: %w", err)
	}

	events, err := GenerateEvents(cfg, time.Now())
	if err != nil {
		return SeedStats{}, err
	}
	c.logger.Info(ctx, "submitting events",
		logger.Int("events", len(events)),
		logger.Int("workers", cfg.Workers),
	)

	stats := c.SubmitEvents(ctx, events, cfg.Workers)
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	report, err := c.TeamReport(ctx, nil, nil)
	if err != nil {
		return stats, fmt.Errorf("fetch team report: %w", err)
	}
	if err := VerifyLeaderboard(report); err != nil {
		return stats, err
	}

	c.logger.Info(ctx, "seeding completed",
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// VerifyLeaderboard checks that entries are ordered by descending score and
// that the developer count matches the leaderboard.
func VerifyLeaderboard(r types.TeamReport) error {
	if r.TotalDevelopers != len(r.Leaderboard) {
		return fmt.Errorf("%w: total_developers %d, leaderboard has %d entries",
			ErrInconsistent, r.TotalDevelopers, len(r.Leaderboard))
	}
	for i := 1; i < len(r.Leaderboard); i++ {
		prev, cur := r.Leaderboard[i-1], r.Leaderboard[i]
		if cur.OverallScore > prev.OverallScore {
			return fmt.Errorf("%w: %s (%.1f) ranked below %s (%.1f)",
				ErrUnsorted, cur.DeveloperID, cur.OverallScore, prev.DeveloperID, prev.OverallScore)
		}
	}
	return nil
}
