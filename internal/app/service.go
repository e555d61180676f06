// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/locmetrics/internal/adapters/repository"
	"github.com/okian/locmetrics/internal/domain/calculator"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/scoring"
	"github.com/okian/locmetrics/pkg/logger"
	"github.com/okian/locmetrics/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// Service implements the API dependencies for the metrics backend.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	scorer *scoring.Scorer

	// Configuration
	dataDir   string
	tolerance float64
	now       func() time.Time

	// State
	started   bool
	startedAt time.Time
	submitted atomic.Int64
	lines     atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the event store. When absent, Start opens a FileStore
// under the data directory.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScorer sets the overall score calculator.
func WithScorer(scorer *scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithDataDir sets the directory of the default FileStore.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithTolerance sets the on-track band around each target.
func WithTolerance(tolerance float64) Option {
	return func(s *Service) {
		if tolerance >= 0 {
			s.tolerance = tolerance
		}
	}
}

// WithClock overrides the time source used for defaults and trend windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:    scoring.NewScorer(),
		dataDir:   "data",
		tolerance: calculator.DefaultTolerance,
		now:       time.Now,
		logger:    nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting metrics service...")

	if s.store == nil {
		fs, err := repository.NewFileStore(ctx, s.dataDir,
			repository.WithLogger(s.logger.Named("store")),
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		s.store = fs
		s.logger.Info(ctx, "using file store", logger.String("dir", fs.Dir()))
	}

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "metrics service started",
		logger.Float64("tolerance", s.tolerance),
	)

	return nil
}

// Stop marks the service as stopped. The store holds no open handles.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "metrics service stopped")
}

// eventStore returns the store of a started service.
func (s *Service) eventStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Submit stores e and returns its informational id. A zero timestamp is
// replaced with the current time. Identical submissions are all kept.
func (s *Service) Submit(ctx context.Context, e model.Event) (string, error) {
	store, err := s.eventStore()
	if err != nil {
		return "", err
	}

	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := store.Save(ctx, e); err != nil {
		s.logger.Error(ctx, "failed to store event",
			logger.String("developer_id", e.DeveloperID),
			logger.String("category", string(e.Category)),
			logger.Error(err),
		)
		return "", storageError(err)
	}

	s.submitted.Add(1)
	s.lines.Add(int64(e.Lines))
	metrics.RecordEventIngested(string(e.Category), string(e.Source), e.Lines)
	s.logger.Debug(ctx, "event stored",
		logger.String("developer_id", e.DeveloperID),
		logger.String("category", string(e.Category)),
		logger.String("source", string(e.Source)),
		logger.Int("lines", e.Lines),
	)

	return e.ID(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"dataDir":   s.dataDir,
		"tolerance": s.tolerance,
	}

	if s.started {
		stats["startedAt"] = s.startedAt.Format(time.RFC3339)
		stats["eventsSubmitted"] = s.submitted.Load()
		stats["linesSubmitted"] = s.lines.Load()
	}

	return stats
}

// storageError tags store failures with ErrStorage while keeping context
// cancellation visible to callers.
func storageError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// observe records the latency of a report and counts failures.
func observe(report string, start time.Time, err error) {
	metrics.RecordReportLatency(report, float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	if err != nil {
		metrics.RecordReportError(report)
	}
}
