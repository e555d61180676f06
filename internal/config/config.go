// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/locmetrics/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DataDir holds one events file per category.
	DataDir string `koanf:"data_dir"`

	// TargetTolerance is the on-track band around each target, in percentage points.
	TargetTolerance float64 `koanf:"target_tolerance"`

	// MaxTrendDays caps GET /api/metrics/trends?days.
	MaxTrendDays int `koanf:"max_trend_days"`

	// MaxFeatureLimit caps GET /api/metrics/features?limit.
	MaxFeatureLimit int `koanf:"max_feature_limit"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       logger.FormatText,
		Addr:            ":8000",
		DataDir:         "data",
		TargetTolerance: 5.0,
		MaxTrendDays:    365,
		MaxFeatureLimit: 100,
		CORSOrigins:     []string{"*"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataDir) == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.TargetTolerance < 0:
		return fmt.Errorf("%w: target_tolerance must not be negative", ErrInvalidConfig)
	case c.MaxTrendDays < 1:
		return fmt.Errorf("%w: max_trend_days must be at least 1", ErrInvalidConfig)
	case c.MaxFeatureLimit < 1:
		return fmt.Errorf("%w: max_feature_limit must be at least 1", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
