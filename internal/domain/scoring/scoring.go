// Package scoring blends per-category target statuses into a single score.
package scoring

import (
	"math"

	"github.com/okian/locmetrics/internal/domain/types"
)

// Default weights per category. They sum to 1.
const (
	defaultCodeWeight = 0.5
	defaultTestWeight = 0.3
	defaultDocsWeight = 0.2
)

// Default points awarded per status. Exceeding a target scores lower than
// hitting it.
const (
	defaultOnTrackScore = 100
	defaultBelowScore   = 50
	defaultAboveScore   = 75
)

// Weights holds the contribution of each category to the overall score.
type Weights struct {
	Code float64
	Test float64
	Docs float64
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the category weights. Non-positive weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Code > 0 {
			s.weights.Code = w.Code
		}
		if w.Test > 0 {
			s.weights.Test = w.Test
		}
		if w.Docs > 0 {
			s.weights.Docs = w.Docs
		}
	}
}

// WithStatusScores overrides the points for individual statuses.
func WithStatusScores(scores map[types.Status]float64) Option {
	return func(s *Scorer) {
		for status, score := range scores {
			if score > 0 {
				s.statusScores[status] = score
			}
		}
	}
}

// Scorer computes overall scores. It is read-only after construction.
type Scorer struct {
	weights      Weights
	statusScores map[types.Status]float64
}

// NewScorer creates a scorer with the default weighting.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: Weights{Code: defaultCodeWeight, Test: defaultTestWeight, Docs: defaultDocsWeight},
		statusScores: map[types.Status]float64{
			types.StatusOnTrack:     defaultOnTrackScore,
			types.StatusBelowTarget: defaultBelowScore,
			types.StatusAboveTarget: defaultAboveScore,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StatusScore returns the points for status; unknown statuses score 0.
func (s *Scorer) StatusScore(status types.Status) float64 {
	return s.statusScores[status]
}

// Overall returns the weighted score rounded to two decimals.
func (s *Scorer) Overall(set types.StatusSet) float64 {
	score := s.StatusScore(set.AILOC)*s.weights.Code +
		s.StatusScore(set.AITests)*s.weights.Test +
		s.StatusScore(set.AIDocs)*s.weights.Docs
	return math.Round(score*100) / 100
}
