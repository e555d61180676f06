// Package calculator computes LOC metrics and target statuses. Every
// function is pure and safe for concurrent use.
package calculator

import (
	"math"

	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
)

// DefaultTolerance is the symmetric band, in percentage points, around a
// target within which a category is on-track.
const DefaultTolerance = 5.0

// Fixed AI-authorship targets, in percent.
const (
	targetCode = 15.0
	targetTest = 20.0
	targetDocs = 10.0
)

const percent = 100

// LOCMetrics filters events to category and sums their lines by source.
func LOCMetrics(events []model.Event, category model.Category) types.LOCMetrics {
	var m types.LOCMetrics
	for _, e := range events {
		if e.Category != category {
			continue
		}
		m.TotalLines += e.Lines
		switch e.Source {
		case model.SourceCompletion:
			m.CompletionLines += e.Lines
		case model.SourceAgent:
			m.AgentLines += e.Lines
		case model.SourceManual:
			m.ManualLines += e.Lines
		}
	}
	m.AILines = m.CompletionLines + m.AgentLines

	m.AIPercentage = share(m.AILines, m.TotalLines)
	m.CompletionPercentage = share(m.CompletionLines, m.TotalLines)
	m.AgentPercentage = share(m.AgentLines, m.TotalLines)
	m.ManualPercentage = share(m.ManualLines, m.TotalLines)
	return m
}

// share returns part/total as a rounded percentage, 0 when total is 0.
func share(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * percent)
}

// Targets returns the fixed target table.
func Targets() types.Targets {
	return types.Targets{
		AILOC:   targetCode,
		AITests: targetTest,
		AIDocs:  targetDocs,
	}
}

// TargetStatus compares actual against target within tolerance. Both band
// edges count as on-track.
func TargetStatus(actual, target, tolerance float64) types.Status {
	switch {
	case actual >= target-tolerance && actual <= target+tolerance:
		return types.StatusOnTrack
	case actual < target:
		return types.StatusBelowTarget
	default:
		return types.StatusAboveTarget
	}
}

// Statuses derives the status of each category from its metrics.
func Statuses(code, test, docs types.LOCMetrics, targets types.Targets, tolerance float64) types.StatusSet {
	return types.StatusSet{
		AILOC:   TargetStatus(code.AIPercentage, targets.AILOC, tolerance),
		AITests: TargetStatus(test.AIPercentage, targets.AITests, tolerance),
		AIDocs:  TargetStatus(docs.AIPercentage, targets.AIDocs, tolerance),
	}
}

// Round2 rounds v half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*percent) / percent
}
