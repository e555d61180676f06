// Package types contains the report shapes returned by the metrics service.
// JSON field names are part of the public API contract.
package types

import "time"

// Status is the tri-state comparison of an AI percentage against its target.
type Status string

// Target statuses.
const (
	StatusOnTrack     Status = "on-track"
	StatusBelowTarget Status = "below-target"
	StatusAboveTarget Status = "above-target"
)

// LOCMetrics summarises one category of events.
type LOCMetrics struct {
	TotalLines           int     `json:"total_lines"`
	AILines              int     `json:"ai_lines"`
	CompletionLines      int     `json:"completion_lines"`
	AgentLines           int     `json:"agent_lines"`
	ManualLines          int     `json:"manual_lines"`
	AIPercentage         float64 `json:"ai_percentage"`
	CompletionPercentage float64 `json:"completion_percentage"`
	AgentPercentage      float64 `json:"agent_percentage"`
	ManualPercentage     float64 `json:"manual_percentage"`
}

// Targets holds the goal AI percentage per category.
type Targets struct {
	AILOC   float64 `json:"ai_loc"`
	AITests float64 `json:"ai_tests"`
	AIDocs  float64 `json:"ai_docs"`
}

// StatusSet holds one status per category.
type StatusSet struct {
	AILOC   Status `json:"ai_loc"`
	AITests Status `json:"ai_tests"`
	AIDocs  Status `json:"ai_docs"`
}

// Period echoes the requested bounds; nil means unbounded.
type Period struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// NewPeriod renders optional bounds as ISO-8601 strings.
func NewPeriod(start, end *time.Time) Period {
	return Period{Start: isoOrNil(start), End: isoOrNil(end)}
}

func isoOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

// DeveloperReport is the per-developer metrics bundle.
type DeveloperReport struct {
	DeveloperID          string     `json:"developer_id"`
	Period               Period     `json:"period"`
	CodeMetrics          LOCMetrics `json:"code_metrics"`
	TestMetrics          LOCMetrics `json:"test_metrics"`
	DocumentationMetrics LOCMetrics `json:"documentation_metrics"`
	Targets              Targets    `json:"targets"`
	Status               StatusSet  `json:"status"`
	OverallScore         float64    `json:"overall_score"`
}

// LeaderboardEntry is one developer row in a team report.
type LeaderboardEntry struct {
	DeveloperID      string  `json:"developer_id"`
	OverallScore     float64 `json:"overall_score"`
	AILOCPercentage  float64 `json:"ai_loc_percentage"`
	AITestPercentage float64 `json:"ai_test_percentage"`
	AIDocPercentage  float64 `json:"ai_doc_percentage"`
	TotalLOC         int     `json:"total_loc"`
}

// CategoryMetrics groups LOC metrics for the three categories.
type CategoryMetrics struct {
	Code          LOCMetrics `json:"code"`
	Tests         LOCMetrics `json:"tests"`
	Documentation LOCMetrics `json:"documentation"`
}

// TeamReport aggregates all developers in a period.
type TeamReport struct {
	Period          Period             `json:"period"`
	TeamMetrics     CategoryMetrics    `json:"team_metrics"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	TotalDevelopers int                `json:"total_developers"`
}

// TrendPoint holds one calendar day of metrics.
type TrendPoint struct {
	Date string `json:"date"`
	CategoryMetrics
}

// TrendsReport is a chronological series of daily metrics.
type TrendsReport struct {
	DeveloperID *string      `json:"developer_id"`
	PeriodDays  int          `json:"period_days"`
	Trends      []TrendPoint `json:"trends"`
}

// FeatureSummary is the LOC breakdown for one feature label.
type FeatureSummary struct {
	FeatureName string `json:"feature_name"`
	TotalLOC    int    `json:"total_loc"`
	CodeLOC     int    `json:"code_loc"`
	TestLOC     int    `json:"test_loc"`
	DocLOC      int    `json:"doc_loc"`
	EventCount  int    `json:"event_count"`
	LastUpdated string `json:"last_updated"`
}

// FeatureReport lists the most recently touched features.
type FeatureReport struct {
	Features      []FeatureSummary `json:"features"`
	TotalFeatures int              `json:"total_features"`
	Showing       int              `json:"showing"`
}
