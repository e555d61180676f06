// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the LOC bucket an event contributes to.
type Category string

// Known categories.
const (
	CategoryCode          Category = "code"
	CategoryTest          Category = "test"
	CategoryDocumentation Category = "documentation"
)

// Categories lists every category in storage order. Index positions are
// stable and used to address per-category resources.
var Categories = [...]Category{CategoryCode, CategoryTest, CategoryDocumentation} //nolint:gochecknoglobals // fixed enum table

// Index returns the position of c in Categories, or -1 when unknown.
func (c Category) Index() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return -1
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return c.Index() >= 0 }

// ParseCategory converts s into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
	}
	return c, nil
}

// Source is the authorship origin of a line count.
type Source string

// Known sources. Completion and agent are AI-authored.
const (
	SourceCompletion Source = "completion"
	SourceAgent      Source = "agent"
	SourceManual     Source = "manual"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceCompletion, SourceAgent, SourceManual:
		return true
	}
	return false
}

// IsAI reports whether lines from s count as AI-authored.
func (s Source) IsAI() bool { return s == SourceCompletion || s == SourceAgent }

// ParseSource converts s into a Source.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("%w: unknown source %q", ErrValidation, s)
	}
	return src, nil
}

// UnknownFeature is the feature label used when metadata carries none.
const UnknownFeature = "unknown"

// featureNameKey is the only metadata key interpreted by the service.
const featureNameKey = "feature_name"

// Metadata carries opaque key-value pairs attached to an event.
type Metadata map[string]any

// FeatureName returns the feature label, or UnknownFeature when absent,
// empty or not a string.
func (m Metadata) FeatureName() string {
	if m == nil {
		return UnknownFeature
	}
	name, ok := m[featureNameKey].(string)
	if !ok || name == "" {
		return UnknownFeature
	}
	return name
}

// Event is an immutable fact about a unit of authored content.
// The JSON shape is also the persisted record format.
type Event struct {
	Category    Category  `json:"type"`
	Source      Source    `json:"source"`
	Lines       int       `json:"lines"`
	FilePath    string    `json:"file_path"`
	DeveloperID string    `json:"developer_id"`
	Timestamp   time.Time `json:"timestamp"`
	Metadata    Metadata  `json:"metadata,omitempty"`

	// Category specific, carried but never aggregated.
	Language      string   `json:"language,omitempty"`
	TestFramework string   `json:"test_framework,omitempty"`
	Coverage      *float64 `json:"coverage,omitempty"`
	DocType       string   `json:"doc_type,omitempty"`

	// RawTimestamp is the timestamp exactly as persisted. Stores fill it on
	// read; it is empty for events that were never stored.
	RawTimestamp string `json:"-"`
}

// TimestampLayout is the fixed width layout timestamps are persisted with.
// Strings of one offset sort chronologically and keep full nanoseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// StoredTimestamp returns the persisted timestamp string, rendering
// Timestamp with TimestampLayout when the event was not read from a store.
func (e Event) StoredTimestamp() string {
	if e.RawTimestamp != "" {
		return e.RawTimestamp
	}
	if e.Timestamp.IsZero() {
		return ""
	}
	return e.Timestamp.Format(TimestampLayout)
}

// maxCoverage bounds Event.Coverage.
const maxCoverage = 100

// Validate checks the invariants an event must satisfy before storage.
func (e Event) Validate() error {
	switch {
	case !e.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrValidation, e.Category)
	case !e.Source.Valid():
		return fmt.Errorf("%w: unknown source %q", ErrValidation, e.Source)
	case e.Lines <= 0:
		return fmt.Errorf("%w: lines must be positive, got %d", ErrValidation, e.Lines)
	case strings.TrimSpace(e.DeveloperID) == "":
		return fmt.Errorf("%w: missing developer_id", ErrValidation)
	case e.Coverage != nil && (*e.Coverage < 0 || *e.Coverage > maxCoverage):
		return fmt.Errorf("%w: coverage must be within [0,100]", ErrValidation)
	}
	return nil
}

// ID returns the informational identifier of the event. It is not unique:
// identical submissions share the same id.
func (e Event) ID() string {
	return e.DeveloperID + "_" + e.Timestamp.Format(time.RFC3339Nano)
}
