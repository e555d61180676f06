// Package repository persists events and serves filtered reads.
package repository

import (
	"context"
	"time"

	"github.com/okian/locmetrics/internal/domain/model"
)

// Filter narrows a load. Zero values mean "no constraint"; both time
// bounds are inclusive.
type Filter struct {
	DeveloperID string
	Start       *time.Time
	End         *time.Time
}

// Match reports whether e satisfies the filter.
func (f Filter) Match(e model.Event) bool {
	if f.DeveloperID != "" && e.DeveloperID != f.DeveloperID {
		return false
	}
	if f.Start != nil && e.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && e.Timestamp.After(*f.End) {
		return false
	}
	return true
}

// Store provides append and filtered read access to events.
type Store interface {
	// Save appends e to its category. Failures wrap ErrStorage.
	Save(ctx context.Context, e model.Event) error

	// Load returns the events of one category that match f, in storage
	// order. Unparsable records are skipped.
	Load(ctx context.Context, category model.Category, f Filter) ([]model.Event, error)

	// GetAll returns the matching events of every category, stably sorted
	// by their stored timestamp string.
	GetAll(ctx context.Context, f Filter) ([]model.Event, error)
}
