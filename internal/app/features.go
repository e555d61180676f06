package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/locmetrics/internal/adapters/repository"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
	"github.com/okian/locmetrics/pkg/logger"
)

// FeatureReport groups every stored event by feature label and returns the
// limit most recently updated features. Events without a label count
// towards model.UnknownFeature.
func (s *Service) FeatureReport(ctx context.Context, limit int) (report types.FeatureReport, err error) {
	defer func(began time.Time) { observe("features", began, err) }(time.Now())

	if limit < 1 {
		return types.FeatureReport{}, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, limit)
	}

	store, err := s.eventStore()
	if err != nil {
		return types.FeatureReport{}, err
	}

	events, err := store.GetAll(ctx, repository.Filter{})
	if err != nil {
		s.logger.Error(ctx, "failed to load feature events", logger.Error(err))
		return types.FeatureReport{}, storageError(err)
	}

	var order []string
	totals := make(map[string]*types.FeatureSummary)
	for _, e := range events {
		name := e.Metadata.FeatureName()
		t, ok := totals[name]
		if !ok {
			t = &types.FeatureSummary{FeatureName: name}
			totals[name] = t
			order = append(order, name)
		}

		t.TotalLOC += e.Lines
		t.EventCount++
		switch e.Category {
		case model.CategoryCode:
			t.CodeLOC += e.Lines
		case model.CategoryTest:
			t.TestLOC += e.Lines
		case model.CategoryDocumentation:
			t.DocLOC += e.Lines
		}
		// last_updated is the lexicographic maximum of the stored strings.
		if ts := e.StoredTimestamp(); ts > t.LastUpdated {
			t.LastUpdated = ts
		}
	}

	ranked := make([]*types.FeatureSummary, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, totals[name])
	}
	// An empty last_updated is the smallest string and sorts last.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].LastUpdated > ranked[j].LastUpdated
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	features := make([]types.FeatureSummary, len(ranked))
	for i, t := range ranked {
		features[i] = *t
	}

	return types.FeatureReport{
		Features:      features,
		TotalFeatures: len(order),
		Showing:       len(features),
	}, nil
}
