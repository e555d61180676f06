package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/okian/locmetrics/internal/adapters/repository"
	"github.com/okian/locmetrics/internal/domain/calculator"
	"github.com/okian/locmetrics/internal/domain/model"
	"github.com/okian/locmetrics/internal/domain/types"
	"github.com/okian/locmetrics/pkg/logger"
)

// DeveloperReport summarises one developer's events within the inclusive
// [start, end] range. Nil bounds are unbounded.
func (s *Service) DeveloperReport(ctx context.Context, developerID string, start, end *time.Time) (report types.DeveloperReport, err error) {
	defer func(began time.Time) { observe("developer", began, err) }(time.Now())

	// An empty id would disable the store's developer filter.
	if strings.TrimSpace(developerID) == "" {
		return types.DeveloperReport{}, fmt.Errorf("%w: missing developer_id", ErrValidation)
	}

	store, err := s.eventStore()
	if err != nil {
		return types.DeveloperReport{}, err
	}

	events, err := store.GetAll(ctx, repository.Filter{DeveloperID: developerID, Start: start, End: end})
	if err != nil {
		s.logger.Error(ctx, "failed to load developer events",
			logger.String("developer_id", developerID),
			logger.Error(err),
		)
		return types.DeveloperReport{}, storageError(err)
	}

	return s.developerReport(developerID, types.NewPeriod(start, end), events), nil
}

// developerReport builds a report from events already narrowed to one
// developer and period.
func (s *Service) developerReport(developerID string, period types.Period, events []model.Event) types.DeveloperReport {
	code := calculator.LOCMetrics(events, model.CategoryCode)
	test := calculator.LOCMetrics(events, model.CategoryTest)
	docs := calculator.LOCMetrics(events, model.CategoryDocumentation)
	targets := calculator.Targets()
	status := calculator.Statuses(code, test, docs, targets, s.tolerance)

	return types.DeveloperReport{
		DeveloperID:          developerID,
		Period:               period,
		CodeMetrics:          code,
		TestMetrics:          test,
		DocumentationMetrics: docs,
		Targets:              targets,
		Status:               status,
		OverallScore:         s.scorer.Overall(status),
	}
}

// TeamReport aggregates every developer active within [start, end] and
// ranks them by overall score. Ties keep the order in which developers
// first appear.
func (s *Service) TeamReport(ctx context.Context, start, end *time.Time) (report types.TeamReport, err error) {
	defer func(began time.Time) { observe("team", began, err) }(time.Now())

	store, err := s.eventStore()
	if err != nil {
		return types.TeamReport{}, err
	}

	events, err := store.GetAll(ctx, repository.Filter{Start: start, End: end})
	if err != nil {
		s.logger.Error(ctx, "failed to load team events", logger.Error(err))
		return types.TeamReport{}, storageError(err)
	}

	var order []string
	byDeveloper := make(map[string][]model.Event)
	for _, e := range events {
		if e.DeveloperID == "" {
			continue
		}
		if _, seen := byDeveloper[e.DeveloperID]; !seen {
			order = append(order, e.DeveloperID)
		}
		byDeveloper[e.DeveloperID] = append(byDeveloper[e.DeveloperID], e)
	}

	period := types.NewPeriod(start, end)
	leaderboard := make([]types.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		r := s.developerReport(id, period, byDeveloper[id])
		leaderboard = append(leaderboard, types.LeaderboardEntry{
			DeveloperID:      id,
			OverallScore:     r.OverallScore,
			AILOCPercentage:  r.CodeMetrics.AIPercentage,
			AITestPercentage: r.TestMetrics.AIPercentage,
			AIDocPercentage:  r.DocumentationMetrics.AIPercentage,
			TotalLOC:         r.CodeMetrics.TotalLines,
		})
	}
	sortLeaderboard(leaderboard)

	return types.TeamReport{
		Period:          period,
		TeamMetrics:     categoryMetrics(events),
		Leaderboard:     leaderboard,
		TotalDevelopers: len(order),
	}, nil
}

// sortLeaderboard orders entries by score, highest first, keeping the
// relative order of equal scores.
func sortLeaderboard(entries []types.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OverallScore > entries[j].OverallScore
	})
}

func categoryMetrics(events []model.Event) types.CategoryMetrics {
	return types.CategoryMetrics{
		Code:          calculator.LOCMetrics(events, model.CategoryCode),
		Tests:         calculator.LOCMetrics(events, model.CategoryTest),
		Documentation: calculator.LOCMetrics(events, model.CategoryDocumentation),
	}
}
