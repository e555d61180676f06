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

// dateLayout renders trend buckets as calendar dates.
const dateLayout = "2006-01-02"

// Trends returns daily metrics for the last days*24h, optionally for one
// developer. Events are bucketed by the calendar date of their stored
// timestamp; no timezone conversion is applied.
func (s *Service) Trends(ctx context.Context, developerID string, days int) (report types.TrendsReport, err error) {
	defer func(began time.Time) { observe("trends", began, err) }(time.Now())

	if days < 1 {
		return types.TrendsReport{}, fmt.Errorf("%w: days must be positive, got %d", ErrValidation, days)
	}

	store, err := s.eventStore()
	if err != nil {
		return types.TrendsReport{}, err
	}

	end := s.now()
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	events, err := store.GetAll(ctx, repository.Filter{DeveloperID: developerID, Start: &start, End: &end})
	if err != nil {
		s.logger.Error(ctx, "failed to load trend events",
			logger.String("developer_id", developerID),
			logger.Error(err),
		)
		return types.TrendsReport{}, storageError(err)
	}

	daily := make(map[string][]model.Event)
	for _, e := range events {
		date := e.Timestamp.Format(dateLayout)
		daily[date] = append(daily[date], e)
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	trends := make([]types.TrendPoint, 0, len(dates))
	for _, date := range dates {
		trends = append(trends, types.TrendPoint{
			Date:            date,
			CategoryMetrics: categoryMetrics(daily[date]),
		})
	}

	var id *string
	if developerID != "" {
		id = &developerID
	}

	return types.TrendsReport{
		DeveloperID: id,
		PeriodDays:  days,
		Trends:      trends,
	}, nil
}
