package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"scadenze/internal/cache"
	"scadenze/internal/core"
	"scadenze/internal/log"
	"scadenze/internal/recurrence"
)

var ErrInvalidWindow = errors.New("window end before window start")

// maxWindowDays bounds a single projection query. Anything wider than a
// couple of years is almost certainly a client bug.
const maxWindowDays = 800

// ProjectionService answers calendar window queries over all active
// obligations. Results are memoized per window; the short TTL bounds
// staleness after obligations change.
type ProjectionService struct {
	obligations ObligationReader
	memo        *cache.Memo[[]core.Occurrence]
	logger      *log.Logger
}

func NewProjectionService(obligations ObligationReader, memo *cache.Memo[[]core.Occurrence], logger *log.Logger) *ProjectionService {
	return &ProjectionService{
		obligations: obligations,
		memo:        memo,
		logger:      logger.WithComponent(log.ComponentProject),
	}
}

// ProjectWindow returns every occurrence of every active obligation
// inside [from, to], ordered by date then obligation ID.
func (s *ProjectionService) ProjectWindow(ctx context.Context, from, to core.Date) ([]core.Occurrence, error) {
	if err := from.Validate(); err != nil {
		return nil, fmt.Errorf("invalid window start: %w", err)
	}
	if err := to.Validate(); err != nil {
		return nil, fmt.Errorf("invalid window end: %w", err)
	}
	if to.Before(from.Time) {
		return nil, ErrInvalidWindow
	}
	if from.DaysUntil(to) > maxWindowDays {
		return nil, fmt.Errorf("window wider than %d days", maxWindowDays)
	}

	key := windowKey(from, to)
	if cached, ok := s.memo.Get(key); ok {
		s.logger.DebugContext(ctx, "Projection served from cache",
			log.FieldWindowStart, from.Format("2006-01-02"),
			log.FieldWindowEnd, to.Format("2006-01-02"))
		return cached, nil
	}

	obligations, err := s.obligations.ListActiveObligations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active obligations: %w", err)
	}

	occurrences := make([]core.Occurrence, 0)
	for _, ob := range obligations {
		occurrences = append(occurrences, recurrence.Project(ob, from, to)...)
	}
	sort.Slice(occurrences, func(i, j int) bool {
		if !occurrences[i].Date.Equal(occurrences[j].Date.Time) {
			return occurrences[i].Date.Before(occurrences[j].Date.Time)
		}
		return occurrences[i].ObligationID < occurrences[j].ObligationID
	})

	s.memo.Set(key, occurrences)
	s.logger.InfoContext(ctx, "Projected window",
		log.FieldWindowStart, from.Format("2006-01-02"),
		log.FieldWindowEnd, to.Format("2006-01-02"),
		log.FieldOccurrences, len(occurrences))
	return occurrences, nil
}

// ProjectObligation projects a single obligation over [from, to].
// Uncached; used by detail views and by tooling.
func (s *ProjectionService) ProjectObligation(ob core.RecurringObligation, from, to core.Date) ([]core.Occurrence, error) {
	if to.Before(from.Time) {
		return nil, ErrInvalidWindow
	}
	return recurrence.Project(ob, from, to), nil
}

func windowKey(from, to core.Date) string {
	return from.Format("2006-01-02") + "|" + to.Format("2006-01-02")
}
