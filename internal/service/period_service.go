package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eskolar/grading-api/internal/models"
)

type periodReader interface {
	FindFinals(ctx context.Context, academicYear, semester string) (*models.GradingPeriod, error)
}

type periodCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// GradingPeriodService answers whether finals grading is currently open for a
// term. Grading must never default to enabled: any storage failure reports the
// period as inactive.
type GradingPeriodService struct {
	periods  periodReader
	cache    periodCache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewGradingPeriodService constructs GradingPeriodService. cache may be nil.
func NewGradingPeriodService(periods periodReader, cache periodCache, cacheTTL time.Duration, logger *zap.Logger) *GradingPeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingPeriodService{
		periods:  periods,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// IsFinalsPeriodActive checks the finals window for (academicYear, semester).
func (s *GradingPeriodService) IsFinalsPeriodActive(ctx context.Context, academicYear, semester string) models.PeriodCheck {
	period, err := s.lookupPeriod(ctx, academicYear, semester)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PeriodCheck{
				Active:  false,
				Message: fmt.Sprintf("no finals grading period is configured for %s semester %s", academicYear, semester),
			}
		}
		s.logger.Error("grading period lookup failed",
			zap.String("academic_year", academicYear),
			zap.String("semester", semester),
			zap.Error(err))
		return models.PeriodCheck{Active: false, Message: "unable to verify the finals grading period"}
	}

	if period.Status != models.PeriodStatusActive {
		return models.PeriodCheck{Active: false, Period: period, Message: "the finals grading period is not active"}
	}

	now := s.now()
	switch {
	case now.Before(period.StartDate):
		return models.PeriodCheck{
			Active:  false,
			Period:  period,
			Message: fmt.Sprintf("the finals grading period has not started yet; it opens on %s", period.StartDate.Format("2006-01-02")),
		}
	case now.After(period.EndDate):
		return models.PeriodCheck{
			Active:  false,
			Period:  period,
			Message: fmt.Sprintf("the finals grading period has already ended; it closed on %s", period.EndDate.Format("2006-01-02")),
		}
	}

	return models.PeriodCheck{Active: true, Period: period, Message: "the finals grading period is open"}
}

// lookupPeriod reads through the cache. Cache failures fall back to the
// database; only the database result decides the outcome.
func (s *GradingPeriodService) lookupPeriod(ctx context.Context, academicYear, semester string) (*models.GradingPeriod, error) {
	key := fmt.Sprintf("grading_period:finals:%s:%s", academicYear, semester)
	if s.cache != nil {
		var cached models.GradingPeriod
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.logger.Debug("grading period cache read failed", zap.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	period, err := s.periods.FindFinals(ctx, academicYear, semester)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, period, s.cacheTTL); err != nil {
			s.logger.Debug("grading period cache write failed", zap.Error(err))
		}
	}
	return period, nil
}
