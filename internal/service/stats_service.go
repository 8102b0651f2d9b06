package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/metrics"
	"github.com/segyhp/membership-fees/internal/repository"
	customError "github.com/segyhp/membership-fees/pkg/errors"
	"github.com/segyhp/membership-fees/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// StatsService derives dashboard statistics from the ledgers. It never writes.
type StatsService struct {
	ledgers  repository.LedgerRepository
	citizens repository.CitizenRepository
	families repository.FamilyMemberRepository
	cache    StatsCache
	metrics  *metrics.Metrics
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewStatsService builds the aggregation service. families may be nil.
// loc decides which calendar year is current; nil means time.Local.
func NewStatsService(
	ledgers repository.LedgerRepository,
	citizens repository.CitizenRepository,
	families repository.FamilyMemberRepository,
	cache StatsCache,
	metrics *metrics.Metrics,
	logger *slog.Logger,
	loc *time.Location,
) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{
		ledgers:  ledgers,
		citizens: citizens,
		families: families,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// ComputeDashboardStats scans every ledger. totalCollected covers all years;
// monthlyRevenue covers the current calendar year only.
func (s *StatsService) ComputeDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	gen, cacheable := s.cacheGeneration(ctx)
	if cacheable {
		cached, ok, err := s.cache.Get(ctx, gen)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to read stats cache", "error", err)
		}
		if ok {
			return cached, nil
		}
	}

	start := time.Now()
	defer s.metrics.ObserveStatsCompute(start)

	var (
		citizenCount int64
		familyCount  int64
		familyOK     bool
		ledgers      []*domain.Ledger
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.citizens.CountByRole(gctx, domain.RoleCitizen)
		if err != nil {
			return err
		}
		citizenCount = n
		return nil
	})

	if s.families != nil {
		g.Go(func() error {
			n, err := s.families.Count(gctx)
			if err != nil {
				// Family members are optional; the dashboard still renders.
				s.logger.WarnContext(gctx, "Family member count unavailable", "error", err)
				return nil
			}
			familyCount, familyOK = n, true
			return nil
		})
	}

	g.Go(func() error {
		all, err := s.ledgers.FindAll(gctx)
		if err != nil {
			return err
		}
		ledgers = all
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats := &domain.DashboardStats{
		TotalCitizens:  citizenCount,
		TotalCollected: decimal.Zero,
		MonthlyRevenue: emptyMonthlyRevenue(),
		Demographics:   demographics(citizenCount, familyCount, familyOK),
	}

	currentYear := s.now().In(s.loc).Year()
	for _, ledger := range ledgers {
		for _, p := range ledger.Payments {
			if !p.Paid {
				continue
			}
			stats.TotalCollected = stats.TotalCollected.Add(p.Amount)

			if ledger.Year != currentYear {
				continue
			}
			month, _, err := utils.ParseMonthLabel(p.Month)
			if err != nil {
				continue
			}
			entry := &stats.MonthlyRevenue[month-1]
			entry.Amount = entry.Amount.Add(p.Amount)
		}
	}

	if cacheable {
		if err := s.cache.Set(ctx, gen, stats); err != nil {
			s.logger.WarnContext(ctx, "Failed to write stats cache", "error", err)
		}
	}

	return stats, nil
}

// cacheGeneration reads the write generation before any scan. Without it the
// result cannot be stored safely, so the cache is skipped.
func (s *StatsService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read stats cache generation", "error", err)
		return 0, false
	}
	return gen, true
}

func emptyMonthlyRevenue() []domain.MonthRevenue {
	names := utils.AbbreviatedMonths()
	revenue := make([]domain.MonthRevenue, len(names))
	for i, name := range names {
		revenue[i] = domain.MonthRevenue{Name: name, Amount: decimal.Zero}
	}
	return revenue
}

func demographics(citizens, members int64, membersKnown bool) []domain.DemographicEntry {
	if !membersKnown {
		return []domain.DemographicEntry{
			{Name: "Citizens", Value: citizens},
			{Name: "Family Members", Value: 0},
		}
	}
	return []domain.DemographicEntry{
		{Name: "Heads", Value: citizens},
		{Name: "Members", Value: members},
	}
}
