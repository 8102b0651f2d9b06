package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/events"
	"github.com/segyhp/membership-fees/internal/metrics"
	"github.com/segyhp/membership-fees/internal/repository"
	customError "github.com/segyhp/membership-fees/pkg/errors"

	"github.com/shopspring/decimal"
)

// StatsCache is the slice of the dashboard cache the services need.
// *cache.StatsCache satisfies it, including as a nil pointer.
//
// Entries belong to a write generation. Readers take the generation before
// scanning and store under it; Invalidate advances it, so a scan that raced
// a write is never served afterwards.
type StatsCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64) (*domain.DashboardStats, bool, error)
	Set(ctx context.Context, gen int64, stats *domain.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// maxMonthlyAmount is the first value the NUMERIC(12,2) amount column rejects.
var maxMonthlyAmount = decimal.New(1, 10)

// LedgerService is the only writer of fee ledgers.
type LedgerService struct {
	ledgers   repository.LedgerRepository
	citizens  repository.CitizenRepository
	publisher events.Publisher
	cache     StatsCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewLedgerService(
	ledgers repository.LedgerRepository,
	citizens repository.CitizenRepository,
	publisher events.Publisher,
	cache StatsCache,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		ledgers:   ledgers,
		citizens:  citizens,
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// InitializeLedger creates the citizen's ledger for year with twelve unpaid
// slots of monthlyAmount each.
func (s *LedgerService) InitializeLedger(ctx context.Context, citizenID uuid.UUID, year int, monthlyAmount decimal.Decimal) (*domain.Ledger, error) {
	if err := validateInitialize(citizenID, year, monthlyAmount); err != nil {
		return nil, err
	}

	exists, err := s.citizens.Exists(ctx, citizenID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !exists {
		return nil, customError.WrapCitizenNotFound(citizenID.String())
	}

	existing, err := s.ledgers.FindByCitizenAndYear(ctx, citizenID, year)
	if err == nil && existing != nil {
		return nil, customError.WrapAlreadyInitialized(citizenID.String(), year)
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapDatabaseError(err)
	}

	ledger := domain.NewLedger(citizenID, year, monthlyAmount, s.now())

	// The unique (citizen_id, year) index decides concurrent initializations.
	if err := s.ledgers.Create(ctx, ledger); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, customError.WrapAlreadyInitialized(citizenID.String(), year)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.metrics.IncrementLedgersInitialized()
	s.afterWrite(ctx, events.LedgerInitialized(citizenID, year, monthlyAmount, ledger.CreatedAt))

	s.logger.InfoContext(ctx, "Fee ledger initialized",
		"citizen_id", citizenID,
		"year", year,
		"monthly_amount", monthlyAmount.String())

	return ledger, nil
}

// SetPaymentStatus marks one month paid or unpaid. Only the targeted slot is
// written; its paid-on date follows the paid flag.
func (s *LedgerService) SetPaymentStatus(ctx context.Context, citizenID uuid.UUID, monthLabel string, paid bool) (*domain.PaymentSlot, error) {
	if citizenID == uuid.Nil {
		return nil, customError.WrapValidation("citizenId is required")
	}
	if monthLabel == "" {
		return nil, customError.WrapValidation("monthYear is required")
	}

	ledger, err := s.ledgers.FindByCitizenAndMonth(ctx, citizenID, monthLabel)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapLedgerNotFound(citizenID.String(), monthLabel)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	slot, ok := ledger.Slot(monthLabel)
	if !ok {
		return nil, customError.WrapSlotNotFound(monthLabel)
	}
	slot.SetPaid(paid, s.now())

	stored, err := s.ledgers.UpdateSlotStatus(ctx, ledger.ID, *slot)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapSlotNotFound(monthLabel)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.metrics.IncrementPaymentStatusChange(paid)
	s.afterWrite(ctx, events.PaymentStatusChanged(citizenID, monthLabel, paid, s.now()))

	s.logger.InfoContext(ctx, "Payment status updated",
		"citizen_id", citizenID,
		"month", monthLabel,
		"paid", paid)

	return stored, nil
}

// GetLedgersForCitizen returns the citizen's ledgers, newest year first.
func (s *LedgerService) GetLedgersForCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error) {
	ledgers, err := s.ledgers.FindAllByCitizen(ctx, citizenID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if ledgers == nil {
		ledgers = []*domain.Ledger{}
	}
	for _, l := range ledgers {
		l.Summary = l.Summarize()
	}
	return ledgers, nil
}

// GetAllLedgers returns every ledger joined with citizen identity, optionally
// restricted to one year.
func (s *LedgerService) GetAllLedgers(ctx context.Context, year *int) ([]*domain.LedgerWithCitizen, error) {
	ledgers, err := s.ledgers.FindAllByYear(ctx, year)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if ledgers == nil {
		ledgers = []*domain.LedgerWithCitizen{}
	}
	for _, l := range ledgers {
		l.Summary = l.Summarize()
	}
	return ledgers, nil
}

// afterWrite runs the best-effort side effects of a committed ledger write.
func (s *LedgerService) afterWrite(ctx context.Context, event events.Event) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate stats cache", "error", err)
		}
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"citizen_id", event.CitizenID,
			"error", err)
	}
}

func validateInitialize(citizenID uuid.UUID, year int, monthlyAmount decimal.Decimal) error {
	if citizenID == uuid.Nil {
		return customError.WrapValidation("citizenId is required")
	}
	if year < 1900 || year > 9999 {
		return customError.WrapValidation("year must be between 1900 and 9999")
	}
	if !monthlyAmount.IsPositive() {
		return customError.WrapValidation("monthlyAmount must be greater than 0")
	}
	if monthlyAmount.GreaterThanOrEqual(maxMonthlyAmount) {
		return customError.WrapValidation("monthlyAmount must be less than 10000000000")
	}
	if !monthlyAmount.Equal(monthlyAmount.Round(2)) {
		return customError.WrapValidation("monthlyAmount must have at most 2 decimal places")
	}
	return nil
}
