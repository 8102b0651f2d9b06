package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/metrics"
	"github.com/segyhp/membership-fees/internal/repository"
	customError "github.com/segyhp/membership-fees/pkg/errors"

	"github.com/shopspring/decimal"
)

// Initializer is the ledger-creating half of LedgerService.
type Initializer interface {
	InitializeLedger(ctx context.Context, citizenID uuid.UUID, year int, monthlyAmount decimal.Decimal) (*domain.Ledger, error)
}

// RolloverService opens a new year's ledgers for everyone who had one the
// year before.
type RolloverService struct {
	ledgers       repository.LedgerRepository
	initializer   Initializer
	defaultAmount decimal.Decimal
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewRolloverService(
	ledgers repository.LedgerRepository,
	initializer Initializer,
	defaultAmount decimal.Decimal,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *RolloverService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RolloverService{
		ledgers:       ledgers,
		initializer:   initializer,
		defaultAmount: defaultAmount,
		metrics:       metrics,
		logger:        logger,
	}
}

// Rollover initializes year ledgers reusing each citizen's previous monthly
// amount. Citizens that already have a ledger, or no longer exist, are skipped.
func (s *RolloverService) Rollover(ctx context.Context, year int) (*domain.RolloverResult, error) {
	if year < 1901 || year > 9999 {
		return nil, customError.WrapValidation("year must be between 1901 and 9999")
	}

	previousYear := year - 1
	previous, err := s.ledgers.FindAllByYear(ctx, &previousYear)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	result := &domain.RolloverResult{Year: year}
	for _, prev := range previous {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		amount := prev.MonthlyAmount()
		if !amount.IsPositive() {
			amount = s.defaultAmount
		}

		_, err := s.initializer.InitializeLedger(ctx, prev.CitizenID, year, amount)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, customError.ErrAlreadyInitialized), errors.Is(err, customError.ErrCitizenNotFound):
			result.Skipped++
		default:
			result.Failed++
			s.logger.ErrorContext(ctx, "Rollover failed for citizen",
				"citizen_id", prev.CitizenID,
				"year", year,
				"error", err)
		}
	}

	s.metrics.AddRollover("created", result.Created)
	s.metrics.AddRollover("skipped", result.Skipped)
	s.metrics.AddRollover("failed", result.Failed)

	s.logger.InfoContext(ctx, "Ledger rollover finished",
		"year", year,
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}
