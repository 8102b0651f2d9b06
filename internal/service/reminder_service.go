package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/segyhp/membership-fees/internal/events"
	"github.com/segyhp/membership-fees/internal/repository"
	customError "github.com/segyhp/membership-fees/pkg/errors"
	"github.com/segyhp/membership-fees/pkg/utils"
)

// ReminderService publishes a dues reminder for every unpaid current month.
type ReminderService struct {
	ledgers   repository.LedgerRepository
	publisher events.Publisher
	logger    *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewReminderService picks the due month in loc; nil means time.Local.
func NewReminderService(ledgers repository.LedgerRepository, publisher events.Publisher, logger *slog.Logger, loc *time.Location) *ReminderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{
		ledgers:   ledgers,
		publisher: publisher,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// SendDueReminders returns the number of reminders published.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	year := now.Year()
	label := utils.MonthLabel(now.Month(), year)

	ledgers, err := s.ledgers.FindAllByYear(ctx, &year)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	sent := 0
	for _, ledger := range ledgers {
		slot, ok := ledger.Slot(label)
		if !ok || slot.Paid {
			continue
		}

		event := events.DuesReminder(ledger.CitizenID, label, slot.Amount, now)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish dues reminder",
				"citizen_id", ledger.CitizenID,
				"month", label,
				"error", err)
			continue
		}
		sent++
	}

	s.logger.InfoContext(ctx, "Dues reminders sent", "month", label, "count", sent)
	return sent, nil
}
