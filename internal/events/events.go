package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types, also used as routing keys.
const (
	TypeLedgerInitialized    = "ledger.initialized"
	TypePaymentStatusChanged = "payment.status_changed"
	TypeDuesReminder         = "dues.reminder"
)

// Event is a fee ledger notification for downstream consumers.
type Event struct {
	ID         uuid.UUID        `json:"id"`
	Type       string           `json:"type"`
	CitizenID  uuid.UUID        `json:"citizenId"`
	Year       int              `json:"year,omitempty"`
	MonthLabel string           `json:"month,omitempty"`
	Paid       *bool            `json:"paid,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// Publisher delivers events. Delivery is best-effort: callers log failures
// and never roll back a committed ledger write.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

func LedgerInitialized(citizenID uuid.UUID, year int, amount decimal.Decimal, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       TypeLedgerInitialized,
		CitizenID:  citizenID,
		Year:       year,
		Amount:     &amount,
		OccurredAt: now,
	}
}

func PaymentStatusChanged(citizenID uuid.UUID, monthLabel string, paid bool, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       TypePaymentStatusChanged,
		CitizenID:  citizenID,
		MonthLabel: monthLabel,
		Paid:       &paid,
		OccurredAt: now,
	}
}

func DuesReminder(citizenID uuid.UUID, monthLabel string, amount decimal.Decimal, now time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       TypeDuesReminder,
		CitizenID:  citizenID,
		MonthLabel: monthLabel,
		Amount:     &amount,
		OccurredAt: now,
	}
}
