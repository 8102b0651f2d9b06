package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/pkg/utils"
	"github.com/shopspring/decimal"
)

func init() {
	// The dashboard does arithmetic on amounts, so they travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentSlot is one month's fee record inside a Ledger.
// Date is set if and only if Paid is true.
type PaymentSlot struct {
	Month  string          `json:"month" db:"month_label"`
	Amount decimal.Decimal `json:"amount" db:"amount"`
	Paid   bool            `json:"paid" db:"paid"`
	Date   *time.Time      `json:"date" db:"paid_on"`
}

// SetPaid flips the paid flag and keeps the paid-on date consistent with it.
// A slot that is already paid keeps its original date.
func (s *PaymentSlot) SetPaid(paid bool, now time.Time) {
	if !paid {
		s.Paid = false
		s.Date = nil
		return
	}
	if !s.Paid || s.Date == nil {
		stamped := now
		s.Date = &stamped
	}
	s.Paid = true
}

// LedgerSummary is derived from the slots on every read and never stored.
type LedgerSummary struct {
	PaidCount   int             `json:"paidCount"`
	TotalDue    decimal.Decimal `json:"totalDue"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Ledger holds one citizen's twelve monthly fee slots for one calendar year.
type Ledger struct {
	ID        uuid.UUID     `json:"_id" db:"id"`
	CitizenID uuid.UUID     `json:"citizenId" db:"citizen_id"`
	Year      int           `json:"year" db:"year"`
	Payments  []PaymentSlot `json:"payments" db:"-"`
	Summary   LedgerSummary `json:"summary" db:"-"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// NewLedger builds an unpaid ledger with one slot per month in calendar order.
func NewLedger(citizenID uuid.UUID, year int, monthlyAmount decimal.Decimal, now time.Time) *Ledger {
	payments := make([]PaymentSlot, 0, utils.MonthsPerYear)
	for _, label := range utils.MonthLabels(year) {
		payments = append(payments, PaymentSlot{
			Month:  label,
			Amount: monthlyAmount,
		})
	}

	ledger := &Ledger{
		ID:        uuid.New(),
		CitizenID: citizenID,
		Year:      year,
		Payments:  payments,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ledger.Summary = ledger.Summarize()
	return ledger
}

// Slot returns a pointer to the slot with the given label.
func (l *Ledger) Slot(monthLabel string) (*PaymentSlot, bool) {
	for i := range l.Payments {
		if l.Payments[i].Month == monthLabel {
			return &l.Payments[i], true
		}
	}
	return nil, false
}

// MonthlyAmount is the amount the ledger was initialized with.
func (l *Ledger) MonthlyAmount() decimal.Decimal {
	if len(l.Payments) == 0 {
		return decimal.Zero
	}
	return l.Payments[0].Amount
}

func (l *Ledger) Summarize() LedgerSummary {
	summary := LedgerSummary{
		TotalDue:  decimal.Zero,
		TotalPaid: decimal.Zero,
	}
	for _, p := range l.Payments {
		summary.TotalDue = summary.TotalDue.Add(p.Amount)
		if p.Paid {
			summary.PaidCount++
			summary.TotalPaid = summary.TotalPaid.Add(p.Amount)
		}
	}
	summary.Outstanding = summary.TotalDue.Sub(summary.TotalPaid)
	return summary
}

// CitizenIdentity is the minimal citizen projection joined onto ledgers.
type CitizenIdentity struct {
	ID           uuid.UUID `json:"_id" db:"id"`
	Name         string    `json:"name" db:"name"`
	MembershipID string    `json:"membershipId" db:"membership_id"`
	Mobile       string    `json:"mobile" db:"mobile"`
}

// LedgerWithCitizen is a ledger as shown in the admin-wide view. On the wire
// citizenId carries the identity object instead of the bare id.
type LedgerWithCitizen struct {
	Ledger
	Citizen CitizenIdentity `json:"-" db:"citizen"`
}

func (l LedgerWithCitizen) MarshalJSON() ([]byte, error) {
	type ledgerJSON Ledger
	return json.Marshal(struct {
		ledgerJSON
		CitizenID CitizenIdentity `json:"citizenId"`
	}{
		ledgerJSON: ledgerJSON(l.Ledger),
		CitizenID:  l.Citizen,
	})
}
