package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/segyhp/membership-fees/internal/domain"
)

const uniqueViolation = "23505"

type ledgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// slotRow is a payment slot together with the ledger it belongs to.
type slotRow struct {
	LedgerID uuid.UUID `db:"ledger_id"`
	domain.PaymentSlot
}

func (r *ledgerRepository) Create(ctx context.Context, ledger *domain.Ledger) error {
	ledgerQuery := `
		INSERT INTO fee_ledgers (id, citizen_id, year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	slotQuery := `
		INSERT INTO payment_slots (ledger_id, position, month_label, amount, paid, paid_on)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, ledgerQuery,
		ledger.ID,
		ledger.CitizenID,
		ledger.Year,
		ledger.CreatedAt,
		ledger.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ledger %s/%d: %w", ledger.CitizenID, ledger.Year, ErrConflict)
		}
		return err
	}

	for i, slot := range ledger.Payments {
		_, err = tx.ExecContext(ctx, slotQuery,
			ledger.ID,
			i+1,
			slot.Month,
			slot.Amount,
			slot.Paid,
			slot.Date,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ledgerRepository) FindByCitizenAndYear(ctx context.Context, citizenID uuid.UUID, year int) (*domain.Ledger, error) {
	query := `
		SELECT id, citizen_id, year, created_at, updated_at
		FROM fee_ledgers
		WHERE citizen_id = $1 AND year = $2
	`

	var ledger domain.Ledger
	if err := r.db.GetContext(ctx, &ledger, query, citizenID, year); err != nil {
		return nil, notFound(err)
	}

	if err := r.attachSlots(ctx, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) FindByCitizenAndMonth(ctx context.Context, citizenID uuid.UUID, monthLabel string) (*domain.Ledger, error) {
	query := `
		SELECT l.id, l.citizen_id, l.year, l.created_at, l.updated_at
		FROM fee_ledgers l
		JOIN payment_slots s ON s.ledger_id = l.id
		WHERE l.citizen_id = $1 AND s.month_label = $2
		LIMIT 1
	`

	var ledger domain.Ledger
	if err := r.db.GetContext(ctx, &ledger, query, citizenID, monthLabel); err != nil {
		return nil, notFound(err)
	}

	if err := r.attachSlots(ctx, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) FindAllByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error) {
	query := `
		SELECT id, citizen_id, year, created_at, updated_at
		FROM fee_ledgers
		WHERE citizen_id = $1
		ORDER BY year DESC
	`

	var ledgers []*domain.Ledger
	if err := r.db.SelectContext(ctx, &ledgers, query, citizenID); err != nil {
		return nil, err
	}

	if err := r.attachSlots(ctx, ledgers...); err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (r *ledgerRepository) FindAllByYear(ctx context.Context, year *int) ([]*domain.LedgerWithCitizen, error) {
	// Citizens may have been removed; the ledger is still listed with the bare id.
	query := `
		SELECT l.id, l.citizen_id, l.year, l.created_at, l.updated_at,
			COALESCE(c.id, l.citizen_id) AS "citizen.id",
			COALESCE(c.name, '') AS "citizen.name",
			COALESCE(c.membership_id, '') AS "citizen.membership_id",
			COALESCE(c.mobile, '') AS "citizen.mobile"
		FROM fee_ledgers l
		LEFT JOIN citizens c ON c.id = l.citizen_id
		WHERE ($1::int IS NULL OR l.year = $1)
		ORDER BY c.name NULLS LAST, l.year DESC
	`

	var rows []*domain.LedgerWithCitizen
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, err
	}

	ledgers := make([]*domain.Ledger, len(rows))
	for i, row := range rows {
		ledgers[i] = &row.Ledger
	}
	if err := r.attachSlots(ctx, ledgers...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ledgerRepository) FindAll(ctx context.Context) ([]*domain.Ledger, error) {
	query := `
		SELECT id, citizen_id, year, created_at, updated_at
		FROM fee_ledgers
		ORDER BY year, citizen_id
	`

	var ledgers []*domain.Ledger
	if err := r.db.SelectContext(ctx, &ledgers, query); err != nil {
		return nil, err
	}

	if err := r.attachSlots(ctx, ledgers...); err != nil {
		return nil, err
	}
	return ledgers, nil
}

func (r *ledgerRepository) UpdateSlotStatus(ctx context.Context, ledgerID uuid.UUID, slot domain.PaymentSlot) (*domain.PaymentSlot, error) {
	// A slot that is already paid keeps its stored date.
	slotQuery := `
		UPDATE payment_slots
		SET paid = $3::boolean,
			paid_on = CASE WHEN $3::boolean THEN COALESCE(paid_on, $4::timestamptz) ELSE NULL END
		WHERE ledger_id = $1 AND month_label = $2
		RETURNING month_label, amount, paid, paid_on
	`
	ledgerQuery := `
		UPDATE fee_ledgers
		SET updated_at = $2
		WHERE id = $1
	`

	paidOn := slot.Date
	if slot.Paid && paidOn == nil {
		now := time.Now()
		paidOn = &now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var stored domain.PaymentSlot
	if err := tx.GetContext(ctx, &stored, slotQuery, ledgerID, slot.Month, slot.Paid, paidOn); err != nil {
		return nil, notFound(err)
	}

	if _, err := tx.ExecContext(ctx, ledgerQuery, ledgerID, time.Now()); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &stored, nil
}

// attachSlots loads the slots of all given ledgers in one query, in calendar order.
func (r *ledgerRepository) attachSlots(ctx context.Context, ledgers ...*domain.Ledger) error {
	if len(ledgers) == 0 {
		return nil
	}

	query := `
		SELECT ledger_id, month_label, amount, paid, paid_on
		FROM payment_slots
		WHERE ledger_id = ANY($1::uuid[])
		ORDER BY ledger_id, position
	`

	ids := make(pq.StringArray, len(ledgers))
	byID := make(map[uuid.UUID]*domain.Ledger, len(ledgers))
	for i, l := range ledgers {
		ids[i] = l.ID.String()
		byID[l.ID] = l
		l.Payments = make([]domain.PaymentSlot, 0, 12)
	}

	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, ids); err != nil {
		return err
	}

	for _, row := range rows {
		if l, ok := byID[row.LedgerID]; ok {
			l.Payments = append(l.Payments, row.PaymentSlot)
		}
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
