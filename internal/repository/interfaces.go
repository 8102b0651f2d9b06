package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/domain"
)

// Stores return these (optionally wrapped) so services can translate them
// into domain errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// LedgerRepository defines the interface for fee ledger data operations
type LedgerRepository interface {
	// Create inserts a ledger with its twelve slots. Returns ErrConflict when a
	// ledger already exists for the same (citizen, year).
	Create(ctx context.Context, ledger *domain.Ledger) error

	// FindByCitizenAndYear returns ErrNotFound when no ledger exists
	FindByCitizenAndYear(ctx context.Context, citizenID uuid.UUID, year int) (*domain.Ledger, error)

	// FindByCitizenAndMonth finds the citizen's ledger holding a slot with the given label
	FindByCitizenAndMonth(ctx context.Context, citizenID uuid.UUID, monthLabel string) (*domain.Ledger, error)

	// FindAllByCitizen lists a citizen's ledgers, newest year first
	FindAllByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error)

	// FindAllByYear lists ledgers joined with citizen identity; a nil year means every year
	FindAllByYear(ctx context.Context, year *int) ([]*domain.LedgerWithCitizen, error)

	// FindAll loads every ledger with its slots
	FindAll(ctx context.Context) ([]*domain.Ledger, error)

	// UpdateSlotStatus writes the paid flag and date of a single slot and
	// returns the stored slot. Sibling slots are not touched.
	UpdateSlotStatus(ctx context.Context, ledgerID uuid.UUID, slot domain.PaymentSlot) (*domain.PaymentSlot, error)
}

// CitizenRepository defines the citizen directory operations the fee core needs
type CitizenRepository interface {
	// Create registers a citizen. Returns ErrConflict on a duplicate membership ID.
	Create(ctx context.Context, citizen *domain.Citizen) error

	// Exists reports whether a citizen with the ID exists
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// FindByIdentifier looks a citizen up by membership ID or mobile number
	FindByIdentifier(ctx context.Context, identifier string) (*domain.Citizen, error)

	// CountByRole counts citizens with the given role
	CountByRole(ctx context.Context, role string) (int64, error)
}

// FamilyMemberRepository is the family-member directory behind the
// dashboard's Heads/Members split
type FamilyMemberRepository interface {
	// Create registers a dependant under member.CitizenID
	Create(ctx context.Context, member *domain.FamilyMember) error

	// FindByID returns ErrNotFound when no such member exists
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FamilyMember, error)

	// FindByCitizen lists a citizen's dependants, oldest registration first
	FindByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error)

	// Delete removes the member if it belongs to citizenID. Returns ErrNotFound otherwise.
	Delete(ctx context.Context, id, citizenID uuid.UUID) error

	// Count counts every registered family member
	Count(ctx context.Context) (int64, error)
}

// AdminRepository defines admin account operations
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
}
