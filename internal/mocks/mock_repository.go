package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *domain.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindByCitizenAndYear(ctx context.Context, citizenID uuid.UUID, year int) (*domain.Ledger, error) {
	args := m.Called(ctx, citizenID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindByCitizenAndMonth(ctx context.Context, citizenID uuid.UUID, monthLabel string) (*domain.Ledger, error) {
	args := m.Called(ctx, citizenID, monthLabel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindAllByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error) {
	args := m.Called(ctx, citizenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindAllByYear(ctx context.Context, year *int) ([]*domain.LedgerWithCitizen, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerWithCitizen), args.Error(1)
}

func (m *MockLedgerRepository) FindAll(ctx context.Context) ([]*domain.Ledger, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) UpdateSlotStatus(ctx context.Context, ledgerID uuid.UUID, slot domain.PaymentSlot) (*domain.PaymentSlot, error) {
	args := m.Called(ctx, ledgerID, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSlot), args.Error(1)
}

type MockCitizenRepository struct {
	mock.Mock
}

func (m *MockCitizenRepository) Create(ctx context.Context, citizen *domain.Citizen) error {
	args := m.Called(ctx, citizen)
	return args.Error(0)
}

func (m *MockCitizenRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCitizenRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Citizen, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Citizen), args.Error(1)
}

func (m *MockCitizenRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

type MockFamilyMemberRepository struct {
	mock.Mock
}

func (m *MockFamilyMemberRepository) Create(ctx context.Context, member *domain.FamilyMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockFamilyMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FamilyMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyMemberRepository) FindByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error) {
	args := m.Called(ctx, citizenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyMemberRepository) Delete(ctx context.Context, id, citizenID uuid.UUID) error {
	args := m.Called(ctx, id, citizenID)
	return args.Error(0)
}

func (m *MockFamilyMemberRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}
