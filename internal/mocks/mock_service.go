package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/auth"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) InitializeLedger(ctx context.Context, citizenID uuid.UUID, year int, monthlyAmount decimal.Decimal) (*domain.Ledger, error) {
	args := m.Called(ctx, citizenID, year, monthlyAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}

func (m *MockLedgerService) SetPaymentStatus(ctx context.Context, citizenID uuid.UUID, monthLabel string, paid bool) (*domain.PaymentSlot, error) {
	args := m.Called(ctx, citizenID, monthLabel, paid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSlot), args.Error(1)
}

func (m *MockLedgerService) GetLedgersForCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error) {
	args := m.Called(ctx, citizenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ledger), args.Error(1)
}

func (m *MockLedgerService) GetAllLedgers(ctx context.Context, year *int) ([]*domain.LedgerWithCitizen, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LedgerWithCitizen), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) ComputeDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

type MockFamilyService struct {
	mock.Mock
}

func (m *MockFamilyService) AddFamilyMember(ctx context.Context, citizenID uuid.UUID, req domain.AddFamilyMemberRequest) (*domain.FamilyMember, error) {
	args := m.Called(ctx, citizenID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyService) ListFamilyMembers(ctx context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error) {
	args := m.Called(ctx, citizenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FamilyMember), args.Error(1)
}

func (m *MockFamilyService) RemoveFamilyMember(ctx context.Context, citizenID, memberID uuid.UUID) error {
	args := m.Called(ctx, citizenID, memberID)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) LoginAdmin(ctx context.Context, username, password string) (*domain.AdminLoginResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminLoginResponse), args.Error(1)
}

func (m *MockAuthService) LoginCitizen(ctx context.Context, identifier, password string) (*domain.CitizenLoginResponse, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CitizenLoginResponse), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(subject uuid.UUID, role string) (string, error) {
	args := m.Called(subject, role)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsCache) Get(ctx context.Context, gen int64) (*domain.DashboardStats, bool, error) {
	args := m.Called(ctx, gen)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.DashboardStats), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) Set(ctx context.Context, gen int64, stats *domain.DashboardStats) error {
	args := m.Called(ctx, gen, stats)
	return args.Error(0)
}

func (m *MockStatsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
