package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memLedgerStore is an in-memory LedgerRepository with the same uniqueness
// and per-slot update semantics as the Postgres store.
type memLedgerStore struct {
	mu       sync.Mutex
	ledgers  map[uuid.UUID]*domain.Ledger
	citizens map[uuid.UUID]domain.CitizenIdentity
}

func newMemLedgerStore() *memLedgerStore {
	return &memLedgerStore{
		ledgers:  make(map[uuid.UUID]*domain.Ledger),
		citizens: make(map[uuid.UUID]domain.CitizenIdentity),
	}
}

func cloneLedger(l *domain.Ledger) *domain.Ledger {
	c := *l
	c.Payments = make([]domain.PaymentSlot, len(l.Payments))
	for i, p := range l.Payments {
		c.Payments[i] = p
		if p.Date != nil {
			d := *p.Date
			c.Payments[i].Date = &d
		}
	}
	return &c
}

func (s *memLedgerStore) Create(_ context.Context, ledger *domain.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.ledgers {
		if l.CitizenID == ledger.CitizenID && l.Year == ledger.Year {
			return repository.ErrConflict
		}
	}
	s.ledgers[ledger.ID] = cloneLedger(ledger)
	return nil
}

func (s *memLedgerStore) FindByCitizenAndYear(_ context.Context, citizenID uuid.UUID, year int) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.ledgers {
		if l.CitizenID == citizenID && l.Year == year {
			return cloneLedger(l), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memLedgerStore) FindByCitizenAndMonth(_ context.Context, citizenID uuid.UUID, monthLabel string) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.ledgers {
		if l.CitizenID != citizenID {
			continue
		}
		if _, ok := l.Slot(monthLabel); ok {
			return cloneLedger(l), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memLedgerStore) FindAllByCitizen(_ context.Context, citizenID uuid.UUID) ([]*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Ledger
	for _, l := range s.ledgers {
		if l.CitizenID == citizenID {
			out = append(out, cloneLedger(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (s *memLedgerStore) FindAllByYear(_ context.Context, year *int) ([]*domain.LedgerWithCitizen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.LedgerWithCitizen
	for _, l := range s.ledgers {
		if year != nil && l.Year != *year {
			continue
		}
		identity, ok := s.citizens[l.CitizenID]
		if !ok {
			identity = domain.CitizenIdentity{ID: l.CitizenID}
		}
		out = append(out, &domain.LedgerWithCitizen{Ledger: *cloneLedger(l), Citizen: identity})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Citizen.Name < out[j].Citizen.Name })
	return out, nil
}

func (s *memLedgerStore) FindAll(_ context.Context) ([]*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Ledger, 0, len(s.ledgers))
	for _, l := range s.ledgers {
		out = append(out, cloneLedger(l))
	}
	return out, nil
}

func (s *memLedgerStore) UpdateSlotStatus(_ context.Context, ledgerID uuid.UUID, slot domain.PaymentSlot) (*domain.PaymentSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[ledgerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	stored, ok := l.Slot(slot.Month)
	if !ok {
		return nil, repository.ErrNotFound
	}

	if !slot.Paid {
		stored.Paid = false
		stored.Date = nil
	} else {
		if stored.Date == nil {
			d := time.Now()
			if slot.Date != nil {
				d = *slot.Date
			}
			stored.Date = &d
		}
		stored.Paid = true
	}
	l.UpdatedAt = time.Now()

	out := *stored
	return &out, nil
}

// memCitizens is a CitizenRepository over a fixed set of IDs.
type memCitizens struct {
	ids map[uuid.UUID]bool
}

func newMemCitizens(ids ...uuid.UUID) *memCitizens {
	c := &memCitizens{ids: make(map[uuid.UUID]bool)}
	for _, id := range ids {
		c.ids[id] = true
	}
	return c
}

func (c *memCitizens) Create(context.Context, *domain.Citizen) error { return nil }

func (c *memCitizens) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return c.ids[id], nil
}

func (c *memCitizens) FindByIdentifier(context.Context, string) (*domain.Citizen, error) {
	return nil, repository.ErrNotFound
}

func (c *memCitizens) CountByRole(context.Context, string) (int64, error) {
	return int64(len(c.ids)), nil
}

// memStatsCache mirrors the generation-keyed Redis cache.
type memStatsCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[int64]*domain.DashboardStats
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{entries: make(map[int64]*domain.DashboardStats)}
}

func (c *memStatsCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *memStatsCache) Get(_ context.Context, gen int64) (*domain.DashboardStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[gen]
	return stats, ok, nil
}

func (c *memStatsCache) Set(_ context.Context, gen int64, stats *domain.DashboardStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[gen] = stats
	return nil
}

func (c *memStatsCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, c.gen)
	c.gen++
	return nil
}

// memFamilies is an in-memory FamilyMemberRepository.
type memFamilies struct {
	mu      sync.Mutex
	members map[uuid.UUID]*domain.FamilyMember
}

func newMemFamilies() *memFamilies {
	return &memFamilies{members: make(map[uuid.UUID]*domain.FamilyMember)}
}

func (f *memFamilies) Create(_ context.Context, member *domain.FamilyMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[member.ID]; ok {
		return repository.ErrConflict
	}
	m := *member
	f.members[member.ID] = &m
	return nil
}

func (f *memFamilies) FindByID(_ context.Context, id uuid.UUID) (*domain.FamilyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (f *memFamilies) FindByCitizen(_ context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.FamilyMember
	for _, m := range f.members {
		if m.CitizenID == citizenID {
			c := *m
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *memFamilies) Delete(_ context.Context, id, citizenID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok || m.CitizenID != citizenID {
		return repository.ErrNotFound
	}
	delete(f.members, id)
	return nil
}

func (f *memFamilies) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.members)), nil
}
