package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/repository"
	customError "github.com/segyhp/membership-fees/pkg/errors"
)

const msgFamilyFieldsRequired = "Name, Relation and Age are required"

// FamilyService manages the dependants registered under a citizen. Every
// write changes the dashboard demographics, so it invalidates the stats cache.
type FamilyService struct {
	families repository.FamilyMemberRepository
	citizens repository.CitizenRepository
	cache    StatsCache
	logger   *slog.Logger
	now      func() time.Time
}

func NewFamilyService(
	families repository.FamilyMemberRepository,
	citizens repository.CitizenRepository,
	cache StatsCache,
	logger *slog.Logger,
) *FamilyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamilyService{
		families: families,
		citizens: citizens,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *FamilyService) AddFamilyMember(ctx context.Context, citizenID uuid.UUID, req domain.AddFamilyMemberRequest) (*domain.FamilyMember, error) {
	name := strings.TrimSpace(req.Name)
	relation := strings.TrimSpace(req.Relation)
	if citizenID == uuid.Nil {
		return nil, customError.WrapValidation("citizenId is required")
	}
	if name == "" || relation == "" || req.Age == 0 {
		return nil, customError.WrapValidation(msgFamilyFieldsRequired)
	}
	if req.Age < 0 || req.Age > 150 {
		return nil, customError.WrapValidation("age must be between 1 and 150")
	}

	exists, err := s.citizens.Exists(ctx, citizenID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !exists {
		return nil, customError.WrapCitizenNotFound(citizenID.String())
	}

	member := &domain.FamilyMember{
		ID:            uuid.New(),
		CitizenID:     citizenID,
		Name:          name,
		Relation:      relation,
		Age:           req.Age,
		MaritalStatus: optional(req.MaritalStatus),
		SpouseName:    optional(req.SpouseName),
		BloodGroup:    optional(req.BloodGroup),
		Studying:      optional(req.Studying),
		Working:       optional(req.Working),
		CreatedAt:     s.now(),
	}
	if err := s.families.Create(ctx, member); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateStats(ctx)
	s.logger.InfoContext(ctx, "Family member added",
		"citizen_id", citizenID,
		"member_id", member.ID,
		"relation", relation)

	return member, nil
}

// ListFamilyMembers never returns a nil slice.
func (s *FamilyService) ListFamilyMembers(ctx context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error) {
	members, err := s.families.FindByCitizen(ctx, citizenID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if members == nil {
		members = []*domain.FamilyMember{}
	}
	return members, nil
}

// RemoveFamilyMember deletes one of the citizen's own dependants. A member
// registered under someone else is reported as not authorized.
func (s *FamilyService) RemoveFamilyMember(ctx context.Context, citizenID, memberID uuid.UUID) error {
	member, err := s.families.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapFamilyMemberNotFound()
		}
		return customError.WrapDatabaseError(err)
	}
	if member.CitizenID != citizenID {
		return customError.WrapUnauthorized("Not authorized")
	}

	if err := s.families.Delete(ctx, memberID, citizenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapFamilyMemberNotFound()
		}
		return customError.WrapDatabaseError(err)
	}

	s.invalidateStats(ctx)
	s.logger.InfoContext(ctx, "Family member removed",
		"citizen_id", citizenID,
		"member_id", memberID)
	return nil
}

func (s *FamilyService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate stats cache", "error", err)
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
