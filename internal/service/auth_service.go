package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/membership-fees/internal/auth"
	"github.com/segyhp/membership-fees/internal/domain"
	"github.com/segyhp/membership-fees/internal/repository"
	customError "github.com/segyhp/membership-fees/pkg/errors"
)

// TokenIssuer signs access tokens for authenticated principals.
type TokenIssuer interface {
	Issue(subject uuid.UUID, role string) (string, error)
}

type AuthService struct {
	admins   repository.AdminRepository
	citizens repository.CitizenRepository
	tokens   TokenIssuer
	logger   *slog.Logger
	now      func() time.Time
	verify   func(password, hash string) error
}

func NewAuthService(
	admins repository.AdminRepository,
	citizens repository.CitizenRepository,
	tokens TokenIssuer,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		admins:   admins,
		citizens: citizens,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
		verify:   auth.CheckPassword,
	}
}

func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (*domain.AdminLoginResponse, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.rejectUnknown(password)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.verify(password, admin.PasswordHash); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(admin.ID, admin.Role)
	if err != nil {
		return nil, err
	}

	return &domain.AdminLoginResponse{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
		Token:    token,
	}, nil
}

// LoginCitizen accepts either the membership ID or the mobile number.
func (s *AuthService) LoginCitizen(ctx context.Context, identifier, password string) (*domain.CitizenLoginResponse, error) {
	citizen, err := s.citizens.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.rejectUnknown(password)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.verify(password, citizen.PasswordHash); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(citizen.ID, citizen.Role)
	if err != nil {
		return nil, err
	}

	return &domain.CitizenLoginResponse{
		ID:           citizen.ID,
		Name:         citizen.Name,
		MembershipID: citizen.MembershipID,
		Role:         citizen.Role,
		Token:        token,
	}, nil
}

// rejectUnknown spends one bcrypt comparison so an unknown account costs the
// same as a wrong password.
func (s *AuthService) rejectUnknown(password string) error {
	_ = s.verify(password, auth.UnknownAccountHash())
	return customError.WrapInvalidCredentials()
}

// RegisterAdmin creates an admin account. Used by feectl seed-admin.
func (s *AuthService) RegisterAdmin(ctx context.Context, username, password string) (*domain.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, customError.WrapValidation("username is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    s.now(),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, customError.WrapValidation("Admin already exists")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "Admin registered", "username", username)
	return admin, nil
}

// RegisterCitizen creates a citizen account. Used by feectl add-citizen.
func (s *AuthService) RegisterCitizen(ctx context.Context, in domain.NewCitizen) (*domain.Citizen, error) {
	if strings.TrimSpace(in.MembershipID) == "" || strings.TrimSpace(in.Mobile) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, customError.WrapValidation("membershipId, mobile and name are required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	citizen := &domain.Citizen{
		ID:           uuid.New(),
		MembershipID: strings.TrimSpace(in.MembershipID),
		Mobile:       strings.TrimSpace(in.Mobile),
		Name:         strings.TrimSpace(in.Name),
		Address:      in.Address,
		PasswordHash: hash,
		Role:         domain.RoleCitizen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.BloodGroup != "" {
		bg := in.BloodGroup
		citizen.BloodGroup = &bg
	}

	if err := s.citizens.Create(ctx, citizen); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, customError.WrapValidation("Citizen with this membership ID already exists")
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "Citizen registered", "membership_id", citizen.MembershipID)
	return citizen, nil
}
