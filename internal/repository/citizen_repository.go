package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/segyhp/membership-fees/internal/domain"
)

type citizenRepository struct {
	db *sqlx.DB
}

func NewCitizenRepository(db *sqlx.DB) CitizenRepository {
	return &citizenRepository{db: db}
}

func (r *citizenRepository) Create(ctx context.Context, citizen *domain.Citizen) error {
	query := `
		INSERT INTO citizens (id, membership_id, mobile, name, address, blood_group, password_hash, role, created_at, updated_at)
		VALUES (:id, :membership_id, :mobile, :name, :address, :blood_group, :password_hash, :role, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, citizen)
	if isUniqueViolation(err) {
		return fmt.Errorf("citizen %s: %w", citizen.MembershipID, ErrConflict)
	}
	return err
}

func (r *citizenRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM citizens WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *citizenRepository) FindByIdentifier(ctx context.Context, identifier string) (*domain.Citizen, error) {
	query := `
		SELECT id, membership_id, mobile, name, address, blood_group, password_hash, role, created_at, updated_at
		FROM citizens
		WHERE membership_id = $1 OR mobile = $1
		ORDER BY (membership_id = $1) DESC
		LIMIT 1
	`

	var citizen domain.Citizen
	if err := r.db.GetContext(ctx, &citizen, query, identifier); err != nil {
		return nil, notFound(err)
	}
	return &citizen, nil
}

func (r *citizenRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	query := `SELECT COUNT(*) FROM citizens WHERE role = $1`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, role); err != nil {
		return 0, err
	}
	return count, nil
}

type familyMemberRepository struct {
	db *sqlx.DB
}

func NewFamilyMemberRepository(db *sqlx.DB) FamilyMemberRepository {
	return &familyMemberRepository{db: db}
}

const familyMemberColumns = `id, citizen_id, name, relation, age, marital_status, spouse_name, blood_group, studying, working, created_at`

func (r *familyMemberRepository) Create(ctx context.Context, member *domain.FamilyMember) error {
	query := `
		INSERT INTO family_members (id, citizen_id, name, relation, age, marital_status, spouse_name, blood_group, studying, working, created_at)
		VALUES (:id, :citizen_id, :name, :relation, :age, :marital_status, :spouse_name, :blood_group, :studying, :working, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, member)
	if isUniqueViolation(err) {
		return fmt.Errorf("family member %s: %w", member.ID, ErrConflict)
	}
	return err
}

func (r *familyMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FamilyMember, error) {
	query := `SELECT ` + familyMemberColumns + ` FROM family_members WHERE id = $1`

	var member domain.FamilyMember
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, notFound(err)
	}
	return &member, nil
}

func (r *familyMemberRepository) FindByCitizen(ctx context.Context, citizenID uuid.UUID) ([]*domain.FamilyMember, error) {
	query := `SELECT ` + familyMemberColumns + ` FROM family_members WHERE citizen_id = $1 ORDER BY created_at, id`

	members := []*domain.FamilyMember{}
	if err := r.db.SelectContext(ctx, &members, query, citizenID); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *familyMemberRepository) Delete(ctx context.Context, id, citizenID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM family_members WHERE id = $1 AND citizen_id = $2`, id, citizenID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *familyMemberRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM family_members`); err != nil {
		return 0, err
	}
	return count, nil
}
