package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/segyhp/membership-fees/internal/domain"
)

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
		admin.Role,
		admin.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("admin %s: %w", admin.Username, ErrConflict)
	}
	return err
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM admins
		WHERE username = $1
	`

	var admin domain.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		return nil, notFound(err)
	}
	return &admin, nil
}
