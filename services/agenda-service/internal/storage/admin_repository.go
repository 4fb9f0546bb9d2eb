package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
)

type AdminRepository struct {
	pool *db.Pool
}

func NewAdminRepository(pool *db.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	var u model.AdminUser
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, email, password_hash, role, created_at
		FROM admin_users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if noRows(err) {
		return model.AdminUser{}, ErrNotFound
	}
	if err != nil {
		return model.AdminUser{}, err
	}
	return u, nil
}

// EnsureAdmin seeds the bootstrap admin on startup. Existing accounts are
// left untouched.
func (r *AdminRepository) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO admin_users (id, email, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (email) DO NOTHING
	`, uuid.NewString(), email, passwordHash)
	return err
}
