package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/admin/entity"
)

const columns = `id, first_name, last_name, email, password, created_at`

// AdminRepo provides data access for admins table using sqlx.
type AdminRepo struct {
	db sqlx.ExtContext
}

func NewAdminRepo(db sqlx.ExtContext) *AdminRepo { return &AdminRepo{db: db} }

// EnsureTable creates the admins table if not exists (idempotent).
func (r *AdminRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS admins (
  id VARCHAR(36) PRIMARY KEY,
  first_name VARCHAR(255) NOT NULL,
  last_name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password VARCHAR(255) NOT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new admin row.
func (r *AdminRepo) Create(ctx context.Context, a *entity.Admin) error {
	const q = `INSERT INTO admins (` + columns + `)
		VALUES (:id, :first_name, :last_name, :email, :password, :created_at)`
	_, err := sqlx.NamedExecContext(ctx, r.db, q, a)
	return err
}

// GetByEmail returns the admin with exactly this email or sql.ErrNoRows.
func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	q := r.db.Rebind(`SELECT ` + columns + ` FROM admins WHERE email = ?`)
	var row entity.Admin
	if err := sqlx.GetContext(ctx, r.db, &row, q, email); err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByID fetches a full admin row.
func (r *AdminRepo) GetByID(ctx context.Context, id string) (*entity.Admin, error) {
	q := r.db.Rebind(`SELECT ` + columns + ` FROM admins WHERE id = ?`)
	var row entity.Admin
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdatePassword replaces the stored hash.
func (r *AdminRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	q := r.db.Rebind(`UPDATE admins SET password = ? WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q, hash, id)
	return err
}
