package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/entity"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
)

const columns = `id, first_name, last_name, email, phone, role, status, date_joined, date_left, created_at`

// AccountantRepo provides data access for the accountants table using sqlx.
type AccountantRepo struct {
	db sqlx.ExtContext
}

func NewAccountantRepo(db sqlx.ExtContext) *AccountantRepo { return &AccountantRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *AccountantRepo) WithTx(tx *sqlx.Tx) *AccountantRepo { return &AccountantRepo{db: tx} }

// EnsureTable creates the accountants table if not exists (idempotent).
func (r *AccountantRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
CREATE TABLE IF NOT EXISTS accountants (
  id VARCHAR(36) PRIMARY KEY,
  first_name VARCHAR(255) NOT NULL,
  last_name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  phone VARCHAR(255),
  role VARCHAR(32) NOT NULL DEFAULT 'COMPTABLE',
  status VARCHAR(16) NOT NULL DEFAULT 'ACTIF',
  date_joined TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  date_left TIMESTAMP,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}
	const idxLastName = `CREATE INDEX IF NOT EXISTS idx_accountants_last_name ON accountants (last_name)`
	if _, err := r.db.ExecContext(ctx, idxLastName); err != nil {
		return err
	}
	const idxStatus = `CREATE INDEX IF NOT EXISTS idx_accountants_status ON accountants (status)`
	if _, err := r.db.ExecContext(ctx, idxStatus); err != nil {
		return err
	}
	return nil
}

// Create inserts a fully populated accountant row.
func (r *AccountantRepo) Create(ctx context.Context, a *entity.Accountant) error {
	const q = `INSERT INTO accountants (` + columns + `)
		VALUES (:id, :first_name, :last_name, :email, :phone, :role, :status, :date_joined, :date_left, :created_at)`
	_, err := sqlx.NamedExecContext(ctx, r.db, q, a)
	return err
}

// GetByID returns an accountant or sql.ErrNoRows.
func (r *AccountantRepo) GetByID(ctx context.Context, id string) (*entity.Accountant, error) {
	q := r.db.Rebind(`SELECT ` + columns + ` FROM accountants WHERE id = ?`)
	var row entity.Accountant
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns accountants ordered by last name. A non-empty search keeps
// rows whose first name, last name, email or role contains it, ignoring case.
func (r *AccountantRepo) List(ctx context.Context, search string) ([]entity.Accountant, error) {
	q := `SELECT ` + columns + ` FROM accountants`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		pattern := database.ContainsPattern(s)
		q += ` WHERE LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\'
			OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(role) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	q += ` ORDER BY last_name ASC`
	rows := []entity.Accountant{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update writes the mutable columns of a back to its row. Returns rows affected.
func (r *AccountantRepo) Update(ctx context.Context, a *entity.Accountant) (int64, error) {
	const q = `UPDATE accountants SET first_name=:first_name, last_name=:last_name, email=:email,
		phone=:phone, role=:role, status=:status, date_joined=:date_joined, date_left=:date_left
		WHERE id=:id`
	res, err := sqlx.NamedExecContext(ctx, r.db, q, a)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes an accountant; the store cascades to its clients. Returns rows affected.
func (r *AccountantRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM accountants WHERE id = ?`), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of accountants, optionally restricted to a status.
func (r *AccountantRepo) Count(ctx context.Context, status entity.Status) (int64, error) {
	var n int64
	if status == "" {
		err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM accountants`)
		return n, err
	}
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM accountants WHERE status = ?`), string(status))
	return n, err
}
