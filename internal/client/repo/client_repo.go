package repo

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/client/entity"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
)

const columns = `id, first_name, last_name, email, phone, nas_number, address, status, created_at, date_left, accountant_id`

// ClientRepo provides data access for the clients table using sqlx.
type ClientRepo struct {
	db sqlx.ExtContext
}

func NewClientRepo(db sqlx.ExtContext) *ClientRepo { return &ClientRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *ClientRepo) WithTx(tx *sqlx.Tx) *ClientRepo { return &ClientRepo{db: tx} }

// EnsureTable creates the clients table if it does not already exist.
// The accountants table must exist first.
func (r *ClientRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
CREATE TABLE IF NOT EXISTS clients (
  id VARCHAR(36) PRIMARY KEY,
  first_name VARCHAR(255) NOT NULL,
  last_name VARCHAR(255) NOT NULL,
  email VARCHAR(255) NOT NULL DEFAULT '',
  phone VARCHAR(255) NOT NULL DEFAULT '',
  nas_number VARCHAR(32) NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  status VARCHAR(16) NOT NULL DEFAULT 'ACTIVE',
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  date_left TIMESTAMP,
  accountant_id VARCHAR(36) REFERENCES accountants(id) ON DELETE CASCADE
)`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return err
	}
	const idxNAS = `CREATE INDEX IF NOT EXISTS idx_clients_nas_number ON clients (nas_number)`
	if _, err := r.db.ExecContext(ctx, idxNAS); err != nil {
		return err
	}
	const idxAccountant = `CREATE INDEX IF NOT EXISTS idx_clients_accountant_id ON clients (accountant_id)`
	if _, err := r.db.ExecContext(ctx, idxAccountant); err != nil {
		return err
	}
	const idxLastName = `CREATE INDEX IF NOT EXISTS idx_clients_last_name ON clients (last_name)`
	if _, err := r.db.ExecContext(ctx, idxLastName); err != nil {
		return err
	}
	return nil
}

// Create inserts a fully populated client row.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	const q = `INSERT INTO clients (` + columns + `)
		VALUES (:id, :first_name, :last_name, :email, :phone, :nas_number, :address, :status, :created_at, :date_left, :accountant_id)`
	_, err := sqlx.NamedExecContext(ctx, r.db, q, c)
	return err
}

// GetByID returns a client or sql.ErrNoRows.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	q := r.db.Rebind(`SELECT ` + columns + ` FROM clients WHERE id = ?`)
	var row entity.Client
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns clients ordered by last name. A non-empty search keeps rows
// whose first name, last name, email or assigned accountant's name
// contains it, ignoring case.
func (r *ClientRepo) List(ctx context.Context, search string) ([]entity.Client, error) {
	q := `SELECT c.id, c.first_name, c.last_name, c.email, c.phone, c.nas_number, c.address,
			c.status, c.created_at, c.date_left, c.accountant_id
		FROM clients c`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		pattern := database.ContainsPattern(s)
		q += ` LEFT JOIN accountants a ON a.id = c.accountant_id
		WHERE LOWER(c.first_name) LIKE ? ESCAPE '\' OR LOWER(c.last_name) LIKE ? ESCAPE '\'
			OR LOWER(c.email) LIKE ? ESCAPE '\'
			OR LOWER(a.first_name || ' ' || a.last_name) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern, pattern)
	}
	q += ` ORDER BY c.last_name ASC`
	rows := []entity.Client{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByAccountants returns the clients assigned to any of the given
// accountants, ordered by last name.
func (r *ClientRepo) ListByAccountants(ctx context.Context, accountantIDs []string) ([]entity.Client, error) {
	rows := []entity.Client{}
	if len(accountantIDs) == 0 {
		return rows, nil
	}
	q, args, err := sqlx.In(`SELECT `+columns+` FROM clients WHERE accountant_id IN (?) ORDER BY last_name ASC`, accountantIDs)
	if err != nil {
		return nil, err
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// AccountantRefs loads the display fields of the given accountants keyed by id.
func (r *ClientRepo) AccountantRefs(ctx context.Context, ids []string) (map[string]entity.AccountantRef, error) {
	out := make(map[string]entity.AccountantRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT id, first_name, last_name FROM accountants WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var refs []entity.AccountantRef
	if err := sqlx.SelectContext(ctx, r.db, &refs, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, ref := range refs {
		out[ref.ID] = ref
	}
	return out, nil
}

// Update writes the mutable columns of c back to its row. Returns rows affected.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) (int64, error) {
	const q = `UPDATE clients SET first_name=:first_name, last_name=:last_name, email=:email, phone=:phone,
		nas_number=:nas_number, address=:address, status=:status, created_at=:created_at,
		date_left=:date_left, accountant_id=:accountant_id
		WHERE id=:id`
	res, err := sqlx.NamedExecContext(ctx, r.db, q, c)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a client. Returns rows affected.
func (r *ClientRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM clients WHERE id = ?`), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of clients.
func (r *ClientRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM clients`)
	return n, err
}

// CountByAccountant returns the number of clients assigned to an accountant.
func (r *ClientRepo) CountByAccountant(ctx context.Context, accountantID string) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM clients WHERE accountant_id = ?`), accountantID)
	return n, err
}
