package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/casefile/entity"
)

// CaseFileRepo provides data access for the documents, deadlines and alerts tables.
type CaseFileRepo struct {
	db sqlx.ExtContext
}

func NewCaseFileRepo(db sqlx.ExtContext) *CaseFileRepo { return &CaseFileRepo{db: db} }

// EnsureTables creates the case file tables if not exists (idempotent).
// The accountants and clients tables must exist first.
func (r *CaseFileRepo) EnsureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
  id VARCHAR(36) PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  type VARCHAR(64) NOT NULL,
  size BIGINT NOT NULL,
  file_path VARCHAR(1024) NOT NULL,
  status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
  uploaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  client_id VARCHAR(36) NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  accountant_id VARCHAR(36) NOT NULL REFERENCES accountants(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_client_id ON documents (client_id)`,
		`CREATE TABLE IF NOT EXISTS deadlines (
  id VARCHAR(36) PRIMARY KEY,
  title VARCHAR(255) NOT NULL,
  due_date TIMESTAMP NOT NULL,
  priority VARCHAR(16) NOT NULL DEFAULT 'MEDIUM',
  status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
  client_id VARCHAR(36) NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
  accountant_id VARCHAR(36) NOT NULL REFERENCES accountants(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_deadlines_due_date ON deadlines (due_date)`,
		`CREATE TABLE IF NOT EXISTS alerts (
  id VARCHAR(36) PRIMARY KEY,
  type VARCHAR(64) NOT NULL,
  title VARCHAR(255) NOT NULL,
  message TEXT NOT NULL,
  priority VARCHAR(16) NOT NULL DEFAULT 'MEDIUM',
  "read" BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  accountant_id VARCHAR(36) NOT NULL REFERENCES accountants(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_accountant_id ON alerts (accountant_id)`,
	}
	for _, q := range stmts {
		if _, err := r.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *CaseFileRepo) CreateDocument(ctx context.Context, d *entity.Document) error {
	const q = `INSERT INTO documents (id, name, type, size, file_path, status, uploaded_at, client_id, accountant_id)
		VALUES (:id, :name, :type, :size, :file_path, :status, :uploaded_at, :client_id, :accountant_id)`
	_, err := sqlx.NamedExecContext(ctx, r.db, q, d)
	return err
}

func (r *CaseFileRepo) CreateDeadline(ctx context.Context, d *entity.Deadline) error {
	const q = `INSERT INTO deadlines (id, title, due_date, priority, status, client_id, accountant_id)
		VALUES (:id, :title, :due_date, :priority, :status, :client_id, :accountant_id)`
	_, err := sqlx.NamedExecContext(ctx, r.db, q, d)
	return err
}

func (r *CaseFileRepo) CreateAlert(ctx context.Context, a *entity.Alert) error {
	const q = `INSERT INTO alerts (id, type, title, message, priority, "read", created_at, accountant_id)
		VALUES (:id, :type, :title, :message, :priority, :read, :created_at, :accountant_id)`
	_, err := sqlx.NamedExecContext(ctx, r.db, q, a)
	return err
}

// Counts returns the number of documents, deadlines and alerts.
func (r *CaseFileRepo) Counts(ctx context.Context) (documents, deadlines, alerts int64, err error) {
	if err = sqlx.GetContext(ctx, r.db, &documents, `SELECT COUNT(*) FROM documents`); err != nil {
		return
	}
	if err = sqlx.GetContext(ctx, r.db, &deadlines, `SELECT COUNT(*) FROM deadlines`); err != nil {
		return
	}
	err = sqlx.GetContext(ctx, r.db, &alerts, `SELECT COUNT(*) FROM alerts`)
	return
}
