// Package entity holds the per-client case file records: uploaded
// documents, filing deadlines and accountant alerts. Their tables are
// created with the rest of the schema; no service reads them yet.
package entity

import "time"

// Defaults shared by the case file tables.
const (
	StatusPending  = "PENDING"
	PriorityMedium = "MEDIUM"
)

type Document struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Type         string    `db:"type" json:"type"`
	Size         int64     `db:"size" json:"size"`
	FilePath     string    `db:"file_path" json:"file_path"`
	Status       string    `db:"status" json:"status"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
	ClientID     string    `db:"client_id" json:"client_id"`
	AccountantID string    `db:"accountant_id" json:"accountant_id"`
}

type Deadline struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	DueDate      time.Time `db:"due_date" json:"due_date"`
	Priority     string    `db:"priority" json:"priority"`
	Status       string    `db:"status" json:"status"`
	ClientID     string    `db:"client_id" json:"client_id"`
	AccountantID string    `db:"accountant_id" json:"accountant_id"`
}

type Alert struct {
	ID           string    `db:"id" json:"id"`
	Type         string    `db:"type" json:"type"`
	Title        string    `db:"title" json:"title"`
	Message      string    `db:"message" json:"message"`
	Priority     string    `db:"priority" json:"priority"`
	Read         bool      `db:"read" json:"read"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	AccountantID string    `db:"accountant_id" json:"accountant_id"`
}
