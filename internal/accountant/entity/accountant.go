package entity

import (
	"time"

	clientent "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/entity"
)

// Role is the position an accountant holds in the firm.
type Role string

const (
	RoleAccountant Role = "COMPTABLE"
	RoleSenior     Role = "COMPTABLE_SENIOR"
	RoleIntern     Role = "STAGIAIRE"
)

// Status is the employment status of an accountant.
type Status string

const (
	StatusActive   Status = "ACTIF"
	StatusInactive Status = "INACTIF"
)

// Accountant represents a staff row in the `accountants` table.
type Accountant struct {
	ID         string     `db:"id" json:"id"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Email      string     `db:"email" json:"email"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Role       Role       `db:"role" json:"role"`
	Status     Status     `db:"status" json:"status"`
	DateJoined time.Time  `db:"date_joined" json:"date_joined"`
	DateLeft   *time.Time `db:"date_left" json:"date_left,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`

	// Clients is only populated when the caller asks for it.
	Clients []clientent.Client `db:"-" json:"clients,omitempty"`
}

// NewAccountant returns a record carrying the column defaults.
func NewAccountant(id string, now time.Time) *Accountant {
	return &Accountant{
		ID:         id,
		Role:       RoleAccountant,
		Status:     StatusActive,
		DateJoined: now,
		CreatedAt:  now,
	}
}

func (a *Accountant) FullName() string {
	return a.FirstName + " " + a.LastName
}

func (a *Accountant) IsActive() bool {
	return a.Status == StatusActive
}

// StillEmployed reports whether no departure date has been recorded.
func (a *Accountant) StillEmployed() bool {
	return a.DateLeft == nil
}
