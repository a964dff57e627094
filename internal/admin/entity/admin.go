package entity

import "time"

// Admin represents an account row in the `admins` table. Password holds
// the bcrypt hash, never the clear text.
type Admin struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func NewAdmin(id string, now time.Time) *Admin {
	return &Admin{ID: id, CreatedAt: now}
}

func (a *Admin) FullName() string {
	return a.FirstName + " " + a.LastName
}
