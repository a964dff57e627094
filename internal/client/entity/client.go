package entity

import "time"

// StatusActive is the status every new client starts with.
const StatusActive = "ACTIVE"

// Client represents a row in the `clients` table. A client belongs to at
// most one accountant and disappears with it.
type Client struct {
	ID           string     `db:"id" json:"id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone"`
	NASNumber    string     `db:"nas_number" json:"nas_number"`
	Address      string     `db:"address" json:"address"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DateLeft     *time.Time `db:"date_left" json:"date_left,omitempty"`
	AccountantID *string    `db:"accountant_id" json:"accountant_id,omitempty"`

	// Accountant is only populated when the caller asks for it.
	Accountant *AccountantRef `db:"-" json:"accountant,omitempty"`
}

// AccountantRef is the slice of an accountant a client listing needs.
type AccountantRef struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// NewClient returns a record carrying the column defaults.
func NewClient(id string, now time.Time) *Client {
	return &Client{ID: id, Status: StatusActive, CreatedAt: now}
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// AccountantName is the display name of the assigned accountant, or
// "Non assigné" when there is none. Accountant must have been loaded.
func (c *Client) AccountantName() string {
	if c.Accountant == nil {
		return "Non assigné"
	}
	return c.Accountant.FirstName + " " + c.Accountant.LastName
}
