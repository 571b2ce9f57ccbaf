package domain

import "time"

// User represents a registered account.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	IsAdmin      bool   `json:"isAdmin"`
	Disabled     bool   `json:"disabled"`

	// One-time password-reset code. Both fields are set when a reset is
	// requested and cleared after a successful reset or on expiry.
	SecurityCode          *string    `json:"-"`
	SecurityCodeCreatedAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
