package domain

import "time"

// Account is the login identity of a staff member. Accounts are created by
// the provisioner, never through a user-facing form.
type Account struct {
	ID           int64
	Username     string
	PasswordHash *string
	Email        string
	DisplayName  string
	IsAdmin      bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// HasUsablePassword reports whether the account can authenticate.
func (a *Account) HasUsablePassword() bool {
	return a != nil && a.PasswordHash != nil && *a.PasswordHash != ""
}
