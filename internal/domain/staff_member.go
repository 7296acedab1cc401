package domain

import "time"

// StaffMember models a clinic employee or practitioner.
type StaffMember struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	Phone     string
	AccountID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAccount reports whether a login account is already linked.
func (s *StaffMember) HasAccount() bool {
	return s != nil && s.AccountID != nil
}
