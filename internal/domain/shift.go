package domain

import "time"

// Shift is a block of working time for one staff member.
type Shift struct {
	ID            int64
	StaffMemberID int64
	StartTime     time.Time
	EndTime       time.Time
	Notes         string
}
