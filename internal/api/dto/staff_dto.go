package dto

import "time"

// StaffResponse summarises a staff member.
type StaffResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone"`
	AccountID *int64    `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StaffSaveResponse is returned from create and update.
type StaffSaveResponse struct {
	Staff   StaffResponse    `json:"staff"`
	Account *AccountResponse `json:"account,omitempty"`
}

// StaffDetailResponse provides full staff info.
type StaffDetailResponse struct {
	StaffResponse
	Account  *AccountResponse  `json:"account,omitempty"`
	Shifts   []ShiftResponse   `json:"shifts"`
	Patients []PatientResponse `json:"patients"`
}

// ShiftResponse describes a shift.
type ShiftResponse struct {
	ID            int64     `json:"id"`
	StaffMemberID int64     `json:"staff_member_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Notes         string    `json:"notes"`
}
