package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStaffSaved          EventType = "staff_saved"
	EventStaffDeleted        EventType = "staff_deleted"
	EventAccountProvisioned  EventType = "account_provisioned"
	EventPatientSaved        EventType = "patient_saved"
	EventPatientDeleted      EventType = "patient_deleted"
	EventPatientFileUploaded EventType = "patient_file_uploaded"
)

// AllTypes lists every event type in publication order of a typical workflow.
var AllTypes = []EventType{
	EventStaffSaved,
	EventAccountProvisioned,
	EventStaffDeleted,
	EventPatientSaved,
	EventPatientDeleted,
	EventPatientFileUploaded,
}

// Event represents a domain event emitted by services after a committed write.
type Event struct {
	Type      EventType   `json:"type"`
	EntityID  int64       `json:"entity_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// StaffSavedPayload payload.
type StaffSavedPayload struct {
	Created bool `json:"created"`
}

// AccountProvisionedPayload payload.
type AccountProvisionedPayload struct {
	StaffMemberID int64  `json:"staff_member_id"`
	Username      string `json:"username"`
	HasPassword   bool   `json:"has_password"`
}

// PatientSavedPayload payload.
type PatientSavedPayload struct {
	Created       bool `json:"created"`
	AssignedCount int  `json:"assigned_count"`
}

// PatientFileUploadedPayload payload.
type PatientFileUploadedPayload struct {
	PatientID  int64  `json:"patient_id"`
	FileName   string `json:"file_name"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedBy *int64 `json:"uploaded_by,omitempty"`
}
