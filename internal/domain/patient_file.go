package domain

import "time"

// PatientFile references an uploaded blob attached to a patient.
// UploadedBy is nil when the uploader had no staff record or was deleted.
type PatientFile struct {
	ID          int64
	PatientID   int64
	StorageKey  string
	FileName    string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
	UploadedBy  *int64
}
