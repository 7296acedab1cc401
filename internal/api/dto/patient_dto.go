package dto

import (
	"time"

	"github.com/clinic-kit/medapp/internal/domain"
)

// PatientResponse summarises a patient.
type PatientResponse struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Age            int           `json:"age"`
	Gender         domain.Gender `json:"gender"`
	MedicalHistory string        `json:"medical_history"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// PatientDetailResponse provides full patient info.
type PatientDetailResponse struct {
	PatientResponse
	Files []PatientFileResponse `json:"files"`
	Staff []StaffResponse       `json:"assigned_staff"`
}

// PatientFileResponse describes an uploaded file. DownloadURL points at the
// authenticated download endpoint.
type PatientFileResponse struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  *int64    `json:"uploaded_by"`
	DownloadURL string    `json:"download_url"`
}
