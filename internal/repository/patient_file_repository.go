package repository

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
)

// PatientFileRepository persists patient file metadata.
type PatientFileRepository interface {
	// Create inserts the record; the store assigns ID and UploadedAt. It returns
	// ErrNotFound for an unknown patient and ErrUploaderNotFound for an unknown uploader.
	Create(ctx context.Context, file *domain.PatientFile) error
	GetByID(ctx context.Context, id int64) (*domain.PatientFile, error)
	ListByPatient(ctx context.Context, patientID int64) ([]domain.PatientFile, error)
}

const uploadedByForeignKey = "patient_files_uploaded_by_fkey"

type patientFileRepository struct {
	db Querier
}

// NewPatientFileRepository constructs repository.
func NewPatientFileRepository(db Querier) PatientFileRepository {
	return &patientFileRepository{db: db}
}

func (r *patientFileRepository) Create(ctx context.Context, file *domain.PatientFile) error {
	const query = `
        INSERT INTO patient_files (patient_id, storage_key, file_name, content_type, size_bytes, uploaded_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, uploaded_at`
	err := r.db.QueryRow(ctx, query,
		file.PatientID,
		file.StorageKey,
		file.FileName,
		file.ContentType,
		file.SizeBytes,
		file.UploadedBy,
	).Scan(&file.ID, &file.UploadedAt)
	if constraint, ok := violatedForeignKey(err); ok {
		if constraint == uploadedByForeignKey {
			return ErrUploaderNotFound
		}
		return ErrNotFound
	}
	return err
}

func (r *patientFileRepository) GetByID(ctx context.Context, id int64) (*domain.PatientFile, error) {
	const query = `
        SELECT id, patient_id, storage_key, file_name, content_type, size_bytes, uploaded_at, uploaded_by
        FROM patient_files WHERE id=$1`
	return scanPatientFile(r.db.QueryRow(ctx, query, id))
}

func (r *patientFileRepository) ListByPatient(ctx context.Context, patientID int64) ([]domain.PatientFile, error) {
	const query = `
        SELECT id, patient_id, storage_key, file_name, content_type, size_bytes, uploaded_at, uploaded_by
        FROM patient_files WHERE patient_id=$1
        ORDER BY uploaded_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PatientFile
	for rows.Next() {
		file, err := scanPatientFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *file)
	}
	return result, rows.Err()
}

func scanPatientFile(row rowScanner) (*domain.PatientFile, error) {
	var file domain.PatientFile
	if err := row.Scan(
		&file.ID,
		&file.PatientID,
		&file.StorageKey,
		&file.FileName,
		&file.ContentType,
		&file.SizeBytes,
		&file.UploadedAt,
		&file.UploadedBy,
	); err != nil {
		return nil, notFound(err)
	}
	return &file, nil
}
