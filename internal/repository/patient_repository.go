package repository

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
)

// PatientRepository manages persistence for patients and their staff assignments.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	Update(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	List(ctx context.Context) ([]domain.Patient, error)
	ListByStaff(ctx context.Context, staffID int64) ([]domain.Patient, error)
	// SetAssignments replaces the set of staff members assigned to the patient.
	SetAssignments(ctx context.Context, patientID int64, staffIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

const patientColumns = `p.id, p.name, p.age, p.gender, p.medical_history, p.created_at, p.updated_at`

type patientRepository struct {
	db Querier
}

// NewPatientRepository constructs repository.
func NewPatientRepository(db Querier) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	const query = `
        INSERT INTO patients (name, age, gender, medical_history)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.MedicalHistory,
	).Scan(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
}

func (r *patientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	const query = `
        UPDATE patients SET name=$1, age=$2, gender=$3, medical_history=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		patient.Name,
		patient.Age,
		patient.Gender,
		patient.MedicalHistory,
		patient.ID,
	).Scan(&patient.UpdatedAt)
	return notFound(err)
}

func (r *patientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients p WHERE p.id=$1`
	return scanPatient(r.db.QueryRow(ctx, query, id))
}

func (r *patientRepository) List(ctx context.Context) ([]domain.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients p ORDER BY p.name, p.id`
	return r.list(ctx, query)
}

func (r *patientRepository) ListByStaff(ctx context.Context, staffID int64) ([]domain.Patient, error) {
	query := `
        SELECT ` + patientColumns + `
        FROM patients p
        JOIN patient_staff ps ON ps.patient_id = p.id
        WHERE ps.staff_member_id=$1
        ORDER BY p.name, p.id`
	return r.list(ctx, query, staffID)
}

func (r *patientRepository) SetAssignments(ctx context.Context, patientID int64, staffIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM patient_staff WHERE patient_id=$1`, patientID); err != nil {
		return err
	}
	if len(staffIDs) == 0 {
		return nil
	}
	const query = `
        INSERT INTO patient_staff (patient_id, staff_member_id)
        SELECT $1, unnest($2::bigint[])
        ON CONFLICT DO NOTHING`
	_, err := r.db.Exec(ctx, query, patientID, staffIDs)
	if _, ok := violatedForeignKey(err); ok {
		return ErrNotFound
	}
	return err
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepository) list(ctx context.Context, query string, args ...any) ([]domain.Patient, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *patient)
	}
	return result, rows.Err()
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var patient domain.Patient
	if err := row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.Age,
		&patient.Gender,
		&patient.MedicalHistory,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &patient, nil
}
