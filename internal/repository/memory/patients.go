package memory

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

type patientRepo struct{ s *handle }

func (r *patientRepo) Create(_ context.Context, patient *domain.Patient) error {
	return r.s.write(func(d *state) error {
		now := r.s.now()
		patient.ID = d.nextID()
		patient.CreatedAt = now
		patient.UpdatedAt = now
		d.patients[patient.ID] = *patient
		return nil
	})
}

func (r *patientRepo) Update(_ context.Context, patient *domain.Patient) error {
	return r.s.write(func(d *state) error {
		existing, ok := d.patients[patient.ID]
		if !ok {
			return repository.ErrNotFound
		}
		existing.Name = patient.Name
		existing.Age = patient.Age
		existing.Gender = patient.Gender
		existing.MedicalHistory = patient.MedicalHistory
		existing.UpdatedAt = r.s.now()
		patient.UpdatedAt = existing.UpdatedAt
		d.patients[patient.ID] = existing
		return nil
	})
}

func (r *patientRepo) GetByID(_ context.Context, id int64) (*domain.Patient, error) {
	var out domain.Patient
	err := r.s.read(func(d *state) error {
		patient, ok := d.patients[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = patient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *patientRepo) List(_ context.Context) ([]domain.Patient, error) {
	var out []domain.Patient
	err := r.s.read(func(d *state) error {
		out = sortedValues(d.patients, comparePatients)
		return nil
	})
	return out, err
}

func (r *patientRepo) ListByStaff(_ context.Context, staffID int64) ([]domain.Patient, error) {
	var out []domain.Patient
	err := r.s.read(func(d *state) error {
		assigned := make(map[int64]domain.Patient)
		for patientID, set := range d.assignments {
			if _, ok := set[staffID]; !ok {
				continue
			}
			if patient, ok := d.patients[patientID]; ok {
				assigned[patientID] = patient
			}
		}
		out = sortedValues(assigned, comparePatients)
		return nil
	})
	return out, err
}

func (r *patientRepo) SetAssignments(_ context.Context, patientID int64, staffIDs []int64) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.patients[patientID]; !ok {
			return repository.ErrNotFound
		}
		set := make(map[int64]struct{}, len(staffIDs))
		for _, id := range staffIDs {
			if _, ok := d.staff[id]; !ok {
				return repository.ErrNotFound
			}
			set[id] = struct{}{}
		}
		d.assignments[patientID] = set
		return nil
	})
}

func (r *patientRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.patients[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.patients, id)
		delete(d.assignments, id)
		for fileID, file := range d.files {
			if file.PatientID == id {
				delete(d.files, fileID)
			}
		}
		return nil
	})
}

func comparePatients(a, b domain.Patient) int {
	return byNameThenID(a.Name, b.Name, a.ID, b.ID)
}
