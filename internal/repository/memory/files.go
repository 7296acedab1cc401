package memory

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

type fileRepo struct{ s *handle }

func (r *fileRepo) Create(_ context.Context, file *domain.PatientFile) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.patients[file.PatientID]; !ok {
			return repository.ErrNotFound
		}
		if file.UploadedBy != nil {
			if _, ok := d.staff[*file.UploadedBy]; !ok {
				return repository.ErrUploaderNotFound
			}
		}
		file.ID = d.nextID()
		file.UploadedAt = r.s.now()
		d.files[file.ID] = *file
		return nil
	})
}

func (r *fileRepo) GetByID(_ context.Context, id int64) (*domain.PatientFile, error) {
	var out domain.PatientFile
	err := r.s.read(func(d *state) error {
		file, ok := d.files[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = file
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *fileRepo) ListByPatient(_ context.Context, patientID int64) ([]domain.PatientFile, error) {
	var out []domain.PatientFile
	err := r.s.read(func(d *state) error {
		owned := make(map[int64]domain.PatientFile)
		for id, file := range d.files {
			if file.PatientID == patientID {
				owned[id] = file
			}
		}
		out = sortedValues(owned, func(a, b domain.PatientFile) int {
			return newerFirst(a.UploadedAt, b.UploadedAt, a.ID, b.ID)
		})
		return nil
	})
	return out, err
}
