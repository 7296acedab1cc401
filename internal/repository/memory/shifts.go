package memory

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

type shiftRepo struct{ s *handle }

func (r *shiftRepo) Create(_ context.Context, shift *domain.Shift) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.staff[shift.StaffMemberID]; !ok {
			return repository.ErrNotFound
		}
		shift.ID = d.nextID()
		d.shifts[shift.ID] = *shift
		return nil
	})
}

func (r *shiftRepo) GetByID(_ context.Context, id int64) (*domain.Shift, error) {
	var out domain.Shift
	err := r.s.read(func(d *state) error {
		shift, ok := d.shifts[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = shift
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *shiftRepo) List(_ context.Context) ([]domain.Shift, error) {
	var out []domain.Shift
	err := r.s.read(func(d *state) error {
		out = sortedValues(d.shifts, compareShifts)
		return nil
	})
	return out, err
}

func (r *shiftRepo) ListByStaff(_ context.Context, staffID int64) ([]domain.Shift, error) {
	var out []domain.Shift
	err := r.s.read(func(d *state) error {
		owned := make(map[int64]domain.Shift)
		for id, shift := range d.shifts {
			if shift.StaffMemberID == staffID {
				owned[id] = shift
			}
		}
		out = sortedValues(owned, compareShifts)
		return nil
	})
	return out, err
}

func (r *shiftRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.shifts[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.shifts, id)
		return nil
	})
}

func compareShifts(a, b domain.Shift) int {
	return newerFirst(a.StartTime, b.StartTime, a.ID, b.ID)
}
