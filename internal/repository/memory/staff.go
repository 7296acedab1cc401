package memory

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

type staffRepo struct{ s *handle }

func (r *staffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	return r.s.write(func(d *state) error {
		if staff.AccountID != nil {
			if err := checkAccountLink(d, 0, *staff.AccountID); err != nil {
				return err
			}
		}
		now := r.s.now()
		staff.ID = d.nextID()
		staff.CreatedAt = now
		staff.UpdatedAt = now
		d.staff[staff.ID] = *staff
		return nil
	})
}

func (r *staffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	return r.s.write(func(d *state) error {
		existing, ok := d.staff[staff.ID]
		if !ok {
			return repository.ErrNotFound
		}
		existing.Name = staff.Name
		existing.Email = staff.Email
		existing.Role = staff.Role
		existing.Phone = staff.Phone
		existing.UpdatedAt = r.s.now()
		staff.UpdatedAt = existing.UpdatedAt
		d.staff[staff.ID] = existing
		return nil
	})
}

func (r *staffRepo) LinkAccount(_ context.Context, staffID, accountID int64) error {
	return r.s.write(func(d *state) error {
		staff, ok := d.staff[staffID]
		if !ok {
			return repository.ErrNotFound
		}
		if err := checkAccountLink(d, staffID, accountID); err != nil {
			return err
		}
		staff.AccountID = &accountID
		d.staff[staffID] = staff
		return nil
	})
}

func (r *staffRepo) GetByID(_ context.Context, id int64) (*domain.StaffMember, error) {
	var out domain.StaffMember
	err := r.s.read(func(d *state) error {
		staff, ok := d.staff[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = staff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *staffRepo) GetByAccountID(_ context.Context, accountID int64) (*domain.StaffMember, error) {
	var out *domain.StaffMember
	err := r.s.read(func(d *state) error {
		for _, staff := range d.staff {
			if staff.AccountID != nil && *staff.AccountID == accountID {
				found := staff
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *staffRepo) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	err := r.s.read(func(d *state) error {
		for _, id := range ids {
			if _, ok := d.staff[id]; ok {
				out = append(out, id)
			}
		}
		return nil
	})
	return out, err
}

func (r *staffRepo) List(_ context.Context) ([]domain.StaffMember, error) {
	var out []domain.StaffMember
	err := r.s.read(func(d *state) error {
		out = sortedValues(d.staff, compareStaff)
		return nil
	})
	return out, err
}

func (r *staffRepo) ListByPatient(_ context.Context, patientID int64) ([]domain.StaffMember, error) {
	var out []domain.StaffMember
	err := r.s.read(func(d *state) error {
		assigned := make(map[int64]domain.StaffMember)
		for staffID := range d.assignments[patientID] {
			if staff, ok := d.staff[staffID]; ok {
				assigned[staffID] = staff
			}
		}
		out = sortedValues(assigned, compareStaff)
		return nil
	})
	return out, err
}

func (r *staffRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.staff[id]; !ok {
			return repository.ErrNotFound
		}
		deleteStaff(d, id)
		return nil
	})
}

// deleteStaff mirrors the schema's foreign keys: shifts and assignments
// cascade, file uploader references are set to NULL.
func deleteStaff(d *state, id int64) {
	delete(d.staff, id)
	for shiftID, shift := range d.shifts {
		if shift.StaffMemberID == id {
			delete(d.shifts, shiftID)
		}
	}
	for _, set := range d.assignments {
		delete(set, id)
	}
	for fileID, file := range d.files {
		if file.UploadedBy != nil && *file.UploadedBy == id {
			file.UploadedBy = nil
			d.files[fileID] = file
		}
	}
}

func checkAccountLink(d *state, staffID, accountID int64) error {
	if _, ok := d.accounts[accountID]; !ok {
		return repository.ErrNotFound
	}
	for id, staff := range d.staff {
		if id != staffID && staff.AccountID != nil && *staff.AccountID == accountID {
			return errAccountLinked
		}
	}
	return nil
}

func compareStaff(a, b domain.StaffMember) int {
	return byNameThenID(a.Name, b.Name, a.ID, b.ID)
}
