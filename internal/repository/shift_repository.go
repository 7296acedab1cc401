package repository

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
)

// ShiftRepository manages persistence for shifts.
type ShiftRepository interface {
	Create(ctx context.Context, shift *domain.Shift) error
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
	List(ctx context.Context) ([]domain.Shift, error)
	ListByStaff(ctx context.Context, staffID int64) ([]domain.Shift, error)
	Delete(ctx context.Context, id int64) error
}

type shiftRepository struct {
	db Querier
}

// NewShiftRepository constructs repository.
func NewShiftRepository(db Querier) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) Create(ctx context.Context, shift *domain.Shift) error {
	const query = `
        INSERT INTO shifts (staff_member_id, start_time, end_time, notes)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		shift.StaffMemberID,
		shift.StartTime,
		shift.EndTime,
		shift.Notes,
	).Scan(&shift.ID)
}

func (r *shiftRepository) GetByID(ctx context.Context, id int64) (*domain.Shift, error) {
	const query = `
        SELECT id, staff_member_id, start_time, end_time, notes
        FROM shifts WHERE id=$1`
	return scanShift(r.db.QueryRow(ctx, query, id))
}

func (r *shiftRepository) List(ctx context.Context) ([]domain.Shift, error) {
	const query = `
        SELECT id, staff_member_id, start_time, end_time, notes
        FROM shifts ORDER BY start_time DESC, id DESC`
	return r.list(ctx, query)
}

func (r *shiftRepository) ListByStaff(ctx context.Context, staffID int64) ([]domain.Shift, error) {
	const query = `
        SELECT id, staff_member_id, start_time, end_time, notes
        FROM shifts WHERE staff_member_id=$1
        ORDER BY start_time DESC, id DESC`
	return r.list(ctx, query, staffID)
}

func (r *shiftRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM shifts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *shiftRepository) list(ctx context.Context, query string, args ...any) ([]domain.Shift, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *shift)
	}
	return result, rows.Err()
}

func scanShift(row rowScanner) (*domain.Shift, error) {
	var shift domain.Shift
	if err := row.Scan(&shift.ID, &shift.StaffMemberID, &shift.StartTime, &shift.EndTime, &shift.Notes); err != nil {
		return nil, notFound(err)
	}
	return &shift, nil
}
