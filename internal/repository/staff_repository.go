package repository

import (
	"context"

	"github.com/clinic-kit/medapp/internal/domain"
)

// StaffRepository handles persistence for staff members.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	Update(ctx context.Context, staff *domain.StaffMember) error
	LinkAccount(ctx context.Context, staffID, accountID int64) error
	GetByID(ctx context.Context, id int64) (*domain.StaffMember, error)
	GetByAccountID(ctx context.Context, accountID int64) (*domain.StaffMember, error)
	// ExistingIDs returns the subset of ids that resolve to live staff members.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	List(ctx context.Context) ([]domain.StaffMember, error)
	ListByPatient(ctx context.Context, patientID int64) ([]domain.StaffMember, error)
	Delete(ctx context.Context, id int64) error
}

const staffColumns = `s.id, s.name, s.email, s.role, s.phone, s.account_id, s.created_at, s.updated_at`

type staffRepository struct {
	db Querier
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db Querier) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (name, email, role, phone, account_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		staff.Name,
		staff.Email,
		staff.Role,
		staff.Phone,
		staff.AccountID,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        UPDATE staff_members
        SET name=$1, email=$2, role=$3, phone=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		staff.Name,
		staff.Email,
		staff.Role,
		staff.Phone,
		staff.ID,
	).Scan(&staff.UpdatedAt)
	return notFound(err)
}

func (r *staffRepository) LinkAccount(ctx context.Context, staffID, accountID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE staff_members SET account_id=$1 WHERE id=$2`, accountID, staffID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members s WHERE s.id=$1`
	return scanStaff(r.db.QueryRow(ctx, query, id))
}

func (r *staffRepository) GetByAccountID(ctx context.Context, accountID int64) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members s WHERE s.account_id=$1`
	return scanStaff(r.db.QueryRow(ctx, query, accountID))
}

func (r *staffRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM staff_members WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

func (r *staffRepository) List(ctx context.Context) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members s ORDER BY s.name, s.id`
	return r.list(ctx, query)
}

func (r *staffRepository) ListByPatient(ctx context.Context, patientID int64) ([]domain.StaffMember, error) {
	query := `
        SELECT ` + staffColumns + `
        FROM staff_members s
        JOIN patient_staff ps ON ps.staff_member_id = s.id
        WHERE ps.patient_id=$1
        ORDER BY s.name, s.id`
	return r.list(ctx, query, patientID)
}

func (r *staffRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM staff_members WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *staffRepository) list(ctx context.Context, query string, args ...any) ([]domain.StaffMember, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		staff, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func scanStaff(row rowScanner) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.Role,
		&staff.Phone,
		&staff.AccountID,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &staff, nil
}
