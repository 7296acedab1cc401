package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic-kit/medapp/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func stmt(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewAccountRepository(mock)
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(stmt("ON CONFLICT (username) DO NOTHING")).
		WithArgs("ada-lovelace", (*string)(nil), "ada@example.com", "Ada Lovelace", false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	account := &domain.Account{Username: "ada-lovelace", Email: "ada@example.com", DisplayName: "Ada Lovelace"}
	require.NoError(t, repo.Create(ctx, account))
	assert.EqualValues(t, 7, account.ID)
	assert.Equal(t, created, account.CreatedAt)
}

func TestAccountRepository_CreateConflictIsUsernameTaken(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	// DO NOTHING returns no row when the username already exists.
	mock.ExpectQuery(stmt("INSERT INTO accounts")).
		WithArgs("ada-lovelace", pgxmock.AnyArg(), "", "", false).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Create(context.Background(), &domain.Account{Username: "ada-lovelace"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAccountRepository_NotFoundMapping(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery(stmt("FROM accounts WHERE username=$1")).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	_, err := repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(stmt("UPDATE accounts SET password_hash=$1 WHERE id=$2")).
		WithArgs((*string)(nil), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, 99, nil), ErrNotFound)

	mock.ExpectExec(stmt("DELETE FROM accounts WHERE id=$1")).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(ctx, 99), ErrNotFound)
}

func TestAccountRepository_UsernameExists(t *testing.T) {
	mock := newMock(t)
	repo := NewAccountRepository(mock)

	mock.ExpectQuery(stmt("SELECT EXISTS (SELECT 1 FROM accounts WHERE username=$1)")).
		WithArgs("ada-lovelace1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UsernameExists(context.Background(), "ada-lovelace1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStaffRepository_ExistingIDs(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewStaffRepository(mock)

	ids, err := repo.ExistingIDs(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, ids)

	mock.ExpectQuery(stmt("SELECT id FROM staff_members WHERE id = ANY($1)")).
		WithArgs([]int64{3, 9001}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	ids, err = repo.ExistingIDs(ctx, []int64{3, 9001})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids)
}

func TestStaffRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewStaffRepository(mock)

	mock.ExpectQuery(stmt("FROM staff_members s WHERE s.id=$1")).
		WithArgs(int64(5)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaffRepository_LinkAccountMissingStaff(t *testing.T) {
	mock := newMock(t)
	repo := NewStaffRepository(mock)

	mock.ExpectExec(stmt("UPDATE staff_members SET account_id=$1 WHERE id=$2")).
		WithArgs(int64(2), int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.LinkAccount(context.Background(), 8, 2), ErrNotFound)
}

func TestPatientRepository_SetAssignments(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPatientRepository(mock)

	mock.ExpectExec(stmt("DELETE FROM patient_staff WHERE patient_id=$1")).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(stmt("SELECT $1, unnest($2::bigint[])")).
		WithArgs(int64(4), []int64{1, 2}).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	require.NoError(t, repo.SetAssignments(ctx, 4, []int64{1, 2}))

	mock.ExpectExec(stmt("DELETE FROM patient_staff WHERE patient_id=$1")).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	require.NoError(t, repo.SetAssignments(ctx, 4, nil))
}

func TestPatientRepository_SetAssignmentsUnknownStaff(t *testing.T) {
	mock := newMock(t)
	repo := NewPatientRepository(mock)

	mock.ExpectExec(stmt("DELETE FROM patient_staff")).
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(stmt("INSERT INTO patient_staff")).
		WithArgs(int64(4), []int64{9001}).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "patient_staff_staff_member_id_fkey"})

	assert.ErrorIs(t, repo.SetAssignments(context.Background(), 4, []int64{9001}), ErrNotFound)
}

func TestPatientRepository_UpdateMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewPatientRepository(mock)

	mock.ExpectQuery(stmt("UPDATE patients SET")).
		WithArgs("Jo", 41, domain.GenderMale, "", int64(12)).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), &domain.Patient{ID: 12, Name: "Jo", Age: 41, Gender: domain.GenderMale})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatientFileRepository_CreateForeignKeys(t *testing.T) {
	uploader := int64(3)
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "patient deleted", constraint: "patient_files_patient_id_fkey", want: ErrNotFound},
		{name: "uploader deleted", constraint: uploadedByForeignKey, want: ErrUploaderNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewPatientFileRepository(mock)

			mock.ExpectQuery(stmt("INSERT INTO patient_files")).
				WithArgs(int64(1), "patient_files/k_a.txt", "a.txt", "text/plain", int64(1), &uploader).
				WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: tc.constraint})

			err := repo.Create(context.Background(), &domain.PatientFile{
				PatientID:   1,
				StorageKey:  "patient_files/k_a.txt",
				FileName:    "a.txt",
				ContentType: "text/plain",
				SizeBytes:   1,
				UploadedBy:  &uploader,
			})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPatientFileRepository_ListByPatient(t *testing.T) {
	mock := newMock(t)
	repo := NewPatientFileRepository(mock)
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	columns := []string{"id", "patient_id", "storage_key", "file_name", "content_type", "size_bytes", "uploaded_at", "uploaded_by"}
	mock.ExpectQuery(stmt("ORDER BY uploaded_at DESC, id DESC")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(2), int64(1), "patient_files/b", "b.txt", "text/plain", int64(2), at, (*int64)(nil)).
			AddRow(int64(1), int64(1), "patient_files/a", "a.txt", "text/plain", int64(1), at.Add(-time.Hour), (*int64)(nil)))

	files, err := repo.ListByPatient(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.EqualValues(t, 2, files[0].ID)
	assert.Nil(t, files[0].UploadedBy)
}
