package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a lookup does not resolve to a live record.
	ErrNotFound = errors.New("record not found")
	// ErrUsernameTaken is returned when an account insert loses the unique username race.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUploaderNotFound is returned when a file names an uploader that is not a live staff member.
	ErrUploaderNotFound = errors.New("uploader staff member not found")
)

const pgForeignKeyViolation = "23503"

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles every entity repository bound to one connection or transaction.
type Repositories struct {
	Accounts AccountRepository
	Staff    StaffRepository
	Shifts   ShiftRepository
	Patients PatientRepository
	Files    PatientFileRepository
}

// Store hands out repositories and runs units of work.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn in a transaction; any error returned by fn rolls it back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type rowScanner interface {
	Scan(dest ...any) error
}

type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Repos() Repositories {
	return newRepositories(s.pool)
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, newRepositories(tx))
	})
}

func newRepositories(q Querier) Repositories {
	return Repositories{
		Accounts: NewAccountRepository(q),
		Staff:    NewStaffRepository(q),
		Shifts:   NewShiftRepository(q),
		Patients: NewPatientRepository(q),
		Files:    NewPatientFileRepository(q),
	}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// violatedForeignKey returns the constraint name when err is a foreign key violation.
func violatedForeignKey(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
