package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/clinic-kit/medapp/internal/domain"
)

// AccountRepository defines persistence access for login accounts.
type AccountRepository interface {
	// Create inserts the account, returning ErrUsernameTaken when the username is in use.
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash *string) error
	TouchLastLogin(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type accountRepository struct {
	db Querier
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db Querier) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, password_hash, email, display_name, is_admin)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (username) DO NOTHING
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Email,
		account.DisplayName,
		account.IsAdmin,
	).Scan(&account.ID, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUsernameTaken
	}
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	const query = `
        SELECT id, username, password_hash, email, display_name, is_admin, last_login_at, created_at
        FROM accounts WHERE id=$1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const query = `
        SELECT id, username, password_hash, email, display_name, is_admin, last_login_at, created_at
        FROM accounts WHERE username=$1`
	return scanAccount(r.db.QueryRow(ctx, query, username))
}

func (r *accountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE username=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id int64, hash *string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET password_hash=$1 WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE accounts SET last_login_at=NOW() WHERE id=$1`, id)
	return err
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Email,
		&account.DisplayName,
		&account.IsAdmin,
		&account.LastLoginAt,
		&account.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}
