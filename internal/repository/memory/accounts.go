package memory

import (
	"context"
	"errors"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

type accountRepo struct{ s *handle }

func (r *accountRepo) Create(_ context.Context, account *domain.Account) error {
	return r.s.write(func(d *state) error {
		for _, existing := range d.accounts {
			if existing.Username == account.Username {
				return repository.ErrUsernameTaken
			}
		}
		account.ID = d.nextID()
		account.CreatedAt = r.s.now()
		d.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepo) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	var out domain.Account
	err := r.s.read(func(d *state) error {
		account, ok := d.accounts[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *accountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	var out *domain.Account
	err := r.s.read(func(d *state) error {
		for _, account := range d.accounts {
			if account.Username == username {
				found := account
				out = &found
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *accountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *accountRepo) UpdatePasswordHash(_ context.Context, id int64, hash *string) error {
	return r.s.write(func(d *state) error {
		account, ok := d.accounts[id]
		if !ok {
			return repository.ErrNotFound
		}
		account.PasswordHash = hash
		d.accounts[id] = account
		return nil
	})
}

func (r *accountRepo) TouchLastLogin(_ context.Context, id int64) error {
	return r.s.write(func(d *state) error {
		account, ok := d.accounts[id]
		if !ok {
			return nil
		}
		now := r.s.now()
		account.LastLoginAt = &now
		d.accounts[id] = account
		return nil
	})
}

func (r *accountRepo) Delete(_ context.Context, id int64) error {
	return r.s.write(func(d *state) error {
		if _, ok := d.accounts[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.accounts, id)
		// staff_members.account_id is ON DELETE CASCADE
		for staffID, staff := range d.staff {
			if staff.AccountID != nil && *staff.AccountID == id {
				deleteStaff(d, staffID)
			}
		}
		return nil
	})
}
