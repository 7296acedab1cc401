package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/auth"
	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/repository"
)

// maxProvisionConflicts bounds how many lost username races are retried.
const maxProvisionConflicts = 5

// AccountProvisioner ensures a staff member has exactly one login account.
type AccountProvisioner struct {
	bcryptCost int
	logger     *zap.Logger
}

// NewAccountProvisioner constructs the provisioner.
func NewAccountProvisioner(bcryptCost int, logger *zap.Logger) *AccountProvisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountProvisioner{bcryptCost: bcryptCost, logger: logger}
}

// BaseUsername derives the username every collision suffix is appended to.
func BaseUsername(staff *domain.StaffMember) string {
	if slug := Slugify(staff.Name); slug != "" {
		return slug
	}
	return fmt.Sprintf("user_%d", staff.ID)
}

// Provision runs after a staff member has been written, using the caller's
// repositories so it shares the caller's transaction. A staff member that
// already has an account is left untouched and its account is returned with
// created=false. Otherwise candidates base, base1, base2, ... are probed in
// order and the first free one is used.
func (p *AccountProvisioner) Provision(ctx context.Context, repos repository.Repositories, staff *domain.StaffMember, password string) (account *domain.Account, created bool, err error) {
	if staff.HasAccount() {
		existing, err := repos.Accounts.GetByID(ctx, *staff.AccountID)
		if err != nil {
			return nil, false, fmt.Errorf("load linked account: %w", err)
		}
		return existing, false, nil
	}

	account = &domain.Account{
		Email:       staff.Email,
		DisplayName: staff.Name,
	}
	if password != "" {
		hash, err := auth.HashPassword(password, p.bcryptCost)
		if err != nil {
			return nil, false, fmt.Errorf("hash password: %w", err)
		}
		account.PasswordHash = &hash
	}

	base := BaseUsername(staff)
	conflicts := 0
	for counter := 0; ; counter++ {
		candidate := base
		if counter > 0 {
			candidate = base + strconv.Itoa(counter)
		}

		taken, err := repos.Accounts.UsernameExists(ctx, candidate)
		if err != nil {
			return nil, false, fmt.Errorf("check username %q: %w", candidate, err)
		}
		if taken {
			continue
		}

		account.Username = candidate
		err = repos.Accounts.Create(ctx, account)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrUsernameTaken) {
			return nil, false, fmt.Errorf("create account: %w", err)
		}
		conflicts++
		if conflicts > maxProvisionConflicts {
			return nil, false, fmt.Errorf("provision account for staff %d: %w", staff.ID, err)
		}
		p.logger.Warn("username claimed concurrently, probing next suffix",
			zap.Int64("staff_id", staff.ID),
			zap.String("username", candidate))
	}

	if err := repos.Staff.LinkAccount(ctx, staff.ID, account.ID); err != nil {
		return nil, false, fmt.Errorf("link account: %w", err)
	}
	staff.AccountID = &account.ID

	p.logger.Info("account provisioned",
		zap.Int64("staff_id", staff.ID),
		zap.Int64("account_id", account.ID),
		zap.String("username", account.Username),
		zap.Bool("usable_password", account.HasUsablePassword()))
	return account, true, nil
}
