package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/auth"
	"github.com/clinic-kit/medapp/internal/config"
	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/repository"
	"github.com/clinic-kit/medapp/internal/validation"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// StaffService manages team members, their accounts, and their shifts.
type StaffService struct {
	store       repository.Store
	provisioner *AccountProvisioner
	dispatcher  events.Dispatcher
	bcryptCost  int
	logger      *zap.Logger
}

// StaffInput is the create/update payload. Password is never persisted as
// given; it only seeds the account created for a new staff member.
type StaffInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Role     string `json:"role" validate:"max=50"`
	Phone    string `json:"phone" validate:"max=20"`
	Password string `json:"password,omitempty" validate:"max=128"`
}

func (in StaffInput) normalized() StaffInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// ShiftInput creates a shift; omitted times default to now.
type ShiftInput struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     string     `json:"notes"`
}

// StaffDetail is a staff member with everything linked to them.
type StaffDetail struct {
	Staff    domain.StaffMember
	Account  *domain.Account
	Shifts   []domain.Shift
	Patients []domain.Patient
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps Dependencies) *StaffService {
	logger := deps.logger()
	return &StaffService{
		store:       deps.Store,
		provisioner: NewAccountProvisioner(cfg.Auth.BcryptCost, logger),
		dispatcher:  deps.Dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
	}
}

// ListStaff returns every staff member ordered by name.
func (s *StaffService) ListStaff(ctx context.Context) ([]domain.StaffMember, error) {
	staff, err := s.store.Repos().Staff.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return staff, nil
}

// GetStaffDetail loads a staff member with their account, shifts, and patients.
func (s *StaffService) GetStaffDetail(ctx context.Context, id int64) (*StaffDetail, error) {
	repos := s.store.Repos()
	staff, err := repos.Staff.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "staff member", id)
	}
	detail := &StaffDetail{Staff: *staff}
	if staff.HasAccount() {
		account, err := repos.Accounts.GetByID(ctx, *staff.AccountID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		detail.Account = account
	}
	if detail.Shifts, err = repos.Shifts.ListByStaff(ctx, id); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if detail.Patients, err = repos.Patients.ListByStaff(ctx, id); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return detail, nil
}

// CreateStaff persists a new staff member and provisions their account in the
// same transaction.
func (s *StaffService) CreateStaff(ctx context.Context, input StaffInput) (*domain.StaffMember, *domain.Account, error) {
	input = input.normalized()
	if fields := validation.Struct(input); fields != nil {
		return nil, nil, apperrors.NewFieldValidationError(fields)
	}

	staff := &domain.StaffMember{
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
		Phone: input.Phone,
	}
	var (
		account     *domain.Account
		provisioned bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Staff.Create(ctx, staff); err != nil {
			return err
		}
		var err error
		account, provisioned, err = s.provisioner.Provision(ctx, repos, staff, input.Password)
		return err
	})
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	s.publishSaved(ctx, staff, account, true, provisioned)
	return staff, account, nil
}

// UpdateStaff overwrites a staff member's fields. An existing account is kept
// as is, including its username and password; an unlinked staff member gets
// one provisioned.
func (s *StaffService) UpdateStaff(ctx context.Context, id int64, input StaffInput) (*domain.StaffMember, *domain.Account, error) {
	input = input.normalized()
	var (
		staff       *domain.StaffMember
		account     *domain.Account
		provisioned bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		staff, err = repos.Staff.GetByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "staff member", id)
		}
		if fields := validation.Struct(input); fields != nil {
			return apperrors.NewFieldValidationError(fields)
		}
		staff.Name = input.Name
		staff.Email = input.Email
		staff.Role = input.Role
		staff.Phone = input.Phone
		if err := repos.Staff.Update(ctx, staff); err != nil {
			return err
		}
		account, provisioned, err = s.provisioner.Provision(ctx, repos, staff, input.Password)
		return err
	})
	if err != nil {
		return nil, nil, mapStoreError(err, "staff member", id)
	}

	s.publishSaved(ctx, staff, account, false, provisioned)
	return staff, account, nil
}

// SetStaffPassword replaces the credential of the staff member's account.
// An empty password leaves the account without a usable credential.
func (s *StaffService) SetStaffPassword(ctx context.Context, id int64, password string) error {
	if len(password) > 128 {
		return apperrors.NewFieldValidationError(map[string]string{"password": "must be at most 128 characters"})
	}
	var hash *string
	if password != "" {
		hashed, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		hash = &hashed
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		staff, err := repos.Staff.GetByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "staff member", id)
		}
		if !staff.HasAccount() {
			if _, _, err := s.provisioner.Provision(ctx, repos, staff, password); err != nil {
				return err
			}
			return nil
		}
		return repos.Accounts.UpdatePasswordHash(ctx, *staff.AccountID, hash)
	})
	return mapStoreError(err, "staff member", id)
}

// DeleteStaff removes the staff member together with their shifts,
// assignments, and account. Files they uploaded are kept without an uploader.
func (s *StaffService) DeleteStaff(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		staff, err := repos.Staff.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Staff.Delete(ctx, id); err != nil {
			return err
		}
		if !staff.HasAccount() {
			return nil
		}
		if err := repos.Accounts.Delete(ctx, *staff.AccountID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return mapStoreError(err, "staff member", id)
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{Type: events.EventStaffDeleted, EntityID: id})
	return nil
}

// CreateShift records a shift for the staff member.
func (s *StaffService) CreateShift(ctx context.Context, staffID int64, input ShiftInput) (*domain.Shift, error) {
	repos := s.store.Repos()
	if _, err := repos.Staff.GetByID(ctx, staffID); err != nil {
		return nil, mapStoreError(err, "staff member", staffID)
	}

	now := time.Now().UTC()
	shift := &domain.Shift{
		StaffMemberID: staffID,
		StartTime:     now,
		EndTime:       now,
		Notes:         strings.TrimSpace(input.Notes),
	}
	if input.StartTime != nil {
		shift.StartTime = input.StartTime.UTC()
	}
	if input.EndTime != nil {
		shift.EndTime = input.EndTime.UTC()
	}
	if shift.EndTime.Before(shift.StartTime) {
		return nil, apperrors.NewFieldValidationError(map[string]string{"end_time": "must not be before start_time"})
	}

	if err := repos.Shifts.Create(ctx, shift); err != nil {
		return nil, mapStoreError(err, "staff member", staffID)
	}
	return shift, nil
}

// ListShifts returns every shift, most recent first.
func (s *StaffService) ListShifts(ctx context.Context) ([]domain.Shift, error) {
	shifts, err := s.store.Repos().Shifts.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return shifts, nil
}

// DeleteShift removes a shift.
func (s *StaffService) DeleteShift(ctx context.Context, id int64) error {
	return mapStoreError(s.store.Repos().Shifts.Delete(ctx, id), "shift", id)
}

func (s *StaffService) publishSaved(ctx context.Context, staff *domain.StaffMember, account *domain.Account, created, provisioned bool) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventStaffSaved,
		EntityID: staff.ID,
		Payload:  events.StaffSavedPayload{Created: created},
	})
	if !provisioned || account == nil {
		return
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventAccountProvisioned,
		EntityID: account.ID,
		Payload: events.AccountProvisionedPayload{
			StaffMemberID: staff.ID,
			Username:      account.Username,
			HasPassword:   account.HasUsablePassword(),
		},
	})
}
