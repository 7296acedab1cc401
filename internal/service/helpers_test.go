package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinic-kit/medapp/internal/config"
	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/repository"
	"github.com/clinic-kit/medapp/internal/repository/memory"
	"github.com/clinic-kit/medapp/internal/storage"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

type fixture struct {
	cfg      config.Config
	store    *memory.Store
	blobs    *storage.MemoryStore
	events   *recordedEvents
	staff    *StaffService
	patients *PatientService
	files    *PatientFileService
}

type recordedEvents struct {
	events.Dispatcher
	seen []events.Event
}

func (r *recordedEvents) record(_ context.Context, event events.Event) error {
	r.seen = append(r.seen, event)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	out := make([]events.EventType, len(r.seen))
	for i, e := range r.seen {
		out[i] = e.Type
	}
	return out
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            bcrypt.MinCost,
		},
		Storage: config.StorageConfig{MaxUploadBytes: 1024},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	store := memory.NewStore()
	blobs := storage.NewMemoryStore()

	recorder := &recordedEvents{Dispatcher: events.NewInMemoryDispatcher()}
	recorder.SubscribeAll(recorder.record)

	deps := Dependencies{Store: store, Blobs: blobs, Dispatcher: recorder}
	return &fixture{
		cfg:      cfg,
		store:    store,
		blobs:    blobs,
		events:   recorder,
		staff:    NewStaffService(cfg, deps),
		patients: NewPatientService(deps),
		files:    NewPatientFileService(cfg, deps),
	}
}

func (f *fixture) createStaff(t *testing.T, name, password string) (*domain.StaffMember, *domain.Account) {
	t.Helper()
	staff, account, err := f.staff.CreateStaff(context.Background(), StaffInput{
		Name:     name,
		Email:    "staff@clinic.test",
		Role:     "Nurse",
		Password: password,
	})
	require.NoError(t, err)
	return staff, account
}

func (f *fixture) createPatient(t *testing.T, name string, age int, assigned ...int64) *domain.Patient {
	t.Helper()
	patient, err := f.patients.CreatePatient(context.Background(), PatientInput{
		Name:       name,
		Age:        &age,
		Gender:     domain.GenderFemale,
		AssignedTo: assigned,
	})
	require.NoError(t, err)
	return patient
}

// accountsOverride swaps the account repository handed out by a store.
type accountsOverride struct {
	repository.Store
	wrap func(repository.AccountRepository) repository.AccountRepository
}

func (o accountsOverride) Repos() repository.Repositories {
	repos := o.Store.Repos()
	repos.Accounts = o.wrap(repos.Accounts)
	return repos
}

func (o accountsOverride) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return o.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.Accounts = o.wrap(repos.Accounts)
		return fn(ctx, repos)
	})
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, apperrors.CodeValidationFailed, domainErr.Code, "error: %v", err)
	fields, ok := domainErr.Details["fields"].(map[string]string)
	require.True(t, ok, "details: %#v", domainErr.Details)
	return fields
}

func intPtr(v int) *int { return &v }
