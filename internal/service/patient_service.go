package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/domain"
	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/repository"
	"github.com/clinic-kit/medapp/internal/storage"
	"github.com/clinic-kit/medapp/internal/validation"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// PatientService manages patient records and their staff assignments.
type PatientService struct {
	store      repository.Store
	blobs      storage.BlobStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// PatientInput is the create/edit payload. A nil AssignedTo on edit keeps
// the current assignments; a non-nil one, even empty, replaces them.
type PatientInput struct {
	Name           string        `json:"name" validate:"required,max=100"`
	Age            *int          `json:"age" validate:"required,min=0"`
	Gender         domain.Gender `json:"gender" validate:"required,oneof=Male Female"`
	MedicalHistory string        `json:"medical_history"`
	AssignedTo     []int64       `json:"assigned_to" validate:"omitempty,dive,gt=0"`
}

func (in PatientInput) normalized() PatientInput {
	in.Name = strings.TrimSpace(in.Name)
	in.MedicalHistory = strings.TrimSpace(in.MedicalHistory)
	if in.AssignedTo != nil {
		ids := slices.Clone(in.AssignedTo)
		slices.Sort(ids)
		in.AssignedTo = slices.Compact(ids)
	}
	return in
}

// PatientDetail is a patient with their files and assigned staff.
type PatientDetail struct {
	Patient domain.Patient
	Files   []domain.PatientFile
	Staff   []domain.StaffMember
}

// NewPatientService constructs the service.
func NewPatientService(deps Dependencies) *PatientService {
	return &PatientService{
		store:      deps.Store,
		blobs:      deps.Blobs,
		dispatcher: deps.Dispatcher,
		logger:     deps.logger(),
	}
}

// ListPatients returns every patient ordered by name.
func (s *PatientService) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	patients, err := s.store.Repos().Patients.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return patients, nil
}

// GetPatientDetail loads a patient with files (newest first) and assigned staff.
func (s *PatientService) GetPatientDetail(ctx context.Context, id int64) (*PatientDetail, error) {
	repos := s.store.Repos()
	patient, err := repos.Patients.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "patient", id)
	}
	detail := &PatientDetail{Patient: *patient}
	if detail.Files, err = repos.Files.ListByPatient(ctx, id); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if detail.Staff, err = repos.Staff.ListByPatient(ctx, id); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return detail, nil
}

// CreatePatient validates and persists a new patient with its assignments.
func (s *PatientService) CreatePatient(ctx context.Context, input PatientInput) (*domain.Patient, error) {
	input = input.normalized()
	var patient *domain.Patient
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := validatePatient(ctx, repos, input); err != nil {
			return err
		}
		patient = &domain.Patient{
			Name:           input.Name,
			Age:            *input.Age,
			Gender:         input.Gender,
			MedicalHistory: input.MedicalHistory,
		}
		if err := repos.Patients.Create(ctx, patient); err != nil {
			return err
		}
		if len(input.AssignedTo) == 0 {
			return nil
		}
		return repos.Patients.SetAssignments(ctx, patient.ID, input.AssignedTo)
	})
	if err != nil {
		return nil, mapStoreError(err, "patient", 0)
	}

	s.publishSaved(ctx, patient.ID, true, len(input.AssignedTo))
	return patient, nil
}

// EditPatient overwrites a patient's fields. Uploaded files are untouched.
func (s *PatientService) EditPatient(ctx context.Context, id int64, input PatientInput) (*domain.Patient, error) {
	input = input.normalized()
	var (
		patient  *domain.Patient
		assigned = -1
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		patient, err = repos.Patients.GetByID(ctx, id)
		if err != nil {
			return mapStoreError(err, "patient", id)
		}
		if err := validatePatient(ctx, repos, input); err != nil {
			return err
		}
		patient.Name = input.Name
		patient.Age = *input.Age
		patient.Gender = input.Gender
		patient.MedicalHistory = input.MedicalHistory
		if err := repos.Patients.Update(ctx, patient); err != nil {
			return err
		}
		if input.AssignedTo == nil {
			return nil
		}
		assigned = len(input.AssignedTo)
		return repos.Patients.SetAssignments(ctx, id, input.AssignedTo)
	})
	if err != nil {
		return nil, mapStoreError(err, "patient", id)
	}

	s.publishSaved(ctx, id, false, assigned)
	return patient, nil
}

// DeletePatient removes the patient and their file records, then the stored
// bytes of those files.
func (s *PatientService) DeletePatient(ctx context.Context, id int64) error {
	var files []domain.PatientFile
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Patients.GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		if files, err = repos.Files.ListByPatient(ctx, id); err != nil {
			return err
		}
		return repos.Patients.Delete(ctx, id)
	})
	if err != nil {
		return mapStoreError(err, "patient", id)
	}

	if s.blobs != nil {
		for _, file := range files {
			if err := s.blobs.Delete(ctx, file.StorageKey); err != nil {
				s.logger.Warn("failed to remove patient file blob",
					zap.Int64("patient_id", id),
					zap.String("storage_key", file.StorageKey),
					zap.Error(err))
			}
		}
	}
	publish(ctx, s.dispatcher, s.logger, events.Event{Type: events.EventPatientDeleted, EntityID: id})
	return nil
}

// validatePatient runs field validation and resolves every assigned staff id.
func validatePatient(ctx context.Context, repos repository.Repositories, input PatientInput) error {
	fields := validation.Struct(input)
	if len(input.AssignedTo) > 0 {
		existing, err := repos.Staff.ExistingIDs(ctx, input.AssignedTo)
		if err != nil {
			return err
		}
		if missing := missingIDs(input.AssignedTo, existing); len(missing) > 0 {
			fields = validation.Merge(fields, map[string]string{
				"assigned_to": fmt.Sprintf("unknown staff member ids: %s", joinIDs(missing)),
			})
		}
	}
	if fields != nil {
		return apperrors.NewFieldValidationError(fields)
	}
	return nil
}

func missingIDs(requested, existing []int64) []int64 {
	var missing []int64
	for _, id := range requested {
		if !slices.Contains(existing, id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func (s *PatientService) publishSaved(ctx context.Context, id int64, created bool, assigned int) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:     events.EventPatientSaved,
		EntityID: id,
		Payload:  events.PatientSavedPayload{Created: created, AssignedCount: assigned},
	})
}
