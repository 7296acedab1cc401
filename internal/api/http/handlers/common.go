package handlers

import (
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clinic-kit/medapp/internal/api/dto"
	"github.com/clinic-kit/medapp/internal/domain"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// paramID parses a positive integer route parameter. Anything else cannot
// name a record, so it is reported as not found.
func paramID(c *fiber.Ctx, name, resource string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource, map[string]any{"id": c.Params(name)})
	}
	return id, nil
}

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}

// withInput attaches the submitted values to a validation error so the
// client can re-prompt with them.
func withInput(err error, input any) error {
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.CodeValidationFailed {
		return err
	}
	echoed := *domainErr
	echoed.Details = maps.Clone(domainErr.Details)
	if echoed.Details == nil {
		echoed.Details = map[string]any{}
	}
	echoed.Details["input"] = input
	return &echoed
}

func data(v any) fiber.Map {
	return fiber.Map{"data": v}
}

func staffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      staff.Role,
		Phone:     staff.Phone,
		AccountID: staff.AccountID,
		CreatedAt: staff.CreatedAt,
		UpdatedAt: staff.UpdatedAt,
	}
}

func staffResponses(staff []domain.StaffMember) []dto.StaffResponse {
	out := make([]dto.StaffResponse, 0, len(staff))
	for i := range staff {
		out = append(out, staffResponse(&staff[i]))
	}
	return out
}

func accountResponse(account *domain.Account) *dto.AccountResponse {
	if account == nil {
		return nil
	}
	return &dto.AccountResponse{
		ID:                account.ID,
		Username:          account.Username,
		Email:             account.Email,
		DisplayName:       account.DisplayName,
		IsAdmin:           account.IsAdmin,
		HasUsablePassword: account.HasUsablePassword(),
		LastLoginAt:       account.LastLoginAt,
	}
}

func shiftResponse(shift *domain.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:            shift.ID,
		StaffMemberID: shift.StaffMemberID,
		StartTime:     shift.StartTime,
		EndTime:       shift.EndTime,
		Notes:         shift.Notes,
	}
}

func shiftResponses(shifts []domain.Shift) []dto.ShiftResponse {
	out := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		out = append(out, shiftResponse(&shifts[i]))
	}
	return out
}

func patientResponse(patient *domain.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		ID:             patient.ID,
		Name:           patient.Name,
		Age:            patient.Age,
		Gender:         patient.Gender,
		MedicalHistory: patient.MedicalHistory,
		CreatedAt:      patient.CreatedAt,
		UpdatedAt:      patient.UpdatedAt,
	}
}

func patientResponses(patients []domain.Patient) []dto.PatientResponse {
	out := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		out = append(out, patientResponse(&patients[i]))
	}
	return out
}

func patientFileResponse(file *domain.PatientFile) dto.PatientFileResponse {
	return dto.PatientFileResponse{
		ID:          file.ID,
		PatientID:   file.PatientID,
		FileName:    file.FileName,
		ContentType: file.ContentType,
		SizeBytes:   file.SizeBytes,
		UploadedAt:  file.UploadedAt,
		UploadedBy:  file.UploadedBy,
		DownloadURL: fmt.Sprintf("/files/%d", file.ID),
	}
}
