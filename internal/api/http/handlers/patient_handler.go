package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clinic-kit/medapp/internal/api/dto"
	"github.com/clinic-kit/medapp/internal/service"
)

// PatientHandler exposes patient endpoints.
type PatientHandler struct {
	patients *service.PatientService
}

// NewPatientHandler constructs handler.
func NewPatientHandler(patients *service.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// List handles GET /patients.
func (h *PatientHandler) List(c *fiber.Ctx) error {
	patients, err := h.patients.ListPatients(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(patientResponses(patients)))
}

// Detail handles GET /patients/:id.
func (h *PatientHandler) Detail(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "patient")
	if err != nil {
		return err
	}
	detail, err := h.patients.GetPatientDetail(c.UserContext(), id)
	if err != nil {
		return err
	}
	files := make([]dto.PatientFileResponse, 0, len(detail.Files))
	for i := range detail.Files {
		files = append(files, patientFileResponse(&detail.Files[i]))
	}
	return c.JSON(data(dto.PatientDetailResponse{
		PatientResponse: patientResponse(&detail.Patient),
		Files:           files,
		Staff:           staffResponses(detail.Staff),
	}))
}

// Create handles POST /patients.
func (h *PatientHandler) Create(c *fiber.Ctx) error {
	var req service.PatientInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	patient, err := h.patients.CreatePatient(c.UserContext(), req)
	if err != nil {
		return withInput(err, req)
	}
	return c.Status(http.StatusCreated).JSON(data(patientResponse(patient)))
}

// Edit handles PUT /patients/:id.
func (h *PatientHandler) Edit(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "patient")
	if err != nil {
		return err
	}
	var req service.PatientInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	patient, err := h.patients.EditPatient(c.UserContext(), id, req)
	if err != nil {
		return withInput(err, req)
	}
	return c.JSON(data(patientResponse(patient)))
}

// Delete handles DELETE /patients/:id.
func (h *PatientHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "patient")
	if err != nil {
		return err
	}
	if err := h.patients.DeletePatient(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
