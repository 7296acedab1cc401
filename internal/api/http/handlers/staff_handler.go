package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clinic-kit/medapp/internal/api/dto"
	"github.com/clinic-kit/medapp/internal/service"
)

// StaffHandler exposes team and shift endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// List handles GET /team.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	staff, err := h.staff.ListStaff(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(staffResponses(staff)))
}

// Detail handles GET /team/:id.
func (h *StaffHandler) Detail(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "staff member")
	if err != nil {
		return err
	}
	detail, err := h.staff.GetStaffDetail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.StaffDetailResponse{
		StaffResponse: staffResponse(&detail.Staff),
		Account:       accountResponse(detail.Account),
		Shifts:        shiftResponses(detail.Shifts),
		Patients:      patientResponses(detail.Patients),
	}))
}

// Create handles POST /team.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req service.StaffInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	staff, account, err := h.staff.CreateStaff(c.UserContext(), req)
	if err != nil {
		return withInput(err, redactPassword(req))
	}
	return c.Status(http.StatusCreated).JSON(data(dto.StaffSaveResponse{
		Staff:   staffResponse(staff),
		Account: accountResponse(account),
	}))
}

// Update handles PUT /team/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "staff member")
	if err != nil {
		return err
	}
	var req service.StaffInput
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	staff, account, err := h.staff.UpdateStaff(c.UserContext(), id, req)
	if err != nil {
		return withInput(err, redactPassword(req))
	}
	return c.JSON(data(dto.StaffSaveResponse{
		Staff:   staffResponse(staff),
		Account: accountResponse(account),
	}))
}

// SetPassword handles PUT /team/:id/password.
func (h *StaffHandler) SetPassword(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "staff member")
	if err != nil {
		return err
	}
	var req dto.SetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.staff.SetStaffPassword(c.UserContext(), id, req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Delete handles DELETE /team/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "staff member")
	if err != nil {
		return err
	}
	if err := h.staff.DeleteStaff(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateShift handles POST /team/:id/shifts.
func (h *StaffHandler) CreateShift(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "staff member")
	if err != nil {
		return err
	}
	var req service.ShiftInput
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}
	shift, err := h.staff.CreateShift(c.UserContext(), id, req)
	if err != nil {
		return withInput(err, req)
	}
	return c.Status(http.StatusCreated).JSON(data(shiftResponse(shift)))
}

// ListShifts handles GET /shifts.
func (h *StaffHandler) ListShifts(c *fiber.Ctx) error {
	shifts, err := h.staff.ListShifts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(data(shiftResponses(shifts)))
}

// DeleteShift handles DELETE /shifts/:id.
func (h *StaffHandler) DeleteShift(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "shift")
	if err != nil {
		return err
	}
	if err := h.staff.DeleteShift(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func redactPassword(in service.StaffInput) service.StaffInput {
	in.Password = ""
	return in
}
