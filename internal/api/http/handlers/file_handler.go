package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clinic-kit/medapp/internal/auth"
	"github.com/clinic-kit/medapp/internal/service"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// FileHandler exposes patient file upload and download.
type FileHandler struct {
	files *service.PatientFileService
}

// NewFileHandler constructs handler.
func NewFileHandler(files *service.PatientFileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload handles POST /patients/:id/files with a multipart "file" field.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	patientID, err := paramID(c, "id", "patient")
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewFieldValidationError(map[string]string{"file": "this field is required"})
	}
	content, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer content.Close()

	var uploadedBy *int64
	if principal, ok := auth.PrincipalFromContext(c); ok {
		uploadedBy = principal.StaffID()
	}

	file, err := h.files.Upload(c.UserContext(), patientID, service.FileUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, uploadedBy)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(patientFileResponse(file)))
}

// Download handles GET /files/:id and streams the stored bytes as an attachment.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	id, err := paramID(c, "id", "patient file")
	if err != nil {
		return err
	}
	file, content, err := h.files.Download(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Attachment(file.FileName)
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentLength, strconv.FormatInt(file.SizeBytes, 10))
	return c.SendStream(content, int(file.SizeBytes))
}
