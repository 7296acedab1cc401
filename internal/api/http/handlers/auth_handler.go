package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/clinic-kit/medapp/internal/api/dto"
	"github.com/clinic-kit/medapp/internal/auth"
	"github.com/clinic-kit/medapp/internal/service"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// AuthHandler exposes login and logout.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	body := fiber.Map{
		"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		"account": accountResponse(result.Account),
	}
	if result.Staff != nil {
		body["staff"] = staffResponse(result.Staff)
	}
	return c.JSON(data(body))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
