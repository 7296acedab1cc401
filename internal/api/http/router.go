package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clinic-kit/medapp/internal/api/http/handlers"
	"github.com/clinic-kit/medapp/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Staff          *handlers.StaffHandler
	Patients       *handlers.PatientHandler
	Files          *handlers.FileHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything except health probes and
// login requires a logged in account.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	team := protected.Group("/team")
	team.Get("/", cfg.Staff.List)
	team.Post("/", cfg.Staff.Create)
	team.Get("/:id", cfg.Staff.Detail)
	team.Put("/:id", cfg.Staff.Update)
	team.Delete("/:id", cfg.Staff.Delete)
	team.Put("/:id/password", cfg.Staff.SetPassword)
	team.Post("/:id/shifts", cfg.Staff.CreateShift)

	protected.Get("/shifts", cfg.Staff.ListShifts)
	protected.Delete("/shifts/:id", cfg.Staff.DeleteShift)

	patients := protected.Group("/patients")
	patients.Get("/", cfg.Patients.List)
	patients.Post("/", cfg.Patients.Create)
	patients.Get("/:id", cfg.Patients.Detail)
	patients.Put("/:id", cfg.Patients.Edit)
	patients.Delete("/:id", cfg.Patients.Delete)
	patients.Post("/:id/files", cfg.Files.Upload)

	protected.Get("/files/:id", cfg.Files.Download)
}
