package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/optikform/optik-api/internal/config"
	"github.com/optikform/optik-api/internal/handler"
	"github.com/optikform/optik-api/internal/middleware"
	"github.com/optikform/optik-api/internal/models"
	"github.com/optikform/optik-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler            *handler.AuthHandler
	UserHandler            *handler.UserHandler
	SchoolHandler          *handler.SchoolHandler
	ClassHandler           *handler.ClassHandler
	StudentHandler         *handler.StudentHandler
	OpticalTemplateHandler *handler.OpticalTemplateHandler
	ExamHandler            *handler.ExamHandler
	ResultHandler          *handler.ResultHandler
	JWTMiddleware          fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.RegisterAdminOnly(users.Group("", middleware.RequireRole(models.RoleSuperAdmin)))
		deps.UserHandler.RegisterApproval(users.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)))
	}

	if deps.SchoolHandler != nil {
		// School reads stay public so the sign-up form can list schools.
		schools := api.Group("/schools")
		deps.SchoolHandler.Register(schools)
		deps.SchoolHandler.RegisterAdminOnly(schools.Group("", jwtMiddleware, middleware.RequireRole(models.RoleSuperAdmin)))
	}

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware)
		deps.ClassHandler.Register(classes)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students)
	}

	if deps.OpticalTemplateHandler != nil {
		templates := api.Group("/optical-templates", jwtMiddleware)
		deps.OpticalTemplateHandler.Register(templates)
	}

	if deps.ExamHandler != nil {
		exams := api.Group("/exams", jwtMiddleware)
		deps.ExamHandler.Register(exams)
	}

	if deps.ResultHandler != nil {
		results := api.Group("/results", jwtMiddleware)
		deps.ResultHandler.Register(results)
	}
}
