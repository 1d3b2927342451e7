package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/service"
	"github.com/optikform/optik-api/internal/utils"
)

// UserHandler exposes administrator and teacher management endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler instance.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterAdminOnly wires routes restricted to superadmins.
func (h *UserHandler) RegisterAdminOnly(router fiber.Router) {
	router.Post("/admins", h.addAdmin)
}

// RegisterApproval wires teacher approval routes for admins and superadmins.
func (h *UserHandler) RegisterApproval(router fiber.Router) {
	router.Get("/teachers/pending", h.pendingTeachers)
	router.Get("/teachers/approved", h.approvedTeachers)
	router.Put("/teachers/:id/approve", h.approveTeacher)
}

func (h *UserHandler) addAdmin(c *fiber.Ctx) error {
	var req dto.AddAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	admin, err := h.service.AddAdmin(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSchoolNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		case errors.Is(err, service.ErrSchoolHasAdmin):
			return utils.SendError(c, fiber.StatusConflict, "school already has an admin")
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add admin")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add admin")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "admin created", admin)
}

func (h *UserHandler) approveTeacher(c *fiber.Ctx) error {
	teacherID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid teacher id")
	}

	teacher, err := h.service.ApproveTeacher(c.Context(), teacherID, actorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "teacher not found")
		case errors.Is(err, service.ErrNotATeacher):
			return utils.SendError(c, fiber.StatusBadRequest, "user is not a teacher")
		case errors.Is(err, service.ErrTeacherAlreadyApproved):
			return utils.SendError(c, fiber.StatusConflict, "teacher already approved")
		case errors.Is(err, service.ErrForeignSchool):
			return utils.SendError(c, fiber.StatusForbidden, "teacher belongs to another school")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to approve teacher")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to approve teacher")
		}
	}

	return utils.SendSuccess(c, "teacher approved", teacher)
}

func (h *UserHandler) pendingTeachers(c *fiber.Ctx) error {
	teachers, err := h.service.ListPendingTeachers(c.Context(), actorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list pending teachers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list teachers")
	}

	return utils.SendList(c, "pending teachers retrieved", teachers, len(teachers))
}

func (h *UserHandler) approvedTeachers(c *fiber.Ctx) error {
	teachers, err := h.service.ListApprovedTeachers(c.Context(), actorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list approved teachers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list teachers")
	}

	return utils.SendList(c, "approved teachers retrieved", teachers, len(teachers))
}
