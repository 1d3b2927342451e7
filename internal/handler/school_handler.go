package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/service"
	"github.com/optikform/optik-api/internal/utils"
)

// SchoolHandler exposes school management endpoints.
type SchoolHandler struct {
	service service.SchoolService
	logger  zerolog.Logger
}

// NewSchoolHandler constructs the handler instance.
func NewSchoolHandler(service service.SchoolService, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		service: service,
		logger:  logger.With().Str("component", "school_handler").Logger(),
	}
}

// Register wires the read routes available to any authenticated user.
func (h *SchoolHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdminOnly wires the mutating routes restricted to superadmins.
func (h *SchoolHandler) RegisterAdminOnly(router fiber.Router) {
	router.Post("", h.add)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *SchoolHandler) add(c *fiber.Ctx) error {
	var req dto.AddSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	school, err := h.service.Add(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSchoolNameTaken):
			return utils.SendError(c, fiber.StatusConflict, "school name already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add school")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add school")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school created", school)
}

func (h *SchoolHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	school, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch school")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch school")
	}

	return utils.SendSuccess(c, "school retrieved", school)
}

func (h *SchoolHandler) list(c *fiber.Ctx) error {
	schools, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list schools")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list schools")
	}

	return utils.SendList(c, "schools retrieved", schools, len(schools))
}

func (h *SchoolHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	var req dto.UpdateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	school, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSchoolNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		case errors.Is(err, service.ErrSchoolNameTaken):
			return utils.SendError(c, fiber.StatusConflict, "school name already exists")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update school")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update school")
		}
	}

	return utils.SendSuccess(c, "school updated", school)
}

func (h *SchoolHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete school")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete school")
	}

	return utils.SendSuccess(c, "school deleted", nil)
}
