package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/service"
	"github.com/optikform/optik-api/internal/utils"
)

// ResultHandler exposes scoring and result lookup endpoints.
type ResultHandler struct {
	service service.ResultService
	logger  zerolog.Logger
}

// NewResultHandler constructs the handler instance.
func NewResultHandler(service service.ResultService, logger zerolog.Logger) *ResultHandler {
	return &ResultHandler{
		service: service,
		logger:  logger.With().Str("component", "result_handler").Logger(),
	}
}

// Register wires the result routes.
func (h *ResultHandler) Register(router fiber.Router) {
	router.Post("/compute", h.compute)
	router.Get("/exam/:id", h.listByExam)
	router.Get("/student/:id", h.listByStudent)
	router.Get("/:id", h.get)
	router.Delete("/:id", h.remove)
}

func (h *ResultHandler) compute(c *fiber.Ctx) error {
	var req dto.ComputeResultRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Compute(c.Context(), req)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrExamNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		case errors.Is(err, service.ErrStudentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "optical template not found")
		case errors.Is(err, service.ErrInvalidComponents):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "template components are malformed")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute result")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute result")
		}
	}

	return utils.SendSuccess(c, "result computed", result)
}

func (h *ResultHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid result id")
	}

	result, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "result not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch result")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch result")
	}

	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *ResultHandler) listByExam(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	results, err := h.service.ListByExam(c.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list results by exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list results")
	}

	return utils.SendList(c, "results retrieved", results, len(results))
}

func (h *ResultHandler) listByStudent(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	results, err := h.service.ListByStudent(c.Context(), studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list results by student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list results")
	}

	return utils.SendList(c, "results retrieved", results, len(results))
}

func (h *ResultHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid result id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "result not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete result")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete result")
	}

	return utils.SendSuccess(c, "result deleted", nil)
}
