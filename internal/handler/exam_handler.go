package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/service"
	"github.com/optikform/optik-api/internal/utils"
)

// ExamHandler exposes exam management endpoints.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler instance.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register wires the exam routes.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Post("", h.add)
	router.Get("/mine", h.listMine)
	router.Get("/templates/mine", h.listTemplatesMine)
	router.Get("/templates/school/:id", h.listTemplatesBySchool)
	router.Get("/school/:id", h.listBySchool)
	router.Get("/class/:id", h.listByClass)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *ExamHandler) add(c *fiber.Ctx) error {
	var req dto.AddExamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.service.Add(c.Context(), req, actorFromContext(c))
	if err != nil {
		return h.mapWriteError(c, err, "failed to add exam")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	exam, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch exam")
	}

	return utils.SendSuccess(c, "exam retrieved", exam)
}

func (h *ExamHandler) listMine(c *fiber.Ctx) error {
	exams, err := h.service.ListByCreator(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list own exams")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendList(c, "exams retrieved", exams, len(exams))
}

func (h *ExamHandler) listBySchool(c *fiber.Ctx) error {
	schoolID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	exams, err := h.service.ListBySchool(c.Context(), schoolID)
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exams by school")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendList(c, "exams retrieved", exams, len(exams))
}

func (h *ExamHandler) listByClass(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid class id")
	}

	exams, err := h.service.ListByClass(c.Context(), classID)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exams by class")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exams")
	}

	return utils.SendList(c, "exams retrieved", exams, len(exams))
}

func (h *ExamHandler) listTemplatesMine(c *fiber.Ctx) error {
	exams, err := h.service.ListTemplatesByCreator(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list own exam templates")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exam templates")
	}

	return utils.SendList(c, "exam templates retrieved", exams, len(exams))
}

func (h *ExamHandler) listTemplatesBySchool(c *fiber.Ctx) error {
	schoolID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	exams, err := h.service.ListTemplatesBySchool(c.Context(), schoolID)
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list exam templates by school")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list exam templates")
	}

	return utils.SendList(c, "exam templates retrieved", exams, len(exams))
}

func (h *ExamHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	var req dto.UpdateExamRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.service.Update(c.Context(), id, req)
	if err != nil {
		return h.mapWriteError(c, err, "failed to update exam")
	}

	return utils.SendSuccess(c, "exam updated", exam)
}

func (h *ExamHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "exam not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete exam")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete exam")
	}

	return utils.SendSuccess(c, "exam deleted", nil)
}

func (h *ExamHandler) mapWriteError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidFormImage):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form image")
	case errors.Is(err, service.ErrExamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "exam not found")
	case errors.Is(err, service.ErrSchoolNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "school not found")
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrTemplateNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "optical template not found")
	case errors.Is(err, service.ErrExamTitleTaken):
		return utils.SendError(c, fiber.StatusConflict, "exam title already exists in this school")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
