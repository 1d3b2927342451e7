package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/optikform/optik-api/internal/dto"
	"github.com/optikform/optik-api/internal/service"
	"github.com/optikform/optik-api/internal/utils"
)

// OpticalTemplateHandler exposes optical form template endpoints.
type OpticalTemplateHandler struct {
	service service.OpticalTemplateService
	logger  zerolog.Logger
}

// NewOpticalTemplateHandler constructs the handler instance.
func NewOpticalTemplateHandler(service service.OpticalTemplateService, logger zerolog.Logger) *OpticalTemplateHandler {
	return &OpticalTemplateHandler{
		service: service,
		logger:  logger.With().Str("component", "optical_template_handler").Logger(),
	}
}

// Register wires the optical template routes.
func (h *OpticalTemplateHandler) Register(router fiber.Router) {
	router.Post("", h.add)
	router.Get("/public", h.listPublic)
	router.Get("/mine", h.listMine)
	router.Get("/:id", h.get)
	router.Get("/:id/components", h.components)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *OpticalTemplateHandler) add(c *fiber.Ctx) error {
	var req dto.AddOpticalTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	template, err := h.service.Add(c.Context(), req, actorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidComponents):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidFormImage):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid form image")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add optical template")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to add optical template")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "optical template created", template)
}

func (h *OpticalTemplateHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid template id")
	}

	template, err := h.service.Get(c.Context(), id, actorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "optical template not found")
		case errors.Is(err, service.ErrTemplateForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to access this optical template")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch optical template")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch optical template")
		}
	}

	return utils.SendSuccess(c, "optical template retrieved", template)
}

func (h *OpticalTemplateHandler) components(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid template id")
	}

	components, err := h.service.GetComponents(c.Context(), id, actorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "optical template not found")
		case errors.Is(err, service.ErrTemplateForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to access this optical template")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch template components")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch template components")
		}
	}

	return utils.SendSuccess(c, "template components retrieved", components)
}

func (h *OpticalTemplateHandler) listPublic(c *fiber.Ctx) error {
	templates, err := h.service.ListPublic(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list public templates")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list optical templates")
	}

	return utils.SendList(c, "public templates retrieved", templates, len(templates))
}

func (h *OpticalTemplateHandler) listMine(c *fiber.Ctx) error {
	templates, err := h.service.ListByCreator(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list own templates")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list optical templates")
	}

	return utils.SendList(c, "templates retrieved", templates, len(templates))
}

func (h *OpticalTemplateHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid template id")
	}

	var req dto.UpdateOpticalTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	template, err := h.service.Update(c.Context(), id, req, actorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidComponents):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidFormImage):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid form image")
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "optical template not found")
		case errors.Is(err, service.ErrTemplateForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to modify this optical template")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update optical template")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update optical template")
		}
	}

	return utils.SendSuccess(c, "optical template updated", template)
}

func (h *OpticalTemplateHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid template id")
	}

	if err := h.service.Delete(c.Context(), id, actorFromContext(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "optical template not found")
		case errors.Is(err, service.ErrTemplateForbidden):
			return utils.SendError(c, fiber.StatusForbidden, "not allowed to delete this optical template")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete optical template")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete optical template")
		}
	}

	return utils.SendSuccess(c, "optical template deleted", nil)
}
