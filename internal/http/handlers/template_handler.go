package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

type TemplateHandler struct {
	templateService *services.TemplateService
	log             *zap.Logger
}

func NewTemplateHandler(templateService *services.TemplateService, log *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, log: log}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *TemplateHandler) CreateTemplate(c *fiber.Ctx) error {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	t := &models.Template{
		Name:     deref(req.Name),
		Subject:  deref(req.Subject),
		Category: deref(req.Category),
		Content:  deref(req.Content),
		Design:   req.Design,
	}
	if err := h.templateService.Create(c.Context(), t); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.templateService.List(c.Context(), queryString(c, "category"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(templates)
}

func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	t, err := h.templateService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(t)
}

func (h *TemplateHandler) UpdateTemplate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}

	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	t, err := h.templateService.Update(c.Context(), id, services.TemplatePatch{
		Name:     req.Name,
		Subject:  req.Subject,
		Category: req.Category,
		Content:  req.Content,
		Design:   req.Design,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(t)
}

func (h *TemplateHandler) DeleteTemplate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid template id")
	}
	if err := h.templateService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
