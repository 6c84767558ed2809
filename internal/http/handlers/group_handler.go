package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

type GroupHandler struct {
	groupService *services.GroupService
	log          *zap.Logger
}

func NewGroupHandler(groupService *services.GroupService, log *zap.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, log: log}
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	g := &models.ContactGroup{}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	if err := h.groupService.Create(c.Context(), g); err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

func (h *GroupHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.groupService.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(groups)
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	g, err := h.groupService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(g)
}

func (h *GroupHandler) UpdateGroup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid group id")
	}

	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	g, err := h.groupService.Update(c.Context(), id, req.Name, req.Description)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(g)
}

func (h *GroupHandler) DeleteGroup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid group id")
	}
	if err := h.groupService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
