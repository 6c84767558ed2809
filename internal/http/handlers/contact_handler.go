package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *services.ContactService
	log            *zap.Logger
}

func NewContactHandler(contactService *services.ContactService, log *zap.Logger) *ContactHandler {
	return &ContactHandler{contactService: contactService, log: log}
}

func optIn(v *bool) bool {
	return v == nil || *v
}

func (h *ContactHandler) CreateContact(c *fiber.Ctx) error {
	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	contact := &models.Contact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Group: req.Group,
		Opt1:  optIn(req.Opt1),
		Opt2:  optIn(req.Opt2),
		Opt3:  optIn(req.Opt3),
		Notes: req.Notes,
	}
	if err := h.contactService.Create(c.Context(), contact); err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ContactCreatedResponse{ContactID: contact.ID, Contact: contact})
}

func (h *ContactHandler) ListContacts(c *fiber.Ctx) error {
	filter := repositories.ContactFilter{
		Group:  queryString(c, "group"),
		Search: queryString(c, "search"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}

	contacts, err := h.contactService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(contacts)
}

func (h *ContactHandler) GetContact(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contact id")
	}

	contact, err := h.contactService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(contact)
}

func (h *ContactHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contact id")
	}

	var req dto.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	contact, err := h.contactService.Update(c.Context(), id, services.ContactPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Group: req.Group,
		Opt1:  req.Opt1,
		Opt2:  req.Opt2,
		Opt3:  req.Opt3,
		Notes: req.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(contact)
}

func (h *ContactHandler) DeleteContact(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contact id")
	}

	if err := h.contactService.Delete(c.Context(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
