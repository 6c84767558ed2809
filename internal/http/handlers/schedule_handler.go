package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/middleware"
	"github.com/pulse-crm/backend/internal/models"
	"github.com/pulse-crm/backend/internal/repositories"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	log             *zap.Logger
}

func NewScheduleHandler(scheduleService *services.ScheduleService, log *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, log: log}
}

func (h *ScheduleHandler) CreateSchedule(c *fiber.Ctx) error {
	var req dto.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.CampaignID == "" {
		return badRequest(c, "campaign_id is required")
	}
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return badRequest(c, "invalid campaign_id")
	}

	sch, err := h.scheduleService.Create(c.Context(), middleware.GetUserID(c), services.ScheduleInput{
		CampaignID:     campaignID,
		ScheduledAt:    req.ScheduledAt,
		RecipientType:  req.RecipientType,
		RecipientEmail: req.RecipientEmail,
		RecipientGroup: req.RecipientGroup,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sch)
}

func (h *ScheduleHandler) ListSchedules(c *fiber.Ctx) error {
	filter := repositories.ScheduleFilter{
		Status: queryString(c, "status"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if filter.Status != nil {
		switch *filter.Status {
		case models.ScheduleStatusScheduled, models.ScheduleStatusProcessing,
			models.ScheduleStatusSent, models.ScheduleStatusFailed:
		default:
			return badRequest(c, "unknown status filter")
		}
	}
	if v := c.Query("campaign_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid campaign_id")
		}
		filter.CampaignID = &id
	}

	schedules, err := h.scheduleService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(schedules)
}

func (h *ScheduleHandler) GetSchedule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}
	sch, err := h.scheduleService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(sch)
}

func (h *ScheduleHandler) UpdateSchedule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}

	var req dto.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sch, err := h.scheduleService.Update(c.Context(), id, services.ScheduleInput{
		ScheduledAt:    req.ScheduledAt,
		RecipientType:  req.RecipientType,
		RecipientEmail: req.RecipientEmail,
		RecipientGroup: req.RecipientGroup,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(sch)
}

func (h *ScheduleHandler) DeleteSchedule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid schedule id")
	}
	if err := h.scheduleService.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
