package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

// PipelineHandler runs the due sweep and the queue processor on demand.
type PipelineHandler struct {
	scheduleService *services.ScheduleService
	queueService    *services.QueueService
	log             *zap.Logger
}

func NewPipelineHandler(scheduleService *services.ScheduleService, queueService *services.QueueService, log *zap.Logger) *PipelineHandler {
	return &PipelineHandler{scheduleService: scheduleService, queueService: queueService, log: log}
}

func (h *PipelineHandler) ProcessScheduled(c *fiber.Ctx) error {
	res, err := h.scheduleService.ProcessDue(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(res)
}

func (h *PipelineHandler) QueueStats(c *fiber.Ctx) error {
	var campaignID *uuid.UUID
	if v := c.Query("campaign_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid campaign_id")
		}
		campaignID = &id
	}

	stats, err := h.queueService.Stats(c.Context(), campaignID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

func (h *PipelineHandler) ProcessQueue(c *fiber.Ctx) error {
	res, err := h.queueService.ProcessBatch(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(res)
}
