package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pulse-crm/backend/internal/services"
)

// transparentGIF is a 1x1 transparent GIF89a.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21,
	0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

type TrackingHandler struct {
	trackingService *services.TrackingService
}

func NewTrackingHandler(trackingService *services.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// TrackOpen records the open and serves the pixel. It never fails.
func (h *TrackingHandler) TrackOpen(c *fiber.Ctx) error {
	campaignID := c.Query("campaign_id", c.Query("c"))
	email := c.Query("email", c.Query("e"))

	h.trackingService.RecordOpen(c.Context(), campaignID, email, c.IP(), c.Get(fiber.HeaderUserAgent))

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate, private")
	c.Set(fiber.HeaderPragma, "no-cache")
	c.Set(fiber.HeaderExpires, "0")
	return c.Status(fiber.StatusOK).Send(transparentGIF)
}
