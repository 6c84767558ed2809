package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pulse-crm/backend/internal/http/dto"
	"github.com/pulse-crm/backend/internal/middleware"
	"github.com/pulse-crm/backend/internal/services"
	"go.uber.org/zap"
)

const internalErrorMsg = "internal server error"

// respondError maps service errors onto status codes. Unclassified errors are logged
// and answered with a generic 500.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ve.Message, Field: ve.Field})
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	}
	if status != fiber.StatusInternalServerError {
		return c.Status(status).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	log.Error("request failed",
		zap.String("request_id", reqID),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: internalErrorMsg, RequestID: reqID})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

// queryInt returns fallback for a missing or malformed value.
func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryString(c *fiber.Ctx, key string) *string {
	if v := c.Query(key); v != "" {
		return &v
	}
	return nil
}
