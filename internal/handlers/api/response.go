package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"rottencompany/internal/db"
	"rottencompany/internal/moderation"
)

// jsonSuccess returns a 200 response with data wrapped in the standard envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonCreated returns a 201 response with data wrapped in the standard envelope.
func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonError returns a message-only error body with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// workflowError maps workflow and store errors to HTTP responses.
// Unknown errors are logged and answered 500.
func workflowError(c fiber.Ctx, err error, op string) error {
	var verr *moderation.ValidationError
	switch {
	case errors.As(err, &verr):
		return jsonError(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, moderation.ErrUnknownAction),
		errors.Is(err, moderation.ErrUnknownTarget),
		errors.Is(err, moderation.ErrNoteTooLong):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, moderation.ErrNotModerator):
		return jsonError(c, fiber.StatusForbidden, "moderator access required")
	case errors.Is(err, db.ErrEvidenceNotFound),
		errors.Is(err, db.ErrCompanyRequestNotFound),
		errors.Is(err, db.ErrEntityNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found")
	case errors.Is(err, db.ErrInvalidTransition),
		errors.Is(err, db.ErrDuplicateSlug):
		return jsonError(c, fiber.StatusConflict, err.Error())
	}

	slog.Error("api request failed", "op", op, "path", c.Path(), "error", err)
	return jsonError(c, fiber.StatusInternalServerError, "internal error")
}
