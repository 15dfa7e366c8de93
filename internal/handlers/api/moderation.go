package api

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"rottencompany/internal/middleware"
	"rottencompany/internal/models"
	"rottencompany/internal/moderation"
	"rottencompany/internal/validation"
)

// queueLimit caps each list in the moderation queue response.
const queueLimit = 100

// ModerationService is the review side of the moderation workflow.
type ModerationService interface {
	Gate(ctx context.Context) (*models.GateStatus, error)
	Queue(ctx context.Context, limit int) (*moderation.Queue, error)
	Review(ctx context.Context, req moderation.ReviewRequest) (*moderation.ReviewResult, error)
	Recalculate(ctx context.Context) (int, error)
}

// ModerationHandler serves the gate, the queue and moderator actions.
type ModerationHandler struct {
	svc ModerationService
}

// NewModerationHandler creates a new API moderation handler.
func NewModerationHandler(svc ModerationService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

// Gate returns the current moderation gate status. Titles of pending items
// are only shown to moderators.
func (h *ModerationHandler) Gate(c fiber.Ctx) error {
	status, err := h.svc.Gate(c.Context())
	if err != nil {
		return workflowError(c, err, "gate status")
	}
	if user := middleware.GetUser(c); user == nil || !user.IsModerator() {
		status = status.Redacted()
	}
	return c.JSON(status)
}

// Queue lists pending evidence and company requests.
func (h *ModerationHandler) Queue(c fiber.Ctx) error {
	q, err := h.svc.Queue(c.Context(), queueLimit)
	if err != nil {
		return workflowError(c, err, "moderation queue")
	}
	return jsonSuccess(c, q)
}

type reviewRequest struct {
	Note string `json:"note"`
}

// Review returns a handler applying action to the :id row of targetType.
func (h *ModerationHandler) Review(action, targetType string) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := validation.ParseID(c.Params("id"))
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}

		var body reviewRequest
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&body); err != nil {
				return jsonError(c, fiber.StatusBadRequest, "invalid request body")
			}
		}

		result, err := h.svc.Review(c.Context(), moderation.ReviewRequest{
			Action:     action,
			TargetType: targetType,
			TargetID:   id,
			Moderator:  middleware.GetUser(c),
			Note:       body.Note,
		})
		if err != nil {
			return workflowError(c, err, action+" "+targetType)
		}
		return jsonSuccess(c, result)
	}
}

// Recalculate recomputes every entity score. Failures are reported in a 200
// body as {success:false,error}.
func (h *ModerationHandler) Recalculate(c fiber.Ctx) error {
	n, err := h.svc.Recalculate(c.Context())
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "updated": n})
}
