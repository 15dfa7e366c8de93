package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"rottencompany/internal/config"
	"rottencompany/internal/db"
	"rottencompany/internal/middleware"
	"rottencompany/internal/models"
	"rottencompany/internal/moderation"
	"rottencompany/internal/validation"
)

const dashboardLimit = 100

// ModerationHandler renders the moderation dashboard and its form actions.
type ModerationHandler struct {
	workflow Workflow
	cfg      *config.Config
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(workflow Workflow, cfg *config.Config) *ModerationHandler {
	return &ModerationHandler{workflow: workflow, cfg: cfg}
}

// Index renders the moderation dashboard.
func (h *ModerationHandler) Index(c fiber.Ctx) error {
	gate, err := h.workflow.Gate(c.Context())
	if err != nil {
		return err
	}

	queue, err := h.workflow.Queue(c.Context(), dashboardLimit)
	if err != nil {
		return err
	}

	return render(c, h.cfg, "moderation", fiber.Map{
		"Title":           "Moderation",
		"Gate":            gate,
		"Evidence":        queue.Evidence,
		"CompanyRequests": queue.CompanyRequests,
		"Actions":         []string{models.ActionApprove, models.ActionReject, models.ActionAssign},
		"Flash":           c.Query("flash"),
	})
}

// targetTypes maps URL segments to moderation target types.
var targetTypes = map[string]string{
	"evidence":         models.TargetEvidence,
	"company-requests": models.TargetCompanyRequest,
}

var flashes = map[string]string{
	models.ActionApprove: "approved",
	models.ActionReject:  "rejected",
	models.ActionAssign:  "assigned",
}

// Act applies the :action form post to the :target row and returns to the dashboard.
func (h *ModerationHandler) Act(c fiber.Ctx) error {
	targetType, ok := targetTypes[c.Params("target")]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Unknown moderation target")
	}

	action := c.Params("action")
	if !models.IsValidAction(action) {
		return fiber.NewError(fiber.StatusNotFound, "Unknown moderation action")
	}

	id, err := validation.ParseID(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}

	result, err := h.workflow.Review(c.Context(), moderation.ReviewRequest{
		Action:     action,
		TargetType: targetType,
		TargetID:   id,
		Moderator:  middleware.GetUser(c),
		Note:       c.FormValue("note"),
	})
	switch {
	case errors.Is(err, db.ErrEvidenceNotFound), errors.Is(err, db.ErrCompanyRequestNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Item not found")
	case errors.Is(err, db.ErrInvalidTransition):
		return c.Redirect().To("/moderation?flash=already-reviewed")
	case errors.Is(err, db.ErrDuplicateSlug):
		return c.Redirect().To("/moderation?flash=duplicate-company")
	case errors.Is(err, moderation.ErrNoteTooLong):
		return fiber.NewError(fiber.StatusBadRequest, "Note is too long")
	case errors.Is(err, moderation.ErrNotModerator):
		return fiber.NewError(fiber.StatusForbidden, "Moderator access required")
	case err != nil:
		return err
	}

	flash := flashes[action]
	if result.RecomputeError != "" {
		flash = "recompute-failed"
	}
	return c.Redirect().To("/moderation?flash=" + flash)
}
