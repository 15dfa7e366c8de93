package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"rottencompany/internal/config"
	"rottencompany/internal/db"
	"rottencompany/internal/middleware"
	"rottencompany/internal/models"
	"rottencompany/internal/moderation"
	"rottencompany/internal/score"
	"rottencompany/internal/validation"
)

const topEntitiesLimit = 20

// PageHandler renders the public entity pages and the evidence form.
type PageHandler struct {
	entities EntityReader
	workflow Workflow
	flavorer *score.Flavorer
	mode     score.Mode
	cfg      *config.Config
}

// NewPageHandler creates a new page handler.
func NewPageHandler(entities EntityReader, workflow Workflow, flavorer *score.Flavorer, mode score.Mode, cfg *config.Config) *PageHandler {
	return &PageHandler{entities: entities, workflow: workflow, flavorer: flavorer, mode: mode, cfg: cfg}
}

// Index renders the leaderboard of the rottenest entities.
func (h *PageHandler) Index(c fiber.Ctx) error {
	top, err := h.entities.TopEntities(c.Context(), topEntitiesLimit)
	if err != nil {
		return err
	}

	views := make([]*models.EntityView, 0, len(top))
	for i := range top {
		views = append(views, h.flavorer.View(&top[i], h.mode))
	}

	data := fiber.Map{
		"Title":    "Home",
		"Entities": views,
	}

	// Moderators see the backlog banner
	if user := middleware.GetUser(c); user != nil && user.IsModerator() {
		if gate, err := h.workflow.Gate(c.Context()); err == nil {
			data["Gate"] = gate
		} else {
			slog.Error("failed to load gate status", "error", err)
		}
	}

	return render(c, h.cfg, "index", data)
}

func (h *PageHandler) entityFromPath(c fiber.Ctx) (*models.Entity, error) {
	slug := c.Params("slug")
	if !validation.ValidateSlug(slug) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Company not found")
	}
	entity, err := h.entities.GetEntityBySlug(c.Context(), slug)
	if errors.Is(err, db.ErrEntityNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Company not found")
	}
	return entity, err
}

// Company renders an entity profile with its approved evidence.
func (h *PageHandler) Company(c fiber.Ctx) error {
	entity, err := h.entityFromPath(c)
	if err != nil {
		return err
	}

	mode := h.mode
	if m, err := score.ParseMode(c.Query("normalize")); err == nil && c.Query("normalize") != "" {
		mode = m
	}

	evidence, err := h.entities.ListEvidenceByTarget(c.Context(), entity.Kind, entity.ID, models.StatusApproved)
	if err != nil {
		return err
	}

	return render(c, h.cfg, "company", fiber.Map{
		"Title":     entity.Name,
		"Entity":    h.flavorer.View(entity, mode),
		"Evidence":  evidence,
		"SubmitURL": models.SubmitEvidenceURL(entity.Slug),
		"Submitted": c.Query("submitted") == "1",
		"Modes":     []score.Mode{score.ModeNone, score.ModeEmployees, score.ModeRevenue},
	})
}

// SubmitEvidenceForm renders the evidence form for an entity.
func (h *PageHandler) SubmitEvidenceForm(c fiber.Ctx) error {
	entity, err := h.entityFromPath(c)
	if err != nil {
		return err
	}
	return h.renderForm(c, entity, &models.Evidence{Severity: models.DefaultSeverity}, "")
}

// SubmitEvidence files evidence from the form and returns to the profile.
func (h *PageHandler) SubmitEvidence(c fiber.Ctx) error {
	entity, err := h.entityFromPath(c)
	if err != nil {
		return err
	}

	severity, _ := strconv.Atoi(c.FormValue("severity"))
	ev := &models.Evidence{
		Title:      c.FormValue("title"),
		Summary:    c.FormValue("summary"),
		FileRef:    c.FormValue("file_ref"),
		Category:   c.FormValue("category"),
		Severity:   severity,
		TargetType: entity.Kind,
		TargetID:   entity.ID,
	}

	err = h.workflow.SubmitEvidence(c.Context(), ev, middleware.GetUser(c))
	var verr *moderation.ValidationError
	if errors.As(err, &verr) {
		c.Status(fiber.StatusBadRequest)
		return h.renderForm(c, entity, ev, verr.Message)
	}
	if err != nil {
		return err
	}

	return c.Redirect().To("/company/" + entity.Slug + "?submitted=1")
}

func (h *PageHandler) renderForm(c fiber.Ctx, entity *models.Entity, ev *models.Evidence, errMsg string) error {
	return render(c, h.cfg, "submit_evidence", fiber.Map{
		"Title":      "Submit evidence about " + entity.Name,
		"Entity":     entity,
		"Form":       ev,
		"Error":      errMsg,
		"Categories": models.Categories,
		"Severities": severityOptions(),
	})
}

// RequestCompany files a request to add a company from the home page form.
func (h *PageHandler) RequestCompany(c fiber.Ctx) error {
	_, err := h.workflow.RequestCompany(c.Context(), c.FormValue("name"), middleware.GetUser(c))
	var verr *moderation.ValidationError
	if errors.As(err, &verr) {
		return fiber.NewError(fiber.StatusBadRequest, verr.Message)
	}
	if err != nil {
		return err
	}
	return c.Redirect().To("/?requested=1")
}

// Login renders the sign-in page.
func (h *PageHandler) Login(c fiber.Ctx) error {
	if middleware.GetUser(c) != nil {
		return c.Redirect().To("/")
	}
	return render(c, h.cfg, "login", fiber.Map{"Title": "Sign in"})
}

func severityOptions() []int {
	opts := make([]int, 0, models.MaxSeverity)
	for s := models.MinSeverity; s <= models.MaxSeverity; s++ {
		opts = append(opts, s)
	}
	return opts
}
