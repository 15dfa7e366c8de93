package api

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"rottencompany/internal/models"
	"rottencompany/internal/score"
	"rottencompany/internal/validation"
)

// searchLimit caps search-entities results.
const searchLimit = 10

// EntityStore reads entity profiles.
type EntityStore interface {
	GetEntityBySlug(ctx context.Context, slug string) (*models.Entity, error)
	SearchCompanies(ctx context.Context, query string, limit int) ([]models.Entity, error)
}

// EntityHandler serves entity lookups and search.
type EntityHandler struct {
	store       EntityStore
	flavorer    *score.Flavorer
	defaultMode score.Mode
}

// NewEntityHandler creates a new entity handler.
func NewEntityHandler(store EntityStore, flavorer *score.Flavorer, defaultMode score.Mode) *EntityHandler {
	return &EntityHandler{store: store, flavorer: flavorer, defaultMode: defaultMode}
}

// Search matches company names case-insensitively on ?q=. An empty query
// returns no results without touching the store.
func (h *EntityHandler) Search(c fiber.Ctx) error {
	q := validation.NormalizeQuery(c.Query("q"))
	results := []models.SearchResult{}
	if q == "" {
		return c.JSON(fiber.Map{"results": results})
	}

	entities, err := h.store.SearchCompanies(c.Context(), q, searchLimit)
	if err != nil {
		return workflowError(c, err, "search entities")
	}

	for _, e := range entities {
		results = append(results, models.SearchResult{
			Name:              e.Name,
			Slug:              e.Slug,
			SubmitEvidenceURL: models.SubmitEvidenceURL(e.Slug),
		})
	}
	return c.JSON(fiber.Map{"results": results})
}

// Get returns an entity with badge, flavor and the score normalized by
// ?normalize= (defaults to the configured mode).
func (h *EntityHandler) Get(c fiber.Ctx) error {
	mode := h.defaultMode
	if raw := c.Query("normalize"); raw != "" {
		m, err := score.ParseMode(raw)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, err.Error())
		}
		mode = m
	}

	slug := c.Params("slug")
	if !validation.ValidateSlug(slug) {
		return jsonError(c, fiber.StatusNotFound, "not_found")
	}

	entity, err := h.store.GetEntityBySlug(c.Context(), slug)
	if err != nil {
		return workflowError(c, err, "get entity")
	}
	return jsonSuccess(c, h.flavorer.View(entity, mode))
}
