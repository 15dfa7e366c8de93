package api

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"rottencompany/internal/middleware"
	"rottencompany/internal/models"
	"rottencompany/internal/validation"
)

// EvidenceService is the evidence side of the moderation workflow.
type EvidenceService interface {
	EvidenceMeta(ctx context.Context, id int64) (*models.EvidenceMeta, error)
	Evidence(ctx context.Context, id int64) (*models.Evidence, error)
	SubmitEvidence(ctx context.Context, ev *models.Evidence, submitter *models.User) error
	RequestCompany(ctx context.Context, name string, requester *models.User) (*models.CompanyRequest, error)
}

// EvidenceHandler serves evidence lookup and submission.
type EvidenceHandler struct {
	svc EvidenceService
}

// NewEvidenceHandler creates a new evidence handler.
func NewEvidenceHandler(svc EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{svc: svc}
}

// Meta returns status, assignment and history for ?id=. Unknown ids get the
// pending default with an empty history, not a 404.
func (h *EvidenceHandler) Meta(c fiber.Ctx) error {
	id, err := validation.ParseID(c.Query("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	meta, err := h.svc.EvidenceMeta(c.Context(), id)
	if err != nil {
		return workflowError(c, err, "evidence meta")
	}
	return c.JSON(meta)
}

// ByID returns the evidence row for ?id=, or 404 {"error":"not_found"}.
func (h *EvidenceHandler) ByID(c fiber.Ctx) error {
	id, err := validation.ParseID(c.Query("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ev, err := h.svc.Evidence(c.Context(), id)
	if err != nil {
		return workflowError(c, err, "evidence by id")
	}
	return c.JSON(ev)
}

type createEvidenceRequest struct {
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	FileRef    string `json:"file_ref"`
	Category   string `json:"category"`
	Severity   int    `json:"severity"`
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
}

// Create files new evidence for moderation.
func (h *EvidenceHandler) Create(c fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createEvidenceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	ev := &models.Evidence{
		Title:      req.Title,
		Summary:    req.Summary,
		FileRef:    req.FileRef,
		Category:   req.Category,
		Severity:   req.Severity,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
	}
	if ev.TargetType == "" {
		ev.TargetType = models.TargetCompany
	}

	if err := h.svc.SubmitEvidence(c.Context(), ev, user); err != nil {
		return workflowError(c, err, "create evidence")
	}
	return jsonCreated(c, ev)
}

type createCompanyRequestRequest struct {
	Name string `json:"name"`
}

// CreateCompanyRequest asks moderators to add a new company.
func (h *EvidenceHandler) CreateCompanyRequest(c fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createCompanyRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.svc.RequestCompany(c.Context(), req.Name, user)
	if err != nil {
		return workflowError(c, err, "create company request")
	}
	return jsonCreated(c, created)
}
