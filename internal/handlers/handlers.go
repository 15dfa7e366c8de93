// Package handlers serves the server-rendered pages and the sign-in flow.
package handlers

import (
	"context"

	"rottencompany/internal/models"
	"rottencompany/internal/moderation"
)

// EntityReader reads entity profiles and the evidence filed against them.
type EntityReader interface {
	GetEntityBySlug(ctx context.Context, slug string) (*models.Entity, error)
	TopEntities(ctx context.Context, limit int) ([]models.Entity, error)
	ListEvidenceByTarget(ctx context.Context, targetType string, targetID int64, status string) ([]models.Evidence, error)
}

// Workflow is the moderation workflow as used by pages.
type Workflow interface {
	Gate(ctx context.Context) (*models.GateStatus, error)
	Queue(ctx context.Context, limit int) (*moderation.Queue, error)
	SubmitEvidence(ctx context.Context, ev *models.Evidence, submitter *models.User) error
	RequestCompany(ctx context.Context, name string, requester *models.User) (*models.CompanyRequest, error)
	Review(ctx context.Context, req moderation.ReviewRequest) (*moderation.ReviewResult, error)
}
