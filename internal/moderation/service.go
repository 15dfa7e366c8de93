package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"rottencompany/internal/db"
	"rottencompany/internal/metrics"
	"rottencompany/internal/models"
	"rottencompany/internal/validation"
)

// Workflow errors. Store errors such as db.ErrEvidenceNotFound and
// db.ErrInvalidTransition are passed through unchanged.
var (
	ErrUnknownAction = errors.New("unknown moderation action")
	ErrUnknownTarget = errors.New("unknown moderation target")
	ErrNotModerator  = errors.New("moderator role required")
	ErrNoteTooLong   = errors.New("note is too long")
	ErrInvalidInput  = errors.New("invalid input")
)

// ValidationError carries a user-facing message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets callers match ErrInvalidInput.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Store is the persistence the workflow needs.
type Store interface {
	GateStore

	CreateEvidence(ctx context.Context, ev *models.Evidence) error
	GetEvidenceByID(ctx context.Context, id int64) (*models.Evidence, error)
	ListPendingEvidence(ctx context.Context, limit int) ([]models.Evidence, error)
	TransitionEvidence(ctx context.Context, id int64, action *models.ModerationAction) error

	CreateCompanyRequest(ctx context.Context, req *models.CompanyRequest) error
	GetCompanyRequestByID(ctx context.Context, id int64) (*models.CompanyRequest, error)
	ListPendingCompanyRequests(ctx context.Context, limit int) ([]models.CompanyRequest, error)
	TransitionCompanyRequest(ctx context.Context, id int64, action *models.ModerationAction, company *models.Entity) error

	ListActions(ctx context.Context, targetType string, targetID int64) ([]models.ModerationAction, error)
	GetEntityByID(ctx context.Context, id int64) (*models.Entity, error)
	RecomputeScores(ctx context.Context) (int, error)
}

// Notifier receives workflow events that produce e-mail.
type Notifier interface {
	NotifyEvidenceSubmitted(ctx context.Context, ev *models.Evidence, target *models.Entity, submitter *models.User)
	NotifyEvidenceDecision(ctx context.Context, ev *models.Evidence, action *models.ModerationAction, target *models.Entity) error
	NotifyCompanyRequestDecision(ctx context.Context, req *models.CompanyRequest, action *models.ModerationAction, company *models.Entity) error
}

// Service coordinates evidence lookup, submission and review.
type Service struct {
	store    Store
	notifier Notifier
	gate     *Gate
}

// NewService creates the workflow service.
func NewService(store Store, notifier Notifier, gate *Gate) *Service {
	return &Service{store: store, notifier: notifier, gate: gate}
}

// Gate returns the backlog status.
func (s *Service) Gate(ctx context.Context) (*models.GateStatus, error) {
	return s.gate.Status(ctx)
}

// EvidenceMeta returns status, assignment and history for an evidence row.
// A missing row yields the pending default rather than an error.
func (s *Service) EvidenceMeta(ctx context.Context, id int64) (*models.EvidenceMeta, error) {
	ev, err := s.store.GetEvidenceByID(ctx, id)
	if errors.Is(err, db.ErrEvidenceNotFound) {
		return models.DefaultEvidenceMeta(), nil
	}
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListActions(ctx, models.TargetEvidence, id)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.ModerationAction{}
	}

	return &models.EvidenceMeta{
		Status:              ev.Status,
		AssignedModeratorID: ev.AssignedModeratorID,
		History:             history,
	}, nil
}

// Evidence returns the full evidence row or db.ErrEvidenceNotFound.
func (s *Service) Evidence(ctx context.Context, id int64) (*models.Evidence, error) {
	return s.store.GetEvidenceByID(ctx, id)
}

// Recalculate recomputes every entity score from approved evidence.
func (s *Service) Recalculate(ctx context.Context) (int, error) {
	return s.store.RecomputeScores(ctx)
}

// Queue holds the pending review work.
type Queue struct {
	Evidence        []models.Evidence       `json:"evidence"`
	CompanyRequests []models.CompanyRequest `json:"company_requests"`
}

// Queue lists pending evidence and company requests, oldest first.
func (s *Service) Queue(ctx context.Context, limit int) (*Queue, error) {
	evidence, err := s.store.ListPendingEvidence(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending evidence: %w", err)
	}
	requests, err := s.store.ListPendingCompanyRequests(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending company requests: %w", err)
	}
	if evidence == nil {
		evidence = []models.Evidence{}
	}
	if requests == nil {
		requests = []models.CompanyRequest{}
	}
	return &Queue{Evidence: evidence, CompanyRequests: requests}, nil
}

// SubmitEvidence validates and stores new evidence, then tells moderators.
func (s *Service) SubmitEvidence(ctx context.Context, ev *models.Evidence, submitter *models.User) error {
	if ok, msg := validation.ValidateEvidence(ev); !ok {
		return &ValidationError{Message: msg}
	}
	ev.SubmitterID = submitter.ID

	if err := s.store.CreateEvidence(ctx, ev); err != nil {
		return err
	}

	target, err := s.store.GetEntityByID(ctx, ev.TargetID)
	if err != nil {
		slog.Warn("failed to load evidence target for notification", "evidence_id", ev.ID, "error", err)
	}
	s.notifier.NotifyEvidenceSubmitted(ctx, ev, target, submitter)
	return nil
}

// RequestCompany stores a request to add a new company profile.
func (s *Service) RequestCompany(ctx context.Context, name string, requester *models.User) (*models.CompanyRequest, error) {
	name = strings.TrimSpace(name)
	if ok, msg := validation.ValidateCompanyName(name); !ok {
		return nil, &ValidationError{Message: msg}
	}

	req := &models.CompanyRequest{Name: name, UserID: requester.ID}
	if err := s.store.CreateCompanyRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ReviewRequest describes one moderator action.
type ReviewRequest struct {
	Action     string
	TargetType string
	TargetID   int64
	Moderator  *models.User
	Note       string
}

// ReviewResult reports what a review changed. RecomputeError is set when the
// score recompute after a decision failed; the decision itself still stands.
type ReviewResult struct {
	Action         *models.ModerationAction `json:"action"`
	Status         string                   `json:"status"`
	Company        *models.Entity           `json:"company,omitempty"`
	Recomputed     int                      `json:"recomputed"`
	RecomputeError string                   `json:"recompute_error,omitempty"`
}

// Review applies an approve, reject or assign action to a pending row.
// The status change and its action log entry are written together; score
// recompute and notification follow and never undo the decision.
func (s *Service) Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	if !models.IsValidAction(req.Action) {
		return nil, ErrUnknownAction
	}
	if req.Moderator == nil || !req.Moderator.IsModerator() {
		return nil, ErrNotModerator
	}
	note := strings.TrimSpace(req.Note)
	if len(note) > validation.MaxNoteLength {
		return nil, ErrNoteTooLong
	}

	action := &models.ModerationAction{
		Action:      req.Action,
		ModeratorID: req.Moderator.ID,
		Note:        note,
	}

	var (
		result *ReviewResult
		err    error
	)
	switch req.TargetType {
	case models.TargetEvidence:
		result, err = s.reviewEvidence(ctx, req.TargetID, action)
	case models.TargetCompanyRequest:
		result, err = s.reviewCompanyRequest(ctx, req.TargetID, action)
	default:
		return nil, ErrUnknownTarget
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordModerationAction(action.Action, action.TargetType)

	if action.IsDecision() {
		n, err := s.store.RecomputeScores(ctx)
		if err != nil {
			slog.Error("score recompute failed after moderation", "target_type", action.TargetType, "target_id", action.TargetID, "error", err)
			result.RecomputeError = err.Error()
		}
		result.Recomputed = n
	}

	return result, nil
}

func (s *Service) reviewEvidence(ctx context.Context, id int64, action *models.ModerationAction) (*ReviewResult, error) {
	if err := s.store.TransitionEvidence(ctx, id, action); err != nil {
		return nil, err
	}

	result := &ReviewResult{Action: action, Status: action.ResultingStatus()}
	if !action.IsDecision() {
		return result, nil
	}

	ev, err := s.store.GetEvidenceByID(ctx, id)
	if err != nil {
		slog.Error("failed to reload evidence for notification", "evidence_id", id, "error", err)
		return result, nil
	}
	target, err := s.store.GetEntityByID(ctx, ev.TargetID)
	if err != nil {
		slog.Warn("failed to load evidence target for notification", "evidence_id", id, "error", err)
	}
	if err := s.notifier.NotifyEvidenceDecision(ctx, ev, action, target); err != nil {
		slog.Error("failed to notify evidence decision", "evidence_id", id, "error", err)
	}
	return result, nil
}

func (s *Service) reviewCompanyRequest(ctx context.Context, id int64, action *models.ModerationAction) (*ReviewResult, error) {
	req, err := s.store.GetCompanyRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var company *models.Entity
	if action.Action == models.ActionApprove {
		company = &models.Entity{
			Kind: models.TargetCompany,
			Name: req.Name,
			Slug: validation.Slugify(req.Name),
		}
	}

	if err := s.store.TransitionCompanyRequest(ctx, id, action, company); err != nil {
		return nil, err
	}

	result := &ReviewResult{Action: action, Status: action.ResultingStatus(), Company: company}
	if action.IsDecision() {
		req.Status = action.ResultingStatus()
		if err := s.notifier.NotifyCompanyRequestDecision(ctx, req, action, company); err != nil {
			slog.Error("failed to notify company request decision", "company_request_id", id, "error", err)
		}
	}
	return result, nil
}
