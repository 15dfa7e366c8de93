package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"rottencompany/internal/db"
	"rottencompany/internal/models"
)

// memStore is an in-memory Store with the same transition rules as the database.
type memStore struct {
	evidence     map[int64]*models.Evidence
	requests     map[int64]*models.CompanyRequest
	entities     map[int64]*models.Entity
	actions      []models.ModerationAction
	gate         *models.GateStatus
	recomputeErr error
	recomputes   int
	clock        time.Time
	nextID       int64
}

func newMemStore() *memStore {
	return &memStore{
		evidence: map[int64]*models.Evidence{},
		requests: map[int64]*models.CompanyRequest{},
		entities: map[int64]*models.Entity{},
		gate:     &models.GateStatus{},
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		nextID:   100,
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) GetGateStatus(ctx context.Context, attentionLimit int) (*models.GateStatus, error) {
	g := *m.gate
	return &g, nil
}

func (m *memStore) CreateEvidence(ctx context.Context, ev *models.Evidence) error {
	target, ok := m.entities[ev.TargetID]
	if !ok || target.Kind != ev.TargetType {
		return db.ErrEntityNotFound
	}
	ev.ID = m.id()
	ev.Status = models.StatusPending
	ev.CreatedAt = m.tick()
	cp := *ev
	m.evidence[ev.ID] = &cp
	return nil
}

func (m *memStore) GetEvidenceByID(ctx context.Context, id int64) (*models.Evidence, error) {
	ev, ok := m.evidence[id]
	if !ok {
		return nil, db.ErrEvidenceNotFound
	}
	cp := *ev
	return &cp, nil
}

func (m *memStore) ListPendingEvidence(ctx context.Context, limit int) ([]models.Evidence, error) {
	var out []models.Evidence
	for _, ev := range m.evidence {
		if ev.IsPending() {
			out = append(out, *ev)
		}
	}
	return out, nil
}

func (m *memStore) appendAction(targetType string, id int64, action *models.ModerationAction) {
	action.ID = m.id()
	action.TargetType = targetType
	action.TargetID = id
	action.CreatedAt = m.tick()
	m.actions = append(m.actions, *action)
}

func (m *memStore) TransitionEvidence(ctx context.Context, id int64, action *models.ModerationAction) error {
	ev, ok := m.evidence[id]
	if !ok {
		return db.ErrEvidenceNotFound
	}
	if !ev.IsPending() {
		return db.ErrInvalidTransition
	}
	mod := action.ModeratorID
	if action.Action == models.ActionAssign || ev.AssignedModeratorID == nil {
		ev.AssignedModeratorID = &mod
	}
	ev.Status = action.ResultingStatus()
	m.appendAction(models.TargetEvidence, id, action)
	return nil
}

func (m *memStore) CreateCompanyRequest(ctx context.Context, req *models.CompanyRequest) error {
	req.ID = m.id()
	req.Status = models.StatusPending
	req.CreatedAt = m.tick()
	cp := *req
	m.requests[req.ID] = &cp
	return nil
}

func (m *memStore) GetCompanyRequestByID(ctx context.Context, id int64) (*models.CompanyRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, db.ErrCompanyRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *memStore) ListPendingCompanyRequests(ctx context.Context, limit int) ([]models.CompanyRequest, error) {
	var out []models.CompanyRequest
	for _, r := range m.requests {
		if r.IsPending() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) TransitionCompanyRequest(ctx context.Context, id int64, action *models.ModerationAction, company *models.Entity) error {
	req, ok := m.requests[id]
	if !ok {
		return db.ErrCompanyRequestNotFound
	}
	if !req.IsPending() {
		return db.ErrInvalidTransition
	}
	if action.Action == models.ActionApprove && company != nil {
		for _, e := range m.entities {
			if e.Slug == company.Slug {
				return db.ErrDuplicateSlug
			}
		}
		company.ID = m.id()
		cp := *company
		m.entities[company.ID] = &cp
	}
	mod := action.ModeratorID
	req.AssignedModeratorID = &mod
	req.Status = action.ResultingStatus()
	m.appendAction(models.TargetCompanyRequest, id, action)
	return nil
}

func (m *memStore) ListActions(ctx context.Context, targetType string, targetID int64) ([]models.ModerationAction, error) {
	var out []models.ModerationAction
	for _, a := range m.actions {
		if a.TargetType == targetType && a.TargetID == targetID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetEntityByID(ctx context.Context, id int64) (*models.Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, db.ErrEntityNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) RecomputeScores(ctx context.Context) (int, error) {
	m.recomputes++
	if m.recomputeErr != nil {
		return 0, m.recomputeErr
	}
	return len(m.entities), nil
}

type event struct {
	kind   string
	action string
	id     int64
}

type recordingNotifier struct {
	events    []event
	decideErr error
}

func (r *recordingNotifier) NotifyEvidenceSubmitted(ctx context.Context, ev *models.Evidence, target *models.Entity, submitter *models.User) {
	r.events = append(r.events, event{"evidence_submitted", "", ev.ID})
}

func (r *recordingNotifier) NotifyEvidenceDecision(ctx context.Context, ev *models.Evidence, action *models.ModerationAction, target *models.Entity) error {
	r.events = append(r.events, event{"evidence_decision", action.Action, ev.ID})
	return r.decideErr
}

func (r *recordingNotifier) NotifyCompanyRequestDecision(ctx context.Context, req *models.CompanyRequest, action *models.ModerationAction, company *models.Entity) error {
	r.events = append(r.events, event{"company_request_decision", action.Action, req.ID})
	return r.decideErr
}

func moderator() *models.User {
	return &models.User{ID: uuid.New(), Role: models.RoleModerator, Name: "Mo"}
}

var errBoom = errors.New("boom")
