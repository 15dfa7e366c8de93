package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"rottencompany/internal/db"
	"rottencompany/internal/models"
	"rottencompany/internal/moderation"
	"rottencompany/internal/score"
)

type fakeWorkflow struct {
	evidence    map[int64]*models.Evidence
	gate        *models.GateStatus
	recompute   error
	lastReview  moderation.ReviewRequest
	reviewErr   error
	submitted   *models.Evidence
	submitErr   error
	storeFailed bool
}

func (f *fakeWorkflow) EvidenceMeta(ctx context.Context, id int64) (*models.EvidenceMeta, error) {
	ev, ok := f.evidence[id]
	if !ok {
		return models.DefaultEvidenceMeta(), nil
	}
	return &models.EvidenceMeta{Status: ev.Status, History: []models.ModerationAction{}}, nil
}

func (f *fakeWorkflow) Evidence(ctx context.Context, id int64) (*models.Evidence, error) {
	ev, ok := f.evidence[id]
	if !ok {
		return nil, db.ErrEvidenceNotFound
	}
	return ev, nil
}

func (f *fakeWorkflow) SubmitEvidence(ctx context.Context, ev *models.Evidence, submitter *models.User) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	ev.ID = 77
	ev.Status = models.StatusPending
	ev.SubmitterID = submitter.ID
	f.submitted = ev
	return nil
}

func (f *fakeWorkflow) RequestCompany(ctx context.Context, name string, requester *models.User) (*models.CompanyRequest, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &moderation.ValidationError{Message: "Company name is required"}
	}
	return &models.CompanyRequest{ID: 5, Name: name, Status: models.StatusPending, UserID: requester.ID}, nil
}

func (f *fakeWorkflow) Gate(ctx context.Context) (*models.GateStatus, error) {
	if f.storeFailed {
		return nil, errors.New("db down")
	}
	return f.gate, nil
}

func (f *fakeWorkflow) Queue(ctx context.Context, limit int) (*moderation.Queue, error) {
	return &moderation.Queue{Evidence: []models.Evidence{}, CompanyRequests: []models.CompanyRequest{}}, nil
}

func (f *fakeWorkflow) Review(ctx context.Context, req moderation.ReviewRequest) (*moderation.ReviewResult, error) {
	f.lastReview = req
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return &moderation.ReviewResult{
		Action: &models.ModerationAction{Action: req.Action, TargetType: req.TargetType, TargetID: req.TargetID},
		Status: models.StatusApproved,
	}, nil
}

func (f *fakeWorkflow) Recalculate(ctx context.Context) (int, error) {
	return 3, f.recompute
}

type fakeEntities struct {
	entities    []models.Entity
	searchErr   error
	searchCalls int
	lastLimit   int
	lastQuery   string
}

func (f *fakeEntities) GetEntityBySlug(ctx context.Context, slug string) (*models.Entity, error) {
	for i := range f.entities {
		if f.entities[i].Slug == slug {
			return &f.entities[i], nil
		}
	}
	return nil, db.ErrEntityNotFound
}

func (f *fakeEntities) SearchCompanies(ctx context.Context, query string, limit int) ([]models.Entity, error) {
	f.searchCalls++
	f.lastLimit = limit
	f.lastQuery = query
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	// Postgres rejects parameters that are not valid UTF-8
	if !utf8.ValidString(query) {
		return nil, errors.New("invalid byte sequence for encoding \"UTF8\"")
	}
	var out []models.Entity
	for _, e := range f.entities {
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(query)) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

var testModerator = &models.User{ID: uuid.New(), Role: models.RoleModerator, Name: "Mo"}

func newTestApp(wf *fakeWorkflow, ents *fakeEntities, user *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})

	evidence := NewEvidenceHandler(wf)
	mod := NewModerationHandler(wf)
	entities := NewEntityHandler(ents, score.NewFlavorer(nil), score.ModeNone)

	app.Get("/api/evidence-meta", evidence.Meta)
	app.Get("/api/evidence/by-id", evidence.ByID)
	app.Post("/api/evidence", evidence.Create)
	app.Post("/api/company-requests", evidence.CreateCompanyRequest)
	app.Get("/api/moderation/gate", mod.Gate)
	app.Get("/api/moderation/queue", mod.Queue)
	app.Post("/api/moderation/evidence/:id/approve", mod.Review(models.ActionApprove, models.TargetEvidence))
	app.Post("/api/score/recalculate", mod.Recalculate)
	app.Get("/api/search-entities", entities.Search)
	app.Get("/api/entities/:slug", entities.Get)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", method, target, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("response is not a JSON object: %s", raw)
		}
	}
	return resp.StatusCode, out
}

func TestEvidenceMeta(t *testing.T) {
	wf := &fakeWorkflow{evidence: map[int64]*models.Evidence{
		1: {ID: 1, Status: models.StatusApproved},
	}}
	app := newTestApp(wf, &fakeEntities{}, nil)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantField  string
		wantValue  any
	}{
		{"non integer id", "/api/evidence-meta?id=abc", 400, "error", "id must be an integer"},
		{"missing id", "/api/evidence-meta", 400, "error", "id is required"},
		{"unknown id defaults", "/api/evidence-meta?id=999999", 200, "status", "pending"},
		{"existing row", "/api/evidence-meta?id=1", 200, "status", "approved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "GET", tt.target, "")
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if body[tt.wantField] != tt.wantValue {
				t.Errorf("%s = %v, want %v", tt.wantField, body[tt.wantField], tt.wantValue)
			}
		})
	}

	_, body := do(t, app, "GET", "/api/evidence-meta?id=999999", "")
	if history, ok := body["history"].([]any); !ok || len(history) != 0 {
		t.Errorf("history = %v, want empty array", body["history"])
	}
	if body["assigned_moderator_id"] != nil {
		t.Errorf("assigned_moderator_id = %v, want null", body["assigned_moderator_id"])
	}
}

func TestEvidenceByID(t *testing.T) {
	wf := &fakeWorkflow{evidence: map[int64]*models.Evidence{
		1: {ID: 1, Title: "Spill", Status: models.StatusPending},
	}}
	app := newTestApp(wf, &fakeEntities{}, nil)

	status, body := do(t, app, "GET", "/api/evidence/by-id?id=abc", "")
	if status != 400 {
		t.Errorf("bad id status = %d, want 400", status)
	}

	status, body = do(t, app, "GET", "/api/evidence/by-id?id=999999", "")
	if status != 404 || body["error"] != "not_found" {
		t.Errorf("missing row = %d %v, want 404 not_found", status, body)
	}

	status, body = do(t, app, "GET", "/api/evidence/by-id?id=1", "")
	if status != 200 || body["title"] != "Spill" {
		t.Errorf("existing row = %d %v", status, body)
	}
}

func TestCreateEvidence(t *testing.T) {
	wf := &fakeWorkflow{}
	user := &models.User{ID: uuid.New(), Role: models.RoleUser}

	status, _ := do(t, newTestApp(wf, &fakeEntities{}, nil), "POST", "/api/evidence", `{"title":"x","target_id":1}`)
	if status != 401 {
		t.Errorf("anonymous status = %d, want 401", status)
	}

	app := newTestApp(wf, &fakeEntities{}, user)
	status, body := do(t, app, "POST", "/api/evidence", `{"title":"Wage theft","target_id":1,"severity":7}`)
	if status != 201 {
		t.Fatalf("status = %d, want 201 (%v)", status, body)
	}
	if wf.submitted.TargetType != models.TargetCompany {
		t.Errorf("TargetType = %q, want company default", wf.submitted.TargetType)
	}
	data := body["data"].(map[string]any)
	if data["id"] != float64(77) {
		t.Errorf("id = %v", data["id"])
	}

	wf.submitErr = &moderation.ValidationError{Message: "Title is required"}
	status, body = do(t, app, "POST", "/api/evidence", `{"target_id":1}`)
	if status != 400 || body["error"] != "Title is required" {
		t.Errorf("invalid = %d %v", status, body)
	}

	wf.submitErr = db.ErrEntityNotFound
	status, _ = do(t, app, "POST", "/api/evidence", `{"title":"x","target_id":404}`)
	if status != 404 {
		t.Errorf("unknown target status = %d, want 404", status)
	}

	status, _ = do(t, app, "POST", "/api/evidence", `{not json`)
	if status != 400 {
		t.Errorf("malformed body status = %d, want 400", status)
	}
}

func TestCreateCompanyRequest(t *testing.T) {
	app := newTestApp(&fakeWorkflow{}, &fakeEntities{}, &models.User{ID: uuid.New()})

	status, body := do(t, app, "POST", "/api/company-requests", `{"name":"Initech"}`)
	if status != 201 {
		t.Fatalf("status = %d, want 201", status)
	}
	if data := body["data"].(map[string]any); data["name"] != "Initech" || data["status"] != "pending" {
		t.Errorf("data = %v", data)
	}

	status, _ = do(t, app, "POST", "/api/company-requests", `{"name":"  "}`)
	if status != 400 {
		t.Errorf("blank name status = %d, want 400", status)
	}
}

func TestGate(t *testing.T) {
	wf := &fakeWorkflow{gate: &models.GateStatus{
		Blocked:         true,
		PendingEvidence: 2,
		Attention: []models.GateItem{
			{TargetType: models.TargetEvidence, TargetID: 7, Title: "Unverified claim", CreatedAt: time.Now()},
		},
	}}
	app := newTestApp(wf, &fakeEntities{}, nil)

	status, body := do(t, app, "GET", "/api/moderation/gate", "")
	if status != 200 || body["blocked"] != true || body["pending_evidence"] != float64(2) {
		t.Errorf("gate = %d %v", status, body)
	}

	// Anonymous callers see targets but not unmoderated titles
	attention := body["attention"].([]any)
	if len(attention) != 1 {
		t.Fatalf("attention = %v, want one item", attention)
	}
	item := attention[0].(map[string]any)
	if item["target_type"] != models.TargetEvidence || item["target_id"] != float64(7) {
		t.Errorf("attention item = %v", item)
	}
	if _, ok := item["title"]; ok {
		t.Errorf("anonymous gate exposes title: %v", item)
	}
	if _, ok := item["created_at"]; ok {
		t.Errorf("anonymous gate exposes created_at: %v", item)
	}
	if wf.gate.Attention[0].Title != "Unverified claim" {
		t.Error("redaction mutated the service result")
	}

	for _, user := range []*models.User{{ID: uuid.New(), Role: models.RoleUser}, testModerator} {
		_, body = do(t, newTestApp(wf, &fakeEntities{}, user), "GET", "/api/moderation/gate", "")
		item := body["attention"].([]any)[0].(map[string]any)
		_, hasTitle := item["title"]
		if hasTitle != user.IsModerator() {
			t.Errorf("role %s: title shown = %v, want %v", user.Role, hasTitle, user.IsModerator())
		}
	}

	wf.storeFailed = true
	status, _ = do(t, app, "GET", "/api/moderation/gate", "")
	if status != 500 {
		t.Errorf("store failure status = %d, want 500", status)
	}
}

func TestReview(t *testing.T) {
	wf := &fakeWorkflow{}
	app := newTestApp(wf, &fakeEntities{}, testModerator)

	status, body := do(t, app, "POST", "/api/moderation/evidence/12/approve", `{"note":"checked"}`)
	if status != 200 || body["status"] != "ok" {
		t.Fatalf("approve = %d %v", status, body)
	}
	if wf.lastReview.TargetID != 12 || wf.lastReview.Note != "checked" || wf.lastReview.Moderator != testModerator {
		t.Errorf("review request = %+v", wf.lastReview)
	}

	status, _ = do(t, app, "POST", "/api/moderation/evidence/12/approve", "")
	if status != 200 {
		t.Errorf("approve without body = %d, want 200", status)
	}

	tests := []struct {
		name       string
		target     string
		reviewErr  error
		wantStatus int
	}{
		{"bad id", "/api/moderation/evidence/abc/approve", nil, 400},
		{"missing", "/api/moderation/evidence/9/approve", db.ErrEvidenceNotFound, 404},
		{"not pending", "/api/moderation/evidence/9/approve", db.ErrInvalidTransition, 409},
		{"not moderator", "/api/moderation/evidence/9/approve", moderation.ErrNotModerator, 403},
		{"store failure", "/api/moderation/evidence/9/approve", errors.New("db down"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf.reviewErr = tt.reviewErr
			status, _ := do(t, app, "POST", tt.target, "")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestRecalculate(t *testing.T) {
	wf := &fakeWorkflow{}
	app := newTestApp(wf, &fakeEntities{}, testModerator)

	status, body := do(t, app, "POST", "/api/score/recalculate", "")
	if status != 200 || body["success"] != true {
		t.Errorf("success = %d %v", status, body)
	}

	wf.recompute = errors.New("function recompute_scores() does not exist")
	status, body = do(t, app, "POST", "/api/score/recalculate", "")
	if status != 200 || body["success"] != false || body["error"] != "function recompute_scores() does not exist" {
		t.Errorf("failure = %d %v", status, body)
	}
}

func TestSearchEntities(t *testing.T) {
	ents := &fakeEntities{}
	for i := 0; i < 12; i++ {
		ents.entities = append(ents.entities, models.Entity{Name: "ACME Division " + string(rune('A'+i)), Slug: "acme-" + string(rune('a'+i))})
	}
	ents.entities = append(ents.entities, models.Entity{Name: "Globex", Slug: "globex"})
	app := newTestApp(&fakeWorkflow{}, ents, nil)

	status, body := do(t, app, "GET", "/api/search-entities?q=", "")
	if status != 200 {
		t.Fatalf("empty q status = %d", status)
	}
	if results := body["results"].([]any); len(results) != 0 {
		t.Errorf("empty q results = %v", results)
	}
	if ents.searchCalls != 0 {
		t.Errorf("empty q hit the store %d times", ents.searchCalls)
	}

	_, body = do(t, app, "GET", "/api/search-entities?q=acm", "")
	results := body["results"].([]any)
	if len(results) != 10 || ents.lastLimit != 10 {
		t.Fatalf("results = %d (limit %d), want 10", len(results), ents.lastLimit)
	}
	first := results[0].(map[string]any)
	if first["submitEvidenceUrl"] != "/company/acme-a/submit-evidence" || first["slug"] != "acme-a" {
		t.Errorf("first result = %v", first)
	}

	// A long multi-byte query is capped without splitting a character
	long := strings.Repeat("a", 99) + "é" + strings.Repeat("株", 10)
	status, _ = do(t, app, "GET", "/api/search-entities?q="+url.QueryEscape(long), "")
	if status != 200 {
		t.Errorf("multi-byte query status = %d, want 200", status)
	}
	if !utf8.ValidString(ents.lastQuery) || ents.lastQuery != strings.Repeat("a", 99) {
		t.Errorf("store query = %q, want 99 a's", ents.lastQuery)
	}

	status, _ = do(t, app, "GET", "/api/search-entities?q="+url.QueryEscape("Société"), "")
	if status != 200 || ents.lastQuery != "Société" {
		t.Errorf("accented query status = %d, store query = %q", status, ents.lastQuery)
	}

	ents.searchErr = errors.New("db down")
	status, _ = do(t, app, "GET", "/api/search-entities?q=acm", "")
	if status != 500 {
		t.Errorf("store error status = %d, want 500", status)
	}
}

func TestGetEntity(t *testing.T) {
	employees := int64(90)
	ents := &fakeEntities{entities: []models.Entity{{Name: "Acme", Slug: "acme", Score: 100, EmployeeCount: &employees}}}
	app := newTestApp(&fakeWorkflow{}, ents, nil)

	status, body := do(t, app, "GET", "/api/entities/acme", "")
	if status != 200 {
		t.Fatalf("status = %d", status)
	}
	data := body["data"].(map[string]any)
	if data["badge"] != "Rotten" || data["normalized_score"] != float64(100) {
		t.Errorf("raw view = %v", data)
	}

	_, body = do(t, app, "GET", "/api/entities/acme?normalize=employees", "")
	data = body["data"].(map[string]any)
	if data["normalized_score"] != 21.71 || data["badge"] != "Fresh" {
		t.Errorf("normalized view = %v", data)
	}

	status, _ = do(t, app, "GET", "/api/entities/acme?normalize=bogus", "")
	if status != 400 {
		t.Errorf("bad mode status = %d, want 400", status)
	}

	status, body = do(t, app, "GET", "/api/entities/nope", "")
	if status != 404 || body["error"] != "not_found" {
		t.Errorf("missing = %d %v", status, body)
	}
}
