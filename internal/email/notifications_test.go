package email

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"rottencompany/internal/config"
	"rottencompany/internal/models"
)

type fakeStore struct {
	jobs       []models.NotificationJob
	enqueueErr error
	moderators []string
	users      map[uuid.UUID]*models.User
}

func (f *fakeStore) EnqueueNotification(ctx context.Context, job *models.NotificationJob) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	job.ID = int64(len(f.jobs) + 1)
	job.Status = models.NotificationPending
	f.jobs = append(f.jobs, *job)
	return nil
}

func (f *fakeStore) GetModeratorEmails(ctx context.Context) ([]string, error) {
	return f.moderators, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type sentMessage struct {
	to      []string
	subject string
	html    string
	text    string
}

type fakeSender struct {
	enabled bool
	err     error
	sent    []sentMessage
}

func (f *fakeSender) IsEnabled() bool { return f.enabled }

func (f *fakeSender) Send(to []string, subject, htmlBody, textBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{to, subject, htmlBody, textBody})
	return nil
}

func testConfig(delivery string) *config.Config {
	return &config.Config{
		SiteTitle:                     "Rotten Company",
		BaseURL:                       "https://rotten.example.com",
		EmailDelivery:                 delivery,
		EmailNotifyModeratorsOnSubmit: true,
		EmailNotifyUserOnDecision:     true,
	}
}

func TestDispatch_Outbox(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{enabled: true}
	n := NewNotifier(testConfig(config.DeliveryOutbox), store, sender, nil)

	err := n.Dispatch(context.Background(), "user@example.com", "Subject", "Body", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(store.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(store.jobs))
	}
	job := store.jobs[0]
	if job.Recipient != "user@example.com" || job.Subject != "Subject" || job.Body != "Body" || job.Metadata["k"] != "v" {
		t.Errorf("unexpected job: %+v", job)
	}
	if len(sender.sent) != 0 {
		t.Error("outbox mode should not send inline")
	}
}

func TestDispatch_OutboxStoreError(t *testing.T) {
	store := &fakeStore{enqueueErr: errors.New("db down")}
	n := NewNotifier(testConfig(config.DeliveryOutbox), store, &fakeSender{enabled: true}, nil)

	if err := n.Dispatch(context.Background(), "user@example.com", "S", "B", nil); err == nil {
		t.Error("Dispatch() error = nil, want enqueue failure")
	}
}

func TestDispatch_Direct(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{enabled: true}
	n := NewNotifier(testConfig(config.DeliveryDirect), store, sender, nil)

	if err := n.Dispatch(context.Background(), "user@example.com", "Subject", "Line one\n\nLine <two>", nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(store.jobs) != 0 {
		t.Error("direct mode should not enqueue")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.to[0] != "user@example.com" || msg.text != "Line one\n\nLine <two>" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if want := "<p>Line &lt;two&gt;</p>"; !contains(msg.html, want) {
		t.Errorf("html part missing %q", want)
	}
}

func TestDispatch_DirectPropagatesError(t *testing.T) {
	sendErr := errors.New("connection refused")
	n := NewNotifier(testConfig(config.DeliveryDirect), &fakeStore{}, &fakeSender{enabled: true, err: sendErr}, nil)

	err := n.Dispatch(context.Background(), "user@example.com", "S", "B", nil)
	if !errors.Is(err, sendErr) {
		t.Errorf("Dispatch() error = %v, want %v", err, sendErr)
	}
}

func TestDispatch_EmptyRecipient(t *testing.T) {
	store := &fakeStore{}
	sender := &fakeSender{enabled: true}
	n := NewNotifier(testConfig(config.DeliveryDirect), store, sender, nil)

	if err := n.Dispatch(context.Background(), "", "S", "B", nil); err != nil {
		t.Errorf("Dispatch() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("empty recipient should be skipped")
	}
}

func TestNotifyEvidenceSubmitted(t *testing.T) {
	store := &fakeStore{moderators: []string{"mod@example.com", "audit@example.com"}}
	n := NewNotifier(testConfig(config.DeliveryOutbox), store, &fakeSender{}, []string{"audit@example.com", "legal@example.com"})

	ev := &models.Evidence{ID: 9, Title: "Wage theft", Category: models.CategoryLabor, Severity: 7}
	target := &models.Entity{Name: "Acme", Kind: models.TargetCompany, Slug: "acme"}
	n.NotifyEvidenceSubmitted(context.Background(), ev, target, &models.User{Name: "Sam"})

	if len(store.jobs) != 3 {
		t.Fatalf("enqueued %d jobs, want 3 (deduplicated)", len(store.jobs))
	}
	if store.jobs[0].Metadata["event"] != "evidence_submitted" || store.jobs[0].Metadata["target_id"] != "9" {
		t.Errorf("unexpected metadata: %v", store.jobs[0].Metadata)
	}
}

func TestNotifyEvidenceSubmitted_Disabled(t *testing.T) {
	cfg := testConfig(config.DeliveryOutbox)
	cfg.EmailNotifyModeratorsOnSubmit = false
	store := &fakeStore{moderators: []string{"mod@example.com"}}
	n := NewNotifier(cfg, store, &fakeSender{}, nil)

	n.NotifyEvidenceSubmitted(context.Background(), &models.Evidence{}, nil, &models.User{})

	if len(store.jobs) != 0 {
		t.Error("should not notify when switched off")
	}
}

func TestNotifyEvidenceDecision(t *testing.T) {
	submitter := &models.User{ID: uuid.New(), Email: "sam@example.com"}
	store := &fakeStore{users: map[uuid.UUID]*models.User{submitter.ID: submitter}}
	n := NewNotifier(testConfig(config.DeliveryOutbox), store, &fakeSender{}, nil)

	ev := &models.Evidence{ID: 3, Title: "Dumping", SubmitterID: submitter.ID}
	action := &models.ModerationAction{Action: models.ActionReject, Note: "Source is a parody site"}

	if err := n.NotifyEvidenceDecision(context.Background(), ev, action, nil); err != nil {
		t.Fatalf("NotifyEvidenceDecision() error = %v", err)
	}
	if len(store.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(store.jobs))
	}
	job := store.jobs[0]
	if job.Recipient != "sam@example.com" {
		t.Errorf("Recipient = %q", job.Recipient)
	}
	if job.Metadata["event"] != "evidence_reject" {
		t.Errorf("event = %q", job.Metadata["event"])
	}
	if !contains(job.Body, "Source is a parody site") {
		t.Error("body should carry the moderator note")
	}
}

func TestNotifyEvidenceDecision_SkipsAssign(t *testing.T) {
	store := &fakeStore{}
	n := NewNotifier(testConfig(config.DeliveryOutbox), store, &fakeSender{}, nil)

	err := n.NotifyEvidenceDecision(context.Background(), &models.Evidence{}, &models.ModerationAction{Action: models.ActionAssign}, nil)
	if err != nil || len(store.jobs) != 0 {
		t.Errorf("assign should not notify: err=%v jobs=%d", err, len(store.jobs))
	}
}

func TestNotifyEvidenceDecision_MissingSubmitter(t *testing.T) {
	n := NewNotifier(testConfig(config.DeliveryOutbox), &fakeStore{}, &fakeSender{}, nil)

	ev := &models.Evidence{SubmitterID: uuid.New()}
	if err := n.NotifyEvidenceDecision(context.Background(), ev, &models.ModerationAction{Action: models.ActionApprove}, nil); err == nil {
		t.Error("NotifyEvidenceDecision() error = nil, want lookup failure")
	}
}

func TestNotifyCompanyRequestDecision(t *testing.T) {
	requester := &models.User{ID: uuid.New(), Email: "req@example.com"}
	store := &fakeStore{users: map[uuid.UUID]*models.User{requester.ID: requester}}
	n := NewNotifier(testConfig(config.DeliveryOutbox), store, &fakeSender{}, nil)

	req := &models.CompanyRequest{ID: 4, Name: "Initech", UserID: requester.ID}
	company := &models.Entity{Name: "Initech", Slug: "initech"}
	action := &models.ModerationAction{Action: models.ActionApprove}

	if err := n.NotifyCompanyRequestDecision(context.Background(), req, action, company); err != nil {
		t.Fatalf("NotifyCompanyRequestDecision() error = %v", err)
	}
	if len(store.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(store.jobs))
	}
	if !contains(store.jobs[0].Body, "https://rotten.example.com/company/initech/submit-evidence") {
		t.Errorf("body missing submit link: %s", store.jobs[0].Body)
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("dedupe() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedupe()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
