package email

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"rottencompany/internal/config"
	"rottencompany/internal/metrics"
	"rottencompany/internal/models"
)

// Sender delivers a rendered message.
type Sender interface {
	IsEnabled() bool
	Send(to []string, subject, htmlBody, textBody string) error
}

// Store is the persistence the notifier needs.
type Store interface {
	EnqueueNotification(ctx context.Context, job *models.NotificationJob) error
	GetModeratorEmails(ctx context.Context) ([]string, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Notifier turns workflow events into notification jobs or direct sends.
type Notifier struct {
	sender          Sender
	templates       *Templates
	cfg             *config.Config
	store           Store
	extraModerators []string
}

// NewNotifier creates a new notifier. extraModerators receive moderator
// notices in addition to moderator accounts.
func NewNotifier(cfg *config.Config, store Store, sender Sender, extraModerators []string) *Notifier {
	return &Notifier{
		sender:          sender,
		templates:       NewTemplates(cfg),
		cfg:             cfg,
		store:           store,
		extraModerators: extraModerators,
	}
}

// Dispatch hands a message to the configured delivery path. In outbox mode
// a pending job is stored for the worker; in direct mode the message is sent
// now and a transport error is returned to the caller.
func (n *Notifier) Dispatch(ctx context.Context, recipient, subject, body string, metadata map[string]string) error {
	if recipient == "" {
		return nil
	}

	if n.cfg.UsesOutbox() {
		job := &models.NotificationJob{
			Recipient: recipient,
			Subject:   subject,
			Body:      body,
			Metadata:  metadata,
		}
		if err := n.store.EnqueueNotification(ctx, job); err != nil {
			return fmt.Errorf("enqueue notification: %w", err)
		}
		metrics.RecordNotification(metrics.OutcomeQueued)
		return nil
	}

	if !n.sender.IsEnabled() {
		return nil
	}
	if err := n.Deliver(recipient, subject, body); err != nil {
		metrics.RecordNotification(metrics.OutcomeFailed)
		return err
	}
	metrics.RecordNotification(metrics.OutcomeSent)
	return nil
}

// Deliver sends one plain-text message with its HTML rendering.
func (n *Notifier) Deliver(recipient, subject, body string) error {
	return n.sender.Send([]string{recipient}, subject, n.templates.HTML(subject, body), body)
}

// NotifyEvidenceSubmitted tells moderators that new evidence needs review.
// Failures are logged; submission never depends on them.
func (n *Notifier) NotifyEvidenceSubmitted(ctx context.Context, ev *models.Evidence, target *models.Entity, submitter *models.User) {
	if !n.cfg.EmailNotifyModeratorsOnSubmit {
		return
	}

	emails, err := n.store.GetModeratorEmails(ctx)
	if err != nil {
		slog.Error("failed to get moderator emails", "error", err)
		return
	}

	recipients := dedupe(append(emails, n.extraModerators...))
	if len(recipients) == 0 {
		slog.Debug("no moderator recipients for evidence notice", "evidence_id", ev.ID)
		return
	}

	subject, body := n.templates.EvidenceSubmitted(ev, target, submitter)
	meta := eventMetadata("evidence_submitted", models.TargetEvidence, ev.ID)
	for _, to := range recipients {
		if err := n.Dispatch(ctx, to, subject, body, meta); err != nil {
			slog.Error("failed to notify moderator", "recipient", to, "evidence_id", ev.ID, "error", err)
		}
	}
}

// NotifyEvidenceDecision tells the submitter that their evidence was approved or rejected.
func (n *Notifier) NotifyEvidenceDecision(ctx context.Context, ev *models.Evidence, action *models.ModerationAction, target *models.Entity) error {
	if !n.cfg.EmailNotifyUserOnDecision || !action.IsDecision() {
		return nil
	}

	submitter, err := n.store.GetUserByID(ctx, ev.SubmitterID)
	if err != nil {
		return fmt.Errorf("load submitter: %w", err)
	}

	subject, body := n.templates.EvidenceDecision(ev, action, target)
	return n.Dispatch(ctx, submitter.Email, subject, body, eventMetadata("evidence_"+action.Action, models.TargetEvidence, ev.ID))
}

// NotifyCompanyRequestDecision tells the requester that their company request was decided.
func (n *Notifier) NotifyCompanyRequestDecision(ctx context.Context, req *models.CompanyRequest, action *models.ModerationAction, company *models.Entity) error {
	if !n.cfg.EmailNotifyUserOnDecision || !action.IsDecision() {
		return nil
	}

	requester, err := n.store.GetUserByID(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("load requester: %w", err)
	}

	subject, body := n.templates.CompanyRequestDecision(req, action, company)
	return n.Dispatch(ctx, requester.Email, subject, body, eventMetadata("company_request_"+action.Action, models.TargetCompanyRequest, req.ID))
}

func eventMetadata(event, targetType string, targetID int64) map[string]string {
	return map[string]string{
		"event":       event,
		"target_type": targetType,
		"target_id":   strconv.FormatInt(targetID, 10),
	}
}

func dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
