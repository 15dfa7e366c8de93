package email

import (
	"fmt"
	"html"
	"strings"

	"rottencompany/internal/config"
	"rottencompany/internal/models"
)

// Templates renders notification subjects and plain-text bodies.
// HTML is derived from the text at delivery time so queued jobs only store text.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// HTML wraps a plain-text body in the branded HTML layout.
func (t *Templates) HTML(subject, textBody string) string {
	var content strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(textBody), "\n\n") {
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		content.WriteString("<p>" + strings.Join(lines, "<br>") + "</p>\n")
	}
	return t.baseHTML(subject, content.String())
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7c2d12; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #fafaf9; padding: 20px; border: 1px solid #e7e5e4; }
        .footer { background: #f5f5f4; padding: 15px; text-align: center; font-size: 12px; color: #78716c; border-radius: 0 0 8px 8px; border: 1px solid #e7e5e4; border-top: none; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

func (t *Templates) signature() string {
	return fmt.Sprintf("\n\n--\n%s\n%s", t.cfg.SiteTitle, t.cfg.BaseURL)
}

func targetLabel(target *models.Entity) string {
	if target == nil {
		return "an unknown entity"
	}
	return fmt.Sprintf("%s (%s)", target.Name, target.Kind)
}

// EvidenceSubmitted generates the moderator notice for newly submitted evidence.
func (t *Templates) EvidenceSubmitted(ev *models.Evidence, target *models.Entity, submitter *models.User) (subject, body string) {
	subject = fmt.Sprintf("[%s] New evidence pending review: %s", t.cfg.SiteTitle, ev.Title)

	body = fmt.Sprintf(`New evidence is waiting for review.

Title: %s
About: %s
Category: %s
Severity: %d
Submitted by: %s

Review at: %s/moderation`,
		ev.Title,
		targetLabel(target),
		ev.Category,
		ev.Severity,
		submitter.DisplayName(),
		t.cfg.BaseURL,
	)

	return subject, body + t.signature()
}

// EvidenceDecision generates the submitter notice for an approved or rejected evidence item.
func (t *Templates) EvidenceDecision(ev *models.Evidence, action *models.ModerationAction, target *models.Entity) (subject, body string) {
	if action.Action == models.ActionApprove {
		subject = fmt.Sprintf("[%s] Your evidence '%s' has been approved", t.cfg.SiteTitle, ev.Title)
		body = fmt.Sprintf(`Your evidence has been approved and now counts toward the score of %s.

Title: %s
Status: Approved`, targetLabel(target), ev.Title)
		if target != nil {
			body += fmt.Sprintf("\n\nSee the profile: %s/company/%s", t.cfg.BaseURL, target.Slug)
		}
	} else {
		subject = fmt.Sprintf("[%s] Your evidence '%s' was not approved", t.cfg.SiteTitle, ev.Title)
		body = fmt.Sprintf(`Unfortunately, your evidence about %s was not approved.

Title: %s
Status: Rejected`, targetLabel(target), ev.Title)
	}

	if action.Note != "" {
		body += "\nModerator note: " + action.Note
	}

	return subject, body + t.signature()
}

// CompanyRequestDecision generates the requester notice for a company request decision.
// company is the created entity on approval and may be nil otherwise.
func (t *Templates) CompanyRequestDecision(req *models.CompanyRequest, action *models.ModerationAction, company *models.Entity) (subject, body string) {
	if action.Action == models.ActionApprove {
		subject = fmt.Sprintf("[%s] %s has been added", t.cfg.SiteTitle, req.Name)
		body = fmt.Sprintf("Your request to add %s has been approved.", req.Name)
		if company != nil {
			body += fmt.Sprintf("\n\nSubmit evidence: %s%s", t.cfg.BaseURL, models.SubmitEvidenceURL(company.Slug))
		}
	} else {
		subject = fmt.Sprintf("[%s] Your request to add %s was not approved", t.cfg.SiteTitle, req.Name)
		body = fmt.Sprintf("Unfortunately, your request to add %s was not approved.", req.Name)
	}

	if action.Note != "" {
		body += "\n\nModerator note: " + action.Note
	}

	return subject, body + t.signature()
}
