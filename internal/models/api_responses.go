package models

import "time"

// GateItem identifies a pending row that needs a moderator.
type GateItem struct {
	TargetType string    `json:"target_type"` // evidence, company_request
	TargetID   int64     `json:"target_id"`
	Title      string    `json:"title,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
}

// GateStatus is the aggregate state of the pending-review backlog.
type GateStatus struct {
	Blocked                   bool       `json:"blocked"`
	PendingEvidence           int        `json:"pending_evidence"`
	PendingCompanyRequests    int        `json:"pending_company_requests"`
	UnassignedEvidence        int        `json:"unassigned_evidence"`
	UnassignedCompanyRequests int        `json:"unassigned_company_requests"`
	Attention                 []GateItem `json:"attention"`
}

// TotalPending returns the number of rows awaiting review.
func (g *GateStatus) TotalPending() int {
	return g.PendingEvidence + g.PendingCompanyRequests
}

// Redacted returns a copy safe for callers who are not moderators: counts are
// kept, attention items carry only their target.
func (g *GateStatus) Redacted() *GateStatus {
	out := *g
	out.Attention = make([]GateItem, 0, len(g.Attention))
	for _, item := range g.Attention {
		out.Attention = append(out.Attention, GateItem{TargetType: item.TargetType, TargetID: item.TargetID})
	}
	return &out
}

// SearchResult is a single entity search hit.
type SearchResult struct {
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	SubmitEvidenceURL string `json:"submitEvidenceUrl"`
}

// EntityView is an entity annotated with its display score.
type EntityView struct {
	Entity
	Badge           string  `json:"badge"`
	MacroTier       string  `json:"macro_tier"`
	MicroFlavor     string  `json:"micro_flavor"`
	NormalizedScore float64 `json:"normalized_score"`
	Normalization   string  `json:"normalization"`
}
