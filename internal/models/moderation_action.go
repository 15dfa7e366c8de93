package models

import (
	"time"

	"github.com/google/uuid"
)

// Moderation action kinds.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionAssign  = "assign"
)

// ModerationAction is an append-only audit record of a moderator decision or assignment.
type ModerationAction struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"` // approve, reject, assign
	ModeratorID uuid.UUID `json:"moderator_id"`
	TargetType  string    `json:"target_type"` // evidence, company_request
	TargetID    int64     `json:"target_id"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResultingStatus returns the status a pending row moves to after the action.
// Assignments leave the row pending.
func (a *ModerationAction) ResultingStatus() string {
	switch a.Action {
	case ActionApprove:
		return StatusApproved
	case ActionReject:
		return StatusRejected
	default:
		return StatusPending
	}
}

// IsDecision returns true for actions that close the review.
func (a *ModerationAction) IsDecision() bool {
	return a.Action == ActionApprove || a.Action == ActionReject
}

// IsValidAction reports whether kind is a known action.
func IsValidAction(kind string) bool {
	return kind == ActionApprove || kind == ActionReject || kind == ActionAssign
}
