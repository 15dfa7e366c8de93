package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyRequest is a user proposal to add a new company profile.
type CompanyRequest struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Status              string     `json:"status"` // pending, approved, rejected
	UserID              uuid.UUID  `json:"user_id"`
	AssignedModeratorID *uuid.UUID `json:"assigned_moderator_id"`
	AssignedAt          *time.Time `json:"assigned_at"`
	CreatedAt           time.Time  `json:"created_at"`
}

// IsPending returns true if the request awaits a moderation decision.
func (r *CompanyRequest) IsPending() bool {
	return r.Status == StatusPending
}
