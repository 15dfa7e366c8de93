package models

import (
	"time"

	"github.com/google/uuid"
)

// Review status constants shared by evidence and company requests.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Target types for evidence and moderation actions.
const (
	TargetCompany        = "company"
	TargetLeader         = "leader"
	TargetManager        = "manager"
	TargetEvidence       = "evidence"
	TargetCompanyRequest = "company_request"
)

// Evidence categories.
const (
	CategoryLabor          = "labor"
	CategoryEnvironment    = "environment"
	CategoryConsumer       = "consumer"
	CategoryGovernance     = "governance"
	CategoryDiscrimination = "discrimination"
	CategoryOther          = "other"
)

// Categories lists evidence categories in display order.
var Categories = []string{
	CategoryLabor,
	CategoryEnvironment,
	CategoryConsumer,
	CategoryGovernance,
	CategoryDiscrimination,
	CategoryOther,
}

// Severity bounds for a single piece of evidence.
const (
	MinSeverity     = 1
	MaxSeverity     = 10
	DefaultSeverity = 5
)

// Evidence is a user-submitted claim about an entity, subject to moderation.
type Evidence struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Summary             string     `json:"summary"`
	FileRef             string     `json:"file_ref,omitempty"`
	Category            string     `json:"category"`
	Severity            int        `json:"severity"`
	SubmitterID         uuid.UUID  `json:"submitter_id"`
	TargetType          string     `json:"target_type"` // company, leader, manager
	TargetID            int64      `json:"target_id"`
	Status              string     `json:"status"` // pending, approved, rejected
	AssignedModeratorID *uuid.UUID `json:"assigned_moderator_id"`
	CreatedAt           time.Time  `json:"created_at"`
}

// IsPending returns true if the evidence awaits a moderation decision.
func (e *Evidence) IsPending() bool {
	return e.Status == StatusPending
}

// IsApproved returns true if the evidence counts towards its target's score.
func (e *Evidence) IsApproved() bool {
	return e.Status == StatusApproved
}

// EvidenceMeta is the moderation summary of a single evidence row.
type EvidenceMeta struct {
	Status              string             `json:"status"`
	AssignedModeratorID *uuid.UUID         `json:"assigned_moderator_id"`
	History             []ModerationAction `json:"history"`
}

// DefaultEvidenceMeta is reported for ids with no evidence row.
func DefaultEvidenceMeta() *EvidenceMeta {
	return &EvidenceMeta{
		Status:  StatusPending,
		History: []ModerationAction{},
	}
}

// IsValidCategory reports whether c is a known evidence category.
func IsValidCategory(c string) bool {
	switch c {
	case CategoryLabor, CategoryEnvironment, CategoryConsumer, CategoryGovernance, CategoryDiscrimination, CategoryOther:
		return true
	}
	return false
}

// IsEntityTarget reports whether t names an entity kind evidence can be filed against.
func IsEntityTarget(t string) bool {
	return t == TargetCompany || t == TargetLeader || t == TargetManager
}
