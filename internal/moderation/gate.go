// Package moderation implements the review workflow for evidence and company
// requests: the backlog gate, evidence lookup and moderator decisions.
package moderation

import (
	"context"

	"rottencompany/internal/models"
)

// Gate computes the backlog status on every call. Nothing is cached, so a new
// pending row is visible to the next read.
type Gate struct {
	store          GateStore
	blockThreshold int
	attentionLimit int
}

// GateStore reads pending counts and the oldest unassigned items.
type GateStore interface {
	GetGateStatus(ctx context.Context, attentionLimit int) (*models.GateStatus, error)
}

// NewGate creates a gate that blocks once blockThreshold items are pending.
func NewGate(store GateStore, blockThreshold, attentionLimit int) *Gate {
	if blockThreshold < 1 {
		blockThreshold = 1
	}
	if attentionLimit < 0 {
		attentionLimit = 0
	}
	return &Gate{store: store, blockThreshold: blockThreshold, attentionLimit: attentionLimit}
}

// Status returns the current gate status.
func (g *Gate) Status(ctx context.Context) (*models.GateStatus, error) {
	status, err := g.store.GetGateStatus(ctx, g.attentionLimit)
	if err != nil {
		return nil, err
	}
	if status.Attention == nil {
		status.Attention = []models.GateItem{}
	}
	status.Blocked = status.TotalPending() >= g.blockThreshold
	return status, nil
}
