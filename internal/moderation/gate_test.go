package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rottencompany/internal/models"
)

func TestGate_Status(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		status    models.GateStatus
		blocked   bool
	}{
		{"empty backlog is clear", 1, models.GateStatus{}, false},
		{"one pending evidence blocks", 1, models.GateStatus{PendingEvidence: 1}, true},
		{"company requests count too", 1, models.GateStatus{PendingCompanyRequests: 1}, true},
		{"below custom threshold", 5, models.GateStatus{PendingEvidence: 2, PendingCompanyRequests: 2}, false},
		{"at custom threshold", 5, models.GateStatus{PendingEvidence: 3, PendingCompanyRequests: 2}, true},
		{"zero threshold treated as one", 0, models.GateStatus{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.gate = &tt.status

			got, err := NewGate(store, tt.threshold, 10).Status(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.blocked, got.Blocked)
			assert.NotNil(t, got.Attention)
			assert.Equal(t, tt.status.TotalPending(), got.TotalPending())
		})
	}
}

func TestGate_ReadsThroughEveryCall(t *testing.T) {
	store := newMemStore()
	gate := NewGate(store, 1, 10)

	first, err := gate.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, first.Blocked)

	store.gate = &models.GateStatus{PendingEvidence: 1}

	second, err := gate.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Blocked, "a new pending item must never be served as a clear gate")
}
