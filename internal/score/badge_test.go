package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBadge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score float64
		want  Badge
	}{
		{"zero", 0, Fresh},
		{"negative", -12, Fresh},
		{"just below spoiled", 49.999, Fresh},
		{"spoiled boundary", 50, Spoiled},
		{"mid spoiled", 65.5, Spoiled},
		{"just below rotten", 79.99, Spoiled},
		{"rotten boundary", 80, Rotten},
		{"max", 100, Rotten},
		{"above max", 150, Rotten},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToBadge(tt.score))
		})
	}
}

func TestToBadge_Monotonic(t *testing.T) {
	t.Parallel()

	rank := map[Badge]int{Fresh: 0, Spoiled: 1, Rotten: 2}
	prev := ToBadge(0)
	for s := 0.0; s <= 100; s += 0.25 {
		cur := ToBadge(s)
		assert.GreaterOrEqual(t, rank[cur], rank[prev], "badge regressed at score %v", s)
		prev = cur
	}
}
