// Package score derives display labels and size-adjusted values from entity scores.
package score

// Badge is the coarse tier shown next to an entity.
type Badge string

// Badge tiers.
const (
	Fresh   Badge = "Fresh"
	Spoiled Badge = "Spoiled"
	Rotten  Badge = "Rotten"
)

// Badge thresholds. Boundary values belong to the higher tier.
const (
	RottenThreshold  = 80.0
	SpoiledThreshold = 50.0
)

// ToBadge maps a score to its badge.
func ToBadge(score float64) Badge {
	switch {
	case score >= RottenThreshold:
		return Rotten
	case score >= SpoiledThreshold:
		return Spoiled
	default:
		return Fresh
	}
}
