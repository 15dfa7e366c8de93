package score

import "rottencompany/internal/models"

// View annotates an entity with its badge, flavor and normalized score.
// Badge and flavor follow the normalized score so the page and the label agree.
func (f *Flavorer) View(e *models.Entity, mode Mode) *models.EntityView {
	normalized := Normalize(e.Score, e, mode)
	flavor := f.Flavor(normalized)
	return &models.EntityView{
		Entity:          *e,
		Badge:           string(ToBadge(normalized)),
		MacroTier:       flavor.MacroTier,
		MicroFlavor:     flavor.MicroFlavor,
		NormalizedScore: roundTo2(normalized),
		Normalization:   string(mode),
	}
}

func roundTo2(x float64) float64 {
	return float64(roundHalfUp(x*100)) / 100
}
