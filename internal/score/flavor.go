package score

import "math"

// NoFlavor is returned when the flavor table has no entry for a score.
const NoFlavor = "No flavor text available."

// Flavor pairs the macro tier label with a score-specific quip.
type Flavor struct {
	MacroTier   string `json:"macro_tier"`
	MicroFlavor string `json:"micro_flavor"`
}

type tier struct {
	min   float64
	label string
}

// Descending; the first tier whose minimum the score reaches wins.
var macroTiers = []tier{
	{90, "Working for Satan"},
	{75, "Corporate Villain"},
	{60, "Deeply Rotten"},
	{45, "Spoiled to the Core"},
	{30, "Questionable"},
	{15, "Slightly Off"},
}

const cleanTier = "Mostly Clean"

var defaultMicroFlavors = map[int]string{
	0:   "Squeaky clean. Suspiciously so.",
	5:   "A parking ticket in the founder's past.",
	10:  "Leaves the lights on over the weekend.",
	15:  "Mild whiff of burnt coffee and broken promises.",
	20:  "Reply-all on the layoff memo.",
	25:  "Unpaid interns, paid in exposure.",
	30:  "The break room fridge has seen things.",
	35:  "HR is a shared inbox nobody reads.",
	40:  "Mandatory fun, unpaid overtime.",
	45:  "The ethics hotline goes to voicemail.",
	50:  "Half rotten, fully unapologetic.",
	55:  "Quietly settles out of court.",
	60:  "Greenwashing with a fresh coat of paint.",
	65:  "Lobbyists outnumber engineers.",
	70:  "Regulators know them by first name.",
	75:  "Villain origin story, now in production.",
	80:  "The class action has its own website.",
	85:  "Shareholders thrive, everything else withers.",
	90:  "The devil asks them for advice.",
	95:  "Hell has a regional office here.",
	100: "Maximum rot achieved. Congratulations, we guess.",
}

// Flavorer resolves flavor text using the default table plus optional overrides.
type Flavorer struct {
	micro map[int]string
}

// NewFlavorer builds a Flavorer; overrides replace or extend the default micro flavors.
func NewFlavorer(overrides map[int]string) *Flavorer {
	micro := make(map[int]string, len(defaultMicroFlavors)+len(overrides))
	for k, v := range defaultMicroFlavors {
		micro[k] = v
	}
	for k, v := range overrides {
		micro[k] = v
	}
	return &Flavorer{micro: micro}
}

// Flavor maps a score to its macro tier and micro flavor.
func (f *Flavorer) Flavor(score float64) Flavor {
	micro, ok := f.micro[roundHalfUp(score)]
	if !ok {
		micro = NoFlavor
	}
	return Flavor{
		MacroTier:   MacroTier(score),
		MicroFlavor: micro,
	}
}

var defaultFlavorer = NewFlavorer(nil)

// ToFlavor maps a score using the built-in flavor table.
func ToFlavor(score float64) Flavor {
	return defaultFlavorer.Flavor(score)
}

// MacroTier returns the tier label for a score.
func MacroTier(score float64) string {
	for _, t := range macroTiers {
		if score >= t.min {
			return t.label
		}
	}
	return cleanTier
}

// roundHalfUp rounds x.5 towards positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
