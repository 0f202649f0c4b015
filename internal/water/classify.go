package water

import "strings"

// Drinkability verdicts, ordered from safest to least safe.
const (
	VerdictSafe    = "Safe"
	VerdictCaution = "Caution"
	VerdictUnsafe  = "Unsafe"
)

// Severity colors shared with the dashboard theme.
const (
	colorSafe    = "#22c55e"
	colorCaution = "#f59e0b"
	colorUnsafe  = "#ef4444"
	colorUnknown = "#0f172a"
)

// Assessment is a derived drinkability verdict with display hints.
type Assessment struct {
	Verdict string `json:"verdict"`
	Color   string `json:"color"`
	Message string `json:"message"`
}

// Classify maps a TDS/temperature pair to a drinkability verdict. Thresholds
// are exclusive upper bounds checked in ascending order; the first matching
// rule wins.
func Classify(tds, temperature float64) Assessment {
	switch {
	case tds < 300 && temperature < 30:
		return Assessment{
			Verdict: VerdictSafe,
			Color:   colorSafe,
			Message: "Water quality is good and safe to drink",
		}
	case tds < 500 && temperature < 35:
		return Assessment{
			Verdict: VerdictCaution,
			Color:   colorCaution,
			Message: "Water quality is acceptable, consider filtering",
		}
	default:
		return Assessment{
			Verdict: VerdictUnsafe,
			Color:   colorUnsafe,
			Message: "Water quality is poor, do not drink",
		}
	}
}

// VerdictColor maps a stored drinkability label to its severity color. Older
// firmware reported a four-tier scale (excellent/good/fair/poor); historical
// rows with those labels still need a color on the trend screen.
func VerdictColor(label string) string {
	switch strings.ToLower(label) {
	case "safe", "excellent":
		return colorSafe
	case "caution", "good", "fair":
		return colorCaution
	case "unsafe", "poor":
		return colorUnsafe
	default:
		return colorUnknown
	}
}
