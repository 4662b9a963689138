package scoring

const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelCritical = "critical"

	LabelSafe    = "Safe"
	LabelRisky   = "Risky"
	LabelSpoiled = "Spoiled"
)

// Classification boundaries on the 0..100 score.
const (
	MediumFrom   = 40.0
	HighFrom     = 70.0
	CriticalFrom = 85.0
)

// Classify maps a score to its level and spoilage label.
func Classify(score float64) (level, label string) {
	switch {
	case score >= CriticalFrom:
		return LevelCritical, LabelSpoiled
	case score >= HighFrom:
		return LevelHigh, LabelSpoiled
	case score >= MediumFrom:
		return LevelMedium, LabelRisky
	default:
		return LevelLow, LabelSafe
	}
}

// Rank orders levels by severity; unknown levels rank 0.
func Rank(level string) int {
	switch level {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	case LevelCritical:
		return 4
	}
	return 0
}
