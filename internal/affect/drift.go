package affect

// ShiftOptions switch mood and temperament drift on or off independently.
type ShiftOptions struct {
	AllowMood        bool `json:"allow_mood"`
	AllowTemperament bool `json:"allow_temperament"`
}

// DriftGains are the fractions of each response folded back into mood and
// temperament.
type DriftGains struct {
	Mood        float64 `json:"mood"`
	Temperament float64 `json:"temperament"`
}

// DefaultDriftGains makes temperament drift a hundred times slower than mood.
func DefaultDriftGains() DriftGains {
	return DriftGains{Mood: 0.01, Temperament: 0.001}
}

// ApplyDrift folds a fuzzed response into mood and temperament. Disabled
// shifts leave the corresponding vector untouched. Both results are clamped.
func ApplyDrift(fuzzed, mood, temperament Vector, gains DriftGains, opts ShiftOptions) (Vector, Vector) {
	if opts.AllowMood {
		mood = mood.Add(fuzzed.Scale(gains.Mood)).Clamped()
	}
	if opts.AllowTemperament {
		temperament = temperament.Add(fuzzed.Scale(gains.Temperament)).Clamped()
	}
	return mood, temperament
}
