// Package affect implements the affective state engine: a valence/arousal
// model with mood and temperament drift, need gauges, cooldown-gated event
// admission and an optional sleep/wake cycle.
package affect

// Axis bounds shared by mood, temperament and event profiles.
const (
	AxisMin = -10.0
	AxisMax = 10.0
)

// Gauge bounds.
const (
	GaugeMin = 0.0
	GaugeMax = 100.0
)

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampAxis bounds v to the valence/arousal range.
func ClampAxis(v float64) float64 {
	return Clamp(v, AxisMin, AxisMax)
}

// Vector is a point in valence/arousal space.
type Vector struct {
	Valence float64 `json:"valence" yaml:"valence" mapstructure:"valence"`
	Arousal float64 `json:"arousal" yaml:"arousal" mapstructure:"arousal"`
}

// Clamped returns v with both axes bounded to [-10, 10].
func (v Vector) Clamped() Vector {
	return Vector{Valence: ClampAxis(v.Valence), Arousal: ClampAxis(v.Arousal)}
}

// Add returns the component-wise sum, unclamped.
func (v Vector) Add(o Vector) Vector {
	return Vector{Valence: v.Valence + o.Valence, Arousal: v.Arousal + o.Arousal}
}

// Scale multiplies both axes by k, unclamped.
func (v Vector) Scale(k float64) Vector {
	return Vector{Valence: v.Valence * k, Arousal: v.Arousal * k}
}

// Category classifies v into one of the nine mood categories.
func (v Vector) Category() MoodCategory {
	return Classify(v.Valence, v.Arousal)
}
