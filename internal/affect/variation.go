package affect

import (
	"math/rand"
	"time"
)

// NoiseSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type NoiseSource interface {
	Float64() float64
}

func newNoiseSource() NoiseSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// uniform returns a value in [-amplitude, amplitude].
func uniform(rng NoiseSource, amplitude float64) float64 {
	if amplitude == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * amplitude
}

// jitter offsets both axes of v by independent uniform noise.
func jitter(rng NoiseSource, v Vector, amplitude float64) Vector {
	return Vector{
		Valence: v.Valence + uniform(rng, amplitude),
		Arousal: v.Arousal + uniform(rng, amplitude),
	}
}

// ResponseChance is an optional gate applied after resolution. When enabled,
// a response is shown with Percent probability and replaced by Neutral
// otherwise.
type ResponseChance struct {
	Enabled bool    `json:"enabled"`
	Percent float64 `json:"percent"`
}

// Clamped bounds Percent to [0, 100].
func (c ResponseChance) Clamped() ResponseChance {
	c.Percent = Clamp(c.Percent, 0, 100)
	return c
}

// Roll reports whether the response should stay visible.
func (c ResponseChance) Roll(rng NoiseSource) bool {
	if !c.Enabled {
		return true
	}
	return rng.Float64()*100 < c.Percent
}
