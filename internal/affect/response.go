package affect

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// MaxNoise bounds the noise amplitude.
const MaxNoise = 10.0

const weightTolerance = 1e-9

// Weights control how much the current mood and the triggering event each
// contribute to a response. They always sum to 1.
type Weights struct {
	Mood  float64 `json:"mood"`
	Event float64 `json:"event"`
}

// DefaultWeights favors the event over the mood.
func DefaultWeights() Weights {
	return Weights{Mood: 0.3, Event: 0.7}
}

// WithMood sets the mood weight, clamped to [0, 1], and rebalances the
// event weight.
func (w Weights) WithMood(mood float64) Weights {
	mood = Clamp(mood, 0, 1)
	return Weights{Mood: mood, Event: 1 - mood}
}

// WithEvent sets the event weight, clamped to [0, 1], and rebalances the
// mood weight.
func (w Weights) WithEvent(event float64) Weights {
	event = Clamp(event, 0, 1)
	return Weights{Mood: 1 - event, Event: event}
}

// Validate checks that both weights are in [0, 1] and sum to 1.
func (w Weights) Validate() error {
	if w.Mood < 0 || w.Mood > 1 || w.Event < 0 || w.Event > 1 {
		return &ConfigError{Field: "weights", Reason: "each weight must be within [0, 1]"}
	}
	if math.Abs(w.Mood+w.Event-1) > weightTolerance {
		return &ConfigError{
			Field:  "weights",
			Reason: fmt.Sprintf("mood %.3f + event %.3f must sum to 1", w.Mood, w.Event),
		}
	}
	return nil
}

// ResponseResult is the outcome of one admitted event.
type ResponseResult struct {
	Display DisplayEmotion `json:"display"`
	Valence float64        `json:"valence"`
	Arousal float64        `json:"arousal"`
	Trigger string         `json:"trigger"`
	Mood    MoodCategory   `json:"mood"`
	At      time.Time      `json:"at"`
}

// Vector returns the result's fuzzed valence/arousal pair.
func (r ResponseResult) Vector() Vector {
	return Vector{Valence: r.Valence, Arousal: r.Arousal}
}

// Resolver combines the current mood and an event profile into a fuzzed
// response vector and its display emotion.
type Resolver struct {
	Weights Weights
	Noise   float64
	Chance  ResponseChance

	rng   NoiseSource
	bases map[MoodCategory]Vector
	log   zerolog.Logger
}

// NewResolver creates a resolver with default weights and unit noise.
func NewResolver(rng NoiseSource, log zerolog.Logger) *Resolver {
	if rng == nil {
		rng = newNoiseSource()
	}
	return &Resolver{
		Weights: DefaultWeights(),
		Noise:   1,
		rng:     rng,
		bases:   moodBases,
		log:     log,
	}
}

// Resolve computes moodWeight*moodBase + eventWeight*event, adds uniform
// noise on each axis and classifies the result for display. The fuzzed
// vector is clamped to the axis range.
func (r *Resolver) Resolve(profile EventProfile, mood Vector) (Vector, DisplayEmotion) {
	category := mood.Category()
	base, ok := r.bases[category]
	if !ok {
		r.log.Warn().Str("mood", string(category)).Msg("no base vector for mood, using neutral")
		base = moodBases[MoodNeutral]
	}

	combined := base.Scale(r.Weights.Mood).Add(profile.Vector().Scale(r.Weights.Event))
	fuzzed := jitter(r.rng, combined, r.Noise).Clamped()
	display := ResolveDisplay(fuzzed.Valence, fuzzed.Arousal)

	r.log.Debug().
		Str("event", profile.Keyword).
		Str("mood", string(category)).
		Float64("combined_valence", combined.Valence).
		Float64("combined_arousal", combined.Arousal).
		Float64("valence", fuzzed.Valence).
		Float64("arousal", fuzzed.Arousal).
		Str("display", string(display)).
		Msg("resolved response")

	if !r.Chance.Roll(r.rng) {
		return fuzzed, DisplayNeutral
	}
	return fuzzed, display
}
