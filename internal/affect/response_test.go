package affect

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_WeightedCombination(t *testing.T) {
	r := NewResolver(fixedNoise(0.5), zerolog.Nop())
	r.Noise = 0

	fuzzed, display := r.Resolve(EventProfile{Keyword: "happy", Valence: 8, Arousal: 4}, Vector{})

	assert.InDelta(t, 5.6, fuzzed.Valence, 1e-9)
	assert.InDelta(t, 2.8, fuzzed.Arousal, 1e-9)
	assert.Equal(t, DisplayHappy, display)
}

func TestResolver_NoiseIsBounded(t *testing.T) {
	r := NewResolver(fixedNoise(0.999999), zerolog.Nop())
	r.Noise = 2

	fuzzed, _ := r.Resolve(EventProfile{Valence: 0, Arousal: 0}, Vector{})
	assert.InDelta(t, 2, fuzzed.Valence, 1e-4)
	assert.InDelta(t, 2, fuzzed.Arousal, 1e-4)

	r.rng = fixedNoise(0)
	fuzzed, _ = r.Resolve(EventProfile{Valence: 0, Arousal: 0}, Vector{})
	assert.InDelta(t, -2, fuzzed.Valence, 1e-9)
	assert.InDelta(t, -2, fuzzed.Arousal, 1e-9)
}

func TestResolver_ClampsFuzzedVector(t *testing.T) {
	r := NewResolver(fixedNoise(0.999999), zerolog.Nop())
	r.Noise = MaxNoise
	r.Weights = Weights{Mood: 0, Event: 1}

	fuzzed, _ := r.Resolve(EventProfile{Valence: 10, Arousal: 10}, Vector{})
	assert.Equal(t, Vector{Valence: 10, Arousal: 10}, fuzzed)
}

func TestResolver_FallsBackToNeutralBase(t *testing.T) {
	r := NewResolver(fixedNoise(0.5), zerolog.Nop())
	r.Noise = 0
	r.Weights = Weights{Mood: 1, Event: 0}
	r.bases = map[MoodCategory]Vector{MoodNeutral: {0, 0}}

	fuzzed, display := r.Resolve(EventProfile{Valence: 5, Arousal: 5}, Vector{Valence: 9, Arousal: 9})
	assert.Equal(t, Vector{}, fuzzed)
	assert.Equal(t, DisplayNeutral, display)
}

func TestResolver_ResponseChanceSubstitutesNeutral(t *testing.T) {
	r := NewResolver(fixedNoise(0.6), zerolog.Nop())
	r.Noise = 0
	r.Chance = ResponseChance{Enabled: true, Percent: 50}

	fuzzed, display := r.Resolve(EventProfile{Valence: 10, Arousal: 10}, Vector{Valence: 8, Arousal: 8})
	assert.Equal(t, DisplayNeutral, display, "a roll of 60 misses a 50 percent chance")
	assert.Greater(t, fuzzed.Valence, 6.0, "the vector is still computed")

	r.Chance.Percent = 70
	_, display = r.Resolve(EventProfile{Valence: 10, Arousal: 10}, Vector{Valence: 8, Arousal: 8})
	assert.Equal(t, DisplayExcited, display)
}

func TestWeights_Rebalance(t *testing.T) {
	w := DefaultWeights().WithMood(0.4)
	assert.InDelta(t, 0.6, w.Event, 1e-9)
	require.NoError(t, w.Validate())

	w = w.WithEvent(1.5)
	assert.Equal(t, Weights{Mood: 0, Event: 1}, w)
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.ErrorIs(t, Weights{Mood: 0.5, Event: 0.6}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Weights{Mood: -0.5, Event: 1.5}.Validate(), ErrInvalidConfig)
}

func TestApplyDrift(t *testing.T) {
	fuzzed := Vector{Valence: 10, Arousal: -10}
	mood, temperament := Vector{}, Vector{}

	gotMood, gotTemp := ApplyDrift(fuzzed, mood, temperament, DefaultDriftGains(), ShiftOptions{AllowMood: true, AllowTemperament: true})
	assert.InDelta(t, 0.1, gotMood.Valence, 1e-9)
	assert.InDelta(t, -0.1, gotMood.Arousal, 1e-9)
	assert.InDelta(t, 0.01, gotTemp.Valence, 1e-9)
	assert.InDelta(t, -0.01, gotTemp.Arousal, 1e-9)

	gotMood, gotTemp = ApplyDrift(fuzzed, mood, temperament, DefaultDriftGains(), ShiftOptions{AllowMood: false, AllowTemperament: false})
	assert.Equal(t, mood, gotMood)
	assert.Equal(t, temperament, gotTemp)
}

func TestApplyDrift_Clamps(t *testing.T) {
	gotMood, _ := ApplyDrift(Vector{Valence: 10, Arousal: 10}, Vector{Valence: 10, Arousal: 10}, Vector{}, DriftGains{Mood: 1}, ShiftOptions{AllowMood: true})
	assert.Equal(t, Vector{Valence: 10, Arousal: 10}, gotMood)
}
