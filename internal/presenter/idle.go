package presenter

import (
	"math/rand"
	"time"

	"github.com/alex/affect/internal/affect"
)

// MicroBehavior is a small idle animation or twitch.
type MicroBehavior struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// WeightedMicroBehavior pairs a micro-behavior with a probability weight.
type WeightedMicroBehavior struct {
	Behavior MicroBehavior
	Weight   float64 // relative weight, doesn't need to sum to 1
}

// idleChance is the probability that an idle beat shows anything at all.
const idleChance = 0.7

var microBehaviors = map[affect.MoodCategory][]WeightedMicroBehavior{
	affect.MoodExcited: {
		{MicroBehavior{"bounce_small", 250 * time.Millisecond}, 4.0},
		{MicroBehavior{"tail_wag_fast", 200 * time.Millisecond}, 3.0},
		{MicroBehavior{"spin_partial", 400 * time.Millisecond}, 2.0},
		{MicroBehavior{"eager_lean", 300 * time.Millisecond}, 2.0},
	},
	affect.MoodHappy: {
		{MicroBehavior{"tail_wag_small", 300 * time.Millisecond}, 4.0},
		{MicroBehavior{"ear_perk", 200 * time.Millisecond}, 2.0},
		{MicroBehavior{"wiggle", 400 * time.Millisecond}, 2.0},
		{MicroBehavior{"happy_sigh", 500 * time.Millisecond}, 1.0},
	},
	affect.MoodRelaxed: {
		{MicroBehavior{"slow_blink", 800 * time.Millisecond}, 3.0},
		{MicroBehavior{"happy_sigh", 500 * time.Millisecond}, 2.0},
		{MicroBehavior{"stretch", 900 * time.Millisecond}, 2.0},
		{MicroBehavior{"weight_shift", 400 * time.Millisecond}, 1.0},
	},
	affect.MoodEnergetic: {
		{MicroBehavior{"look_around", 500 * time.Millisecond}, 3.0},
		{MicroBehavior{"ear_twitch", 200 * time.Millisecond}, 3.0},
		{MicroBehavior{"weight_shift", 400 * time.Millisecond}, 2.0},
		{MicroBehavior{"sniff", 300 * time.Millisecond}, 2.0},
	},
	affect.MoodNeutral: {
		{MicroBehavior{"ear_twitch", 200 * time.Millisecond}, 3.0},
		{MicroBehavior{"look_around", 500 * time.Millisecond}, 2.0},
		{MicroBehavior{"sniff", 300 * time.Millisecond}, 2.0},
		{MicroBehavior{"weight_shift", 400 * time.Millisecond}, 1.5},
		{MicroBehavior{"tail_flick", 150 * time.Millisecond}, 1.0},
	},
	affect.MoodTired: {
		{MicroBehavior{"slow_blink", 800 * time.Millisecond}, 4.0},
		{MicroBehavior{"yawn_small", 600 * time.Millisecond}, 2.0},
		{MicroBehavior{"head_droop", 700 * time.Millisecond}, 2.0},
		{MicroBehavior{"sleepy_sigh", 500 * time.Millisecond}, 1.5},
	},
	affect.MoodAnnoyed: {
		{MicroBehavior{"ear_swivel", 250 * time.Millisecond}, 3.0},
		{MicroBehavior{"huff", 300 * time.Millisecond}, 3.0},
		{MicroBehavior{"tail_flick", 150 * time.Millisecond}, 2.0},
		{MicroBehavior{"low_crouch", 350 * time.Millisecond}, 1.0},
	},
	affect.MoodSad: {
		{MicroBehavior{"head_droop", 700 * time.Millisecond}, 3.0},
		{MicroBehavior{"ear_droop", 300 * time.Millisecond}, 3.0},
		{MicroBehavior{"whimper_soft", 300 * time.Millisecond}, 2.0},
		{MicroBehavior{"sigh", 500 * time.Millisecond}, 1.0},
	},
	affect.MoodGloomy: {
		{MicroBehavior{"head_droop", 700 * time.Millisecond}, 4.0},
		{MicroBehavior{"ear_droop", 300 * time.Millisecond}, 2.0},
		{MicroBehavior{"slow_blink", 800 * time.Millisecond}, 2.0},
		{MicroBehavior{"tail_tuck_partial", 200 * time.Millisecond}, 1.5},
	},
}

// Idler picks idle micro-behaviors so the robot looks alive between
// responses.
type Idler struct {
	rng *rand.Rand
}

// NewIdler creates an Idler. A nil rng is seeded from the clock.
func NewIdler(rng *rand.Rand) *Idler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Idler{rng: rng}
}

// Select picks a micro-behavior for the mood. Returns nil if nothing should
// happen this beat, which keeps natural pauses in the idle loop.
func (i *Idler) Select(mood affect.MoodCategory) *MicroBehavior {
	if i.rng.Float64() >= idleChance {
		return nil
	}

	behaviors, ok := microBehaviors[mood]
	if !ok || len(behaviors) == 0 {
		return nil
	}

	var totalWeight float64
	for _, wb := range behaviors {
		totalWeight += wb.Weight
	}

	r := i.rng.Float64() * totalWeight
	var cumulative float64
	for _, wb := range behaviors {
		cumulative += wb.Weight
		if r <= cumulative {
			b := wb.Behavior
			return &b
		}
	}

	b := behaviors[0].Behavior
	return &b
}
