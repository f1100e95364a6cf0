package affect

import (
	"sort"
	"strings"
)

// EventProfile describes how a named stimulus perturbs the affective state
// and the need gauges.
type EventProfile struct {
	Keyword string  `json:"keyword" yaml:"keyword" mapstructure:"keyword"`
	Valence float64 `json:"valence" yaml:"valence" mapstructure:"valence"`
	Arousal float64 `json:"arousal" yaml:"arousal" mapstructure:"arousal"`
	Touch   float64 `json:"touch,omitempty" yaml:"touch,omitempty" mapstructure:"touch"`
	Rest    float64 `json:"rest,omitempty" yaml:"rest,omitempty" mapstructure:"rest"`
	Social  float64 `json:"social,omitempty" yaml:"social,omitempty" mapstructure:"social"`
	Hunger  float64 `json:"hunger,omitempty" yaml:"hunger,omitempty" mapstructure:"hunger"`
}

// Vector returns the profile's valence/arousal pair.
func (p EventProfile) Vector() Vector {
	return Vector{Valence: p.Valence, Arousal: p.Arousal}
}

// Delta returns the gauge change the profile applies to need n.
func (p EventProfile) Delta(n Need) float64 {
	switch n {
	case NeedTouch:
		return p.Touch
	case NeedRest:
		return p.Rest
	case NeedSocial:
		return p.Social
	case NeedHunger:
		return p.Hunger
	}
	return 0
}

func (p EventProfile) clamped() EventProfile {
	p.Keyword = strings.TrimSpace(p.Keyword)
	p.Valence = ClampAxis(p.Valence)
	p.Arousal = ClampAxis(p.Arousal)
	p.Touch = Clamp(p.Touch, -GaugeMax, GaugeMax)
	p.Rest = Clamp(p.Rest, -GaugeMax, GaugeMax)
	p.Social = Clamp(p.Social, -GaugeMax, GaugeMax)
	p.Hunger = Clamp(p.Hunger, -GaugeMax, GaugeMax)
	return p
}

// Built-in stimulus keywords.
const (
	EventStrokeFrontToBack = "StrokeFrontToBack"
	EventStrokeBackToFront = "StrokeBackToFront"
	EventNameHeard         = "NameHeard"
	EventGreetingHeard     = "GreetingHeard"
	EventFoodHeard         = "FoodHeard"
	EventTooFarAway        = "TooFarAway"
	EventHappyHeard        = "HappyHeard"
	EventSadHeard          = "SadHeard"
	EventAngryHeard        = "AngryHeard"
	EventFarewellHeard     = "FarewellHeard"
	EventPraiseHeard       = "PraiseHeard"
	EventTouchHeard        = "TouchHeard"
	EventLookingAway       = "LookingAway"
	EventLookingTowards    = "LookingTowards"
	EventBeingHeld         = "BeingHeld"
	EventFeeding           = "Feeding"
	EventLoudNoise         = "LoudNoise"
)

// FeedingHunger is the hunger restored by the Feeding stimulus.
const FeedingHunger = 30

// gaugeProfiles are the synthetic events emitted on gauge threshold
// crossings. Their keywords cannot be registered by callers.
var gaugeProfiles = []EventProfile{
	{Keyword: "HungerNeeded", Valence: -5, Arousal: 5},
	{Keyword: "HungerUnfulfilled", Valence: -10, Arousal: 5, Social: -3},
	{Keyword: "HungerFulfilled", Valence: 5, Arousal: 0, Social: 3},
	{Keyword: "TouchNeeded", Valence: -2, Arousal: 2, Touch: -5, Social: -2},
	{Keyword: "TouchUnfulfilled", Valence: -5, Arousal: 0, Touch: -10, Rest: -2, Social: -5},
	{Keyword: "TouchFulfilled", Valence: 8, Arousal: 5, Touch: 10, Rest: 2, Social: 5},
	{Keyword: "RestNeeded", Valence: -2, Arousal: -5, Rest: -5, Social: -2},
	{Keyword: "RestUnfulfilled", Valence: -5, Arousal: -8, Touch: -2, Rest: -10, Social: -5},
	{Keyword: "RestFulfilled", Valence: 5, Arousal: 2, Touch: 2, Rest: 10, Social: 2},
	{Keyword: "SocialNeeded", Valence: -2, Arousal: 2, Social: -5},
	{Keyword: "SocialUnfulfilled", Valence: -5, Arousal: -2, Touch: -2, Rest: -2, Social: -10},
	{Keyword: "SocialFulfilled", Valence: 5, Arousal: 5, Touch: 2, Rest: 2, Social: 10},
}

// stimulusProfiles are the built-in external stimuli. Callers may shadow
// them with their own registrations.
var stimulusProfiles = []EventProfile{
	{Keyword: EventStrokeFrontToBack, Valence: 8, Arousal: 5, Touch: 10, Rest: 2, Social: 5},
	{Keyword: EventStrokeBackToFront, Valence: -10, Arousal: 3, Touch: 5, Rest: -2, Social: 2},
	{Keyword: EventNameHeard, Valence: 5, Arousal: 5, Social: 5},
	{Keyword: EventGreetingHeard, Valence: 5, Arousal: 2, Social: 5},
	{Keyword: EventFoodHeard, Valence: 5, Arousal: 2, Social: 2},
	{Keyword: EventTooFarAway, Valence: -10, Arousal: 2, Social: -5},
	{Keyword: EventHappyHeard, Valence: 8, Arousal: 5, Social: 3},
	{Keyword: EventSadHeard, Valence: -8, Arousal: -3, Social: 3},
	{Keyword: EventAngryHeard, Valence: -8, Arousal: 3, Social: 2},
	{Keyword: EventFarewellHeard, Valence: -2, Arousal: -2, Social: 3},
	{Keyword: EventPraiseHeard, Valence: 10, Arousal: 5, Social: 5},
	{Keyword: EventTouchHeard, Valence: 3, Arousal: 2, Touch: 3, Social: 2},
	{Keyword: EventLookingAway, Valence: -6, Arousal: -2, Social: -4},
	{Keyword: EventLookingTowards, Valence: 4, Arousal: 3, Social: 4},
	{Keyword: EventBeingHeld, Valence: 8, Arousal: -3, Touch: 10, Rest: 2, Social: 8},
	{Keyword: EventFeeding, Valence: 6, Arousal: 3, Rest: 2, Social: 4, Hunger: FeedingHunger},
	{Keyword: EventLoudNoise, Valence: -4, Arousal: 9},
}

// normalizeKeyword is the registry key for a keyword.
func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// Registry holds the immutable built-in profiles and the caller-managed
// user profiles, both keyed case-insensitively. Lookups prefer user entries.
type Registry struct {
	builtin  map[string]EventProfile
	reserved map[string]bool
	user     map[string]EventProfile
}

// NewRegistry creates a registry seeded with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{
		builtin:  make(map[string]EventProfile, len(gaugeProfiles)+len(stimulusProfiles)),
		reserved: make(map[string]bool, len(gaugeProfiles)),
		user:     make(map[string]EventProfile),
	}
	for _, p := range gaugeProfiles {
		key := normalizeKeyword(p.Keyword)
		r.builtin[key] = p
		r.reserved[key] = true
	}
	for _, p := range stimulusProfiles {
		r.builtin[normalizeKeyword(p.Keyword)] = p
	}
	return r
}

// Reserved reports whether keyword names a synthetic gauge event.
func (r *Registry) Reserved(keyword string) bool {
	return r.reserved[normalizeKeyword(keyword)]
}

// Register upserts a user profile. Out-of-range values are clamped.
func (r *Registry) Register(p EventProfile) (EventProfile, error) {
	p = p.clamped()
	key := normalizeKeyword(p.Keyword)
	if key == "" {
		return EventProfile{}, &ConfigError{Field: "keyword", Reason: "must not be empty"}
	}
	if r.reserved[key] {
		return EventProfile{}, &ConfigError{
			Field:  "keyword",
			Reason: "\"" + p.Keyword + "\" is a reserved gauge event",
			Err:    ErrReservedKeyword,
		}
	}
	r.user[key] = p
	return p, nil
}

// Delete removes a user profile. Built-ins cannot be deleted; deleting a
// user entry that shadows one restores the built-in.
func (r *Registry) Delete(keyword string) bool {
	key := normalizeKeyword(keyword)
	if _, ok := r.user[key]; !ok {
		return false
	}
	delete(r.user, key)
	return true
}

// Lookup finds a profile by keyword, user entries first.
func (r *Registry) Lookup(keyword string) (EventProfile, bool) {
	key := normalizeKeyword(keyword)
	if p, ok := r.user[key]; ok {
		return p, true
	}
	p, ok := r.builtin[key]
	return p, ok
}

// User returns the user profiles sorted by keyword.
func (r *Registry) User() []EventProfile {
	return sortedProfiles(r.user)
}

// All returns every resolvable profile sorted by keyword, with user entries
// in place of the built-ins they shadow.
func (r *Registry) All() []EventProfile {
	merged := make(map[string]EventProfile, len(r.builtin)+len(r.user))
	for k, p := range r.builtin {
		merged[k] = p
	}
	for k, p := range r.user {
		merged[k] = p
	}
	return sortedProfiles(merged)
}

func sortedProfiles(m map[string]EventProfile) []EventProfile {
	out := make([]EventProfile, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return normalizeKeyword(out[i].Keyword) < normalizeKeyword(out[j].Keyword)
	})
	return out
}
