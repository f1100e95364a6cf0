// Package presenter turns engine responses into presentation cues for the
// robot's face, speaker, light sphere and thought bubble, and streams them to
// websocket clients.
package presenter

import (
	"strings"

	"github.com/alex/affect/internal/affect"
)

// Off hides a light or thought bubble.
const Off = "off"

// Cue is what a presentation controller should show. Empty fields leave the
// current output unchanged.
type Cue struct {
	Face    string `json:"face,omitempty"`
	Sound   string `json:"sound,omitempty"`
	Light   string `json:"light,omitempty"`
	Thought string `json:"thought,omitempty"`
	Tail    string `json:"tail,omitempty"`
}

// overlay copies the non-empty fields of o over c.
func (c Cue) overlay(o Cue) Cue {
	if o.Face != "" {
		c.Face = o.Face
	}
	if o.Sound != "" {
		c.Sound = o.Sound
	}
	if o.Light != "" {
		c.Light = o.Light
	}
	if o.Thought != "" {
		c.Thought = o.Thought
	}
	if o.Tail != "" {
		c.Tail = o.Tail
	}
	return c
}

var displayCues = map[affect.DisplayEmotion]Cue{
	affect.DisplayExcited:   {Face: "happy", Sound: "surprised", Light: "happy", Thought: "exclamation", Tail: "happy"},
	affect.DisplayHappy:     {Face: "happy", Sound: "happy", Thought: "happy", Tail: "happy"},
	affect.DisplayRelaxed:   {Face: "happy", Sound: "happy", Thought: "sleep", Tail: "happy"},
	affect.DisplaySurprised: {Face: "surprised", Sound: "surprised", Light: "surprised", Thought: "surprised", Tail: "surprised"},
	affect.DisplayEnergetic: {Face: "surprised", Sound: "surprised", Light: "surprised", Thought: "surprised", Tail: "surprised"},
	affect.DisplayTense:     {Face: "surprised", Sound: "surprised", Light: "surprised", Thought: "surprised", Tail: "surprised"},
	affect.DisplayScared:    {Face: "scared", Sound: "surprised", Light: "surprised", Thought: "exclamation", Tail: "surprised"},
	affect.DisplayAnnoyed:   {Face: "angry", Sound: "angry", Light: "angry", Thought: "angry", Tail: "angry"},
	affect.DisplayAngry:     {Face: "angry", Sound: "angry", Light: "angry", Thought: "angry", Tail: "angry"},
	affect.DisplayNeutral:   {Light: Off, Thought: Off, Tail: "happy"},
	affect.DisplaySad:       {Face: "sad", Sound: "sad", Thought: "sad", Tail: "sad"},
	affect.DisplayMiserable: {Face: "sad", Sound: "sad", Light: "sad", Thought: "sad", Tail: "sad"},
	affect.DisplayTired:     {Face: "neutral", Sound: "sad", Thought: "tired", Tail: "sad"},
	affect.DisplayGloomy:    {Face: "neutral", Sound: "sad", Thought: "sleep", Tail: "sad"},
	affect.DisplaySleep:     {Face: "sleepy", Light: Off, Thought: "sleep"},
}

// triggerCues refine the display cue for specific stimuli, keyed by
// lowercase trigger.
var triggerCues = map[string]Cue{
	"hungerneeded":      {Thought: "hungry"},
	"socialneeded":      {Thought: "social", Light: "sad"},
	"touchneeded":       {Thought: "hand"},
	"restneeded":        {Thought: "sleep"},
	"hungerfulfilled":   {Thought: "heart"},
	"socialfulfilled":   {Thought: "heart"},
	"touchfulfilled":    {Thought: "hand"},
	"restfulfilled":     {Thought: "sun"},
	"hungerunfulfilled": {Thought: "hungry"},
	"socialunfulfilled": {Thought: "sad"},
	"touchunfulfilled":  {Thought: "hand"},
	"foodheard":         {Thought: "hungry"},
	"greetingheard":     {Thought: "heart", Light: "happy"},
	"nameheard":         {Thought: "exclamation"},
	"loudnoise":         {Face: "scared", Sound: "surprised", Thought: "exclamation", Tail: "surprised"},
	"happyheard":        {Thought: "happy"},
	"sadheard":          {Thought: "sad"},
	"angryheard":        {Thought: "angry"},
	"farewellheard":     {Thought: "sad"},
	"praiseheard":       {Thought: "heart"},
	"touchheard":        {Thought: "hand"},
	"lookingaway":       {Thought: "looking"},
	"lookingtowards":    {Thought: "looking"},
	"feeding":           {Thought: "hungry", Light: "happy"},
}

// PassiveFace is the resting expression for a mood, shown between
// responses and whenever a neutral response leaves the face unset.
func PassiveFace(mood affect.MoodCategory) string {
	switch mood {
	case affect.MoodExcited, affect.MoodHappy, affect.MoodRelaxed:
		return "happy"
	case affect.MoodEnergetic:
		return "surprised"
	case affect.MoodTired, affect.MoodSad, affect.MoodGloomy:
		return "sad"
	case affect.MoodAnnoyed:
		return "angry"
	default:
		return "neutral"
	}
}

// CueFor builds the cue for a response: the display emotion's cue, then any
// trigger refinement, falling back to the passive face.
func CueFor(res affect.ResponseResult) Cue {
	cue, ok := displayCues[res.Display]
	if !ok {
		cue = displayCues[affect.DisplayNeutral]
	}
	if o, ok := triggerCues[strings.ToLower(res.Trigger)]; ok {
		cue = cue.overlay(o)
	}
	if cue.Face == "" {
		cue.Face = PassiveFace(res.Mood)
	}
	return cue
}
