package presenter

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex/affect/internal/affect"
)

func TestCueFor_DisplayCues(t *testing.T) {
	tests := []struct {
		display affect.DisplayEmotion
		want    Cue
	}{
		{affect.DisplayHappy, Cue{Face: "happy", Sound: "happy", Thought: "happy", Tail: "happy"}},
		{affect.DisplayAngry, Cue{Face: "angry", Sound: "angry", Light: "angry", Thought: "angry", Tail: "angry"}},
		{affect.DisplaySleep, Cue{Face: "sleepy", Light: Off, Thought: "sleep"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.display), func(t *testing.T) {
			got := CueFor(affect.ResponseResult{Display: tt.display, Trigger: "Custom"})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCueFor_EveryDisplayHasAFace(t *testing.T) {
	all := []affect.DisplayEmotion{
		affect.DisplayExcited, affect.DisplayHappy, affect.DisplayRelaxed, affect.DisplayEnergetic,
		affect.DisplayNeutral, affect.DisplayTired, affect.DisplayAnnoyed, affect.DisplaySad,
		affect.DisplayGloomy, affect.DisplaySurprised, affect.DisplayTense, affect.DisplayScared,
		affect.DisplayAngry, affect.DisplayMiserable, affect.DisplaySleep,
	}
	for _, d := range all {
		cue := CueFor(affect.ResponseResult{Display: d, Mood: affect.MoodNeutral})
		assert.NotEmpty(t, cue.Face, d)
	}
}

func TestCueFor_NeutralUsesPassiveFace(t *testing.T) {
	cue := CueFor(affect.ResponseResult{Display: affect.DisplayNeutral, Mood: affect.MoodAnnoyed})
	assert.Equal(t, "angry", cue.Face)
	assert.Equal(t, Off, cue.Light)
	assert.Equal(t, Off, cue.Thought)
}

func TestCueFor_TriggerOverrides(t *testing.T) {
	cue := CueFor(affect.ResponseResult{Display: affect.DisplayHappy, Trigger: affect.EventLoudNoise})
	assert.Equal(t, "scared", cue.Face)
	assert.Equal(t, "exclamation", cue.Thought)
	assert.Equal(t, "surprised", cue.Sound)

	cue = CueFor(affect.ResponseResult{Display: affect.DisplaySad, Trigger: "SocialNeeded"})
	assert.Equal(t, "social", cue.Thought)
	assert.Equal(t, "sad", cue.Light)
	assert.Equal(t, "sad", cue.Face, "overrides keep the display face")
}

func TestPassiveFace(t *testing.T) {
	assert.Equal(t, "happy", PassiveFace(affect.MoodRelaxed))
	assert.Equal(t, "surprised", PassiveFace(affect.MoodEnergetic))
	assert.Equal(t, "sad", PassiveFace(affect.MoodGloomy))
	assert.Equal(t, "neutral", PassiveFace(affect.MoodNeutral))
	assert.Equal(t, "neutral", PassiveFace("unknown"))
}

func TestIdler_SelectsFromMoodTable(t *testing.T) {
	idler := NewIdler(rand.New(rand.NewSource(7)))

	for _, mood := range affect.MoodCategories {
		t.Run(string(mood), func(t *testing.T) {
			names := map[string]bool{}
			for _, wb := range microBehaviors[mood] {
				names[wb.Behavior.Name] = true
			}
			require.NotEmpty(t, names)

			var shown, paused int
			for i := 0; i < 200; i++ {
				b := idler.Select(mood)
				if b == nil {
					paused++
					continue
				}
				shown++
				assert.True(t, names[b.Name], "unexpected behavior %s", b.Name)
				assert.Positive(t, b.Duration)
			}
			assert.Positive(t, shown)
			assert.Positive(t, paused)
		})
	}
}

func TestHub_BroadcastsResponses(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	res := affect.ResponseResult{
		Display: affect.DisplayExcited,
		Valence: 7,
		Arousal: 7,
		Trigger: affect.EventNameHeard,
		Mood:    affect.MoodHappy,
		At:      time.Now(),
	}
	require.NoError(t, hub.Observe(context.Background(), []affect.ResponseResult{res}, affect.Snapshot{}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, FrameResponse, f.Type)
	assert.Equal(t, affect.DisplayExcited, f.Display)
	assert.Equal(t, affect.EventNameHeard, f.Trigger)
	assert.Equal(t, "exclamation", f.Cue.Thought)
}

func TestHub_SendsStateOnConnect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	snap := affect.Snapshot{
		Mood:  affect.State{Category: affect.MoodTired, Valence: -2, Arousal: -6},
		Sleep: affect.Asleep,
	}
	require.NoError(t, hub.Observe(context.Background(), nil, snap))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, FrameState, f.Type)
	assert.Equal(t, affect.MoodTired, f.Mood)
	assert.Equal(t, "sleepy", f.Cue.Face)
	require.NotNil(t, f.Snapshot)
	assert.Equal(t, affect.Asleep, f.Snapshot.Sleep)
}

func TestHub_BroadcastsStateChanges(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx := context.Background()
	snap := affect.Snapshot{
		Mood:   affect.State{Category: affect.MoodHappy, Valence: 5},
		Gauges: affect.GaugeLevels{Touch: 50, Rest: 50, Social: 50, Hunger: 50},
		Sleep:  affect.Awake,
		At:     time.Now(),
	}
	require.NoError(t, hub.Observe(ctx, nil, snap))

	ticked := snap
	ticked.At = snap.At.Add(time.Second)
	ticked.Cooldown.Remaining = time.Second
	require.NoError(t, hub.Observe(ctx, nil, ticked))

	res := affect.ResponseResult{Display: affect.DisplayHappy, Trigger: affect.EventPraiseHeard, Mood: affect.MoodHappy}
	require.NoError(t, hub.Observe(ctx, []affect.ResponseResult{res}, ticked))

	fed := ticked
	fed.Gauges.Hunger = 80
	require.NoError(t, hub.Observe(ctx, nil, fed))

	readFrame := func() Frame {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		return f
	}

	f := readFrame()
	assert.Equal(t, FrameState, f.Type)
	assert.Equal(t, 50.0, f.Snapshot.Gauges.Hunger)

	f = readFrame()
	assert.Equal(t, FrameResponse, f.Type, "an unchanged state is not re-sent")
	assert.Equal(t, affect.EventPraiseHeard, f.Trigger)

	f = readFrame()
	assert.Equal(t, FrameState, f.Type)
	assert.Equal(t, 80.0, f.Snapshot.Gauges.Hunger)
}
