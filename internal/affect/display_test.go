package affect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDisplay(t *testing.T) {
	tests := []struct {
		name             string
		valence, arousal float64
		want             DisplayEmotion
	}{
		{"weighted happy event", 5.6, 2.8, DisplayHappy},
		{"ecstatic", 9, 9, DisplayExcited},
		{"startled", 0, 8, DisplaySurprised},
		{"uneasy", -5, 7, DisplayTense},
		{"terrified", -9, 9, DisplayScared},
		{"restless", 0, 5, DisplayEnergetic},
		{"irritated", -5, 5, DisplayAnnoyed},
		{"furious", -9, 5, DisplayAngry},
		{"calm", 0, 0, DisplayNeutral},
		{"down", -5, 0, DisplaySad},
		{"despairing", -9, 0, DisplayMiserable},
		{"content", 5, -5, DisplayRelaxed},
		{"drowsy", 0, -5, DisplayTired},
		{"low and slow", -9, -5, DisplaySad},
		{"bleak", -5, -9, DisplayGloomy},
		{"exhausted", 0, -9, DisplayTired},
		{"serene", 9, -9, DisplayRelaxed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDisplay(tt.valence, tt.arousal))
		})
	}
}

func TestResolveDisplay_BandEdges(t *testing.T) {
	assert.Equal(t, DisplayHappy, ResolveDisplay(6, 6), "6 falls in the second band")
	assert.Equal(t, DisplayExcited, ResolveDisplay(6.1, 6.1))
	assert.Equal(t, DisplayNeutral, ResolveDisplay(3, 3), "3 closes the middle band from above")
	assert.Equal(t, DisplayNeutral, ResolveDisplay(-3, -3), "-3 closes it from below")
	assert.Equal(t, DisplaySad, ResolveDisplay(-6, -6))
	assert.Equal(t, DisplayGloomy, ResolveDisplay(-6.1, -6.1))
}

func TestResolveDisplay_Deterministic(t *testing.T) {
	for v := -10.0; v <= 10; v += 0.5 {
		for a := -10.0; a <= 10; a += 0.5 {
			first := ResolveDisplay(v, a)
			assert.NotEmpty(t, first)
			assert.NotEqual(t, DisplaySleep, first)
			assert.Equal(t, first, ResolveDisplay(v, a))
		}
	}
}
