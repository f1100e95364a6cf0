package affect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixedNoise always returns the same draw. 0.5 maps to zero noise.
type fixedNoise float64

func (f fixedNoise) Float64() float64 { return float64(f) }

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// quietConfig is a deterministic configuration: neutral temperament, no
// jitter, no noise and gauges that do not decay.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Temperament = Vector{}
	cfg.RandomizeMood = false
	cfg.Noise = 0
	for _, n := range Needs {
		cfg.Gauges[n].DecayPerSecond = 0
	}
	return cfg
}

func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *fakeClock) {
	t.Helper()
	cfg := quietConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	clock := newFakeClock()
	e, err := New(cfg, WithNoiseSource(fixedNoise(0.5)), WithClock(clock.Now))
	require.NoError(t, err)
	return e, clock
}
