package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alex/affect/internal/affect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	ec := cfg.EngineConfig()
	def := affect.DefaultConfig()
	assert.Equal(t, def.Temperament, ec.Temperament)
	assert.Equal(t, def.Cooldown, ec.Cooldown)
	assert.Equal(t, def.Weights, ec.Weights)
	assert.InDelta(t, def.Gauges[affect.NeedTouch].DecayPerSecond, ec.Gauges[affect.NeedTouch].DecayPerSecond, 1e-12)
	assert.InDelta(t, def.Sleep.RegenPerSecond, ec.Sleep.RegenPerSecond, 1e-12)
}

func TestLoadFromPath_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 5.0, cfg.Engine.TemperamentValence)
	assert.Equal(t, 100*time.Millisecond, cfg.Runtime.TickInterval)
	assert.Equal(t, []string{affect.EventLoudNoise}, cfg.Sleep.WakeEvents)

	again, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFromPath_ReadsFileAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
engine:
  temperament_valence: -3
  cooldown_max_ms: 8000
runtime:
  tick_interval: 250ms
  accelerated: true
events:
  - keyword: Doorbell
    valence: 1
    arousal: 6
    social: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, -3.0, cfg.Engine.TemperamentValence)
	assert.Equal(t, 8000, cfg.Engine.CooldownMaxMs)
	assert.Equal(t, 500, cfg.Engine.CooldownMinMs, "unset keys keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Runtime.TickInterval)
	assert.Equal(t, float64(AcceleratedTimeScale), cfg.TimeScale())

	profiles := cfg.EventProfiles()
	require.Len(t, profiles, 1)
	assert.Equal(t, affect.EventProfile{Keyword: "Doorbell", Valence: 1, Arousal: 6, Social: 5}, profiles[0])
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("AFFECT_ENGINE_NOISE", "2.5")
	t.Setenv("AFFECT_GAUGES_REST_NEEDED", "20")
	t.Setenv("AFFECT_SLEEP_WAKE_EVENTS", "LoudNoise,NameHeard")
	t.Setenv("AFFECT_SERVER_ADDR", ":9999")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 2.5, cfg.Engine.Noise)
	assert.Equal(t, 20.0, cfg.Gauges.Rest.Needed)
	assert.Equal(t, []string{"LoudNoise", "NameHeard"}, cfg.Sleep.WakeEvents)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"zero tick", func(c *Config) { c.Runtime.TickInterval = 0 }},
		{"zero queue", func(c *Config) { c.Runtime.QueueSize = 0 }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"empty store", func(c *Config) { c.Store.Path = "" }},
		{"negative decay", func(c *Config) { c.Gauges.Hunger.DecayHours = -1 }},
		{"empty keyword", func(c *Config) { c.Events = []EventConfig{{Keyword: " "}} }},
		{"weights", func(c *Config) { c.Engine.MoodWeight = 0.9 }},
		{"cooldown", func(c *Config) { c.Engine.CooldownMinMs = 20000 }},
		{"thresholds", func(c *Config) { c.Gauges.Touch.Needed = 80 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEngineConfig_ZeroDecayDisablesGauge(t *testing.T) {
	cfg := Default()
	cfg.Gauges.Social.DecayHours = 0
	assert.Zero(t, cfg.EngineConfig().Gauges[affect.NeedSocial].DecayPerSecond)
}

func TestSaveToPath_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Engine.TemperamentArousal = -2
	cfg.Events = []EventConfig{{Keyword: "Doorbell", Valence: 1, Arousal: 6}}
	require.NoError(t, cfg.SaveToPath(path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, -2.0, loaded.Engine.TemperamentArousal)
	assert.Equal(t, cfg.Events, loaded.Events)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".affectd", "x"), expandPath("~/.affectd/x"))
	assert.Equal(t, "/tmp/x", expandPath("/tmp/x"))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := LoadFromPath(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changed := make(chan *Config, 4)
	require.NoError(t, Watch(ctx, path, zerolog.Nop(), func(c *Config) { changed <- c }))

	cfg := Default()
	cfg.Engine.Noise = 3
	require.NoError(t, cfg.SaveToPath(path))

	select {
	case got := <-changed:
		assert.Equal(t, 3.0, got.Engine.Noise)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}
