// Package config loads affectd configuration from ~/.affectd/config.yaml, an
// optional .env file and AFFECT_-prefixed environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alex/affect/internal/affect"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. AFFECT_ENGINE_NOISE.
const EnvPrefix = "AFFECT_"

// AcceleratedTimeScale is the tick multiplier used in accelerated mode:
// one real minute covers three simulated hours.
const AcceleratedTimeScale = 180

// Config holds all affectd configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine" envPrefix:"ENGINE_"`
	Gauges  GaugesConfig  `mapstructure:"gauges" yaml:"gauges" envPrefix:"GAUGES_"`
	Sleep   SleepConfig   `mapstructure:"sleep" yaml:"sleep" envPrefix:"SLEEP_"`
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime" envPrefix:"RUNTIME_"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server" envPrefix:"SERVER_"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store" envPrefix:"STORE_"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" envPrefix:"LOGGING_"`

	// Events are user event profiles registered at startup.
	Events []EventConfig `mapstructure:"events" yaml:"events"`
}

// EngineConfig holds the affective model tunables.
type EngineConfig struct {
	TemperamentValence    float64 `mapstructure:"temperament_valence" yaml:"temperament_valence" env:"TEMPERAMENT_VALENCE"`
	TemperamentArousal    float64 `mapstructure:"temperament_arousal" yaml:"temperament_arousal" env:"TEMPERAMENT_AROUSAL"`
	RandomizeMood         bool    `mapstructure:"randomize_mood" yaml:"randomize_mood" env:"RANDOMIZE_MOOD"`
	MoodJitter            float64 `mapstructure:"mood_jitter" yaml:"mood_jitter" env:"MOOD_JITTER"`
	AllowMoodShift        bool    `mapstructure:"allow_mood_shift" yaml:"allow_mood_shift" env:"ALLOW_MOOD_SHIFT"`
	AllowTemperamentShift bool    `mapstructure:"allow_temperament_shift" yaml:"allow_temperament_shift" env:"ALLOW_TEMPERAMENT_SHIFT"`
	MoodGain              float64 `mapstructure:"mood_gain" yaml:"mood_gain" env:"MOOD_GAIN"`
	TemperamentGain       float64 `mapstructure:"temperament_gain" yaml:"temperament_gain" env:"TEMPERAMENT_GAIN"`
	MoodWeight            float64 `mapstructure:"mood_weight" yaml:"mood_weight" env:"MOOD_WEIGHT"`
	EventWeight           float64 `mapstructure:"event_weight" yaml:"event_weight" env:"EVENT_WEIGHT"`
	Noise                 float64 `mapstructure:"noise" yaml:"noise" env:"NOISE"`
	ResponseChanceEnabled bool    `mapstructure:"response_chance_enabled" yaml:"response_chance_enabled" env:"RESPONSE_CHANCE_ENABLED"`
	ResponseChance        float64 `mapstructure:"response_chance" yaml:"response_chance" env:"RESPONSE_CHANCE"`
	CooldownMinMs         int     `mapstructure:"cooldown_min_ms" yaml:"cooldown_min_ms" env:"COOLDOWN_MIN_MS"`
	CooldownMaxMs         int     `mapstructure:"cooldown_max_ms" yaml:"cooldown_max_ms" env:"COOLDOWN_MAX_MS"`
}

// GaugeConfig describes one need gauge. DecayHours is the time a full gauge
// takes to drain; zero disables decay.
type GaugeConfig struct {
	Initial    float64 `mapstructure:"initial" yaml:"initial" env:"INITIAL"`
	DecayHours float64 `mapstructure:"decay_hours" yaml:"decay_hours" env:"DECAY_HOURS"`
	Needed     float64 `mapstructure:"needed" yaml:"needed" env:"NEEDED"`
	Fulfilled  float64 `mapstructure:"fulfilled" yaml:"fulfilled" env:"FULFILLED"`
}

// GaugesConfig holds the four need gauges.
type GaugesConfig struct {
	Touch  GaugeConfig `mapstructure:"touch" yaml:"touch" envPrefix:"TOUCH_"`
	Rest   GaugeConfig `mapstructure:"rest" yaml:"rest" envPrefix:"REST_"`
	Social GaugeConfig `mapstructure:"social" yaml:"social" envPrefix:"SOCIAL_"`
	Hunger GaugeConfig `mapstructure:"hunger" yaml:"hunger" envPrefix:"HUNGER_"`
}

// SleepConfig controls the sleep/wake cycle.
type SleepConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled" env:"ENABLED"`
	RegenHours  float64       `mapstructure:"regen_hours" yaml:"regen_hours" env:"REGEN_HOURS"`
	MaxDuration time.Duration `mapstructure:"max_duration" yaml:"max_duration" env:"MAX_DURATION"`
	WakeEvents  []string      `mapstructure:"wake_events" yaml:"wake_events" env:"WAKE_EVENTS" envSeparator:","`
}

// RuntimeConfig controls the host loop around the engine.
type RuntimeConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval" env:"TICK_INTERVAL"`
	QueueSize    int           `mapstructure:"queue_size" yaml:"queue_size" env:"QUEUE_SIZE"`
	SubmitRate   float64       `mapstructure:"submit_rate" yaml:"submit_rate" env:"SUBMIT_RATE"`
	SubmitBurst  int           `mapstructure:"submit_burst" yaml:"submit_burst" env:"SUBMIT_BURST"`
	TimeScale    float64       `mapstructure:"time_scale" yaml:"time_scale" env:"TIME_SCALE"`
	Accelerated  bool          `mapstructure:"accelerated" yaml:"accelerated" env:"ACCELERATED"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" env:"ENABLED"`
	Addr    string `mapstructure:"addr" yaml:"addr" env:"ADDR"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path" env:"PATH"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level" env:"LEVEL"`
	Dir     string `mapstructure:"dir" yaml:"dir" env:"DIR"`
	Console bool   `mapstructure:"console" yaml:"console" env:"CONSOLE"`
}

// EventConfig is a user event profile.
type EventConfig struct {
	Keyword string  `mapstructure:"keyword" yaml:"keyword"`
	Valence float64 `mapstructure:"valence" yaml:"valence"`
	Arousal float64 `mapstructure:"arousal" yaml:"arousal"`
	Touch   float64 `mapstructure:"touch" yaml:"touch,omitempty"`
	Rest    float64 `mapstructure:"rest" yaml:"rest,omitempty"`
	Social  float64 `mapstructure:"social" yaml:"social,omitempty"`
	Hunger  float64 `mapstructure:"hunger" yaml:"hunger,omitempty"`
}

// Default returns the stock configuration.
func Default() *Config {
	gauge := func(hours float64) GaugeConfig {
		return GaugeConfig{Initial: 50, DecayHours: hours, Needed: 30, Fulfilled: 70}
	}

	return &Config{
		Engine: EngineConfig{
			TemperamentValence:    5,
			TemperamentArousal:    0,
			RandomizeMood:         true,
			MoodJitter:            2,
			AllowMoodShift:        true,
			AllowTemperamentShift: true,
			MoodGain:              0.01,
			TemperamentGain:       0.001,
			MoodWeight:            0.3,
			EventWeight:           0.7,
			Noise:                 1,
			ResponseChanceEnabled: false,
			ResponseChance:        100,
			CooldownMinMs:         500,
			CooldownMaxMs:         10000,
		},
		Gauges: GaugesConfig{
			Touch:  gauge(3),
			Rest:   gauge(12),
			Social: gauge(6),
			Hunger: gauge(6),
		},
		Sleep: SleepConfig{
			Enabled:     true,
			RegenHours:  4,
			MaxDuration: 4 * time.Hour,
			WakeEvents:  []string{affect.EventLoudNoise},
		},
		Runtime: RuntimeConfig{
			TickInterval: 100 * time.Millisecond,
			QueueSize:    64,
			SubmitRate:   20,
			SubmitBurst:  10,
			TimeScale:    1,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8077",
		},
		Store: StoreConfig{
			Path: "~/.affectd/affect.db",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Dir:     "~/.affectd/logs",
			Console: true,
		},
	}
}

// DefaultPath returns ~/.affectd/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".affectd", "config.yaml"), nil
}

// Load reads configuration from the default location.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from path, creating it with defaults if it
// does not exist, then applies .env and environment overrides.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so keys missing from the file keep their stock values.
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Store.Path = expandPath(cfg.Store.Path)
	cfg.Logging.Dir = expandPath(cfg.Logging.Dir)
	return cfg, nil
}

// applyEnv loads .env from the working directory, if present, and overlays
// AFFECT_ environment variables.
func applyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// SaveToPath writes the configuration to path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeConfigFile(path, c)
}

// Validate checks the configuration for errors and inconsistencies.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if c.Runtime.TickInterval <= 0 {
		return fmt.Errorf("runtime.tick_interval must be positive")
	}
	if c.Runtime.QueueSize <= 0 {
		return fmt.Errorf("runtime.queue_size must be positive")
	}
	if c.Runtime.SubmitRate < 0 || c.Runtime.SubmitBurst < 0 {
		return fmt.Errorf("runtime.submit_rate and submit_burst cannot be negative")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty when the server is enabled")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty")
	}
	for _, g := range []GaugeConfig{c.Gauges.Touch, c.Gauges.Rest, c.Gauges.Social, c.Gauges.Hunger} {
		if g.DecayHours < 0 {
			return fmt.Errorf("gauge decay_hours cannot be negative")
		}
	}
	if c.Sleep.RegenHours < 0 {
		return fmt.Errorf("sleep.regen_hours cannot be negative")
	}
	for i, ev := range c.Events {
		if strings.TrimSpace(ev.Keyword) == "" {
			return fmt.Errorf("events[%d].keyword cannot be empty", i)
		}
	}
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// TimeScale is the effective tick multiplier.
func (c *Config) TimeScale() float64 {
	if c.Runtime.Accelerated {
		return AcceleratedTimeScale
	}
	return c.Runtime.TimeScale
}

// EngineConfig converts the file settings into engine settings.
func (c *Config) EngineConfig() affect.Config {
	e := c.Engine
	cfg := affect.Config{
		Temperament:   affect.Vector{Valence: e.TemperamentValence, Arousal: e.TemperamentArousal},
		RandomizeMood: e.RandomizeMood,
		MoodJitter:    e.MoodJitter,
		Shift:         affect.ShiftOptions{AllowMood: e.AllowMoodShift, AllowTemperament: e.AllowTemperamentShift},
		Gains:         affect.DriftGains{Mood: e.MoodGain, Temperament: e.TemperamentGain},
		Weights:       affect.Weights{Mood: e.MoodWeight, Event: e.EventWeight},
		Noise:         e.Noise,
		Chance:        affect.ResponseChance{Enabled: e.ResponseChanceEnabled, Percent: e.ResponseChance},
		Cooldown:      affect.CooldownPolicy{MinMs: e.CooldownMinMs, MaxMs: e.CooldownMaxMs},
		Sleep: affect.SleepConfig{
			Enabled:        c.Sleep.Enabled,
			RegenPerSecond: perSecond(c.Sleep.RegenHours),
			MaxDuration:    c.Sleep.MaxDuration,
			WakeEvents:     c.Sleep.WakeEvents,
		},
		TimeScale: c.TimeScale(),
	}
	cfg.Gauges[affect.NeedTouch] = c.Gauges.Touch.engine()
	cfg.Gauges[affect.NeedRest] = c.Gauges.Rest.engine()
	cfg.Gauges[affect.NeedSocial] = c.Gauges.Social.engine()
	cfg.Gauges[affect.NeedHunger] = c.Gauges.Hunger.engine()
	return cfg
}

// EventProfiles converts the configured user events.
func (c *Config) EventProfiles() []affect.EventProfile {
	out := make([]affect.EventProfile, 0, len(c.Events))
	for _, ev := range c.Events {
		out = append(out, affect.EventProfile{
			Keyword: ev.Keyword,
			Valence: ev.Valence,
			Arousal: ev.Arousal,
			Touch:   ev.Touch,
			Rest:    ev.Rest,
			Social:  ev.Social,
			Hunger:  ev.Hunger,
		})
	}
	return out
}

func (g GaugeConfig) engine() affect.GaugeConfig {
	return affect.GaugeConfig{
		Initial:        g.Initial,
		DecayPerSecond: perSecond(g.DecayHours),
		Needed:         g.Needed,
		Fulfilled:      g.Fulfilled,
	}
}

// perSecond converts "drains a full gauge in h hours" to units per second.
func perSecond(hours float64) float64 {
	if hours <= 0 {
		return 0
	}
	return affect.GaugeMax / (hours * 3600)
}

// writeConfigFile writes a Config struct to a YAML file.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
