package affect

import (
	"fmt"
	"time"
)

// SleepState is the state of the sleep/wake machine.
type SleepState string

const (
	Awake  SleepState = "awake"
	Asleep SleepState = "asleep"
)

// Triggers reported on sleep transitions.
const (
	TriggerSleep = "RestNeeded"
	TriggerWake  = "Wake"
)

// Wake reasons, used in logs.
const (
	wakeRested   = "rested"
	wakeTimeout  = "max duration"
	wakeCommand  = "command"
	wakeStimulus = "stimulus"
)

// SleepConfig controls the optional sleep subsystem. Durations are measured
// in scaled simulation time.
type SleepConfig struct {
	Enabled        bool          `json:"enabled"`
	RegenPerSecond float64       `json:"regen_per_second"`
	MaxDuration    time.Duration `json:"max_duration"`
	WakeEvents     []string      `json:"wake_events"`
}

// DefaultSleepConfig refills rest over four hours and never sleeps longer
// than that. Only a loud noise wakes the agent early.
func DefaultSleepConfig() SleepConfig {
	return SleepConfig{
		Enabled:        true,
		RegenPerSecond: perHours(4),
		MaxDuration:    4 * time.Hour,
		WakeEvents:     []string{EventLoudNoise},
	}
}

// Validate checks rates and durations.
func (c SleepConfig) Validate() error {
	if c.RegenPerSecond < 0 {
		return &ConfigError{Field: "sleep.regen_per_second", Reason: "must not be negative"}
	}
	if c.MaxDuration < 0 {
		return &ConfigError{Field: "sleep.max_duration", Reason: fmt.Sprintf("must not be negative, got %s", c.MaxDuration)}
	}
	return nil
}

func (c SleepConfig) wakes(keyword string) bool {
	key := normalizeKeyword(keyword)
	for _, w := range c.WakeEvents {
		if normalizeKeyword(w) == key {
			return true
		}
	}
	return false
}

// sleepCycle tracks the machine state and time spent asleep.
type sleepCycle struct {
	state   SleepState
	elapsed time.Duration
}

func (s *sleepCycle) asleep() bool {
	return s.state == Asleep
}

func (s *sleepCycle) fallAsleep() {
	s.state = Asleep
	s.elapsed = 0
}

func (s *sleepCycle) wake() {
	s.state = Awake
	s.elapsed = 0
}
