package affect

import (
	"fmt"
	"time"
)

// CooldownPolicy maps arousal onto an admission window between MinMs (fully
// aroused) and MaxMs (fully calm).
type CooldownPolicy struct {
	MinMs int `json:"min_ms"`
	MaxMs int `json:"max_ms"`
}

// DefaultCooldownPolicy returns the stock 0.5s to 10s window.
func DefaultCooldownPolicy() CooldownPolicy {
	return CooldownPolicy{MinMs: 500, MaxMs: 10000}
}

// Validate rejects negative or inverted bounds.
func (p CooldownPolicy) Validate() error {
	if p.MinMs < 0 {
		return &ConfigError{Field: "cooldown.min_ms", Reason: "must not be negative"}
	}
	if p.MaxMs < p.MinMs {
		return &ConfigError{
			Field:  "cooldown",
			Reason: fmt.Sprintf("max_ms (%d) must be >= min_ms (%d)", p.MaxMs, p.MinMs),
		}
	}
	return nil
}

// CooldownMs returns the window in milliseconds for the given arousal:
// min + (1 - p) * (max - min), where p = (arousal + 10) / 20 clamped to [0, 1].
func (p CooldownPolicy) CooldownMs(arousal float64) int {
	pct := Clamp((arousal+10)/20, 0, 1)
	return p.MinMs + int((1-pct)*float64(p.MaxMs-p.MinMs))
}

// Window is CooldownMs as a duration.
func (p CooldownPolicy) Window(arousal float64) time.Duration {
	return time.Duration(p.CooldownMs(arousal)) * time.Millisecond
}

// CanAdmit reports whether an event arriving at now may be admitted given
// the last admission time. When it may not, the remaining wait is returned.
func (p CooldownPolicy) CanAdmit(arousal float64, last, now time.Time) (bool, time.Duration) {
	if last.IsZero() {
		return true, 0
	}
	elapsed := now.Sub(last)
	window := p.Window(arousal)
	if elapsed >= window {
		return true, 0
	}
	return false, window - elapsed
}

// CooldownStatus reports the current window and how much of it is left.
type CooldownStatus struct {
	Window    time.Duration `json:"window"`
	Remaining time.Duration `json:"remaining"`
}
