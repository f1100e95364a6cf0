package affect

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCooldownActive means an event arrived while the admission window
	// from the previous event was still open.
	ErrCooldownActive = errors.New("cooldown active")
	// ErrUnknownEvent means no profile is registered for the keyword.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrAsleep means the event was dropped because the agent is asleep.
	ErrAsleep = errors.New("asleep")
	// ErrInvalidConfig means a configuration change was rejected and the
	// previous value retained.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrReservedKeyword means a caller tried to register a gauge event name.
	ErrReservedKeyword = errors.New("reserved event keyword")
)

// CooldownError carries the time left before the next admission.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active: %dms remaining", e.Remaining.Milliseconds())
}

func (e *CooldownError) Unwrap() error { return ErrCooldownActive }

// UnknownEventError names the keyword that failed to resolve.
type UnknownEventError struct {
	Keyword string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q", e.Keyword)
}

func (e *UnknownEventError) Unwrap() error { return ErrUnknownEvent }

// ConfigError describes a rejected configuration value.
type ConfigError struct {
	Field  string
	Reason string
	Err    error // optional, more specific cause
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfig, e.Err}
	}
	return []error{ErrInvalidConfig}
}
