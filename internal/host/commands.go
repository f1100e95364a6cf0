package host

import (
	"context"

	"github.com/alex/affect/internal/affect"
)

// Command runs on the runner goroutine with exclusive access to the engine.
type Command func(e *affect.Engine) ([]affect.ResponseResult, error)

// Trigger feeds a stimulus to the engine. An unknown keyword still yields
// the neutral fallback response alongside the error, and a stimulus that
// wakes the agent yields the Wake response first.
func Trigger(keyword string) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		return e.Dispatch(keyword)
	}
}

// Register adds or replaces a user event.
func Register(p affect.EventProfile) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		_, err := e.RegisterEvent(p)
		return nil, err
	}
}

// Delete removes a user event. Deleting an unknown event is an error.
func Delete(keyword string) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		if !e.DeleteEvent(keyword) {
			return nil, &affect.UnknownEventError{Keyword: keyword}
		}
		return nil, nil
	}
}

func SetTemperament(t affect.Vector, reinitializeMood bool) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		e.SetTemperament(t.Valence, t.Arousal, reinitializeMood)
		return nil, nil
	}
}

func SetShiftOptions(opts affect.ShiftOptions) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		e.SetShiftOptions(opts.AllowMood, opts.AllowTemperament)
		return nil, nil
	}
}

func SetCooldownPolicy(p affect.CooldownPolicy) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		return nil, e.SetCooldownPolicy(p.MinMs, p.MaxMs)
	}
}

func SetWeights(w affect.Weights) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		return nil, e.SetWeights(w.Mood, w.Event)
	}
}

func SetNoise(amplitude float64) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		e.SetNoise(amplitude)
		return nil, nil
	}
}

func SetResponseChance(c affect.ResponseChance) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		e.SetResponseChance(c.Enabled, c.Percent)
		return nil, nil
	}
}

func SetTimeScale(scale float64) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		return nil, e.SetTimeScale(scale)
	}
}

// Wake wakes a sleeping agent. It is a no-op when already awake.
func Wake() Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		if res, ok := e.Wake(); ok {
			return []affect.ResponseResult{res}, nil
		}
		return nil, nil
	}
}

// Feed restores hunger without going through the event path.
func Feed(amount float64) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		e.Feed(amount)
		return nil, nil
	}
}

// Snapshot does nothing; the runner attaches a snapshot to every result.
func Snapshot() Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		return nil, nil
	}
}

// ApplyConfig swaps in a new engine configuration, keeping temperament and
// mood.
func ApplyConfig(cfg affect.Config) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		return nil, e.Reconfigure(cfg)
	}
}

// Events lists every known event profile.
func (r *Runner) Events(ctx context.Context) ([]affect.EventProfile, error) {
	var out []affect.EventProfile
	_, err := r.Query(ctx, func(e *affect.Engine) ([]affect.ResponseResult, error) {
		out = e.Events()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterEvent registers p and returns the stored, clamped profile.
func (r *Runner) RegisterEvent(ctx context.Context, p affect.EventProfile) (affect.EventProfile, error) {
	var stored affect.EventProfile
	_, err := r.Do(ctx, func(e *affect.Engine) ([]affect.ResponseResult, error) {
		var err error
		stored, err = e.RegisterEvent(p)
		return nil, err
	})
	if err != nil {
		return affect.EventProfile{}, err
	}
	return stored, nil
}

// Config returns the engine configuration currently in effect.
func (r *Runner) Config(ctx context.Context) (affect.Config, error) {
	var cfg affect.Config
	_, err := r.Query(ctx, func(e *affect.Engine) ([]affect.ResponseResult, error) {
		cfg = e.Config()
		return nil, nil
	})
	if err != nil {
		return affect.Config{}, err
	}
	return cfg, nil
}

// Settings is a partial tuning update. Nil fields are left alone.
type Settings struct {
	Shift          *affect.ShiftOptions   `json:"shift,omitempty"`
	Cooldown       *affect.CooldownPolicy `json:"cooldown,omitempty"`
	Weights        *affect.Weights        `json:"weights,omitempty"`
	Noise          *float64               `json:"noise,omitempty"`
	ResponseChance *affect.ResponseChance `json:"response_chance,omitempty"`
	TimeScale      *float64               `json:"time_scale,omitempty"`
}

// Validate rejects the update as a whole if any part is invalid.
func (s Settings) Validate() error {
	if s.Cooldown != nil {
		if err := s.Cooldown.Validate(); err != nil {
			return err
		}
	}
	if s.Weights != nil {
		if err := s.Weights.Validate(); err != nil {
			return err
		}
	}
	if s.TimeScale != nil && *s.TimeScale <= 0 {
		return &affect.ConfigError{Field: "time_scale", Reason: "must be positive"}
	}
	return nil
}

// ApplySettings validates the whole update, then applies it. On error
// nothing changes.
func ApplySettings(s Settings) Command {
	return func(e *affect.Engine) ([]affect.ResponseResult, error) {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if s.Shift != nil {
			e.SetShiftOptions(s.Shift.AllowMood, s.Shift.AllowTemperament)
		}
		if s.Cooldown != nil {
			if err := e.SetCooldownPolicy(s.Cooldown.MinMs, s.Cooldown.MaxMs); err != nil {
				return nil, err
			}
		}
		if s.Weights != nil {
			if err := e.SetWeights(s.Weights.Mood, s.Weights.Event); err != nil {
				return nil, err
			}
		}
		if s.Noise != nil {
			e.SetNoise(*s.Noise)
		}
		if s.ResponseChance != nil {
			e.SetResponseChance(s.ResponseChance.Enabled, s.ResponseChance.Percent)
		}
		if s.TimeScale != nil {
			if err := e.SetTimeScale(*s.TimeScale); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// CurrentSettings reports the tunables in Settings form.
func CurrentSettings(cfg affect.Config) Settings {
	return Settings{
		Shift:          &cfg.Shift,
		Cooldown:       &cfg.Cooldown,
		Weights:        &cfg.Weights,
		Noise:          &cfg.Noise,
		ResponseChance: &cfg.Chance,
		TimeScale:      &cfg.TimeScale,
	}
}
