package affect

import "fmt"

// Need identifies one of the four need gauges.
type Need int

const (
	NeedTouch Need = iota
	NeedRest
	NeedSocial
	NeedHunger
	numNeeds
)

// Needs lists every need in evaluation order.
var Needs = [numNeeds]Need{NeedTouch, NeedRest, NeedSocial, NeedHunger}

func (n Need) String() string {
	switch n {
	case NeedTouch:
		return "Touch"
	case NeedRest:
		return "Rest"
	case NeedSocial:
		return "Social"
	case NeedHunger:
		return "Hunger"
	}
	return fmt.Sprintf("Need(%d)", int(n))
}

// ParseNeed resolves a case-insensitive need name.
func ParseNeed(s string) (Need, error) {
	for _, n := range Needs {
		if normalizeKeyword(s) == normalizeKeyword(n.String()) {
			return n, nil
		}
	}
	return 0, &ConfigError{Field: "need", Reason: fmt.Sprintf("unknown need %q", s)}
}

// Crossing is a threshold edge observed on a gauge.
type Crossing int

const (
	CrossingUnfulfilled Crossing = iota + 1 // reached zero
	CrossingNeeded                          // fell to or below the needed threshold
	CrossingFulfilled                       // rose to or above the fulfilled threshold
)

func (c Crossing) String() string {
	switch c {
	case CrossingUnfulfilled:
		return "Unfulfilled"
	case CrossingNeeded:
		return "Needed"
	case CrossingFulfilled:
		return "Fulfilled"
	}
	return ""
}

// EventName is the synthetic event keyword for a crossing, e.g. "TouchNeeded".
func (c Crossing) EventName(n Need) string {
	return n.String() + c.String()
}

// GaugeConfig parameterizes a single need gauge.
type GaugeConfig struct {
	Initial        float64 `json:"initial"`
	DecayPerSecond float64 `json:"decay_per_second"`
	Needed         float64 `json:"needed"`
	Fulfilled      float64 `json:"fulfilled"`
}

// Validate checks thresholds and rates.
func (c GaugeConfig) Validate(name string) error {
	if c.DecayPerSecond < 0 {
		return &ConfigError{Field: name + ".decay_per_second", Reason: "must not be negative"}
	}
	if c.Needed < GaugeMin || c.Fulfilled > GaugeMax || c.Needed >= c.Fulfilled {
		return &ConfigError{
			Field:  name + ".thresholds",
			Reason: fmt.Sprintf("need 0 <= needed (%.1f) < fulfilled (%.1f) <= 100", c.Needed, c.Fulfilled),
		}
	}
	return nil
}

// perHours is the decay rate that drains a full gauge in h hours.
func perHours(h float64) float64 {
	return GaugeMax / (h * 3600)
}

// DefaultGaugeConfigs returns the stock gauge settings. All gauges start
// half full and share the 30/70 thresholds.
func DefaultGaugeConfigs() [numNeeds]GaugeConfig {
	g := func(hours float64) GaugeConfig {
		return GaugeConfig{Initial: 50, DecayPerSecond: perHours(hours), Needed: 30, Fulfilled: 70}
	}
	return [numNeeds]GaugeConfig{
		NeedTouch:  g(3),
		NeedRest:   g(12),
		NeedSocial: g(6),
		NeedHunger: g(6),
	}
}

// Gauge is a 0-100 resource that decays over time and reports threshold
// crossings. Sub-unit decay is batched in an accumulator and only applied
// once a whole unit has built up.
type Gauge struct {
	Need Need

	value     float64
	pending   float64 // decay not yet applied
	evaluated float64 // value at the last threshold check
	cfg       GaugeConfig
}

// NewGauge creates a gauge at its configured initial value.
func NewGauge(n Need, cfg GaugeConfig) *Gauge {
	v := Clamp(cfg.Initial, GaugeMin, GaugeMax)
	return &Gauge{Need: n, value: v, evaluated: v, cfg: cfg}
}

// Value returns the current level.
func (g *Gauge) Value() float64 {
	return g.value
}

// Config returns the gauge parameters.
func (g *Gauge) Config() GaugeConfig {
	return g.cfg
}

// reconfigure swaps rates and thresholds, keeping the current level.
func (g *Gauge) reconfigure(cfg GaugeConfig) {
	g.cfg = cfg
}

// Adjust changes the level directly. Crossings caused by adjustments are
// reported on the next Decay.
func (g *Gauge) Adjust(delta float64) {
	g.value = Clamp(g.value+delta, GaugeMin, GaugeMax)
}

// Set overwrites the level.
func (g *Gauge) Set(v float64) {
	g.value = Clamp(v, GaugeMin, GaugeMax)
}

// Decay accumulates dt seconds of decay, applies it once at least one unit
// has built up and then checks the thresholds against the previous check.
func (g *Gauge) Decay(dt float64) (Crossing, bool) {
	if dt > 0 {
		g.pending += g.cfg.DecayPerSecond * dt
		if g.pending >= 1 {
			g.value = Clamp(g.value-g.pending, GaugeMin, GaugeMax)
			g.pending = 0
		}
	}
	return g.evaluate()
}

func (g *Gauge) evaluate() (Crossing, bool) {
	prev, cur := g.evaluated, g.value
	g.evaluated = cur

	switch {
	case cur <= GaugeMin && prev > GaugeMin:
		return CrossingUnfulfilled, true
	case cur <= g.cfg.Needed && prev > g.cfg.Needed:
		return CrossingNeeded, true
	case cur >= g.cfg.Fulfilled && prev < g.cfg.Fulfilled:
		return CrossingFulfilled, true
	}
	return 0, false
}

// GaugeLevels is a snapshot of all four gauges.
type GaugeLevels struct {
	Touch  float64 `json:"touch"`
	Rest   float64 `json:"rest"`
	Social float64 `json:"social"`
	Hunger float64 `json:"hunger"`
}

// Get returns the level for need n.
func (l GaugeLevels) Get(n Need) float64 {
	switch n {
	case NeedTouch:
		return l.Touch
	case NeedRest:
		return l.Rest
	case NeedSocial:
		return l.Social
	case NeedHunger:
		return l.Hunger
	}
	return 0
}
