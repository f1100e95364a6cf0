package affect

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds every engine tunable. Out-of-range numeric values are clamped;
// structurally invalid values are rejected by Validate.
type Config struct {
	Temperament   Vector
	RandomizeMood bool
	MoodJitter    float64 // per-axis spread of the initial mood around temperament
	Shift         ShiftOptions
	Gains         DriftGains
	Weights       Weights
	Noise         float64
	Chance        ResponseChance
	Cooldown      CooldownPolicy
	Gauges        [numNeeds]GaugeConfig
	Sleep         SleepConfig
	TimeScale     float64 // multiplier applied to every tick
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		Temperament:   Vector{Valence: 5, Arousal: 0},
		RandomizeMood: true,
		MoodJitter:    2,
		Shift:         ShiftOptions{AllowMood: true, AllowTemperament: true},
		Gains:         DefaultDriftGains(),
		Weights:       DefaultWeights(),
		Noise:         1,
		Chance:        ResponseChance{Enabled: false, Percent: 100},
		Cooldown:      DefaultCooldownPolicy(),
		Gauges:        DefaultGaugeConfigs(),
		Sleep:         DefaultSleepConfig(),
		TimeScale:     1,
	}
}

// Validate checks the configuration without applying it.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Cooldown.Validate(); err != nil {
		return err
	}
	for _, n := range Needs {
		if err := c.Gauges[n].Validate("gauges." + normalizeKeyword(n.String())); err != nil {
			return err
		}
	}
	if err := c.Sleep.Validate(); err != nil {
		return err
	}
	if c.TimeScale <= 0 {
		return &ConfigError{Field: "time_scale", Reason: "must be positive"}
	}
	if c.MoodJitter < 0 {
		return &ConfigError{Field: "mood_jitter", Reason: "must not be negative"}
	}
	if c.Gains.Mood < 0 || c.Gains.Temperament < 0 {
		return &ConfigError{Field: "gains", Reason: "must not be negative"}
	}
	return nil
}

func (c Config) clamped() Config {
	c.Temperament = c.Temperament.Clamped()
	c.Noise = Clamp(c.Noise, 0, MaxNoise)
	c.Chance = c.Chance.Clamped()
	return c
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithNoiseSource sets the random source used for noise, mood jitter and the
// response-chance roll.
func WithNoiseSource(rng NoiseSource) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock sets the wall clock used for cooldown bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine owns mood, temperament, the need gauges and the event registry.
// It is not safe for concurrent use; callers serialize access onto a single
// goroutine.
type Engine struct {
	cfg         Config
	temperament Vector
	mood        Vector
	registry    *Registry
	resolver    *Resolver
	gauges      [numNeeds]*Gauge
	sleep       sleepCycle
	lastAdmit   time.Time
	last        *ResponseResult

	rng NoiseSource
	now func() time.Time
	log zerolog.Logger
}

// New creates an engine. The initial mood is derived from the configured
// temperament.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clamped()

	e := &Engine{
		cfg:      cfg,
		registry: NewRegistry(),
		sleep:    sleepCycle{state: Awake},
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = newNoiseSource()
	}

	e.resolver = NewResolver(e.rng, e.log)
	e.applyResolver()

	for _, n := range Needs {
		e.gauges[n] = NewGauge(n, cfg.Gauges[n])
	}

	e.temperament = cfg.Temperament
	e.mood = e.initialMood()
	return e, nil
}

func (e *Engine) applyResolver() {
	e.resolver.Weights = e.cfg.Weights
	e.resolver.Noise = e.cfg.Noise
	e.resolver.Chance = e.cfg.Chance
}

func (e *Engine) initialMood() Vector {
	if !e.cfg.RandomizeMood {
		return e.temperament
	}
	return jitter(e.rng, e.temperament, e.cfg.MoodJitter).Clamped()
}

// Config returns the current tunables.
func (e *Engine) Config() Config {
	return e.cfg
}

// Reconfigure applies new tunables. Mood, temperament, gauge levels and
// registered events are kept. On error nothing changes.
func (e *Engine) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.clamped()
	cfg.Temperament = e.cfg.Temperament

	wasEnabled := e.cfg.Sleep.Enabled
	e.cfg = cfg
	e.applyResolver()
	for _, n := range Needs {
		e.gauges[n].reconfigure(cfg.Gauges[n])
	}
	if wasEnabled && !cfg.Sleep.Enabled && e.sleep.asleep() {
		e.wake(wakeCommand, e.now())
	}
	return nil
}

// RegisterEvent upserts a user event profile, keyed case-insensitively.
func (e *Engine) RegisterEvent(p EventProfile) (EventProfile, error) {
	p, err := e.registry.Register(p)
	if err != nil {
		return EventProfile{}, err
	}
	e.log.Debug().Str("event", p.Keyword).Msg("registered event")
	return p, nil
}

// DeleteEvent removes a user event profile.
func (e *Engine) DeleteEvent(keyword string) bool {
	return e.registry.Delete(keyword)
}

// Events returns every resolvable event profile.
func (e *Engine) Events() []EventProfile {
	return e.registry.All()
}

// UserEvents returns only caller-registered profiles.
func (e *Engine) UserEvents() []EventProfile {
	return e.registry.User()
}

// LookupEvent resolves a keyword without triggering it.
func (e *Engine) LookupEvent(keyword string) (EventProfile, bool) {
	return e.registry.Lookup(keyword)
}

// TriggerEvent admits and resolves a named stimulus.
//
// While asleep only wake events are accepted; they wake the agent and are
// then processed without waiting out the cooldown. Unknown keywords return a
// neutral fallback result alongside the error. Rejections change nothing and
// never consume the cooldown window.
func (e *Engine) TriggerEvent(keyword string) (ResponseResult, error) {
	results, err := e.Dispatch(keyword)
	if len(results) == 0 {
		return ResponseResult{}, err
	}
	return results[len(results)-1], err
}

// Dispatch is TriggerEvent reporting every response the stimulus caused. A
// wake event that wakes the agent yields the Wake response followed by its
// own.
func (e *Engine) Dispatch(keyword string) ([]ResponseResult, error) {
	now := e.now()
	asleep := e.sleep.asleep()
	if asleep && !e.cfg.Sleep.wakes(keyword) {
		return nil, ErrAsleep
	}

	profile, ok := e.registry.Lookup(keyword)
	if !ok {
		return []ResponseResult{e.fallback(keyword, now)}, &UnknownEventError{Keyword: keyword}
	}

	if asleep {
		woke := e.wake(wakeStimulus, now)
		e.lastAdmit = now
		return []ResponseResult{woke, e.respond(profile, now)}, nil
	}

	if ok, remaining := e.cfg.Cooldown.CanAdmit(e.mood.Arousal, e.lastAdmit, now); !ok {
		return nil, &CooldownError{Remaining: remaining}
	}
	e.lastAdmit = now

	return []ResponseResult{e.respond(profile, now)}, nil
}

// respond resolves the profile, applies its gauge deltas and drift.
func (e *Engine) respond(p EventProfile, at time.Time) ResponseResult {
	fuzzed, display := e.resolver.Resolve(p, e.mood)

	for _, n := range Needs {
		if d := p.Delta(n); d != 0 {
			e.gauges[n].Adjust(d)
		}
	}

	e.mood, e.temperament = ApplyDrift(fuzzed, e.mood, e.temperament, e.cfg.Gains, e.cfg.Shift)

	res := ResponseResult{
		Display: display,
		Valence: fuzzed.Valence,
		Arousal: fuzzed.Arousal,
		Trigger: p.Keyword,
		Mood:    e.mood.Category(),
		At:      at,
	}
	e.last = &res
	return res
}

func (e *Engine) fallback(keyword string, at time.Time) ResponseResult {
	return ResponseResult{
		Display: DisplayNeutral,
		Valence: e.mood.Valence,
		Arousal: e.mood.Arousal,
		Trigger: keyword,
		Mood:    e.mood.Category(),
		At:      at,
	}
}

// Tick advances the gauges by dt seconds, scaled by the configured time
// scale, and returns the responses to any threshold crossings or sleep
// transitions.
func (e *Engine) Tick(dt float64) []ResponseResult {
	if dt <= 0 {
		return nil
	}
	scaled := dt * e.cfg.TimeScale
	now := e.now()

	if e.sleep.asleep() {
		return e.tickAsleep(scaled, now)
	}

	// Every gauge decays on the tick that ends in sleep; sleep starts after
	// the other crossings are handled.
	var out []ResponseResult
	sleep := false
	for _, n := range Needs {
		g := e.gauges[n]
		c, ok := g.Decay(scaled)
		if !ok {
			continue
		}
		e.log.Info().
			Str("gauge", n.String()).
			Str("crossing", c.String()).
			Float64("value", g.Value()).
			Msg("gauge threshold crossed")

		if n == NeedRest && c == CrossingUnfulfilled && e.cfg.Sleep.Enabled {
			sleep = true
			continue
		}

		profile, ok := e.registry.Lookup(c.EventName(n))
		if !ok {
			continue
		}
		out = append(out, e.respond(profile, now))
	}
	if sleep {
		out = append(out, e.fallAsleep(now))
	}
	return out
}

func (e *Engine) tickAsleep(scaled float64, now time.Time) []ResponseResult {
	rest := e.gauges[NeedRest]
	rest.Adjust(e.cfg.Sleep.RegenPerSecond * scaled)
	e.sleep.elapsed += time.Duration(scaled * float64(time.Second))

	switch {
	case rest.Value() >= GaugeMax:
		return []ResponseResult{e.wake(wakeRested, now)}
	case e.cfg.Sleep.MaxDuration > 0 && e.sleep.elapsed >= e.cfg.Sleep.MaxDuration:
		return []ResponseResult{e.wake(wakeTimeout, now)}
	}
	return nil
}

func (e *Engine) fallAsleep(now time.Time) ResponseResult {
	e.sleep.fallAsleep()
	e.log.Info().Msg("falling asleep")

	res := ResponseResult{
		Display: DisplaySleep,
		Valence: e.mood.Valence,
		Arousal: e.mood.Arousal,
		Trigger: TriggerSleep,
		Mood:    e.mood.Category(),
		At:      now,
	}
	e.last = &res
	return res
}

// wake leaves the rest gauge unsettled so a rested wake-up reports
// RestFulfilled on the next tick.
func (e *Engine) wake(reason string, now time.Time) ResponseResult {
	e.log.Info().
		Str("reason", reason).
		Dur("slept", e.sleep.elapsed).
		Float64("rest", e.gauges[NeedRest].Value()).
		Msg("waking up")
	e.sleep.wake()

	res := ResponseResult{
		Display: DisplayNeutral,
		Valence: e.mood.Valence,
		Arousal: e.mood.Arousal,
		Trigger: TriggerWake,
		Mood:    e.mood.Category(),
		At:      now,
	}
	e.last = &res
	return res
}

// Wake handles an explicit wake command. It reports false if the agent was
// already awake.
func (e *Engine) Wake() (ResponseResult, bool) {
	if !e.sleep.asleep() {
		return ResponseResult{}, false
	}
	return e.wake(wakeCommand, e.now()), true
}

// SleepState returns the sleep machine state.
func (e *Engine) SleepState() SleepState {
	return e.sleep.state
}

// Mood returns the current mood.
func (e *Engine) Mood() State {
	return stateOf(e.mood)
}

// Temperament returns the current temperament.
func (e *Engine) Temperament() State {
	return stateOf(e.temperament)
}

// SetTemperament replaces the temperament, clamped. With reinitializeMood the
// mood is re-derived from it.
func (e *Engine) SetTemperament(valence, arousal float64, reinitializeMood bool) {
	e.temperament = Vector{Valence: valence, Arousal: arousal}.Clamped()
	e.cfg.Temperament = e.temperament
	if reinitializeMood {
		e.mood = e.initialMood()
	}
}

// ExportTemperament returns the temperament for persistence.
func (e *Engine) ExportTemperament() Vector {
	return e.temperament
}

// ImportTemperament restores a persisted temperament and starts a fresh mood
// from it.
func (e *Engine) ImportTemperament(t Vector) {
	e.SetTemperament(t.Valence, t.Arousal, true)
}

// RefreshMood re-derives the mood from the temperament.
func (e *Engine) RefreshMood() {
	e.mood = e.initialMood()
}

// SetRandomizeMood toggles jitter on the initial mood.
func (e *Engine) SetRandomizeMood(enabled, reinitializeMood bool) {
	e.cfg.RandomizeMood = enabled
	if reinitializeMood {
		e.mood = e.initialMood()
	}
}

// SetShiftOptions toggles mood and temperament drift.
func (e *Engine) SetShiftOptions(allowMood, allowTemperament bool) {
	e.cfg.Shift = ShiftOptions{AllowMood: allowMood, AllowTemperament: allowTemperament}
}

// SetCooldownPolicy replaces the cooldown bounds. Inverted bounds are rejected
// and the previous policy kept.
func (e *Engine) SetCooldownPolicy(minMs, maxMs int) error {
	p := CooldownPolicy{MinMs: minMs, MaxMs: maxMs}
	if err := p.Validate(); err != nil {
		return err
	}
	e.cfg.Cooldown = p
	return nil
}

// SetWeights sets both weights at once. They must sum to 1.
func (e *Engine) SetWeights(mood, event float64) error {
	w := Weights{Mood: mood, Event: event}
	if err := w.Validate(); err != nil {
		return err
	}
	e.cfg.Weights = w
	e.applyResolver()
	return nil
}

// SetMoodWeight sets the mood weight and rebalances the event weight.
func (e *Engine) SetMoodWeight(w float64) {
	e.cfg.Weights = e.cfg.Weights.WithMood(w)
	e.applyResolver()
}

// SetEventWeight sets the event weight and rebalances the mood weight.
func (e *Engine) SetEventWeight(w float64) {
	e.cfg.Weights = e.cfg.Weights.WithEvent(w)
	e.applyResolver()
}

// SetNoise sets the noise amplitude, clamped to [0, 10].
func (e *Engine) SetNoise(amplitude float64) {
	e.cfg.Noise = Clamp(amplitude, 0, MaxNoise)
	e.applyResolver()
}

// SetResponseChance configures the optional visibility gate.
func (e *Engine) SetResponseChance(enabled bool, percent float64) {
	e.cfg.Chance = ResponseChance{Enabled: enabled, Percent: percent}.Clamped()
	e.applyResolver()
}

// SetTimeScale sets the tick multiplier.
func (e *Engine) SetTimeScale(scale float64) error {
	if scale <= 0 {
		return &ConfigError{Field: "time_scale", Reason: "must be positive"}
	}
	e.cfg.TimeScale = scale
	return nil
}

// AdjustGauge changes a gauge level directly, clamped to [0, 100].
func (e *Engine) AdjustGauge(n Need, delta float64) {
	if n < 0 || n >= numNeeds {
		return
	}
	e.gauges[n].Adjust(delta)
}

// SetGauge overwrites a gauge level, clamped to [0, 100].
func (e *Engine) SetGauge(n Need, value float64) {
	if n < 0 || n >= numNeeds {
		return
	}
	e.gauges[n].Set(value)
}

// Feed raises the hunger gauge.
func (e *Engine) Feed(amount float64) {
	e.AdjustGauge(NeedHunger, amount)
}

// Gauges returns the current gauge levels.
func (e *Engine) Gauges() GaugeLevels {
	return GaugeLevels{
		Touch:  e.gauges[NeedTouch].Value(),
		Rest:   e.gauges[NeedRest].Value(),
		Social: e.gauges[NeedSocial].Value(),
		Hunger: e.gauges[NeedHunger].Value(),
	}
}

// Cooldown reports the window implied by the current arousal and the time
// left in it.
func (e *Engine) Cooldown() CooldownStatus {
	window := e.cfg.Cooldown.Window(e.mood.Arousal)
	_, remaining := e.cfg.Cooldown.CanAdmit(e.mood.Arousal, e.lastAdmit, e.now())
	return CooldownStatus{Window: window, Remaining: remaining}
}

// LastResponse returns the most recent response, if any.
func (e *Engine) LastResponse() (ResponseResult, bool) {
	if e.last == nil {
		return ResponseResult{}, false
	}
	return *e.last, true
}

// Snapshot is a read-only view of the whole engine state.
type Snapshot struct {
	Mood        State           `json:"mood"`
	Temperament State           `json:"temperament"`
	Gauges      GaugeLevels     `json:"gauges"`
	Sleep       SleepState      `json:"sleep"`
	Cooldown    CooldownStatus  `json:"cooldown"`
	Last        *ResponseResult `json:"last,omitempty"`
	At          time.Time       `json:"at"`
}

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Mood:        e.Mood(),
		Temperament: e.Temperament(),
		Gauges:      e.Gauges(),
		Sleep:       e.sleep.state,
		Cooldown:    e.Cooldown(),
		At:          e.now(),
	}
	if e.last != nil {
		last := *e.last
		s.Last = &last
	}
	return s
}
