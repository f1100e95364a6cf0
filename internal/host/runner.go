// Package host drives an affect.Engine from a single goroutine. Callers
// submit commands through a bounded queue; the runner interleaves them with
// periodic ticks and fans every result out to sinks.
package host

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alex/affect/internal/affect"
)

var (
	ErrQueueFull   = errors.New("command queue full")
	ErrRateLimited = errors.New("command rate limit exceeded")
	ErrStopped     = errors.New("runner stopped")
)

// Sink observes the output of each runner step: a tick, or a command that
// completed without error. results may be empty.
type Sink interface {
	Observe(ctx context.Context, results []affect.ResponseResult, snap affect.Snapshot) error
}

// RejectionObserver is implemented by sinks that want to count failed
// commands.
type RejectionObserver interface {
	Rejected(err error)
}

// Result is what a command produced plus the engine state right after it.
type Result struct {
	Results  []affect.ResponseResult `json:"results"`
	Snapshot affect.Snapshot         `json:"snapshot"`
}

// Config controls the runner loop.
type Config struct {
	TickInterval time.Duration
	QueueSize    int
	SubmitRate   float64 // commands per second; zero disables limiting
	SubmitBurst  int
}

// DefaultConfig returns a 100ms tick with a 64-deep queue.
func DefaultConfig() Config {
	return Config{
		TickInterval: 100 * time.Millisecond,
		QueueSize:    64,
		SubmitRate:   20,
		SubmitBurst:  10,
	}
}

type request struct {
	cmd   Command
	reply chan reply // nil for fire-and-forget
}

type reply struct {
	result Result
	err    error
}

// Runner owns the engine. Nothing else may touch the engine once Run starts.
type Runner struct {
	engine  *affect.Engine
	cfg     Config
	queue   chan request
	limiter *rate.Limiter
	sinks   []Sink
	log     zerolog.Logger
	done    chan struct{}
}

// New creates a runner for engine. Sinks receive output in the order given.
func New(engine *affect.Engine, cfg Config, log zerolog.Logger, sinks ...Sink) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}

	limit := rate.Inf
	if cfg.SubmitRate > 0 {
		limit = rate.Limit(cfg.SubmitRate)
	}
	burst := cfg.SubmitBurst
	if burst <= 0 {
		burst = 1
	}

	return &Runner{
		engine:  engine,
		cfg:     cfg,
		queue:   make(chan request, cfg.QueueSize),
		limiter: rate.NewLimiter(limit, burst),
		sinks:   sinks,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Run processes commands and ticks until ctx is cancelled. It must be called
// once.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()
	defer close(r.done)

	last := time.Now()
	r.log.Info().
		Dur("tick", r.cfg.TickInterval).
		Int("queue", r.cfg.QueueSize).
		Msg("runner started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("runner stopped")
			return nil

		case req := <-r.queue:
			r.execute(ctx, req)

		case t := <-ticker.C:
			r.drain(ctx)
			dt := t.Sub(last).Seconds()
			last = t
			results := r.engine.Tick(dt)
			for _, res := range results {
				r.log.Info().
					Str("trigger", res.Trigger).
					Str("display", string(res.Display)).
					Str("mood", string(res.Mood)).
					Msg("tick response")
			}
			r.publish(ctx, results)
		}
	}
}

// drain runs every queued command so none of them sees time advance under
// it.
func (r *Runner) drain(ctx context.Context) {
	for {
		select {
		case req := <-r.queue:
			r.execute(ctx, req)
		default:
			return
		}
	}
}

func (r *Runner) execute(ctx context.Context, req request) {
	results, err := req.cmd(r.engine)
	if err != nil {
		r.log.Debug().Err(err).Msg("command failed")
		for _, s := range r.sinks {
			if ro, ok := s.(RejectionObserver); ok {
				ro.Rejected(err)
			}
		}
	} else {
		r.publish(ctx, results)
	}

	if req.reply != nil {
		req.reply <- reply{result: Result{Results: results, Snapshot: r.engine.Snapshot()}, err: err}
	}
}

func (r *Runner) publish(ctx context.Context, results []affect.ResponseResult) {
	if len(r.sinks) == 0 {
		return
	}
	snap := r.engine.Snapshot()
	for _, s := range r.sinks {
		if err := s.Observe(ctx, results, snap); err != nil {
			r.log.Warn().Err(err).Msg("sink failed")
		}
	}
}

func (r *Runner) enqueue(req request, limited bool) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	if limited && !r.limiter.Allow() {
		return ErrRateLimited
	}
	select {
	case r.queue <- req:
		return nil
	default:
		return ErrQueueFull
	}
}

// Submit queues cmd without waiting for it to run.
func (r *Runner) Submit(cmd Command) error {
	return r.enqueue(request{cmd: cmd}, true)
}

// Do queues cmd and waits for its result.
func (r *Runner) Do(ctx context.Context, cmd Command) (Result, error) {
	return r.call(ctx, cmd, true)
}

// Query is Do without the rate limit, for commands that only read state.
func (r *Runner) Query(ctx context.Context, cmd Command) (Result, error) {
	return r.call(ctx, cmd, false)
}

func (r *Runner) call(ctx context.Context, cmd Command, limited bool) (Result, error) {
	rc := make(chan reply, 1)
	if err := r.enqueue(request{cmd: cmd, reply: rc}, limited); err != nil {
		return Result{}, err
	}
	select {
	case rep := <-rc:
		return rep.result, rep.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-r.done:
		return Result{}, ErrStopped
	}
}

// Snapshot reads the engine state through the queue.
func (r *Runner) Snapshot(ctx context.Context) (affect.Snapshot, error) {
	res, err := r.Query(ctx, Snapshot())
	return res.Snapshot, err
}
