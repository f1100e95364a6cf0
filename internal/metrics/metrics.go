// Package metrics exports engine activity and state as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alex/affect/internal/affect"
	"github.com/alex/affect/internal/host"
)

// Collector owns a private registry so tests and multiple engines never
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	Responses         *prometheus.CounterVec
	Rejections        *prometheus.CounterVec
	Mood              *prometheus.GaugeVec
	Temperament       *prometheus.GaugeVec
	Needs             *prometheus.GaugeVec
	Asleep            prometheus.Gauge
	CooldownRemaining prometheus.Gauge
}

// New creates a collector with Go runtime metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		Responses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "affect_responses_total",
				Help: "Total number of responses by display emotion",
			},
			[]string{"display"},
		),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "affect_rejections_total",
				Help: "Total number of rejected commands by reason",
			},
			[]string{"reason"},
		),
		Mood: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "affect_mood",
				Help: "Current mood coordinates",
			},
			[]string{"axis"},
		),
		Temperament: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "affect_temperament",
				Help: "Current temperament coordinates",
			},
			[]string{"axis"},
		),
		Needs: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "affect_need_level",
				Help: "Current need gauge levels",
			},
			[]string{"need"},
		),
		Asleep: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "affect_asleep",
				Help: "1 while the agent is asleep",
			},
		),
		CooldownRemaining: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "affect_cooldown_remaining_seconds",
				Help: "Time left before the next stimulus is admitted",
			},
		),
	}
}

// Observe counts responses and records the snapshot.
func (c *Collector) Observe(_ context.Context, results []affect.ResponseResult, snap affect.Snapshot) error {
	for _, res := range results {
		c.Responses.WithLabelValues(string(res.Display)).Inc()
	}

	c.Mood.WithLabelValues("valence").Set(snap.Mood.Valence)
	c.Mood.WithLabelValues("arousal").Set(snap.Mood.Arousal)
	c.Temperament.WithLabelValues("valence").Set(snap.Temperament.Valence)
	c.Temperament.WithLabelValues("arousal").Set(snap.Temperament.Arousal)
	for _, n := range affect.Needs {
		c.Needs.WithLabelValues(strings.ToLower(n.String())).Set(snap.Gauges.Get(n))
	}
	if snap.Sleep == affect.Asleep {
		c.Asleep.Set(1)
	} else {
		c.Asleep.Set(0)
	}
	c.CooldownRemaining.Set(snap.Cooldown.Remaining.Seconds())
	return nil
}

// Rejected counts a failed command by reason.
func (c *Collector) Rejected(err error) {
	c.Rejections.WithLabelValues(Reason(err)).Inc()
}

// Reason maps an error to a short label.
func Reason(err error) string {
	switch {
	case errors.Is(err, affect.ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, affect.ErrUnknownEvent):
		return "unknown_event"
	case errors.Is(err, affect.ErrAsleep):
		return "asleep"
	case errors.Is(err, affect.ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, host.ErrQueueFull):
		return "queue_full"
	case errors.Is(err, host.ErrRateLimited):
		return "rate_limited"
	default:
		return "other"
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
