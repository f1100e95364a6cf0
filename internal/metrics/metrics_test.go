package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex/affect/internal/affect"
	"github.com/alex/affect/internal/host"
)

func TestObserve(t *testing.T) {
	c := New()
	snap := affect.Snapshot{
		Mood:        affect.State{Category: affect.MoodHappy, Valence: 6, Arousal: 1},
		Temperament: affect.State{Valence: 5, Arousal: 0.5},
		Gauges:      affect.GaugeLevels{Touch: 10, Rest: 20, Social: 30, Hunger: 40},
		Sleep:       affect.Asleep,
		Cooldown:    affect.CooldownStatus{Remaining: 1500 * time.Millisecond},
	}
	results := []affect.ResponseResult{
		{Display: affect.DisplayHappy},
		{Display: affect.DisplayHappy},
		{Display: affect.DisplaySleep},
	}

	require.NoError(t, c.Observe(context.Background(), results, snap))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Responses.WithLabelValues("happy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Responses.WithLabelValues("sleep")))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.Mood.WithLabelValues("valence")))
	assert.Equal(t, 0.5, testutil.ToFloat64(c.Temperament.WithLabelValues("arousal")))
	assert.Equal(t, 30.0, testutil.ToFloat64(c.Needs.WithLabelValues("social")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Asleep))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.CooldownRemaining))
}

func TestRejected(t *testing.T) {
	c := New()
	c.Rejected(&affect.CooldownError{Remaining: time.Second})
	c.Rejected(fmt.Errorf("wrapped: %w", affect.ErrAsleep))
	c.Rejected(host.ErrQueueFull)
	c.Rejected(io.EOF)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues("cooldown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues("asleep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues("queue_full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rejections.WithLabelValues("other")))
}

func TestReason(t *testing.T) {
	assert.Equal(t, "unknown_event", Reason(&affect.UnknownEventError{Keyword: "x"}))
	assert.Equal(t, "invalid_config", Reason(&affect.ConfigError{Field: "f", Reason: "r"}))
	assert.Equal(t, "rate_limited", Reason(host.ErrRateLimited))
}

func TestHandler(t *testing.T) {
	c := New()
	require.NoError(t, c.Observe(context.Background(), []affect.ResponseResult{{Display: affect.DisplayAngry}}, affect.Snapshot{}))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `affect_responses_total{display="angry"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
