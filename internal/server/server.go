// Package server exposes the engine over HTTP: state, tuning, the event
// table, stimuli, response history and the presenter stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alex/affect/internal/affect"
	"github.com/alex/affect/internal/host"
	"github.com/alex/affect/internal/metrics"
	"github.com/alex/affect/internal/presenter"
	"github.com/alex/affect/internal/store"
)

const maxBodyBytes = 64 << 10

// EventStore is the slice of the store the API writes through to.
type EventStore interface {
	SaveTemperament(ctx context.Context, t affect.Vector) error
	SaveEvent(ctx context.Context, p affect.EventProfile) error
	DeleteEvent(ctx context.Context, keyword string) (bool, error)
	RecentResponses(ctx context.Context, limit int) ([]store.ResponseRecord, error)
}

// Options wires the optional collaborators. Any of them may be nil.
type Options struct {
	Store   EventStore
	Hub     http.Handler
	Metrics *metrics.Collector
	Log     zerolog.Logger
}

// Server serves the control API.
type Server struct {
	addr   string
	runner *host.Runner
	opts   Options
	log    zerolog.Logger
}

// NewServer creates a server bound to addr.
func NewServer(addr string, runner *host.Runner, opts Options) *Server {
	return &Server{
		addr:   addr,
		runner: runner,
		opts:   opts,
		log:    opts.Log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/mood", s.handleMood)
	mux.HandleFunc("/api/temperament", s.handleTemperament)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/events/", s.handleEvent)
	mux.HandleFunc("/api/trigger/", s.handleTrigger)
	mux.HandleFunc("/api/wake", s.handleWake)
	mux.HandleFunc("/api/feed", s.handleFeed)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/history", s.handleHistory)

	if s.opts.Hub != nil {
		mux.Handle("/ws", s.opts.Hub)
	}
	if s.opts.Metrics != nil {
		mux.Handle("/metrics", s.opts.Metrics.Handler())
	}

	mux.HandleFunc("/", s.handleIndex)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.addr).Msg("http server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleIndex serves the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexHTML))
}

// handleStatus returns the full engine snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.runner.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleMood returns the current mood and its resting face.
func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.runner.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		affect.State
		Face string `json:"face"`
	}{snap.Mood, presenter.PassiveFace(snap.Mood.Category)})
}

type temperamentRequest struct {
	Valence          float64 `json:"valence"`
	Arousal          float64 `json:"arousal"`
	ReinitializeMood bool    `json:"reinitialize_mood"`
}

// handleTemperament reads or replaces the temperament. A replaced
// temperament is written through to the store.
func (s *Server) handleTemperament(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snap, err := s.runner.Snapshot(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap.Temperament)

	case http.MethodPut:
		var req temperamentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := s.runner.Do(r.Context(), host.SetTemperament(
			affect.Vector{Valence: req.Valence, Arousal: req.Arousal},
			req.ReinitializeMood,
		))
		if err != nil {
			s.writeError(w, err)
			return
		}

		t := res.Snapshot.Temperament
		if s.opts.Store != nil {
			v := affect.Vector{Valence: t.Valence, Arousal: t.Arousal}
			if err := s.opts.Store.SaveTemperament(r.Context(), v); err != nil {
				s.log.Warn().Err(err).Msg("failed to persist temperament")
			}
		}
		writeJSON(w, http.StatusOK, res.Snapshot)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleEvents lists the event table or registers a new event.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.runner.Events(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)

	case http.MethodPost:
		var p affect.EventProfile
		if !decodeBody(w, r, &p) {
			return
		}

		stored, err := s.runner.RegisterEvent(r.Context(), p)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if s.opts.Store != nil {
			if err := s.opts.Store.SaveEvent(r.Context(), stored); err != nil {
				s.log.Warn().Err(err).Str("keyword", stored.Keyword).Msg("failed to persist event")
			}
		}
		writeJSON(w, http.StatusCreated, stored)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleEvent deletes a single event.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Path[len("/api/events/"):]
	if keyword == "" {
		http.Error(w, "missing event keyword", http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, err := s.runner.Do(r.Context(), host.Delete(keyword)); err != nil {
		s.writeError(w, err)
		return
	}
	if s.opts.Store != nil {
		if _, err := s.opts.Store.DeleteEvent(r.Context(), keyword); err != nil {
			s.log.Warn().Err(err).Str("keyword", keyword).Msg("failed to delete stored event")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type triggerResponse struct {
	affect.ResponseResult
	Cue presenter.Cue `json:"cue"`
}

func newTriggerResponse(res affect.ResponseResult) triggerResponse {
	return triggerResponse{ResponseResult: res, Cue: presenter.CueFor(res)}
}

// handleTrigger applies a stimulus and returns the response with its cue.
// An unknown keyword answers 404 with the neutral fallback in the body.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	keyword := r.URL.Path[len("/api/trigger/"):]
	if keyword == "" {
		http.Error(w, "missing event keyword", http.StatusBadRequest)
		return
	}

	res, err := s.runner.Do(r.Context(), host.Trigger(keyword))
	if err != nil {
		status, body := s.errorResponse(err)
		if errors.Is(err, affect.ErrUnknownEvent) && len(res.Results) > 0 {
			fb := newTriggerResponse(res.Results[len(res.Results)-1])
			body.Fallback = &fb
		}
		writeJSON(w, status, body)
		return
	}
	if len(res.Results) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	// A stimulus that wakes the agent yields the wake first and the
	// response last.
	writeJSON(w, http.StatusOK, newTriggerResponse(res.Results[len(res.Results)-1]))
}

// handleWake wakes the agent and returns the resulting snapshot.
func (s *Server) handleWake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := s.runner.Do(r.Context(), host.Wake())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Snapshot)
}

// handleFeed tops up the hunger gauge.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := struct {
		Amount float64 `json:"amount"`
	}{Amount: affect.FeedingHunger}
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	res, err := s.runner.Do(r.Context(), host.Feed(req.Amount))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Snapshot.Gauges)
}

// handleSettings reads or partially updates the engine tuning.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req host.Settings
		if !decodeBody(w, r, &req) {
			return
		}
		if _, err := s.runner.Do(r.Context(), host.ApplySettings(req)); err != nil {
			s.writeError(w, err)
			return
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := s.runner.Config(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, host.CurrentSettings(cfg))
}

// handleHistory returns the most recent stored responses.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.opts.Store == nil {
		http.Error(w, "history is not enabled", http.StatusNotFound)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.opts.Store.RecentResponses(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type errorBody struct {
	Error       string           `json:"error"`
	Reason      string           `json:"reason"`
	RemainingMs int64            `json:"remaining_ms,omitempty"`
	Fallback    *triggerResponse `json:"fallback,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, body := s.errorResponse(err)
	writeJSON(w, status, body)
}

// errorResponse maps engine and runner errors onto HTTP statuses.
func (s *Server) errorResponse(err error) (int, errorBody) {
	body := errorBody{Error: err.Error(), Reason: metrics.Reason(err)}
	status := http.StatusInternalServerError

	var cooldown *affect.CooldownError
	switch {
	case errors.As(err, &cooldown):
		status = http.StatusConflict
		body.RemainingMs = cooldown.Remaining.Milliseconds()
	case errors.Is(err, affect.ErrCooldownActive):
		status = http.StatusConflict
	case errors.Is(err, affect.ErrUnknownEvent):
		status = http.StatusNotFound
	case errors.Is(err, affect.ErrAsleep):
		status = http.StatusLocked
	case errors.Is(err, affect.ErrInvalidConfig), errors.Is(err, affect.ErrReservedKeyword):
		status = http.StatusBadRequest
	case errors.Is(err, host.ErrQueueFull), errors.Is(err, host.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, host.ErrStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	// Queue and rate rejections never reach the runner's observers.
	if s.opts.Metrics != nil && (errors.Is(err, host.ErrQueueFull) || errors.Is(err, host.ErrRateLimited)) {
		s.opts.Metrics.Rejected(err)
	}
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	return status, body
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request: "+strings.TrimSpace(err.Error()), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
