package presenter

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/alex/affect/internal/affect"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

// Frame types.
const (
	FrameResponse = "response"
	FrameState    = "state"
)

// Frame is one websocket message.
type Frame struct {
	Type     string                `json:"type"`
	Display  affect.DisplayEmotion `json:"display,omitempty"`
	Trigger  string                `json:"trigger,omitempty"`
	Valence  float64               `json:"valence"`
	Arousal  float64               `json:"arousal"`
	Mood     affect.MoodCategory   `json:"mood"`
	Cue      Cue                   `json:"cue"`
	Snapshot *affect.Snapshot      `json:"snapshot,omitempty"`
	At       time.Time             `json:"at"`
}

// ResponseFrame builds the frame for a single response.
func ResponseFrame(res affect.ResponseResult) Frame {
	return Frame{
		Type:    FrameResponse,
		Display: res.Display,
		Trigger: res.Trigger,
		Valence: res.Valence,
		Arousal: res.Arousal,
		Mood:    res.Mood,
		Cue:     CueFor(res),
		At:      res.At,
	}
}

// StateFrame builds the resting frame for a snapshot, sent when a client
// connects and whenever the state changes.
func StateFrame(snap affect.Snapshot) Frame {
	cue := Cue{Face: PassiveFace(snap.Mood.Category)}
	if snap.Sleep == affect.Asleep {
		cue = displayCues[affect.DisplaySleep]
	}
	return Frame{
		Type:     FrameState,
		Valence:  snap.Mood.Valence,
		Arousal:  snap.Mood.Arousal,
		Mood:     snap.Mood.Category,
		Cue:      cue,
		Snapshot: &snap,
		At:       snap.At,
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to connected websocket clients. Slow clients are
// dropped rather than allowed to block the engine.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    *affect.Snapshot
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and streams frames until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		if data, err := json.Marshal(StateFrame(*h.last)); err == nil {
			c.send <- data
		}
	}
	h.mu.Unlock()
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("presenter connected")

	go h.writePump(c)

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("presenter disconnected")
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast sends f to every client.
func (h *Hub) Broadcast(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn().Msg("dropping slow presenter")
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

// Observe broadcasts one frame per response, then a state frame if the
// visible state moved. The snapshot is kept for clients that connect later.
func (h *Hub) Observe(_ context.Context, results []affect.ResponseResult, snap affect.Snapshot) error {
	h.mu.Lock()
	changed := h.last == nil || visibleState(*h.last) != visibleState(snap)
	h.last = &snap
	h.mu.Unlock()

	for _, res := range results {
		if err := h.Broadcast(ResponseFrame(res)); err != nil {
			return err
		}
	}
	if changed {
		return h.Broadcast(StateFrame(snap))
	}
	return nil
}

// state is the part of a snapshot presenters render. Cooldown and the
// timestamp move on every tick and are left out.
type state struct {
	mood        affect.State
	temperament affect.State
	gauges      affect.GaugeLevels
	sleep       affect.SleepState
}

func visibleState(snap affect.Snapshot) state {
	return state{
		mood:        snap.Mood,
		temperament: snap.Temperament,
		gauges:      snap.Gauges,
		sleep:       snap.Sleep,
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
