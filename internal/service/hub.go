package service

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/metrics"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
)

// recentWindow bounds the in-memory envelope history kept for console replay.
const recentWindow = 100

// Subscriber is one live WebSocket connection. It holds no server-side state
// beyond its transport handle and outbound queue.
type Subscriber struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	done chan struct{} // closed on unregister; Send itself is never closed
}

// Done is closed when the subscriber is unregistered. Writers drain Send
// until Done fires instead of waiting for a channel close.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Broadcaster is the publish side of the hub, for services that only emit.
type Broadcaster interface {
	Broadcast(env model.Envelope)
	SystemMessage(severity model.Severity, message string)
}

// Hub delivers every published envelope to every currently-connected
// subscriber. Delivery is best-effort and at-most-once: a subscriber whose
// outbound queue is full is skipped, and nothing is replayed on connect.
type Hub struct {
	mu       sync.RWMutex
	subs     map[*Subscriber]struct{}
	recent   []model.Envelope // ring of the last recentWindow envelopes
	upgrader websocket.Upgrader
	sendBuf  int
	log      *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(readBuf, writeBuf, sendBuf int, log *zap.Logger) *Hub {
	if sendBuf <= 0 {
		sendBuf = 256
	}
	return &Hub{
		subs:    make(map[*Subscriber]struct{}),
		sendBuf: sendBuf,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
	}
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (h *Hub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// Register adds a subscriber for the connection and returns it together with
// a cleanup function that must run on disconnect.
func (h *Hub) Register(conn *websocket.Conn) (*Subscriber, func()) {
	s := &Subscriber{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, h.sendBuf),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	total := len(h.subs)
	h.mu.Unlock()

	metrics.ConnectedSubscribers.Set(float64(total))
	h.log.Info("subscriber connected",
		zap.String("subscriber_id", s.ID),
		zap.Int("total", total))

	return s, func() { h.unregister(s) }
}

func (h *Hub) unregister(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subs, s)
	total := len(h.subs)
	h.mu.Unlock()

	// Signal writers via done rather than closing Send: a broadcast may hold
	// a snapshot that still contains this subscriber, and sending on a closed
	// channel would panic the publisher.
	close(s.done)
	metrics.ConnectedSubscribers.Set(float64(total))
	h.log.Info("subscriber disconnected",
		zap.String("subscriber_id", s.ID),
		zap.Int("total", total))
}

// Broadcast serializes the envelope once and fans it out to a snapshot of the
// current subscriber set. Subscribers added after this call do not receive it.
func (h *Hub) Broadcast(env model.Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		h.log.Error("broadcast marshal failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.recent = append(h.recent, env)
	if len(h.recent) > recentWindow {
		h.recent = h.recent[len(h.recent)-recentWindow:]
	}
	// Copy subscribers so the set can change while we send.
	subs := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case <-s.done:
			continue
		default:
		}
		select {
		case s.Send <- raw:
		default:
			h.log.Warn("subscriber send buffer full, message dropped",
				zap.String("subscriber_id", s.ID),
				zap.String("type", string(env.Type)))
		}
	}
	metrics.BroadcastMessages.WithLabelValues(string(env.Type)).Inc()
}

// SystemMessage broadcasts a free-text system_message with the given severity.
func (h *Hub) SystemMessage(severity model.Severity, message string) {
	env, err := model.NewEnvelope(model.EventSystemMessage, model.SystemMessage{
		Severity: severity,
		Message:  message,
	})
	if err != nil {
		h.log.Error("system message marshal failed", zap.Error(err))
		return
	}
	h.Broadcast(env)
}

// Recent returns up to limit of the most recently broadcast envelopes,
// newest first. It never replays them to subscribers; it only serves the
// read-only console endpoint.
func (h *Hub) Recent(limit int) []model.Envelope {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if limit <= 0 || limit > len(h.recent) {
		limit = len(h.recent)
	}
	out := make([]model.Envelope, 0, limit)
	for i := len(h.recent) - 1; i >= len(h.recent)-limit; i-- {
		out = append(out, h.recent[i])
	}
	return out
}

// SubscriberCount returns the number of currently-connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
