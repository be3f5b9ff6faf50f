// Package admin serves a live session-event feed over WebSocket for
// operator tooling: every connection accepted, every login decision, and
// every connection close is pushed to subscribers as a JSON line.
package admin

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Event is a single session lifecycle notification pushed to subscribers.
type Event struct {
	Kind            string `json:"kind"`
	Listener        string `json:"listener"`
	Remote          string `json:"remote,omitempty"`
	Name            string `json:"name,omitempty"`
	Allowed         bool   `json:"allowed,omitempty"`
	Reason          string `json:"reason,omitempty"`
	ClientToBackend int64  `json:"client_to_backend,omitempty"`
	BackendToClient int64  `json:"backend_to_client,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}

// Hub fans session events out to connected WebSocket subscribers. It
// implements session.EventSink by structural typing.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	now  func() time.Time
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: map[chan Event]struct{}{}, now: time.Now}
}

func (h *Hub) broadcast(ev Event) {
	ev.Timestamp = h.now().Unix()
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than block the session path.
		}
	}
}

// ConnectionAccepted implements session.EventSink.
func (h *Hub) ConnectionAccepted(listenerName, remoteAddr string) {
	h.broadcast(Event{Kind: "connection_accepted", Listener: listenerName, Remote: remoteAddr})
}

// ConnectionClosed implements session.EventSink.
func (h *Hub) ConnectionClosed(listenerName, remoteAddr string) {
	h.broadcast(Event{Kind: "connection_closed", Listener: listenerName, Remote: remoteAddr})
}

// LoginResult implements session.EventSink.
func (h *Hub) LoginResult(listenerName, name string, allowed bool, reason string) {
	h.broadcast(Event{Kind: "login_result", Listener: listenerName, Name: name, Allowed: allowed, Reason: reason})
}

// BytesRelayed implements session.EventSink.
func (h *Hub) BytesRelayed(listenerName string, clientToBackend, backendToClient int64) {
	h.broadcast(Event{
		Kind:            "bytes_relayed",
		Listener:        listenerName,
		ClientToBackend: clientToBackend,
		BackendToClient: backendToClient,
	})
}

func (h *Hub) subscribe() chan Event {
	ch := make(chan Event, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

// ServeHTTP accepts a WebSocket connection and streams events to it until
// the client disconnects or the request context ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("admin: websocket accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ch := h.subscribe()
	defer h.unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
