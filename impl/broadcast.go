package impl

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	"github.com/routelab/nethub/state"
)

// Frame is the wire shape of every observer channel message, both
// directions: {type:"log"|"topo"|"command", data:...}.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans log lines and topology payloads out to every connected
// observer. Delivery is strictly best-effort: an observer whose send
// buffer is full or whose connection errored is removed from the set and
// never retried. The client set is snapshotted before iteration so
// removal during a fan-out pass cannot corrupt the walk.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if known {
		c.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Log implements state.Observers.
func (h *Hub) Log(line string) {
	h.broadcast(Frame{Type: "log", Data: line})
}

// Topo implements state.Observers. Data is either a full graph snapshot or
// a per-node table update recovered from raw process output; observers
// treat every payload as a replacement, not a delta.
func (h *Hub) Topo(data any) {
	h.broadcast(Frame{Type: "topo", Data: data})
}

func (h *Hub) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if !c.SafeSend(data) {
			h.unregister(c)
		}
	}
}

// CloseAll disconnects every observer. Called on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, c := range targets {
		c.Close()
	}
}

// Broadcast wires the hub into the module lifecycle: it exposes the hub as
// the state's observer surface and tears all connections down on cleanup.
type Broadcast struct {
	Hub *Hub
}

func (b *Broadcast) Init(s *state.State) error {
	s.Observers = b.Hub
	return nil
}

func (b *Broadcast) Cleanup(s *state.State) error {
	b.Hub.CloseAll()
	return nil
}

// ObserverWriter adapts the hub into an io.Writer so a plain slog text
// handler can feed the observer stream; every complete line it receives
// becomes one log frame.
type ObserverWriter struct {
	mu  sync.Mutex
	hub *Hub
	buf bytes.Buffer
}

func NewObserverWriter(hub *Hub) *ObserverWriter {
	return &ObserverWriter{hub: hub}
}

var _ io.Writer = (*ObserverWriter)(nil)

func (w *ObserverWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// partial line, keep it buffered for the next write
			w.buf.WriteString(line)
			break
		}
		w.hub.Log(line[:len(line)-1])
	}
	return len(p), nil
}
