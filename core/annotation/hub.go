package annotation

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/invopop/jsonschema"
	"github.com/robosemantics/episode-segmenter/core/events"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var logger = otelslog.NewLogger("github.com/robosemantics/episode-segmenter/core/annotation")

// clientBuffer is the per-client send queue. A client that falls this
// far behind is dropped rather than allowed to apply backpressure.
const clientBuffer = 64

// Hub broadcasts event envelopes to every connected websocket viewer.
// Viewers connect to /events; /schema describes the wire payload.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// Viewers are local tools; allow any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Handler returns the hub's HTTP surface, instrumented with otelhttp.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.serveEvents)
	mux.HandleFunc("/schema", h.serveSchema)
	return otelhttp.NewHandler(mux, "annotation")
}

func (h *Hub) serveEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	send := make(chan []byte, clientBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = send
	count := len(h.clients)
	h.mu.Unlock()
	logger.Debug("annotation viewer connected", "viewers", count)

	go func() {
		for message := range send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				break
			}
		}
		conn.Close()
	}()

	// Read pump: viewers send nothing; reading detects disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(conn)
}

func (h *Hub) serveSchema(w http.ResponseWriter, r *http.Request) {
	schema := jsonschema.Reflect(&Envelope{})
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(schema); err != nil {
		logger.Warn("failed to encode annotation schema", "error", err)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	send, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(send)
	}
	h.mu.Unlock()
}

// Annotate fans the event out to every viewer. Slow viewers are
// disconnected; Annotate itself never blocks.
func (h *Hub) Annotate(event events.Event) {
	payload, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		logger.Warn("failed to encode annotation", "error", err)
		return
	}

	h.mu.Lock()
	for conn, send := range h.clients {
		select {
		case send <- payload:
		default:
			delete(h.clients, conn)
			close(send)
			logger.Warn("dropped slow annotation viewer")
		}
	}
	h.mu.Unlock()
}

// Flush is a barrier for the Sink contract; envelopes are handed to the
// per-client writers as they arrive, so there is nothing buffered here.
func (h *Hub) Flush() {}

// Close disconnects every viewer and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for conn, send := range h.clients {
		delete(h.clients, conn)
		close(send)
	}
}
