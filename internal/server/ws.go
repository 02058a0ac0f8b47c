package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mayur-samrutwar/isaac/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// clientBufferSize bounds the per-client send queue; frames are dropped for
// a client that cannot keep up, never queued unboundedly.
const clientBufferSize = 8

// FramesHandler broadcasts fused frame records to WebSocket clients. It
// implements pipeline.Sink: the pipeline hands it a snapshot per frame, and
// delivery to slow clients must never stall the frame loop.
type FramesHandler struct {
	clients map[*websocket.Conn]chan []byte
	mu      sync.RWMutex
}

// NewFramesHandler creates a FramesHandler with no connected clients.
func NewFramesHandler() *FramesHandler {
	return &FramesHandler{
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Consume implements pipeline.Sink. The record is marshaled once and
// enqueued to every client; full queues drop the frame.
func (h *FramesHandler) Consume(f *session.FrameRecord) {
	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n == 0 {
		return
	}

	msg, err := json.Marshal(f)
	if err != nil {
		log.Printf("marshal frame record: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan []byte, clientBufferSize)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		close(send)
	}()

	go func() {
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
