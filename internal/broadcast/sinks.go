package broadcast

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// ChannelSink buffers Events on a Go channel, the same non-blocking
// drop-when-full discipline as the teacher's pubsub.Subscriber.Channel.
type ChannelSink struct {
	Events chan Event
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{Events: make(chan Event, bufferSize)}
}

// Deliver enqueues e, dropping it silently if the buffer is full.
func (s *ChannelSink) Deliver(e Event) {
	select {
	case s.Events <- e:
	default:
	}
}

// Close closes the underlying channel. Callers must stop calling Deliver
// (via RemoveSink) before Close.
func (s *ChannelSink) Close() {
	close(s.Events)
}

// wireEvent is the JSON envelope written to WebSocket clients.
type wireEvent struct {
	Kind Kind        `json:"kind"`
	Data interface{} `json:"data"`
}

// WebSocketSink marshals Events to JSON and writes them as text frames to
// an already-upgraded connection. The HTTP upgrade itself belongs to the
// excluded HTTP-routing collaborator (spec §1); this sink is the in-scope
// broadcast-fabric half, mirroring the teacher's gqlgen websocket
// transport usage but decoupled from GraphQL subscriptions.
type WebSocketSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketSink wraps an already-upgraded connection.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// Deliver writes e as a JSON text frame. Write errors are logged and
// otherwise swallowed — a broken UI socket must never affect the merge
// pipeline.
func (s *WebSocketSink) Deliver(e Event) {
	payload, err := json.Marshal(wireEvent{Kind: e.EventKind(), Data: e})
	if err != nil {
		log.Printf("[broadcast] marshal error: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Printf("[broadcast] websocket write error: %v", err)
	}
}

// Close closes the underlying connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
