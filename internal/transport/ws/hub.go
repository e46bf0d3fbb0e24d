package ws

import (
	"brainarcade/internal/metrics"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server to host
const (
	MsgSettingsUpdate MessageType = "settings_update"
	MsgSessionEnded   MessageType = "session_ended"
	MsgAdjustResult   MessageType = "adjust_result"
	MsgError          MessageType = "error"
)

// Host to server
const (
	MsgTelemetry MessageType = "telemetry"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages one host connection per game session
type Hub struct {
	conns map[string]*Connection // sessionID -> conn

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	logger zerolog.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	UserID    string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message for one session's connection. Close asks the
// hub to drop the connection; it travels the same channel so it stays ordered
// after earlier messages.
type BroadcastMessage struct {
	SessionID string
	Message   *Message
	Close     bool
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if old, ok := h.conns[conn.SessionID]; ok {
				// a reconnecting host replaces its stale connection
				close(old.Send)
				metrics.WSConnections.Dec()
			}
			h.conns[conn.SessionID] = conn
			h.mu.Unlock()
			metrics.WSConnections.Inc()
			h.logger.Debug().Str("session_id", conn.SessionID).Msg("host connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.SessionID]; ok && existing == conn {
				delete(h.conns, conn.SessionID)
				close(conn.Send)
				metrics.WSConnections.Dec()
				h.logger.Debug().Str("session_id", conn.SessionID).Msg("host disconnected")
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Close {
				h.mu.Lock()
				if conn, ok := h.conns[msg.SessionID]; ok {
					delete(h.conns, msg.SessionID)
					close(conn.Send)
					metrics.WSConnections.Dec()
				}
				h.mu.Unlock()
				continue
			}
			h.mu.RLock()
			if conn, ok := h.conns[msg.SessionID]; ok {
				data, _ := json.Marshal(msg.Message)
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
					h.logger.Warn().Str("session_id", msg.SessionID).Str("type", string(msg.Message.Type)).Msg("send buffer full, message dropped")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Connected reports whether a host is attached to the session
func (h *Hub) Connected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[sessionID]
	return ok
}

// BroadcastToSession sends a message to the session's host (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msgType).Msg("failed to encode payload")
		return
	}
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectSession closes the session's connection after queued messages are flushed
// (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.broadcast <- &BroadcastMessage{SessionID: sessionID, Close: true}
}
