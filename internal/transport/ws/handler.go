package ws

import (
	"brainarcade/internal/model"
	"brainarcade/internal/service"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // host games are embedded on many origins
	},
}

// TokenValidator checks session tokens
type TokenValidator interface {
	ValidateSessionToken(token string) (*model.SessionClaims, error)
}

// SessionAdjuster is the part of the session service the socket drives
type SessionAdjuster interface {
	Adjust(ctx context.Context, sessionID string, e model.TelemetryEvent) (model.AdjustResult, error)
	Get(ctx context.Context, sessionID string) (*model.SessionState, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	authSvc  TokenValidator
	sessions SessionAdjuster
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc TokenValidator, sessions SessionAdjuster, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		authSvc:  authSvc,
		sessions: sessions,
		logger:   logger,
	}
}

// SessionWS handles GET /v1/ws/sessions/{id}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateSessionToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if claims.SessionID != id {
		http.Error(w, "token not valid for this session", http.StatusForbidden)
		return
	}

	state, err := h.sessions.Get(r.Context(), id)
	if errors.Is(err, service.ErrSessionNotFound) || (err == nil && state.Status == model.SessionEnded) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "session lookup failed", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &Connection{
		SessionID: id,
		UserID:    claims.UserID,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	h.hub.Register(conn)

	h.logger.Info().Str("session_id", id).Str("user_id", claims.UserID).Msg("host attached via websocket")

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Str("session_id", conn.SessionID).Msg("websocket read error")
			}
			break
		}
		if !h.handleMessage(conn, data) {
			break
		}
	}
}

// handleMessage returns false when the connection should be dropped
func (h *Handler) handleMessage(conn *Connection, data []byte) bool {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.reply(conn, MsgError, map[string]string{"error": "malformed message"})
		return true
	}

	switch msg.Type {
	case MsgTelemetry:
		var event model.TelemetryEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			h.reply(conn, MsgError, map[string]string{"error": "invalid telemetry event"})
			return true
		}
		res, err := h.sessions.Adjust(context.Background(), conn.SessionID, event)
		if errors.Is(err, service.ErrSessionNotFound) {
			h.reply(conn, MsgError, map[string]string{"error": "session not found"})
			return false
		}
		if err != nil {
			h.logger.Error().Err(err).Str("session_id", conn.SessionID).Msg("adjust failed")
			h.reply(conn, MsgError, map[string]string{"error": "adjust failed"})
			return true
		}
		h.reply(conn, MsgAdjustResult, res)
	default:
		h.reply(conn, MsgError, map[string]string{"error": "unknown message type"})
	}
	return true
}

// reply goes through the hub so every write happens on the write pump
func (h *Handler) reply(conn *Connection, msgType MessageType, payload interface{}) {
	h.hub.BroadcastToSession(conn.SessionID, string(msgType), payload)
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
