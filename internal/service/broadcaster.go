package service

// Message types pushed to a session's host connection
const (
	MsgSettingsUpdate = "settings_update"
	MsgSessionEnded   = "session_ended"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
