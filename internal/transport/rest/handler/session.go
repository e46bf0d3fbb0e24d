package handler

import (
	"brainarcade/internal/model"
	"brainarcade/internal/service"
	"brainarcade/internal/transport/rest/middleware"
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// SessionManager is the session lifecycle the handlers drive
type SessionManager interface {
	Start(ctx context.Context, req model.StartSessionRequest) (*model.SessionStartResponse, error)
	Adjust(ctx context.Context, sessionID string, e model.TelemetryEvent) (model.AdjustResult, error)
	Get(ctx context.Context, sessionID string) (*model.SessionState, error)
	End(ctx context.Context, sessionID string) (*model.SessionState, error)
}

// SessionHandler handles game session endpoints
type SessionHandler struct {
	sessions SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "userId and gameId are required")
		return
	}

	resp, err := h.sessions.Start(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Events handles POST /v1/sessions/{id}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if middleware.GetSessionID(r.Context()) != id {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	var event model.TelemetryEvent
	if err := decodeBody(r, &event, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid telemetry event")
		return
	}

	res, err := h.sessions.Adjust(r.Context(), id, event)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// End handles DELETE /v1/sessions/{id}
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if middleware.GetSessionID(r.Context()) != id {
		writeError(w, http.StatusForbidden, "token not valid for this session")
		return
	}

	state, err := h.sessions.End(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
