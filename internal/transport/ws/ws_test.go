package ws

import (
	"brainarcade/internal/model"
	"brainarcade/internal/service"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func receive(t *testing.T, ch <-chan []byte) ([]byte, bool) {
	t.Helper()
	select {
	case data, ok := <-ch:
		return data, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for hub")
		return nil, false
	}
}

func TestHubDeliversThenDisconnects(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 8), Hub: hub}
	hub.Register(conn)

	hub.BroadcastToSession("other", "settings_update", map[string]int{"ignored": 1})
	hub.BroadcastToSession("s1", "settings_update", map[string]float64{"difficulty": 0.6})
	hub.DisconnectSession("s1")

	data, ok := receive(t, conn.Send)
	if !ok {
		t.Fatal("channel closed before message")
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MsgSettingsUpdate || !strings.Contains(string(msg.Payload), "0.6") {
		t.Errorf("message = %s", data)
	}

	if _, ok := receive(t, conn.Send); ok {
		t.Error("expected send channel to close after disconnect")
	}
	if hub.Connected("s1") {
		t.Error("session still registered")
	}
}

func TestHubReplacesStaleConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	first := &Connection{SessionID: "s1", Send: make(chan []byte, 1), Hub: hub}
	second := &Connection{SessionID: "s1", Send: make(chan []byte, 1), Hub: hub}
	hub.Register(first)
	hub.Register(second)

	if _, ok := receive(t, first.Send); ok {
		t.Error("stale connection should be closed")
	}
	// unregistering the stale one must not drop the live one
	hub.Unregister(first)
	if !hub.Connected("s1") {
		t.Error("live connection dropped")
	}
}

type staticTokens map[string]*model.SessionClaims

func (s staticTokens) ValidateSessionToken(token string) (*model.SessionClaims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, service.ErrInvalidToken
}

type fakeAdjuster struct {
	mu     sync.Mutex
	events []model.TelemetryEvent
}

func (f *fakeAdjuster) Adjust(_ context.Context, id string, e model.TelemetryEvent) (model.AdjustResult, error) {
	if id != "s1" {
		return model.AdjustResult{}, service.ErrSessionNotFound
	}
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
	return model.AdjustResult{Adjusted: true, Difficulty: 0.7, Reason: "high_accuracy"}, nil
}

func (f *fakeAdjuster) Get(_ context.Context, id string) (*model.SessionState, error) {
	if id != "s1" {
		return nil, service.ErrSessionNotFound
	}
	return &model.SessionState{SessionID: id, Status: model.SessionActive}, nil
}

func newWSServer(t *testing.T, adj *fakeAdjuster) *httptest.Server {
	t.Helper()
	tokens := staticTokens{
		"good":  {SessionID: "s1", UserID: "u1"},
		"other": {SessionID: "s2", UserID: "u2"},
	}
	h := NewHandler(NewHub(zerolog.Nop()), tokens, adj, zerolog.Nop())
	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/sessions/{id}", h.SessionWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestSessionWSTelemetry(t *testing.T) {
	adj := &fakeAdjuster{}
	srv := newWSServer(t, adj)

	c, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/v1/ws/sessions/s1?token=good"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	send := `{"type":"telemetry","payload":{"correct":true,"responseTimeMs":"650"}}`
	if err := c.WriteMessage(websocket.TextMessage, []byte(send)); err != nil {
		t.Fatal(err)
	}

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := c.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgAdjustResult {
		t.Fatalf("type = %q", msg.Type)
	}
	var res model.AdjustResult
	if err := json.Unmarshal(msg.Payload, &res); err != nil {
		t.Fatal(err)
	}
	if !res.Adjusted || res.Difficulty != 0.7 {
		t.Errorf("result = %+v", res)
	}

	adj.mu.Lock()
	defer adj.mu.Unlock()
	if len(adj.events) != 1 || adj.events[0].ResponseTimeMs == nil || *adj.events[0].ResponseTimeMs != 650 {
		t.Errorf("events = %+v", adj.events)
	}
}

func TestSessionWSUnknownMessage(t *testing.T) {
	srv := newWSServer(t, &fakeAdjuster{})

	c, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/v1/ws/sessions/s1?token=good"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	c.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`))
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := c.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgError {
		t.Errorf("type = %q, want error", msg.Type)
	}
}

func TestSessionWSRejects(t *testing.T) {
	srv := newWSServer(t, &fakeAdjuster{})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing token", "/v1/ws/sessions/s1", http.StatusUnauthorized},
		{"bad token", "/v1/ws/sessions/s1?token=forged", http.StatusUnauthorized},
		{"token for another session", "/v1/ws/sessions/s1?token=other", http.StatusForbidden},
		{"unknown session", "/v1/ws/sessions/s2?token=other", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.path), nil)
			if err == nil {
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != tt.want {
				t.Errorf("status = %v, want %d", resp, tt.want)
			}
			if !errors.Is(err, websocket.ErrBadHandshake) {
				t.Errorf("err = %v", err)
			}
		})
	}
}
