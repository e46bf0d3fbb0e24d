package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TelemetryEvent is one observation of a player action emitted by the host game loop.
// Optional measurements are nil when the host did not send them or sent garbage.
type TelemetryEvent struct {
	ResponseTimeMs         *float64  `json:"responseTimeMs,omitempty"`
	Correct                *bool     `json:"correct,omitempty"`
	PauseDurationMs        *float64  `json:"pauseDurationMs,omitempty"`
	ErrorType              string    `json:"errorType,omitempty"`
	ExpectedResponseTimeMs *float64  `json:"expectedResponseTimeMs,omitempty"`
	OccurredAt             time.Time `json:"occurredAt,omitempty"`
}

// HasResponseTime reports whether the event carries a usable response time
func (e TelemetryEvent) HasResponseTime() bool {
	return e.ResponseTimeMs != nil && *e.ResponseTimeMs >= 0
}

// UnmarshalJSON decodes leniently: a field that is not a number (or a numeric string)
// is dropped instead of failing the whole event.
func (e *TelemetryEvent) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = TelemetryEvent{
		ResponseTimeMs:         numberField(raw, "responseTimeMs"),
		PauseDurationMs:        numberField(raw, "pauseDurationMs"),
		ExpectedResponseTimeMs: numberField(raw, "expectedResponseTimeMs"),
		Correct:                boolField(raw, "correct"),
	}
	if s, ok := raw["errorType"].(string); ok {
		e.ErrorType = strings.TrimSpace(s)
	}
	if s, ok := raw["occurredAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			e.OccurredAt = ts
		}
	}
	return nil
}

func numberField(raw map[string]interface{}, key string) *float64 {
	switch v := raw[key].(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func boolField(raw map[string]interface{}, key string) *bool {
	switch v := raw[key].(type) {
	case bool:
		return &v
	case float64:
		if v == 0 || v == 1 {
			b := v == 1
			return &b
		}
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return &b
		}
	}
	return nil
}

// Float returns a pointer to f, for building events in code
func Float(f float64) *float64 { return &f }

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }
