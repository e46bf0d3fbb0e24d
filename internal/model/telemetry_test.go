package model

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestTelemetryEventLenientDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		rt      *float64
		correct *bool
	}{
		{"numbers", `{"responseTimeMs":420,"correct":true}`, Float(420), Bool(true)},
		{"numeric strings", `{"responseTimeMs":" 650 ","correct":"false"}`, Float(650), Bool(false)},
		{"zero one", `{"correct":1}`, nil, Bool(true)},
		{"garbage", `{"responseTimeMs":"fast","correct":"maybe"}`, nil, nil},
		{"wrong types", `{"responseTimeMs":[1],"correct":{}}`, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e TelemetryEvent
			if err := json.Unmarshal([]byte(tt.in), &e); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if (e.ResponseTimeMs == nil) != (tt.rt == nil) || (tt.rt != nil && *e.ResponseTimeMs != *tt.rt) {
				t.Errorf("responseTimeMs = %v, want %v", e.ResponseTimeMs, tt.rt)
			}
			if (e.Correct == nil) != (tt.correct == nil) || (tt.correct != nil && *e.Correct != *tt.correct) {
				t.Errorf("correct = %v, want %v", e.Correct, tt.correct)
			}
		})
	}
}

func TestTelemetryEventRejectsNonObject(t *testing.T) {
	var e TelemetryEvent
	if err := json.Unmarshal([]byte(`not json`), &e); err == nil {
		t.Error("expected error for malformed envelope")
	}
}

func TestTelemetryEventOptionalFields(t *testing.T) {
	var e TelemetryEvent
	in := `{"errorType":" off_by_one ","occurredAt":"2026-10-19T08:30:00Z","pauseDurationMs":7000}`
	if err := json.Unmarshal([]byte(in), &e); err != nil {
		t.Fatal(err)
	}
	if e.ErrorType != "off_by_one" || e.OccurredAt.Hour() != 8 || e.PauseDurationMs == nil || *e.PauseDurationMs != 7000 {
		t.Errorf("event = %+v", e)
	}
	if e.HasResponseTime() {
		t.Error("no response time was sent")
	}
}
