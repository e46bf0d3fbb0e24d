package telemetry

import (
	"math"
	"testing"

	"brainarcade/internal/model"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAnalyzeEmptyWindowDefaults(t *testing.T) {
	p := DefaultParams()
	a := Analyze(NewWindow(p.Capacity, p.ErrorLookback), p)

	if a.RecentAccuracy != 0.5 {
		t.Errorf("RecentAccuracy = %v, want 0.5", a.RecentAccuracy)
	}
	if a.AverageResponseTimeMs != 3000 {
		t.Errorf("AverageResponseTimeMs = %v, want 3000", a.AverageResponseTimeMs)
	}
	if a.Consistency != 0.5 {
		t.Errorf("Consistency = %v, want 0.5", a.Consistency)
	}
	if a.Frustration != 0 || a.Boredom != 0 {
		t.Errorf("Frustration/Boredom = %v/%v, want 0/0", a.Frustration, a.Boredom)
	}
	// accuracy fit 0 (|0.5-0.75|/0.25 = 1) and consistency 0.5
	if !approx(a.Flow, 0.25) {
		t.Errorf("Flow = %v, want 0.25", a.Flow)
	}
}

func TestRecentAccuracyUsesLastTen(t *testing.T) {
	p := DefaultParams()
	w := NewWindow(p.Capacity, 0)
	for i := 0; i < 10; i++ {
		w.Record(answer(false, 2000), t0)
	}
	for i := 0; i < 10; i++ {
		w.Record(answer(i < 7, 2000), t0)
	}
	if got := RecentAccuracy(w, p); !approx(got, 0.7) {
		t.Errorf("RecentAccuracy = %v, want 0.7", got)
	}
}

func TestConsistency(t *testing.T) {
	p := DefaultParams()

	steady := NewWindow(p.Capacity, 0)
	for i := 0; i < 5; i++ {
		steady.Record(answer(true, 2000), t0)
	}
	if got := Consistency(steady, p); got != 1 {
		t.Errorf("steady Consistency = %v, want 1", got)
	}

	few := NewWindow(p.Capacity, 0)
	few.Record(answer(true, 100), t0)
	few.Record(answer(true, 9000), t0)
	if got := Consistency(few, p); got != 0.5 {
		t.Errorf("two-sample Consistency = %v, want default 0.5", got)
	}

	wild := NewWindow(p.Capacity, 0)
	for _, ms := range []float64{100, 10000, 100, 10000} {
		wild.Record(answer(true, ms), t0)
	}
	if got := Consistency(wild, p); got < 0 || got > 0.1 {
		t.Errorf("erratic Consistency = %v, want near 0", got)
	}
}

func TestFrustration(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name   string
		wrong  int
		pauses int
		want   float64
	}{
		{"calm", 2, 0, 0},
		{"three wrong", 3, 0, 0.4},
		{"five wrong", 5, 0, 0.7},
		{"pauses only", 0, 2, 0.2},
		{"pause cap", 0, 6, 0.3},
		{"everything", 6, 5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(p.Capacity, 0)
			for i := 0; i < tt.wrong; i++ {
				w.Record(answer(false, 4000), t0)
			}
			for i := 0; i < tt.pauses; i++ {
				w.Record(model.TelemetryEvent{PauseDurationMs: model.Float(8000)}, t0)
			}
			if got := Frustration(w, p); !approx(got, tt.want) {
				t.Errorf("Frustration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoredom(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name    string
		correct int
		ms      float64
		want    float64
	}{
		{"slow correct", 4, 2500, 0},
		{"two fast", 2, 600, 0.2},
		{"fast cap", 6, 600, 0.4},
		{"eight fast correct", 8, 600, 0.7},
		{"eight slow correct", 8, 2500, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(p.Capacity, 0)
			for i := 0; i < tt.correct; i++ {
				w.Record(answer(true, tt.ms), t0)
			}
			if got := Boredom(w, p); !approx(got, tt.want) {
				t.Errorf("Boredom = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlowPeaksAtTarget(t *testing.T) {
	p := DefaultParams()
	if got := Flow(0.75, 1, p); got != 1 {
		t.Errorf("Flow(0.75, 1) = %v, want 1", got)
	}
	if got := Flow(1.0, 1, p); !approx(got, 0.5) {
		t.Errorf("Flow(1.0, 1) = %v, want 0.5", got)
	}
	if got := Flow(0, 0, p); got != 0 {
		t.Errorf("Flow(0, 0) = %v, want 0", got)
	}
}

func TestAnalyzeFrustratedPlayer(t *testing.T) {
	p := DefaultParams()
	w := NewWindow(p.Capacity, p.ErrorLookback)
	for i := 0; i < 5; i++ {
		w.Record(answer(false, 9000), t0)
	}
	a := Analyze(w, p)
	if a.Frustration < 0.4 {
		t.Errorf("Frustration = %v, want >= 0.4", a.Frustration)
	}
	if a.RecentAccuracy != 0 {
		t.Errorf("RecentAccuracy = %v, want 0", a.RecentAccuracy)
	}
}

func TestIndicatorsOnlyCountAnalysisWindow(t *testing.T) {
	p := DefaultParams()
	w := NewWindow(p.Capacity, 0)
	for i := 0; i < 3; i++ {
		w.Record(model.TelemetryEvent{ResponseTimeMs: model.Float(500), PauseDurationMs: model.Float(9000)}, t0)
	}
	if b, f := Boredom(w, p), Frustration(w, p); !approx(b, 0.3) || !approx(f, 0.3) {
		t.Fatalf("boredom %v, frustration %v, want 0.3 each", b, f)
	}

	// push the burst out of the last ten samples while it is still in the buffer
	for i := 0; i < p.AnalysisWindow; i++ {
		w.Record(model.TelemetryEvent{ResponseTimeMs: model.Float(2500), PauseDurationMs: model.Float(100)}, t0)
	}
	if n := len(w.ResponseTimes(0)); n != 3+p.AnalysisWindow {
		t.Fatalf("buffered response times = %d, want %d", n, 3+p.AnalysisWindow)
	}
	if b, f := Boredom(w, p), Frustration(w, p); b != 0 || f != 0 {
		t.Errorf("boredom %v, frustration %v after burst left the window, want 0", b, f)
	}
}
