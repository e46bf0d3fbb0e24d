package difficulty

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"brainarcade/internal/catalog"
	"brainarcade/internal/model"
	"brainarcade/internal/telemetry"

	"github.com/rs/zerolog"
)

const testCatalog = `
games:
  - id: TestGame
    category: math
    estimated_minutes: 3
    integer_fields: [count]
    breakpoints:
      - difficulty: 0.1
        settings: {count: 2, speed: 1.0, mode: easy}
      - difficulty: 1.0
        settings: {count: 20, speed: 4.0, mode: hard}
`

func newTestController(t *testing.T) *Controller {
	t.Helper()
	games, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return NewController(games, DefaultParams(), telemetry.DefaultParams(), zerolog.Nop(),
		WithClock(func() time.Time { return clock }))
}

func wrongSlow() model.TelemetryEvent {
	return model.TelemetryEvent{
		Correct:                model.Bool(false),
		ResponseTimeMs:         model.Float(9000),
		ExpectedResponseTimeMs: model.Float(4000),
	}
}

func correctFast() model.TelemetryEvent {
	return model.TelemetryEvent{
		Correct:                model.Bool(true),
		ResponseTimeMs:         model.Float(600),
		ExpectedResponseTimeMs: model.Float(4000),
	}
}

func TestInitializeChallengeScenario(t *testing.T) {
	c := newTestController(t)
	profile := model.UserProfile{Performance: model.PerformanceProfile{OverallSkill: 0.9}}

	res := c.Initialize("TestGame", profile, model.PlayContext{SessionType: model.SessionTypeChallenge}, Suggestion{Value: 0.5, Source: "oracle"})

	if res.Difficulty <= 0.6 {
		t.Errorf("difficulty = %v, want > 0.6", res.Difficulty)
	}
	if res.Settings == nil {
		t.Fatal("expected settings for a catalog game")
	}
	if !containsPrefix(res.Adaptations, "challenge:") {
		t.Errorf("adaptations = %v, want a challenge offset", res.Adaptations)
	}
}

func TestInitializeBlend(t *testing.T) {
	tests := []struct {
		name    string
		profile model.UserProfile
		ctx     model.PlayContext
		oracle  float64
		want    float64
	}{
		{
			name:   "defaults",
			oracle: 0.5,
			// 0.4*0.5 + 0.3*0.5 + 0.2*0.5 + 0.1*0.5
			want: 0.5,
		},
		{
			name: "category skill used",
			profile: model.UserProfile{Performance: model.PerformanceProfile{
				OverallSkill: 0.2, CategorySkills: map[string]float64{"math": 0.8},
			}},
			oracle: 0.5,
			want:   0.2 + 0.24 + 0.1 + 0.05,
		},
		{
			name:   "all negative offsets",
			ctx:    model.PlayContext{SessionType: model.SessionTypeWarmUp, EnergyLevel: model.LevelLow, AvailableMinutes: 4},
			oracle: 0.5,
			want:   0.2 + 0.15 + 0.1 + 0.1*(0.5-0.35),
		},
		{
			name:   "clamped low",
			profile: model.UserProfile{
				Performance: model.PerformanceProfile{OverallSkill: 0.01},
				Motivation:  model.MotivationProfile{PreferredDifficulty: 0.01},
			},
			ctx:    model.PlayContext{SessionType: model.SessionTypeWarmUp, EnergyLevel: model.LevelLow, AvailableMinutes: 2},
			oracle: 0,
			want:   0.1,
		},
		{
			name:   "oracle out of range clamps",
			oracle: 7,
			want:   0.4 + 0.15 + 0.1 + 0.05,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t)
			res := c.Initialize("TestGame", tt.profile, tt.ctx, Suggestion{Value: tt.oracle})
			if math.Abs(res.Difficulty-tt.want) > 1e-9 {
				t.Errorf("difficulty = %v, want %v", res.Difficulty, tt.want)
			}
		})
	}
}

func TestInitializeRecordsHeuristicSource(t *testing.T) {
	c := newTestController(t)
	res := c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: math.NaN(), Source: "heuristic"})
	if !containsPrefix(res.Adaptations, "oracle_invalid") || !containsPrefix(res.Adaptations, "oracle_heuristic") {
		t.Errorf("adaptations = %v", res.Adaptations)
	}
	if res.Difficulty < 0.1 || res.Difficulty > 1 {
		t.Errorf("difficulty = %v out of range", res.Difficulty)
	}
}

func TestUnknownGameReturnsBareDifficulty(t *testing.T) {
	games, _ := catalog.Parse([]byte(testCatalog))
	var buf bytes.Buffer
	c := NewController(games, DefaultParams(), telemetry.DefaultParams(), zerolog.New(&buf))

	res := c.Initialize("NoSuchGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})
	if res.Settings != nil {
		t.Errorf("settings = %v, want nil", res.Settings)
	}
	if res.Difficulty < 0.1 || res.Difficulty > 1 {
		t.Errorf("difficulty = %v", res.Difficulty)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("expected a warning, got %q", buf.String())
	}

	adj := c.Adjust("NoSuchGame", wrongSlow())
	if !adj.Adjusted || adj.Settings != nil {
		t.Errorf("adjust on unknown game = %+v, want adjusted with no settings", adj)
	}
}

func TestFrustratedPlayerMovesDown(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})

	var results []model.AdjustResult
	for i := 0; i < 5; i++ {
		results = append(results, c.Adjust("TestGame", wrongSlow()))
	}
	if f := c.Analysis().Frustration; f < 0.4 {
		t.Fatalf("frustration after 5 wrong = %v, want >= 0.4", f)
	}
	if !results[0].Adjusted {
		t.Errorf("first wrong slow event should adjust, got %+v", results[0])
	}
	for _, h := range c.State().AdjustmentHistory {
		if h.Delta >= 0 {
			t.Errorf("history has a non-negative move: %+v", h)
		}
	}

	// run out the cooldown, then the next unblocked adjustment must be negative
	before := c.State().CurrentDifficulty
	var next model.AdjustResult
	for i := 0; i < 10 && !next.Adjusted; i++ {
		next = c.Adjust("TestGame", wrongSlow())
	}
	if !next.Adjusted {
		t.Fatal("expected an adjustment once the cooldown ran out")
	}
	if next.Difficulty >= before {
		t.Errorf("difficulty %v -> %v, want strictly lower", before, next.Difficulty)
	}
	if !strings.Contains(next.Reason, "frustration") {
		t.Errorf("reason = %q, want frustration", next.Reason)
	}
}

func TestBoredPlayerMovesUp(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.3})

	for i := 0; i < 8; i++ {
		c.Adjust("TestGame", correctFast())
	}
	if b := c.Analysis().Boredom; b < 0.3 {
		t.Fatalf("boredom after 8 fast correct = %v, want >= 0.3", b)
	}

	before := c.State().CurrentDifficulty
	var next model.AdjustResult
	for i := 0; i < 10 && !next.Adjusted; i++ {
		next = c.Adjust("TestGame", correctFast())
	}
	if next.Adjusted && next.Difficulty < before {
		t.Errorf("difficulty %v -> %v, want non-negative move", before, next.Difficulty)
	}
	for _, h := range c.State().AdjustmentHistory {
		if h.Delta < 0 {
			t.Errorf("history has a downward move: %+v", h)
		}
	}
}

func TestStabilizationBlocksAdjustment(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})

	first := c.Adjust("TestGame", wrongSlow())
	if !first.Adjusted {
		t.Fatalf("first wrong slow event should adjust, got %+v", first)
	}
	if c.State().StabilizationCounter != 5 {
		t.Fatalf("stabilization = %d, want 5", c.State().StabilizationCounter)
	}

	locked := c.State().CurrentDifficulty
	for i := 0; i < 5; i++ {
		r := c.Adjust("TestGame", wrongSlow())
		if r.Adjusted {
			t.Fatalf("cycle %d adjusted during cooldown", i)
		}
		if r.Reason != ReasonStabilizing {
			t.Errorf("cycle %d reason = %q", i, r.Reason)
		}
		if got := c.State().CurrentDifficulty; got != locked {
			t.Fatalf("difficulty changed during cooldown: %v -> %v", locked, got)
		}
		if got, want := c.State().StabilizationCounter, 4-i; got != want {
			t.Errorf("counter = %d, want %d", got, want)
		}
	}
	if r := c.Adjust("TestGame", wrongSlow()); !r.Adjusted {
		t.Errorf("expected adjustment after cooldown, got %+v", r)
	}
}

func TestDifficultyStaysInRange(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})

	events := []model.TelemetryEvent{wrongSlow(), correctFast(), {PauseDurationMs: model.Float(12000)}}
	for i := 0; i < 300; i++ {
		var e model.TelemetryEvent
		switch {
		case i < 120:
			e = wrongSlow()
		case i < 240:
			e = correctFast()
		default:
			e = events[i%len(events)]
		}
		c.Adjust("TestGame", e)
		d := c.State().CurrentDifficulty
		if d < 0.1 || d > 1.0 {
			t.Fatalf("event %d: difficulty %v outside [0.1, 1.0]", i, d)
		}
		if i == 119 && d != 0.1 {
			t.Errorf("after a long frustrated run difficulty = %v, want pinned at 0.1", d)
		}
		if i == 239 && d != 1.0 {
			t.Errorf("after a long bored run difficulty = %v, want pinned at 1.0", d)
		}
	}
}

func TestPinnedAtFloorStillCoolsDown(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})
	for i := 0; i < 60; i++ {
		c.Adjust("TestGame", wrongSlow())
	}
	if d := c.State().CurrentDifficulty; d != 0.1 {
		t.Fatalf("difficulty = %v, want pinned at 0.1", d)
	}

	var r model.AdjustResult
	for i := 0; i < 6; i++ {
		if r = c.Adjust("TestGame", wrongSlow()); r.Reason != ReasonStabilizing {
			break
		}
	}
	if !r.Adjusted || r.Difficulty != 0.1 {
		t.Fatalf("triggered evaluation at the floor = %+v, want adjusted at 0.1", r)
	}
	if got := c.State().StabilizationCounter; got != 5 {
		t.Errorf("stabilization = %d, want 5", got)
	}
	last := c.State().LastAdjustment
	if last == nil || last.Delta != 0 || last.From != 0.1 || last.To != 0.1 {
		t.Errorf("last adjustment = %+v, want a held entry at 0.1", last)
	}

	for i := 0; i < 5; i++ {
		if r := c.Adjust("TestGame", wrongSlow()); r.Adjusted || r.Reason != ReasonStabilizing {
			t.Fatalf("cycle %d = %+v, want stabilizing", i, r)
		}
	}
}

func TestFlowOnlyTriggerRecordsZeroDelta(t *testing.T) {
	games, err := catalog.Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	// only the flow trigger can fire
	p := DefaultParams()
	p.HighAccuracy = 2
	p.LowAccuracy = -1
	c := NewController(games, p, telemetry.DefaultParams(), zerolog.Nop())
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})
	start := c.State().CurrentDifficulty

	// accuracy 1.0 keeps flow well under 0.7; no expected time, no fast answers
	r := c.Adjust("TestGame", model.TelemetryEvent{Correct: model.Bool(true), ResponseTimeMs: model.Float(2000)})
	if a := c.Analysis(); a.Flow >= 0.7 || a.Frustration > 0.4 || a.Boredom > 0.4 {
		t.Fatalf("analysis = %+v, want only low flow", a)
	}
	if !r.Adjusted || r.Difficulty != start || r.Reason != "low_flow" {
		t.Errorf("result = %+v, want adjusted at %v for low_flow", r, start)
	}
	if r.Settings == nil {
		t.Error("settings missing from held adjustment")
	}
	st := c.State()
	if len(st.AdjustmentHistory) != 1 || st.AdjustmentHistory[0].Delta != 0 {
		t.Errorf("history = %+v, want one zero-delta entry", st.AdjustmentHistory)
	}
	if st.StabilizationCounter != 5 {
		t.Errorf("stabilization = %d, want 5", st.StabilizationCounter)
	}
}

func TestAdjustSettingsFollowDifficulty(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})
	r := c.Adjust("TestGame", wrongSlow())
	if !r.Adjusted {
		t.Fatalf("expected adjustment, got %+v", r)
	}
	count := r.Settings["count"].(float64)
	if count != math.Round(count) || count < 2 || count > 20 {
		t.Errorf("count = %v", count)
	}
	if r.Confidence <= 0 || r.Confidence > 1 {
		t.Errorf("confidence = %v", r.Confidence)
	}
}

func TestRestoreResumesState(t *testing.T) {
	c := newTestController(t)
	c.Initialize("TestGame", model.UserProfile{}, model.PlayContext{}, Suggestion{Value: 0.5})
	c.Adjust("TestGame", wrongSlow())
	saved := c.State()

	resumed := newTestController(t)
	resumed.Restore(saved)
	got := resumed.State()
	if got.CurrentDifficulty != saved.CurrentDifficulty || got.StabilizationCounter != saved.StabilizationCounter {
		t.Errorf("restored %+v, want %+v", got, saved)
	}
	if len(got.AdjustmentHistory) != 1 {
		t.Errorf("history len = %d, want 1", len(got.AdjustmentHistory))
	}
	if resumed.Analysis().Samples != 0 {
		t.Error("window should start empty after restore")
	}
}

func containsPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
