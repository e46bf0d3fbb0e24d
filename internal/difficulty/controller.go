// Package difficulty runs the per-session difficulty control loop: it picks a
// starting difficulty from the profile, context and oracle, then nudges it as
// telemetry arrives, with a cooldown between moves.
package difficulty

import (
	"fmt"
	"math"
	"strings"
	"time"

	"brainarcade/internal/catalog"
	"brainarcade/internal/model"
	"brainarcade/internal/telemetry"

	"github.com/rs/zerolog"
)

// GameTable is the slice of the catalog the controller reads.
type GameTable interface {
	Game(id string) (catalog.Game, bool)
	GenerateSettings(gameID string, difficulty float64) (model.Settings, error)
}

// Suggestion is the oracle's optimal-difficulty estimate and where it came from.
type Suggestion struct {
	Value  float64
	Source string // "oracle" or "heuristic"
}

// Controller owns one session's SessionState and metrics window.
// It does no locking; callers serialize Initialize and Adjust per session.
type Controller struct {
	params    Params
	telemetry telemetry.Params
	games     GameTable
	logger    zerolog.Logger
	now       func() time.Time

	state  model.SessionState
	window *telemetry.Window
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller sitting at mid difficulty until Initialize.
func NewController(games GameTable, p Params, tp telemetry.Params, logger zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		params:    p,
		telemetry: tp,
		games:     games,
		logger:    logger.With().Str("component", "difficulty").Logger(),
		now:       time.Now,
		window:    telemetry.NewWindow(tp.Capacity, tp.ErrorLookback),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = model.SessionState{
		Status:            model.SessionActive,
		CurrentDifficulty: p.Clamp((p.MinDifficulty + p.MaxDifficulty) / 2),
		StartedAt:         c.now(),
	}
	return c
}

// Initialize picks the starting difficulty for gameID and resets session state.
func (c *Controller) Initialize(gameID string, profile model.UserProfile, pc model.PlayContext, s Suggestion) model.InitResult {
	p := c.params
	profile = profile.WithDefaults()
	var adaptations []string

	oracle := s.Value
	if math.IsNaN(oracle) || math.IsInf(oracle, 0) {
		oracle = profile.Motivation.PreferredDifficulty
		adaptations = append(adaptations, "oracle_invalid")
	}
	oracle = math.Max(0, math.Min(1, oracle))
	if s.Source == "heuristic" {
		adaptations = append(adaptations, "oracle_heuristic")
	}

	game, known := c.games.Game(gameID)
	var skill float64
	if known {
		if _, ok := profile.Performance.CategorySkills[game.Category]; !ok {
			adaptations = append(adaptations, "category_skill_default")
		}
		skill = profile.CategorySkill(game.Category)
	} else {
		skill = profile.CategorySkill("")
		adaptations = append(adaptations, "unknown_game")
	}

	offset := 0.0
	addOffset := func(name string, v float64) {
		offset += v
		adaptations = append(adaptations, fmt.Sprintf("%s:%+.2f", name, v))
	}
	switch pc.SessionType {
	case model.SessionTypeWarmUp:
		addOffset("warm_up", p.WarmUpOffset)
	case model.SessionTypeChallenge:
		addOffset("challenge", p.ChallengeOffset)
	}
	if pc.EnergyLevel == model.LevelLow {
		addOffset("low_energy", p.LowEnergyOffset)
	}
	if pc.AvailableMinutes > 0 && pc.AvailableMinutes <= p.TightTimeMinutes {
		addOffset("tight_time", p.TightTimeOffset)
	}

	d := p.OracleWeight*oracle +
		p.SkillWeight*skill +
		p.PreferenceWeight*profile.Motivation.PreferredDifficulty +
		p.ContextWeight*(p.ContextBase+offset)
	d = p.Clamp(d)

	c.window.Reset()
	c.state = model.SessionState{
		GameID:              gameID,
		Status:              model.SessionActive,
		CurrentDifficulty:   d,
		BaselinePerformance: profile.Performance.RecentAccuracy,
		StartedAt:           c.now(),
	}

	if adaptations == nil {
		adaptations = []string{}
	}
	c.logger.Debug().
		Str("game_id", gameID).
		Float64("difficulty", d).
		Float64("oracle", oracle).
		Float64("skill", skill).
		Strs("adaptations", adaptations).
		Msg("session difficulty initialized")

	return model.InitResult{
		Difficulty:  d,
		Settings:    c.settings(gameID, d),
		Adaptations: adaptations,
	}
}

// Adjust feeds one telemetry event and moves the difficulty when the analysis
// calls for it. Every call counts as one evaluation cycle.
func (c *Controller) Adjust(gameID string, e model.TelemetryEvent) model.AdjustResult {
	p := c.params
	now := c.now()
	c.window.Record(e, now)
	c.state.EventsSeen++

	if c.state.StabilizationCounter > 0 {
		c.state.StabilizationCounter--
		return model.AdjustResult{Adjusted: false, Reason: ReasonStabilizing}
	}

	a := telemetry.Analyze(c.window, c.telemetry)
	if !c.triggered(a) {
		return model.AdjustResult{Adjusted: false, Reason: ReasonNoTrigger}
	}

	delta, confidence, reasons := c.delta(a, e)
	delta = math.Max(-p.MaxDelta, math.Min(p.MaxDelta, delta))

	// A fired trigger always records an entry and starts the cooldown, even
	// when the delta nets to zero or difficulty is pinned at a bound.
	from := c.state.CurrentDifficulty
	to := p.Clamp(from + delta)
	if a.Flow < p.FlowTrigger {
		reasons = append(reasons, "low_flow")
	}
	reason := strings.Join(reasons, "+")
	rec := model.AdjustmentRecord{
		At:         now,
		From:       from,
		To:         to,
		Delta:      to - from,
		Confidence: confidence,
		Reason:     reason,
	}
	c.state.CurrentDifficulty = to
	c.state.AdjustmentHistory = append(c.state.AdjustmentHistory, rec)
	last := rec
	c.state.LastAdjustment = &last
	c.state.StabilizationCounter = p.StabilizationCycles

	c.logger.Debug().
		Str("game_id", gameID).
		Float64("from", from).
		Float64("to", to).
		Float64("confidence", confidence).
		Str("reason", reason).
		Msg("difficulty adjusted")

	return model.AdjustResult{
		Adjusted:   true,
		Difficulty: to,
		Settings:   c.settings(gameID, to),
		Confidence: confidence,
		Reason:     reason,
	}
}

// Reasons reported when Adjust does not evaluate a change.
const (
	ReasonStabilizing = "stabilizing"
	ReasonNoTrigger   = "no_trigger"
)

func (c *Controller) triggered(a telemetry.Analysis) bool {
	p := c.params
	return a.RecentAccuracy > p.HighAccuracy ||
		a.RecentAccuracy < p.LowAccuracy ||
		a.Frustration > p.FrustrationTrigger ||
		a.Boredom > p.BoredomTrigger ||
		a.Flow < p.FlowTrigger
}

func (c *Controller) delta(a telemetry.Analysis, e model.TelemetryEvent) (delta, confidence float64, reasons []string) {
	p := c.params
	if a.RecentAccuracy > p.HighAccuracy {
		delta += p.AccuracyStep
		confidence += p.AccuracyConfidence
		reasons = append(reasons, "high_accuracy")
	} else if a.RecentAccuracy < p.LowAccuracy {
		delta -= p.AccuracyStep
		confidence += p.AccuracyConfidence
		reasons = append(reasons, "low_accuracy")
	}

	if e.ExpectedResponseTimeMs != nil && *e.ExpectedResponseTimeMs > 0 {
		expected := *e.ExpectedResponseTimeMs
		switch {
		case a.AverageResponseTimeMs < p.FastResponseRatio*expected:
			delta += p.ResponseStep
			confidence += p.TimingConfidence
			reasons = append(reasons, "fast_responses")
		case a.AverageResponseTimeMs > p.SlowResponseRatio*expected:
			delta -= p.ResponseStep
			confidence += p.TimingConfidence
			reasons = append(reasons, "slow_responses")
		}
	}

	if a.Frustration > p.FrustrationTrigger {
		delta -= p.FrustrationStep * p.FrustrationMultiplier
		confidence += p.FrustrationConfidence
		reasons = append(reasons, "frustration")
	}
	if a.Boredom > p.BoredomTrigger {
		delta += p.BoredomStep * p.BoredomMultiplier
		confidence += p.BoredomConfidence
		reasons = append(reasons, "boredom")
	}
	return delta, math.Min(confidence, 1), reasons
}

// settings returns nil for a game missing from the catalog.
func (c *Controller) settings(gameID string, d float64) model.Settings {
	s, err := c.games.GenerateSettings(gameID, d)
	if err != nil {
		c.logger.Warn().Err(err).Str("game_id", gameID).Float64("difficulty", d).Msg("no settings for game, returning bare difficulty")
		return nil
	}
	return s
}

// State returns a copy of the session state.
func (c *Controller) State() model.SessionState {
	s := c.state
	s.AdjustmentHistory = append([]model.AdjustmentRecord(nil), c.state.AdjustmentHistory...)
	if c.state.LastAdjustment != nil {
		last := *c.state.LastAdjustment
		s.LastAdjustment = &last
	}
	return s
}

// Restore resumes from a saved state. The metrics window starts empty.
func (c *Controller) Restore(s model.SessionState) {
	s.CurrentDifficulty = c.params.Clamp(s.CurrentDifficulty)
	if s.StabilizationCounter < 0 {
		s.StabilizationCounter = 0
	}
	s.AdjustmentHistory = append([]model.AdjustmentRecord(nil), s.AdjustmentHistory...)
	c.state = s
	c.window.Reset()
}

// Analysis reports the current analyzer view of the window.
func (c *Controller) Analysis() telemetry.Analysis {
	return telemetry.Analyze(c.window, c.telemetry)
}
