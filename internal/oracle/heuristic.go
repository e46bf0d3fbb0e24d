package oracle

import (
	"context"
	"math"

	"brainarcade/internal/model"
)

// Heuristic derives estimates from the profile alone. It never fails.
type Heuristic struct{}

// PredictChurn weighs time away, unfinished quests and a very short last session.
func (Heuristic) PredictChurn(_ context.Context, profile model.UserProfile) (float64, error) {
	p := profile.WithDefaults()
	churn := math.Min(float64(p.Behavior.DaysSinceLastSession)/7, 1) * 0.5
	churn += (1 - clamp01(p.Motivation.QuestCompletionRate)) * 0.3
	if p.Behavior.LastSessionMinutes > 0 && p.Behavior.LastSessionMinutes < 5 {
		churn += 0.2
	}
	return clamp01(churn), nil
}

// OptimizeDifficulty falls back to the player's stated preference.
func (Heuristic) OptimizeDifficulty(_ context.Context, profile model.UserProfile, _ model.PlayContext) (float64, error) {
	p := profile.WithDefaults()
	return clamp01(p.Motivation.PreferredDifficulty), nil
}

// ForecastEngagement blends quest completion with typical session length.
func (Heuristic) ForecastEngagement(_ context.Context, profile model.UserProfile, _ model.PlayContext) (float64, error) {
	p := profile.WithDefaults()
	e := clamp01(p.Motivation.QuestCompletionRate)*0.5 + math.Min(p.Behavior.AverageSessionMinutes/20, 1)*0.5
	return clamp01(e), nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
