package recommend

import (
	"math"
	"sort"

	"brainarcade/internal/model"

	"github.com/montanaflynn/stats"
)

// Score is the base priority plus the personalization bonuses.
func Score(r model.Recommendation, profile model.UserProfile, recent map[string]bool, p Params) float64 {
	score := r.Priority
	if r.Category != "" && profile.IsFavoriteCategory(r.Category) {
		score += p.FavoriteBonus
	}
	score += p.DifficultyMatchWeight * (1 - math.Abs(r.Difficulty-profile.Motivation.PreferredDifficulty))
	if r.EstimatedDurationMinutes <= profile.Behavior.AverageSessionMinutes {
		score += p.DurationBonus
	}
	if r.GameID != "" && !recent[r.GameID] {
		score += p.NoveltyBonus
	}
	return score
}

// Rank sorts by final score, highest first. Ties fall back to priority,
// then type and game id, so equal inputs always rank the same way.
func Rank(recs []model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.GameID < b.GameID
	})
}

// DataQuality rates how much history backs the profile.
func DataQuality(profile model.UserProfile, p Params) float64 {
	q := p.DataQualityBase
	if profile.Performance.GamesPlayed > p.GamesPlayedThreshold {
		q += p.DataQualityStep
	}
	if profile.Progress.TotalMinutes > p.MinutesThreshold {
		q += p.DataQualityStep
	}
	if len(profile.Performance.StrongSkills) >= 1 {
		q += p.DataQualityStep
	}
	return math.Min(q, 1)
}

// Stability is 1 - variance of the final scores, floored.
func Stability(recs []model.Recommendation, p Params) float64 {
	scores := make(stats.Float64Data, len(recs))
	for i, r := range recs {
		scores[i] = r.FinalScore
	}
	variance, err := stats.PopulationVariance(scores)
	if err != nil {
		return p.StabilityFloor
	}
	return math.Max(p.StabilityFloor, 1-variance)
}
