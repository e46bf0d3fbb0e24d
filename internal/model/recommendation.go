package model

import "time"

// RecommendationType names why an activity is being suggested
type RecommendationType string

const (
	RecChurnPrevention    RecommendationType = "churn_prevention"
	RecStreakMaintenance  RecommendationType = "streak_maintenance"
	RecMicroSession       RecommendationType = "micro_session"
	RecWarmUp             RecommendationType = "warm_up"
	RecSkillBuilding      RecommendationType = "skill_building"
	RecChallenge          RecommendationType = "challenge"
	RecDifficultyDecrease RecommendationType = "difficulty_decrease"
	RecDifficultyIncrease RecommendationType = "difficulty_increase"
	RecBreak              RecommendationType = "break"
	RecMilestone          RecommendationType = "milestone"
	RecWeeklyGoal         RecommendationType = "weekly_goal"
	RecNewGame            RecommendationType = "new_game"
)

// Recommendation is one suggested next activity
type Recommendation struct {
	Type                     RecommendationType `json:"type"`
	GameID                   string             `json:"gameId,omitempty"`
	Category                 string             `json:"category,omitempty"`
	Priority                 float64            `json:"priority"`
	Reason                   string             `json:"reason"`
	EstimatedDurationMinutes float64            `json:"estimatedDuration"`
	Difficulty               float64            `json:"difficulty"`
	DifficultyDelta          float64            `json:"difficultyDelta,omitempty"`
	Steps                    []float64          `json:"steps,omitempty"`
	FinalScore               float64            `json:"finalScore"`
}

// Estimates are the prediction oracle's outputs for one user, whatever produced them
type Estimates struct {
	Churn             float64 `json:"churn"`
	OptimalDifficulty float64 `json:"optimalDifficulty"`
	Engagement        float64 `json:"engagement"`
	Source            string  `json:"source"` // "oracle", "heuristic" or "mixed"
}

// RecommendationMetadata describes how a recommendation set was produced
type RecommendationMetadata struct {
	UserID         string             `json:"userId"`
	GeneratedAt    time.Time          `json:"generatedAt"`
	TuningVersion  string             `json:"tuningVersion"`
	EstimateSource string             `json:"estimateSource"`
	Estimates      Estimates          `json:"estimates"`
	Situation      SituationalContext `json:"situation"`
	CandidateCount int                `json:"candidateCount"`
	DataQuality    float64            `json:"dataQuality"`
	Stability      float64            `json:"stability"`
}

// RecommendationSet is the full answer to a recommendation request
type RecommendationSet struct {
	Recommendations []Recommendation       `json:"recommendations"`
	LongTerm        []Recommendation       `json:"longTerm"`
	Confidence      float64                `json:"confidence"`
	Reasoning       []string               `json:"reasoning"`
	Metadata        RecommendationMetadata `json:"metadata"`
}
