package model

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// Settings is the concrete parameter record handed to the host game.
// Values are float64 for numeric parameters, string or bool for categorical ones.
type Settings map[string]interface{}

// AdjustmentRecord is one entry of a session's adjustment history
type AdjustmentRecord struct {
	At         time.Time `json:"at" bson:"at"`
	From       float64   `json:"from" bson:"from"`
	To         float64   `json:"to" bson:"to"`
	Delta      float64   `json:"delta" bson:"delta"`
	Confidence float64   `json:"confidence" bson:"confidence"`
	Reason     string    `json:"reason" bson:"reason"`
}

// SessionState is the difficulty controller's per-session state.
type SessionState struct {
	SessionID            string             `json:"sessionId" bson:"_id"`
	UserID               string             `json:"userId" bson:"userId"`
	GameID               string             `json:"gameId" bson:"gameId"`
	Status               SessionStatus      `json:"status" bson:"status"`
	CurrentDifficulty    float64            `json:"currentDifficulty" bson:"currentDifficulty"`
	BaselinePerformance  float64            `json:"baselinePerformance" bson:"baselinePerformance"`
	AdjustmentHistory    []AdjustmentRecord `json:"adjustmentHistory" bson:"adjustmentHistory"`
	StabilizationCounter int                `json:"stabilizationCounter" bson:"stabilizationCounter"`
	LastAdjustment       *AdjustmentRecord  `json:"lastAdjustment,omitempty" bson:"lastAdjustment,omitempty"`
	EventsSeen           int                `json:"eventsSeen" bson:"eventsSeen"`
	StartedAt            time.Time          `json:"startedAt" bson:"startedAt"`
	EndedAt              *time.Time         `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
}

// InitResult is returned when a game session is initialized
type InitResult struct {
	Difficulty  float64  `json:"difficulty"`
	Settings    Settings `json:"settings,omitempty"`
	Adaptations []string `json:"adaptations"`
}

// AdjustResult is returned for every telemetry evaluation
type AdjustResult struct {
	Adjusted   bool     `json:"adjusted"`
	Difficulty float64  `json:"difficulty,omitempty"`
	Settings   Settings `json:"settings,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}

// SessionStartResponse is returned to the host when it opens a session
type SessionStartResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	InitResult
}
