package model

import (
	"math"
	"time"
)

// SessionType is the host's declared intent for the upcoming play session
type SessionType string

const (
	SessionTypeNormal    SessionType = "normal"
	SessionTypeWarmUp    SessionType = "warm_up"
	SessionTypeChallenge SessionType = "challenge"
	SessionTypeFull      SessionType = "full"
	SessionTypeQuick     SessionType = "quick"
)

// Level is a coarse low/medium/high reading (energy, interruptions)
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// PlayContext is what the host knows about the player's situation right now.
// Every field is optional.
type PlayContext struct {
	SessionType       SessionType `json:"sessionType,omitempty"`
	AvailableMinutes  float64     `json:"availableMinutes,omitempty"`
	EnergyLevel       Level       `json:"energyLevel,omitempty"`
	InterruptionLevel Level       `json:"interruptionLevel,omitempty"`
	LocalTime         *time.Time  `json:"localTime,omitempty"`
}

// Sanitized drops values the engine cannot use so they read as missing
func (pc PlayContext) Sanitized() PlayContext {
	switch pc.SessionType {
	case SessionTypeNormal, SessionTypeWarmUp, SessionTypeChallenge, SessionTypeFull, SessionTypeQuick:
	default:
		pc.SessionType = ""
	}
	if !validLevel(pc.EnergyLevel) {
		pc.EnergyLevel = ""
	}
	if !validLevel(pc.InterruptionLevel) {
		pc.InterruptionLevel = ""
	}
	if pc.AvailableMinutes < 0 || math.IsNaN(pc.AvailableMinutes) || math.IsInf(pc.AvailableMinutes, 0) {
		pc.AvailableMinutes = 0
	}
	return pc
}

func validLevel(l Level) bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

// TimeOfDay buckets the player's local hour
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

// SituationalContext is the derived context the recommender plans against
type SituationalContext struct {
	TimeOfDay         TimeOfDay   `json:"timeOfDay"`
	IsWeekend         bool        `json:"isWeekend"`
	SessionType       SessionType `json:"sessionType"`
	AvailableMinutes  float64     `json:"availableMinutes"`
	EnergyLevel       Level       `json:"energyLevel"`
	InterruptionLevel Level       `json:"interruptionLevel"`
}
