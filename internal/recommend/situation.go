package recommend

import (
	"time"

	"brainarcade/internal/model"
)

// DeriveSituation fills in the situational context from the host's play
// context. The player's local time wins over now when the host sent it.
func DeriveSituation(pc model.PlayContext, profile model.UserProfile, now time.Time) model.SituationalContext {
	local := now
	if pc.LocalTime != nil && !pc.LocalTime.IsZero() {
		local = *pc.LocalTime
	}

	s := model.SituationalContext{
		TimeOfDay:         TimeOfDay(local.Hour()),
		IsWeekend:         local.Weekday() == time.Saturday || local.Weekday() == time.Sunday,
		SessionType:       pc.SessionType,
		AvailableMinutes:  pc.AvailableMinutes,
		EnergyLevel:       pc.EnergyLevel,
		InterruptionLevel: pc.InterruptionLevel,
	}
	if s.SessionType == "" {
		s.SessionType = model.SessionTypeNormal
	}
	if s.AvailableMinutes <= 0 {
		s.AvailableMinutes = profile.WithDefaults().Behavior.AverageSessionMinutes
	}
	if s.EnergyLevel == "" {
		s.EnergyLevel = model.LevelMedium
	}
	if s.InterruptionLevel == "" {
		s.InterruptionLevel = model.LevelLow
	}
	return s
}

// TimeOfDay buckets an hour of the day.
func TimeOfDay(hour int) model.TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return model.Morning
	case hour >= 12 && hour < 17:
		return model.Afternoon
	case hour >= 17 && hour < 21:
		return model.Evening
	default:
		return model.Night
	}
}
