package model

import "testing"

func TestPlayContextSanitized(t *testing.T) {
	in := PlayContext{
		SessionType:       "marathon",
		AvailableMinutes:  -4,
		EnergyLevel:       "HIGH",
		InterruptionLevel: LevelLow,
	}
	got := in.Sanitized()
	if got.SessionType != "" || got.AvailableMinutes != 0 || got.EnergyLevel != "" {
		t.Errorf("invalid values kept: %+v", got)
	}
	if got.InterruptionLevel != LevelLow {
		t.Errorf("valid level dropped: %+v", got)
	}

	ok := PlayContext{SessionType: SessionTypeChallenge, AvailableMinutes: 12, EnergyLevel: LevelMedium}
	if ok.Sanitized() != ok {
		t.Errorf("valid context changed: %+v", ok.Sanitized())
	}
}
