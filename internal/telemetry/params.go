package telemetry

import "time"

// Params holds every threshold and weight the analyzer uses.
type Params struct {
	Capacity              int           `koanf:"capacity" validate:"min=1"`
	AnalysisWindow        int           `koanf:"analysis_window" validate:"min=1"`
	ErrorLookback         time.Duration `koanf:"error_lookback" validate:"gt=0"`
	DefaultAccuracy       float64       `koanf:"default_accuracy" validate:"gte=0,lte=1"`
	DefaultResponseTimeMs float64       `koanf:"default_response_time_ms" validate:"gt=0"`
	DefaultConsistency    float64       `koanf:"default_consistency" validate:"gte=0,lte=1"`
	MinConsistencySamples int           `koanf:"min_consistency_samples" validate:"min=2"`

	WrongStreak        int     `koanf:"wrong_streak"`
	WrongStreakWeight  float64 `koanf:"wrong_streak_weight"`
	SevereWrongStreak  int     `koanf:"severe_wrong_streak"`
	SevereStreakWeight float64 `koanf:"severe_streak_weight"`
	LongPauseMs        float64 `koanf:"long_pause_ms"`
	LongPauseWeight    float64 `koanf:"long_pause_weight"`
	LongPauseCap       float64 `koanf:"long_pause_cap"`

	FastResponseMs      float64 `koanf:"fast_response_ms"`
	FastResponseWeight  float64 `koanf:"fast_response_weight"`
	FastResponseCap     float64 `koanf:"fast_response_cap"`
	CorrectStreak       int     `koanf:"correct_streak"`
	CorrectStreakWeight float64 `koanf:"correct_streak_weight"`

	FlowTargetAccuracy float64 `koanf:"flow_target_accuracy" validate:"gt=0,lt=1"`
	FlowTolerance      float64 `koanf:"flow_tolerance" validate:"gt=0"`
}

// DefaultParams returns the stock analyzer tuning.
func DefaultParams() Params {
	return Params{
		Capacity:              20,
		AnalysisWindow:        10,
		ErrorLookback:         30 * time.Second,
		DefaultAccuracy:       0.5,
		DefaultResponseTimeMs: 3000,
		DefaultConsistency:    0.5,
		MinConsistencySamples: 3,

		WrongStreak:        3,
		WrongStreakWeight:  0.4,
		SevereWrongStreak:  5,
		SevereStreakWeight: 0.3,
		LongPauseMs:        5000,
		LongPauseWeight:    0.1,
		LongPauseCap:       0.3,

		FastResponseMs:      1000,
		FastResponseWeight:  0.1,
		FastResponseCap:     0.4,
		CorrectStreak:       8,
		CorrectStreakWeight: 0.3,

		FlowTargetAccuracy: 0.75,
		FlowTolerance:      0.25,
	}
}
