package difficulty

// Params holds the controller's blend weights, triggers and step sizes.
type Params struct {
	MinDifficulty float64 `koanf:"min_difficulty" validate:"gte=0,ltfield=MaxDifficulty"`
	MaxDifficulty float64 `koanf:"max_difficulty" validate:"lte=1"`

	// initial blend
	OracleWeight     float64 `koanf:"oracle_weight" validate:"gte=0"`
	SkillWeight      float64 `koanf:"skill_weight" validate:"gte=0"`
	PreferenceWeight float64 `koanf:"preference_weight" validate:"gte=0"`
	ContextWeight    float64 `koanf:"context_weight" validate:"gte=0"`
	ContextBase      float64 `koanf:"context_base"`
	WarmUpOffset     float64 `koanf:"warm_up_offset"`
	ChallengeOffset  float64 `koanf:"challenge_offset"`
	LowEnergyOffset  float64 `koanf:"low_energy_offset"`
	TightTimeOffset  float64 `koanf:"tight_time_offset"`
	TightTimeMinutes float64 `koanf:"tight_time_minutes" validate:"gt=0"`

	// triggers
	HighAccuracy       float64 `koanf:"high_accuracy"`
	LowAccuracy        float64 `koanf:"low_accuracy"`
	FrustrationTrigger float64 `koanf:"frustration_trigger"`
	BoredomTrigger     float64 `koanf:"boredom_trigger"`
	FlowTrigger        float64 `koanf:"flow_trigger"`

	// delta components
	AccuracyStep          float64 `koanf:"accuracy_step"`
	FastResponseRatio     float64 `koanf:"fast_response_ratio" validate:"gt=0"`
	SlowResponseRatio     float64 `koanf:"slow_response_ratio" validate:"gtfield=FastResponseRatio"`
	ResponseStep          float64 `koanf:"response_step"`
	FrustrationStep       float64 `koanf:"frustration_step"`
	FrustrationMultiplier float64 `koanf:"frustration_multiplier"`
	BoredomStep           float64 `koanf:"boredom_step"`
	BoredomMultiplier     float64 `koanf:"boredom_multiplier"`
	MaxDelta              float64 `koanf:"max_delta" validate:"gt=0"`

	StabilizationCycles int `koanf:"stabilization_cycles" validate:"gte=0"`

	// confidence contributed by each delta component
	AccuracyConfidence    float64 `koanf:"accuracy_confidence"`
	TimingConfidence      float64 `koanf:"timing_confidence"`
	FrustrationConfidence float64 `koanf:"frustration_confidence"`
	BoredomConfidence     float64 `koanf:"boredom_confidence"`
}

// DefaultParams returns the stock controller tuning.
func DefaultParams() Params {
	return Params{
		MinDifficulty: 0.1,
		MaxDifficulty: 1.0,

		OracleWeight:     0.4,
		SkillWeight:      0.3,
		PreferenceWeight: 0.2,
		ContextWeight:    0.1,
		ContextBase:      0.5,
		WarmUpOffset:     -0.1,
		ChallengeOffset:  0.1,
		LowEnergyOffset:  -0.15,
		TightTimeOffset:  -0.1,
		TightTimeMinutes: 5,

		HighAccuracy:       0.9,
		LowAccuracy:        0.6,
		FrustrationTrigger: 0.4,
		BoredomTrigger:     0.4,
		FlowTrigger:        0.7,

		AccuracyStep:          0.1,
		FastResponseRatio:     0.5,
		SlowResponseRatio:     2.0,
		ResponseStep:          0.15,
		FrustrationStep:       0.15,
		FrustrationMultiplier: 1.5,
		BoredomStep:           0.12,
		BoredomMultiplier:     1.2,
		MaxDelta:              0.3,

		StabilizationCycles: 5,

		AccuracyConfidence:    0.3,
		TimingConfidence:      0.2,
		FrustrationConfidence: 0.3,
		BoredomConfidence:     0.2,
	}
}

// Clamp bounds d to [MinDifficulty, MaxDifficulty].
func (p Params) Clamp(d float64) float64 {
	if d < p.MinDifficulty {
		return p.MinDifficulty
	}
	if d > p.MaxDifficulty {
		return p.MaxDifficulty
	}
	return d
}
