package recommend

import "time"

// Params holds every priority, threshold and bonus the planner uses.
type Params struct {
	MaxRecommendations int `koanf:"max_recommendations" validate:"min=1"`
	MaxSessionSteps    int `koanf:"max_session_steps" validate:"min=1"`
	MaxNewGames        int `koanf:"max_new_games" validate:"gte=0"`

	// immediate
	ChurnThreshold      float64 `koanf:"churn_threshold"`
	ChurnPriority       float64 `koanf:"churn_priority"`
	ChurnMaxMinutes     float64 `koanf:"churn_max_minutes" validate:"gt=0"`
	ChurnDifficulty     float64 `koanf:"churn_difficulty"`
	StreakPriority      float64 `koanf:"streak_priority"`
	StreakEase          float64 `koanf:"streak_ease"`
	MicroSessionMinutes float64 `koanf:"micro_session_minutes"`
	MicroPriority       float64 `koanf:"micro_priority"`

	// session plan
	WarmUpPriority        float64 `koanf:"warm_up_priority"`
	WarmUpEase            float64 `koanf:"warm_up_ease"`
	SkillBuildingPriority float64 `koanf:"skill_building_priority"`
	ChallengeEngagement   float64 `koanf:"challenge_engagement"`
	ChallengePriority     float64 `koanf:"challenge_priority"`
	ChallengeBoost        float64 `koanf:"challenge_boost"`

	// adaptive
	DecreaseRatio    float64 `koanf:"decrease_ratio"`
	DecreaseDelta    float64 `koanf:"decrease_delta"`
	DecreasePriority float64 `koanf:"decrease_priority"`
	IncreaseRatio    float64 `koanf:"increase_ratio"`
	IncreaseDelta    float64 `koanf:"increase_delta"`
	IncreaseSteps    int     `koanf:"increase_steps" validate:"min=1"`
	IncreasePriority float64 `koanf:"increase_priority"`
	BreakRatio       float64 `koanf:"break_ratio"`
	BreakPriority    float64 `koanf:"break_priority"`

	// long term
	MilestonePriority  float64 `koanf:"milestone_priority"`
	WeeklyGoalPriority float64 `koanf:"weekly_goal_priority"`
	NewGamePriority    float64 `koanf:"new_game_priority"`

	// scoring
	FavoriteBonus         float64       `koanf:"favorite_bonus"`
	DifficultyMatchWeight float64       `koanf:"difficulty_match_weight"`
	DurationBonus         float64       `koanf:"duration_bonus"`
	NoveltyBonus          float64       `koanf:"novelty_bonus"`
	RecentWindow          time.Duration `koanf:"recent_window" validate:"gt=0"`

	// confidence
	DataQualityBase      float64 `koanf:"data_quality_base"`
	DataQualityStep      float64 `koanf:"data_quality_step"`
	GamesPlayedThreshold int     `koanf:"games_played_threshold"`
	MinutesThreshold     float64 `koanf:"minutes_threshold"`
	StabilityFloor       float64 `koanf:"stability_floor"`
}

// DefaultParams returns the stock planner tuning.
func DefaultParams() Params {
	return Params{
		MaxRecommendations: 5,
		MaxSessionSteps:    3,
		MaxNewGames:        2,

		ChurnThreshold:      0.7,
		ChurnPriority:       0.9,
		ChurnMaxMinutes:     3,
		ChurnDifficulty:     0.3,
		StreakPriority:      0.8,
		StreakEase:          0.1,
		MicroSessionMinutes: 5,
		MicroPriority:       0.7,

		WarmUpPriority:        0.6,
		WarmUpEase:            0.15,
		SkillBuildingPriority: 0.75,
		ChallengeEngagement:   0.7,
		ChallengePriority:     0.65,
		ChallengeBoost:        0.2,

		DecreaseRatio:    0.8,
		DecreaseDelta:    -0.2,
		DecreasePriority: 0.7,
		IncreaseRatio:    1.2,
		IncreaseDelta:    0.15,
		IncreaseSteps:    3,
		IncreasePriority: 0.6,
		BreakRatio:       1.5,
		BreakPriority:    0.65,

		MilestonePriority:  0.5,
		WeeklyGoalPriority: 0.5,
		NewGamePriority:    0.4,

		FavoriteBonus:         0.2,
		DifficultyMatchWeight: 0.15,
		DurationBonus:         0.1,
		NoveltyBonus:          0.1,
		RecentWindow:          72 * time.Hour,

		DataQualityBase:      0.5,
		DataQualityStep:      0.2,
		GamesPlayedThreshold: 50,
		MinutesThreshold:     600,
		StabilityFloor:       0.1,
	}
}
