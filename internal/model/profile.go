package model

import "time"

// Profile defaults applied when the behavioral store has no value for a field
const (
	DefaultSkillLevel            = 0.5
	DefaultPreferredDifficulty   = 0.5
	DefaultAccuracy              = 0.7
	DefaultAverageSessionMinutes = 10.0
)

// PerformanceProfile tracks how well the user plays
type PerformanceProfile struct {
	OverallSkill       float64            `json:"overallSkill" bson:"overallSkill"`             // 0-1
	CategorySkills     map[string]float64 `json:"categorySkills" bson:"categorySkills"`         // category -> 0-1
	SkillLevels        map[string]float64 `json:"skillLevels" bson:"skillLevels"`               // skill -> 0-1
	StrongSkills       []string           `json:"strongSkills" bson:"strongSkills"`             // skills above mastery threshold
	RecentAccuracy     float64            `json:"recentAccuracy" bson:"recentAccuracy"`         // last few sessions
	HistoricalAccuracy float64            `json:"historicalAccuracy" bson:"historicalAccuracy"` // lifetime average
	GamesPlayed        int                `json:"gamesPlayed" bson:"gamesPlayed"`
}

// BehaviorProfile tracks when and how long the user plays
type BehaviorProfile struct {
	AverageSessionMinutes float64        `json:"averageSessionMinutes" bson:"averageSessionMinutes"`
	LastSessionMinutes    float64        `json:"lastSessionMinutes" bson:"lastSessionMinutes"`
	CurrentSessionMinutes float64        `json:"currentSessionMinutes" bson:"currentSessionMinutes"`
	DaysSinceLastSession  int            `json:"daysSinceLastSession" bson:"daysSinceLastSession"`
	FavoriteCategories    []string       `json:"favoriteCategories" bson:"favoriteCategories"`
	GamePlayCounts        map[string]int `json:"gamePlayCounts" bson:"gamePlayCounts"` // gameId -> sessions
	RecentGames           []string       `json:"recentGames" bson:"recentGames"`       // most recent first
}

// MotivationProfile tracks goals and engagement signals
type MotivationProfile struct {
	PreferredDifficulty float64 `json:"preferredDifficulty" bson:"preferredDifficulty"` // 0-1
	QuestCompletionRate float64 `json:"questCompletionRate" bson:"questCompletionRate"` // 0-1
	CurrentStreakDays   int     `json:"currentStreakDays" bson:"currentStreakDays"`
	WeeklyGoalMinutes   float64 `json:"weeklyGoalMinutes" bson:"weeklyGoalMinutes"`
	WeeklyMinutesPlayed float64 `json:"weeklyMinutesPlayed" bson:"weeklyMinutesPlayed"`
}

// ProgressProfile tracks long-term advancement
type ProgressProfile struct {
	TotalMinutes  float64 `json:"totalMinutes" bson:"totalMinutes"`
	Level         int     `json:"level" bson:"level"`
	XP            int     `json:"xp" bson:"xp"`
	NextLevelXP   int     `json:"nextLevelXp" bson:"nextLevelXp"`
	NextMilestone string  `json:"nextMilestone" bson:"nextMilestone"`
}

// UserProfile is a read-only snapshot of the behavioral-profile store for one user
type UserProfile struct {
	UserID      string             `json:"userId" bson:"_id"`
	Performance PerformanceProfile `json:"performance" bson:"performance"`
	Behavior    BehaviorProfile    `json:"behavior" bson:"behavior"`
	Motivation  MotivationProfile  `json:"motivation" bson:"motivation"`
	Progress    ProgressProfile    `json:"progress" bson:"progress"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// WithDefaults returns a copy with zero-valued fields replaced by neutral defaults.
// Maps are copied so callers can never mutate the store's snapshot.
func (p UserProfile) WithDefaults() UserProfile {
	out := p
	if out.Performance.OverallSkill <= 0 {
		out.Performance.OverallSkill = DefaultSkillLevel
	}
	if out.Performance.RecentAccuracy <= 0 {
		out.Performance.RecentAccuracy = DefaultAccuracy
	}
	if out.Performance.HistoricalAccuracy <= 0 {
		out.Performance.HistoricalAccuracy = DefaultAccuracy
	}
	if out.Behavior.AverageSessionMinutes <= 0 {
		out.Behavior.AverageSessionMinutes = DefaultAverageSessionMinutes
	}
	if out.Motivation.PreferredDifficulty <= 0 {
		out.Motivation.PreferredDifficulty = DefaultPreferredDifficulty
	}

	out.Performance.CategorySkills = copyFloatMap(p.Performance.CategorySkills)
	out.Performance.SkillLevels = copyFloatMap(p.Performance.SkillLevels)
	out.Performance.StrongSkills = append([]string(nil), p.Performance.StrongSkills...)
	out.Behavior.FavoriteCategories = append([]string(nil), p.Behavior.FavoriteCategories...)
	out.Behavior.RecentGames = append([]string(nil), p.Behavior.RecentGames...)
	counts := make(map[string]int, len(p.Behavior.GamePlayCounts))
	for k, v := range p.Behavior.GamePlayCounts {
		counts[k] = v
	}
	out.Behavior.GamePlayCounts = counts
	return out
}

// CategorySkill returns the skill for a category, falling back to overall skill
func (p UserProfile) CategorySkill(category string) float64 {
	if v, ok := p.Performance.CategorySkills[category]; ok && category != "" {
		return v
	}
	if p.Performance.OverallSkill > 0 {
		return p.Performance.OverallSkill
	}
	return DefaultSkillLevel
}

// IsFavoriteCategory reports whether category is one of the user's favorites
func (p UserProfile) IsFavoriteCategory(category string) bool {
	for _, c := range p.Behavior.FavoriteCategories {
		if c == category {
			return true
		}
	}
	return false
}

func copyFloatMap(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
