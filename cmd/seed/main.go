// seed writes demo behavioral profiles into MongoDB.
package main

import (
	"brainarcade/internal/app"
	"brainarcade/internal/config"
	"brainarcade/internal/logging"
	"brainarcade/internal/model"
	"brainarcade/internal/repository"
	"context"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := app.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	repo := repository.NewProfileRepo(client.Database(cfg.Mongo.Database))
	for _, p := range demoProfiles() {
		if err := repo.Upsert(ctx, &p); err != nil {
			logging.Fatal().Err(err).Str("user_id", p.UserID).Msg("failed to seed profile")
		}
		logging.Info().Str("user_id", p.UserID).Msg("seeded profile")
	}
}

func demoProfiles() []model.UserProfile {
	return []model.UserProfile{
		{
			// lapsed player with no quests done: churn prevention path
			UserID: "demo-lapsed",
			Performance: model.PerformanceProfile{
				OverallSkill:   0.45,
				CategorySkills: map[string]float64{"math": 0.4, "language": 0.5},
				SkillLevels:    map[string]float64{"arithmetic": 0.35, "vocabulary": 0.55},
				RecentAccuracy: 0.55,
				GamesPlayed:    12,
			},
			Behavior: model.BehaviorProfile{
				AverageSessionMinutes: 8,
				LastSessionMinutes:    3,
				DaysSinceLastSession:  9,
				FavoriteCategories:    []string{"language"},
				GamePlayCounts:        map[string]int{"word-builder": 7, "math-sprint": 5},
				RecentGames:           []string{"word-builder", "math-sprint"},
			},
			Motivation: model.MotivationProfile{
				PreferredDifficulty: 0.4,
				QuestCompletionRate: 0.1,
				WeeklyGoalMinutes:   60,
				WeeklyMinutesPlayed: 5,
			},
			Progress: model.ProgressProfile{TotalMinutes: 96, Level: 3, XP: 410, NextLevelXP: 500, NextMilestone: "Level 4"},
		},
		{
			// daily streak, strong in logic
			UserID: "demo-streaker",
			Performance: model.PerformanceProfile{
				OverallSkill:       0.72,
				CategorySkills:     map[string]float64{"logic": 0.85, "memory": 0.6, "math": 0.7},
				SkillLevels:        map[string]float64{"deduction": 0.88, "working_memory": 0.58, "arithmetic": 0.7},
				StrongSkills:       []string{"deduction"},
				RecentAccuracy:     0.86,
				HistoricalAccuracy: 0.8,
				GamesPlayed:        140,
			},
			Behavior: model.BehaviorProfile{
				AverageSessionMinutes: 14,
				LastSessionMinutes:    16,
				DaysSinceLastSession:  1,
				FavoriteCategories:    []string{"logic"},
				GamePlayCounts:        map[string]int{"logic-grid": 60, "pattern-recall": 40, "memory-match": 25, "math-sprint": 15},
				RecentGames:           []string{"logic-grid", "pattern-recall"},
			},
			Motivation: model.MotivationProfile{
				PreferredDifficulty: 0.7,
				QuestCompletionRate: 0.8,
				CurrentStreakDays:   21,
				WeeklyGoalMinutes:   90,
				WeeklyMinutesPlayed: 70,
			},
			Progress: model.ProgressProfile{TotalMinutes: 1960, Level: 18, XP: 9400, NextLevelXP: 9600, NextMilestone: "Logic Master badge"},
		},
		{
			// brand new user, nothing recorded yet
			UserID: "demo-new",
		},
	}
}
