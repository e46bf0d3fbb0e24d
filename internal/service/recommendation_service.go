package service

import (
	"brainarcade/internal/cache"
	"brainarcade/internal/catalog"
	"brainarcade/internal/metrics"
	"brainarcade/internal/model"
	"brainarcade/internal/recommend"
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Estimator produces churn, difficulty and engagement estimates without failing
type Estimator interface {
	Estimate(ctx context.Context, profile model.UserProfile, pc model.PlayContext) model.Estimates
}

// GameLister exposes the catalog's games
type GameLister interface {
	Games() []catalog.Game
}

// RecommendationService gathers inputs for the recommendation engine
type RecommendationService struct {
	profiles      ProfileSource
	plays         cache.PlayHistoryCache
	estimator     Estimator
	engine        *recommend.Engine
	games         GameLister
	recentWindow  time.Duration
	tuningVersion string
	logger        zerolog.Logger
	now           func() time.Time
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(
	profiles ProfileSource,
	plays cache.PlayHistoryCache,
	estimator Estimator,
	engine *recommend.Engine,
	games GameLister,
	recentWindow time.Duration,
	tuningVersion string,
	logger zerolog.Logger,
) *RecommendationService {
	return &RecommendationService{
		profiles:      profiles,
		plays:         plays,
		estimator:     estimator,
		engine:        engine,
		games:         games,
		recentWindow:  recentWindow,
		tuningVersion: tuningVersion,
		logger:        logger,
		now:           time.Now,
	}
}

// Generate always completes: a missing profile or play history falls back to
// defaults and the estimator substitutes heuristics for the oracle.
func (s *RecommendationService) Generate(ctx context.Context, userID string, pc model.PlayContext) model.RecommendationSet {
	now := s.now()
	pc = pc.Sanitized()

	var (
		profile model.UserProfile
		recent  map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetUserProfile(gctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("profile unavailable, using defaults")
			p = model.UserProfile{UserID: userID}
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		played, err := s.plays.PlayedSince(gctx, userID, now.Add(-s.recentWindow))
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("play history unavailable")
			return nil
		}
		recent = played
		return nil
	})
	_ = g.Wait()

	est := s.estimator.Estimate(ctx, profile, pc)

	set := s.engine.Generate(recommend.Input{
		Profile:        profile,
		Context:        pc,
		Estimates:      est,
		Games:          s.games.Games(),
		RecentlyPlayed: recent,
		Now:            now,
		TuningVersion:  s.tuningVersion,
	})

	for _, r := range set.Recommendations {
		metrics.RecommendationsGenerated.WithLabelValues(string(r.Type)).Inc()
	}
	metrics.RecommendationConfidence.Observe(set.Confidence)
	return set
}
