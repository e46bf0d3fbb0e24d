package service

import (
	"brainarcade/internal/cache"
	"brainarcade/internal/metrics"
	"brainarcade/internal/model"
	"brainarcade/internal/repository"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ProfileSource supplies read-only behavioral profiles
type ProfileSource interface {
	GetUserProfile(ctx context.Context, userID string) (model.UserProfile, error)
}

// ProfileService reads profiles cache-aside: Redis first, then MongoDB
type ProfileService struct {
	repo   repository.ProfileRepo
	cache  cache.ProfileCache
	logger zerolog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(repo repository.ProfileRepo, cache cache.ProfileCache, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetUserProfile never fails for an unknown user: it returns an empty profile
// that callers fill with defaults.
func (s *ProfileService) GetUserProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("profile cache read failed")
	}
	if cached != nil {
		metrics.ProfileCacheHits.Inc()
		return *cached, nil
	}
	metrics.ProfileCacheMisses.Inc()

	stored, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return model.UserProfile{UserID: userID}, fmt.Errorf("failed to load profile: %w", err)
	}
	if stored == nil {
		return model.UserProfile{UserID: userID}, nil
	}

	if err := s.cache.Set(ctx, stored); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("profile cache write failed")
	}
	return *stored, nil
}
