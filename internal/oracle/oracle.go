// Package oracle consults the external prediction service for churn risk,
// optimal difficulty and engagement, and falls back to profile heuristics
// whenever that service is slow, failing, or not configured.
package oracle

import (
	"context"
	"errors"

	"brainarcade/internal/model"
)

// Oracle returns scalar estimates in [0,1]. Any call may fail or be slow.
type Oracle interface {
	PredictChurn(ctx context.Context, profile model.UserProfile) (float64, error)
	OptimizeDifficulty(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, error)
	ForecastEngagement(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, error)
}

// Estimate sources.
const (
	SourceOracle    = "oracle"
	SourceHeuristic = "heuristic"
	SourceMixed     = "mixed"
)

// ErrInvalidEstimate is returned when the service answers outside [0,1].
var ErrInvalidEstimate = errors.New("oracle estimate out of range")

// Stub is a deterministic Oracle for tests and offline runs.
type Stub struct {
	Churn      float64
	Difficulty float64
	Engagement float64
	Err        error // returned by every call when set
}

func (s Stub) PredictChurn(context.Context, model.UserProfile) (float64, error) {
	return s.Churn, s.Err
}

func (s Stub) OptimizeDifficulty(context.Context, model.UserProfile, model.PlayContext) (float64, error) {
	return s.Difficulty, s.Err
}

func (s Stub) ForecastEngagement(context.Context, model.UserProfile, model.PlayContext) (float64, error) {
	return s.Engagement, s.Err
}
