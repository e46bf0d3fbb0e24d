package oracle

import (
	"context"
	"time"

	"brainarcade/internal/metrics"
	"brainarcade/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Resilient answers every call, using the primary oracle when it responds in
// time and the profile heuristics otherwise. Its methods never return an error.
type Resilient struct {
	primary  Oracle
	fallback Heuristic
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewResilient wraps primary. A nil primary means heuristics only.
func NewResilient(primary Oracle, timeout time.Duration, logger zerolog.Logger) *Resilient {
	return &Resilient{
		primary: primary,
		timeout: timeout,
		logger:  logger.With().Str("component", "oracle").Logger(),
	}
}

func (r *Resilient) PredictChurn(ctx context.Context, profile model.UserProfile) (float64, error) {
	v, _ := r.churn(ctx, profile)
	return v, nil
}

func (r *Resilient) OptimizeDifficulty(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, error) {
	v, _ := r.difficulty(ctx, profile, pc)
	return v, nil
}

func (r *Resilient) ForecastEngagement(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, error) {
	v, _ := r.engagement(ctx, profile, pc)
	return v, nil
}

// Suggest returns the optimal-difficulty estimate and its source.
func (r *Resilient) Suggest(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, string) {
	return r.difficulty(ctx, profile, pc)
}

// Estimate runs all three calls concurrently.
func (r *Resilient) Estimate(ctx context.Context, profile model.UserProfile, pc model.PlayContext) model.Estimates {
	var (
		g                            errgroup.Group
		est                          model.Estimates
		churnSrc, diffSrc, engageSrc string
	)
	g.Go(func() error {
		est.Churn, churnSrc = r.churn(ctx, profile)
		return nil
	})
	g.Go(func() error {
		est.OptimalDifficulty, diffSrc = r.difficulty(ctx, profile, pc)
		return nil
	})
	g.Go(func() error {
		est.Engagement, engageSrc = r.engagement(ctx, profile, pc)
		return nil
	})
	_ = g.Wait()

	switch {
	case churnSrc == SourceOracle && diffSrc == SourceOracle && engageSrc == SourceOracle:
		est.Source = SourceOracle
	case churnSrc == SourceHeuristic && diffSrc == SourceHeuristic && engageSrc == SourceHeuristic:
		est.Source = SourceHeuristic
	default:
		est.Source = SourceMixed
	}
	return est
}

func (r *Resilient) churn(ctx context.Context, profile model.UserProfile) (float64, string) {
	return r.try(ctx, "churn",
		func(ctx context.Context) (float64, error) { return r.primary.PredictChurn(ctx, profile) },
		func() (float64, error) { return r.fallback.PredictChurn(ctx, profile) })
}

func (r *Resilient) difficulty(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, string) {
	return r.try(ctx, "difficulty",
		func(ctx context.Context) (float64, error) { return r.primary.OptimizeDifficulty(ctx, profile, pc) },
		func() (float64, error) { return r.fallback.OptimizeDifficulty(ctx, profile, pc) })
}

func (r *Resilient) engagement(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, string) {
	return r.try(ctx, "engagement",
		func(ctx context.Context) (float64, error) { return r.primary.ForecastEngagement(ctx, profile, pc) },
		func() (float64, error) { return r.fallback.ForecastEngagement(ctx, profile, pc) })
}

func (r *Resilient) try(ctx context.Context, call string, primary func(context.Context) (float64, error), fallback func() (float64, error)) (float64, string) {
	if r.primary != nil {
		cctx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		v, err := primary(cctx)
		if err == nil && v >= 0 && v <= 1 {
			return v, SourceOracle
		}
		if err == nil {
			err = ErrInvalidEstimate
		}
		metrics.OracleFallbacks.WithLabelValues(call).Inc()
		r.logger.Debug().Err(err).Str("call", call).Msg("oracle unavailable, using heuristic")
	}
	v, _ := fallback()
	return v, SourceHeuristic
}
