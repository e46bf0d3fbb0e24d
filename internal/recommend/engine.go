// Package recommend plans what a player should do next: an immediate pick,
// a short session plan and temporary difficulty moves, ranked into one list,
// plus informational long-term goals.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"brainarcade/internal/catalog"
	"brainarcade/internal/model"

	"github.com/rs/zerolog"
)

// Input is everything one Generate call reads. It is gathered by the caller.
type Input struct {
	Profile        model.UserProfile
	Context        model.PlayContext
	Estimates      model.Estimates
	Games          []catalog.Game
	RecentlyPlayed map[string]bool
	Now            time.Time
	TuningVersion  string
}

// Engine is stateless and safe for concurrent use.
type Engine struct {
	params Params
	logger zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(p Params, logger zerolog.Logger) *Engine {
	return &Engine{
		params: p,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
}

// plan accumulates the lists and the reasoning trail for one call.
type plan struct {
	p         Params
	profile   model.UserProfile
	situation model.SituationalContext
	est       model.Estimates
	games     []catalog.Game
	reasoning []string
}

func (pl *plan) note(format string, args ...interface{}) {
	pl.reasoning = append(pl.reasoning, fmt.Sprintf(format, args...))
}

// Generate builds the ranked recommendation set. It never fails.
func (e *Engine) Generate(in Input) model.RecommendationSet {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	profile := in.Profile.WithDefaults()
	pl := &plan{
		p:         e.params,
		profile:   profile,
		situation: DeriveSituation(in.Context, profile, in.Now),
		est:       in.Estimates,
		games:     in.Games,
	}
	pl.note("estimates from %s: churn %.2f, optimal difficulty %.2f, engagement %.2f",
		orDefault(in.Estimates.Source, "heuristic"), pl.est.Churn, pl.est.OptimalDifficulty, pl.est.Engagement)

	immediate := pl.immediate()
	session := pl.session()
	adaptive := pl.adaptive()
	longTerm := pl.longTerm()

	candidates := make([]model.Recommendation, 0, len(immediate)+len(session)+len(adaptive))
	candidates = append(candidates, immediate...)
	candidates = append(candidates, session...)
	candidates = append(candidates, adaptive...)

	recent := recentSet(profile, in.RecentlyPlayed)
	for i := range candidates {
		candidates[i].FinalScore = Score(candidates[i], profile, recent, e.params)
	}
	Rank(candidates)
	top := candidates
	if len(top) > e.params.MaxRecommendations {
		top = top[:e.params.MaxRecommendations]
	}
	for i := range longTerm {
		longTerm[i].FinalScore = longTerm[i].Priority
	}

	quality := DataQuality(profile, e.params)
	stability := Stability(top, e.params)
	confidence := (quality + stability) / 2
	pl.note("%d candidates ranked, top %d returned; data quality %.2f, stability %.2f",
		len(candidates), len(top), quality, stability)

	e.logger.Debug().
		Str("user_id", profile.UserID).
		Int("candidates", len(candidates)).
		Int("returned", len(top)).
		Float64("confidence", confidence).
		Msg("recommendations generated")

	return model.RecommendationSet{
		Recommendations: top,
		LongTerm:        longTerm,
		Confidence:      confidence,
		Reasoning:       pl.reasoning,
		Metadata: model.RecommendationMetadata{
			UserID:         profile.UserID,
			GeneratedAt:    in.Now,
			TuningVersion:  in.TuningVersion,
			EstimateSource: orDefault(in.Estimates.Source, "heuristic"),
			Estimates:      in.Estimates,
			Situation:      pl.situation,
			CandidateCount: len(candidates),
			DataQuality:    quality,
			Stability:      stability,
		},
	}
}

func (pl *plan) immediate() []model.Recommendation {
	var out []model.Recommendation
	p, prof := pl.p, pl.profile

	if pl.est.Churn > p.ChurnThreshold {
		g, ok := pl.pick(func(g catalog.Game) bool { return g.EstimatedMinutes <= p.ChurnMaxMinutes }, pl.byComfort)
		if !ok {
			g, ok = pl.pick(nil, byShortest)
		}
		r := model.Recommendation{
			Type:                     model.RecChurnPrevention,
			Priority:                 p.ChurnPriority,
			Reason:                   "A quick, easy win to welcome you back",
			EstimatedDurationMinutes: p.ChurnMaxMinutes,
			Difficulty:               p.ChurnDifficulty,
		}
		if ok {
			withGame(&r, g)
			r.EstimatedDurationMinutes = math.Min(g.EstimatedMinutes, p.ChurnMaxMinutes)
		}
		out = append(out, r)
		pl.note("churn risk %.2f above %.2f: quick win first", pl.est.Churn, p.ChurnThreshold)
	}

	if prof.Motivation.CurrentStreakDays > 0 && prof.Behavior.DaysSinceLastSession >= 1 {
		if g, ok := pl.pick(nil, pl.byFamiliarity); ok {
			r := model.Recommendation{
				Type:       model.RecStreakMaintenance,
				Priority:   p.StreakPriority,
				Reason:     fmt.Sprintf("Keep your %d-day streak going with a favorite", prof.Motivation.CurrentStreakDays),
				Difficulty: clampUnit(prof.Motivation.PreferredDifficulty - p.StreakEase),
			}
			withGame(&r, g)
			out = append(out, r)
			pl.note("%d-day streak at risk after %d days away", prof.Motivation.CurrentStreakDays, prof.Behavior.DaysSinceLastSession)
		}
	}

	if pl.situation.AvailableMinutes <= p.MicroSessionMinutes {
		avail := pl.situation.AvailableMinutes
		g, ok := pl.pick(func(g catalog.Game) bool { return g.EstimatedMinutes <= avail }, byShortest)
		if !ok {
			g, ok = pl.pick(nil, byShortest)
		}
		r := model.Recommendation{
			Type:                     model.RecMicroSession,
			Priority:                 p.MicroPriority,
			Reason:                   fmt.Sprintf("Fits in the %.0f minutes you have", avail),
			EstimatedDurationMinutes: avail,
			Difficulty:               clampUnit(pl.est.OptimalDifficulty),
		}
		if ok {
			withGame(&r, g)
			r.EstimatedDurationMinutes = math.Min(g.EstimatedMinutes, avail)
		}
		out = append(out, r)
		pl.note("only %.0f minutes available: micro-session", avail)
	}
	return out
}

func (pl *plan) session() []model.Recommendation {
	var out []model.Recommendation
	p := pl.p
	used := map[string]bool{}

	if pl.situation.SessionType == model.SessionTypeFull {
		g, ok := pl.pick(func(g catalog.Game) bool {
			return pl.profile.IsFavoriteCategory(g.Category) || g.EnergyLevel == model.LevelLow
		}, pl.byComfort)
		if ok {
			r := model.Recommendation{
				Type:       model.RecWarmUp,
				Priority:   p.WarmUpPriority,
				Reason:     "Warm up with something familiar",
				Difficulty: clampUnit(pl.est.OptimalDifficulty - p.WarmUpEase),
			}
			withGame(&r, g)
			used[g.ID] = true
			out = append(out, r)
		}
	}

	skill, skillLevel := weakestSkill(pl.profile)
	g, ok := pl.pick(func(g catalog.Game) bool {
		return !used[g.ID] && (skill == "" || trains(g, skill))
	}, pl.byNovelty)
	if !ok {
		g, ok = pl.pick(func(g catalog.Game) bool { return !used[g.ID] }, pl.byNovelty)
	}
	if ok {
		target := skill
		if target == "" {
			target = g.Category
		}
		r := model.Recommendation{
			Type:       model.RecSkillBuilding,
			Priority:   p.SkillBuildingPriority,
			Reason:     fmt.Sprintf("Build up %s", target),
			Difficulty: clampUnit(pl.est.OptimalDifficulty),
		}
		withGame(&r, g)
		used[g.ID] = true
		out = append(out, r)
		if skill != "" {
			pl.note("weakest skill %s at %.2f", skill, skillLevel)
		}
	}

	if pl.est.Engagement > p.ChallengeEngagement {
		strong := strongestCategory(pl.profile)
		g, ok := pl.pick(func(g catalog.Game) bool { return !used[g.ID] && (strong == "" || g.Category == strong) }, pl.byFamiliarity)
		if !ok {
			g, ok = pl.pick(func(g catalog.Game) bool { return !used[g.ID] }, pl.byFamiliarity)
		}
		if ok {
			r := model.Recommendation{
				Type:       model.RecChallenge,
				Priority:   p.ChallengePriority,
				Reason:     "You're on a roll: try a tougher round",
				Difficulty: clampUnit(pl.est.OptimalDifficulty + p.ChallengeBoost),
			}
			withGame(&r, g)
			out = append(out, r)
		}
	} else {
		pl.note("engagement forecast %.2f not above %.2f: no challenge step", pl.est.Engagement, p.ChallengeEngagement)
	}

	if len(out) > p.MaxSessionSteps {
		out = out[:p.MaxSessionSteps]
	}
	return out
}

func (pl *plan) adaptive() []model.Recommendation {
	var out []model.Recommendation
	p, prof := pl.p, pl.profile
	recent, hist := prof.Performance.RecentAccuracy, prof.Performance.HistoricalAccuracy
	preferred := prof.Motivation.PreferredDifficulty

	last, haveLast := pl.lastPlayed()
	switch {
	case recent < p.DecreaseRatio*hist:
		r := model.Recommendation{
			Type:            model.RecDifficultyDecrease,
			Priority:        p.DecreasePriority,
			Reason:          "Recent results dipped: ease off for a bit",
			DifficultyDelta: p.DecreaseDelta,
			Difficulty:      clampUnit(preferred + p.DecreaseDelta),
		}
		if haveLast {
			withGame(&r, last)
		}
		out = append(out, r)
		pl.note("recent accuracy %.2f below %.0f%% of historical %.2f", recent, p.DecreaseRatio*100, hist)
	case recent > p.IncreaseRatio*hist:
		steps := make([]float64, p.IncreaseSteps)
		for i := range steps {
			steps[i] = p.IncreaseDelta / float64(p.IncreaseSteps)
		}
		r := model.Recommendation{
			Type:            model.RecDifficultyIncrease,
			Priority:        p.IncreasePriority,
			Reason:          "You're improving fast: step the difficulty up gradually",
			DifficultyDelta: p.IncreaseDelta,
			Steps:           steps,
			Difficulty:      clampUnit(preferred + p.IncreaseDelta),
		}
		if haveLast {
			withGame(&r, last)
		}
		out = append(out, r)
		pl.note("recent accuracy %.2f above %.0f%% of historical %.2f", recent, p.IncreaseRatio*100, hist)
	}

	if prof.Behavior.CurrentSessionMinutes > p.BreakRatio*prof.Behavior.AverageSessionMinutes {
		g, ok := pl.pick(func(g catalog.Game) bool { return g.EnergyLevel == model.LevelLow }, byShortest)
		r := model.Recommendation{
			Type:       model.RecBreak,
			Priority:   p.BreakPriority,
			Reason:     "Long session: take it easy with something light",
			Difficulty: clampUnit(preferred - p.WarmUpEase),
		}
		if ok {
			withGame(&r, g)
		}
		out = append(out, r)
		pl.note("session at %.0f minutes, average is %.0f", prof.Behavior.CurrentSessionMinutes, prof.Behavior.AverageSessionMinutes)
	}
	return out
}

func (pl *plan) longTerm() []model.Recommendation {
	out := []model.Recommendation{}
	p, prof := pl.p, pl.profile

	if prof.Progress.NextMilestone != "" {
		out = append(out, model.Recommendation{
			Type:     model.RecMilestone,
			Priority: p.MilestonePriority,
			Reason:   fmt.Sprintf("Next milestone: %s", prof.Progress.NextMilestone),
		})
	} else if prof.Progress.NextLevelXP > prof.Progress.XP {
		out = append(out, model.Recommendation{
			Type:     model.RecMilestone,
			Priority: p.MilestonePriority,
			Reason:   fmt.Sprintf("%d XP to level %d", prof.Progress.NextLevelXP-prof.Progress.XP, prof.Progress.Level+1),
		})
	}

	if goal := prof.Motivation.WeeklyGoalMinutes; goal > 0 && prof.Motivation.WeeklyMinutesPlayed < goal {
		left := goal - prof.Motivation.WeeklyMinutesPlayed
		out = append(out, model.Recommendation{
			Type:                     model.RecWeeklyGoal,
			Priority:                 p.WeeklyGoalPriority,
			Reason:                   fmt.Sprintf("%.0f minutes left to hit this week's goal", left),
			EstimatedDurationMinutes: left,
		})
	}

	var unplayed []catalog.Game
	for _, g := range pl.games {
		if prof.Behavior.GamePlayCounts[g.ID] == 0 {
			unplayed = append(unplayed, g)
		}
	}
	sort.SliceStable(unplayed, func(i, j int) bool {
		fi, fj := prof.IsFavoriteCategory(unplayed[i].Category), prof.IsFavoriteCategory(unplayed[j].Category)
		if fi != fj {
			return fi
		}
		return unplayed[i].ID < unplayed[j].ID
	})
	for i, g := range unplayed {
		if i >= p.MaxNewGames {
			break
		}
		r := model.Recommendation{
			Type:       model.RecNewGame,
			Priority:   p.NewGamePriority,
			Reason:     fmt.Sprintf("Try something new: %s", orDefault(g.Name, g.ID)),
			Difficulty: clampUnit(prof.CategorySkill(g.Category)),
		}
		withGame(&r, g)
		out = append(out, r)
	}
	return out
}

// pick returns the first game passing keep under the given order.
func (pl *plan) pick(keep func(catalog.Game) bool, less func(a, b catalog.Game) bool) (catalog.Game, bool) {
	var best catalog.Game
	found := false
	for _, g := range pl.games {
		if keep != nil && !keep(g) {
			continue
		}
		if !found || less(g, best) {
			best, found = g, true
		}
	}
	return best, found
}

// byComfort prefers favorite categories, then the most played, then the shortest.
func (pl *plan) byComfort(a, b catalog.Game) bool {
	fa, fb := pl.profile.IsFavoriteCategory(a.Category), pl.profile.IsFavoriteCategory(b.Category)
	if fa != fb {
		return fa
	}
	ca, cb := pl.profile.Behavior.GamePlayCounts[a.ID], pl.profile.Behavior.GamePlayCounts[b.ID]
	if ca != cb {
		return ca > cb
	}
	return byShortest(a, b)
}

func (pl *plan) byFamiliarity(a, b catalog.Game) bool {
	ca, cb := pl.profile.Behavior.GamePlayCounts[a.ID], pl.profile.Behavior.GamePlayCounts[b.ID]
	if ca != cb {
		return ca > cb
	}
	return pl.byFavorite(a, b)
}

func (pl *plan) byNovelty(a, b catalog.Game) bool {
	ca, cb := pl.profile.Behavior.GamePlayCounts[a.ID], pl.profile.Behavior.GamePlayCounts[b.ID]
	if ca != cb {
		return ca < cb
	}
	return a.ID < b.ID
}

func (pl *plan) byFavorite(a, b catalog.Game) bool {
	fa, fb := pl.profile.IsFavoriteCategory(a.Category), pl.profile.IsFavoriteCategory(b.Category)
	if fa != fb {
		return fa
	}
	return a.ID < b.ID
}

func byShortest(a, b catalog.Game) bool {
	if a.EstimatedMinutes != b.EstimatedMinutes {
		return a.EstimatedMinutes < b.EstimatedMinutes
	}
	return a.ID < b.ID
}

func (pl *plan) lastPlayed() (catalog.Game, bool) {
	for _, id := range pl.profile.Behavior.RecentGames {
		for _, g := range pl.games {
			if g.ID == id {
				return g, true
			}
		}
	}
	return catalog.Game{}, false
}

// weakestSkill returns the lowest-rated skill, or the lowest category when
// no skill levels are known. Ties break by name.
func weakestSkill(p model.UserProfile) (string, float64) {
	name, level := "", math.Inf(1)
	for s, v := range p.Performance.SkillLevels {
		if v < level || (v == level && s < name) {
			name, level = s, v
		}
	}
	if name != "" {
		return name, level
	}
	for c, v := range p.Performance.CategorySkills {
		if v < level || (v == level && c < name) {
			name, level = c, v
		}
	}
	if name == "" {
		return "", 0
	}
	return name, level
}

func strongestCategory(p model.UserProfile) string {
	name, level := "", math.Inf(-1)
	for c, v := range p.Performance.CategorySkills {
		if v > level || (v == level && c < name) {
			name, level = c, v
		}
	}
	return name
}

// trains reports whether g exercises skill, by skill tag or by category.
func trains(g catalog.Game, skill string) bool {
	if g.Category == skill {
		return true
	}
	for _, s := range g.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

func withGame(r *model.Recommendation, g catalog.Game) {
	r.GameID = g.ID
	r.Category = g.Category
	if r.EstimatedDurationMinutes == 0 {
		r.EstimatedDurationMinutes = g.EstimatedMinutes
	}
}

func recentSet(p model.UserProfile, played map[string]bool) map[string]bool {
	out := make(map[string]bool, len(played)+len(p.Behavior.RecentGames))
	for id, ok := range played {
		if ok {
			out[id] = true
		}
	}
	for _, id := range p.Behavior.RecentGames {
		out[id] = true
	}
	return out
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
