package telemetry

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Analysis is the derived state of a window at one point in time.
type Analysis struct {
	RecentAccuracy        float64 `json:"recentAccuracy"`
	AverageResponseTimeMs float64 `json:"averageResponseTimeMs"`
	Consistency           float64 `json:"consistency"`
	Frustration           float64 `json:"frustration"`
	Boredom               float64 `json:"boredom"`
	Flow                  float64 `json:"flow"`
	Samples               int     `json:"samples"`
	RecentErrors          int     `json:"recentErrors"`
}

// Analyze derives all indicators from w. It does not modify w.
func Analyze(w *Window, p Params) Analysis {
	acc := RecentAccuracy(w, p)
	cons := Consistency(w, p)
	return Analysis{
		RecentAccuracy:        acc,
		AverageResponseTimeMs: AverageResponseTime(w, p),
		Consistency:           cons,
		Frustration:           Frustration(w, p),
		Boredom:               Boredom(w, p),
		Flow:                  Flow(acc, cons, p),
		Samples:               w.Len(),
		RecentErrors:          len(w.errors),
	}
}

// RecentAccuracy is the share of correct answers over the analysis window.
func RecentAccuracy(w *Window, p Params) float64 {
	recent := w.Correctness(p.AnalysisWindow)
	if len(recent) == 0 {
		return p.DefaultAccuracy
	}
	correct := 0
	for _, c := range recent {
		if c {
			correct++
		}
	}
	return float64(correct) / float64(len(recent))
}

// AverageResponseTime is the mean response time in ms over the analysis window.
func AverageResponseTime(w *Window, p Params) float64 {
	mean, err := stats.Mean(w.ResponseTimes(p.AnalysisWindow))
	if err != nil {
		return p.DefaultResponseTimeMs
	}
	return mean
}

// Consistency is 1 - coefficient of variation of recent response times.
func Consistency(w *Window, p Params) float64 {
	recent := stats.Float64Data(w.ResponseTimes(p.AnalysisWindow))
	if len(recent) < p.MinConsistencySamples {
		return p.DefaultConsistency
	}
	mean, err := stats.Mean(recent)
	if err != nil || mean <= 0 {
		return p.DefaultConsistency
	}
	sd, err := stats.StandardDeviationPopulation(recent)
	if err != nil {
		return p.DefaultConsistency
	}
	return clamp01(1 - sd/mean)
}

// Frustration scores wrong-answer streaks and long pauses within the analysis window.
func Frustration(w *Window, p Params) float64 {
	score := 0.0
	if w.consecutiveWrong >= p.WrongStreak {
		score += p.WrongStreakWeight
	}
	if w.consecutiveWrong >= p.SevereWrongStreak {
		score += p.SevereStreakWeight
	}
	long := 0
	for _, ms := range w.Pauses(p.AnalysisWindow) {
		if ms > p.LongPauseMs {
			long++
		}
	}
	score += math.Min(float64(long)*p.LongPauseWeight, p.LongPauseCap)
	return clamp01(score)
}

// Boredom scores very fast answers within the analysis window and long correct streaks.
func Boredom(w *Window, p Params) float64 {
	fast := 0
	for _, ms := range w.ResponseTimes(p.AnalysisWindow) {
		if ms < p.FastResponseMs {
			fast++
		}
	}
	score := math.Min(float64(fast)*p.FastResponseWeight, p.FastResponseCap)
	if w.consecutiveCorrect >= p.CorrectStreak {
		score += p.CorrectStreakWeight
	}
	return clamp01(score)
}

// Flow peaks when accuracy sits at the target and timing is steady.
func Flow(accuracy, consistency float64, p Params) float64 {
	accuracyFit := 1 - math.Abs(accuracy-p.FlowTargetAccuracy)/p.FlowTolerance
	return clamp01((accuracyFit + consistency) / 2)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
