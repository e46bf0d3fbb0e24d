// Package telemetry buffers per-session gameplay events and derives
// emotional-state indicators from them.
package telemetry

import (
	"time"

	"brainarcade/internal/model"
)

// ErrorTag is one tagged mistake with the time it was seen.
type ErrorTag struct {
	Type string
	At   time.Time
}

// Window is a bounded rolling buffer of recent measurements for one session.
// It is not safe for concurrent use.
type Window struct {
	capacity int
	lookback time.Duration

	responseTimes []float64
	correctness   []bool
	pauses        []float64
	errors        []ErrorTag

	consecutiveCorrect int
	consecutiveWrong   int
}

// NewWindow creates an empty window. Non-positive capacity or lookback
// fall back to the default params.
func NewWindow(capacity int, lookback time.Duration) *Window {
	def := DefaultParams()
	if capacity <= 0 {
		capacity = def.Capacity
	}
	if lookback <= 0 {
		lookback = def.ErrorLookback
	}
	return &Window{
		capacity:      capacity,
		lookback:      lookback,
		responseTimes: make([]float64, 0, capacity),
		correctness:   make([]bool, 0, capacity),
		pauses:        make([]float64, 0, capacity),
	}
}

// Record feeds one event into the window. Absent measurements are skipped.
// The event's own timestamp is used for the error log when set, now otherwise.
func (w *Window) Record(e model.TelemetryEvent, now time.Time) {
	if e.HasResponseTime() {
		w.responseTimes = pushFloat(w.responseTimes, *e.ResponseTimeMs, w.capacity)
	}
	if e.Correct != nil {
		w.correctness = append(w.correctness, *e.Correct)
		if len(w.correctness) > w.capacity {
			w.correctness = w.correctness[len(w.correctness)-w.capacity:]
		}
		if *e.Correct {
			w.consecutiveCorrect++
			w.consecutiveWrong = 0
		} else {
			w.consecutiveWrong++
			w.consecutiveCorrect = 0
		}
	}
	if e.PauseDurationMs != nil && *e.PauseDurationMs >= 0 {
		w.pauses = pushFloat(w.pauses, *e.PauseDurationMs, w.capacity)
	}

	at := now
	if !e.OccurredAt.IsZero() {
		at = e.OccurredAt
	}
	if e.ErrorType != "" {
		w.errors = append(w.errors, ErrorTag{Type: e.ErrorType, At: at})
	}
	w.pruneErrors(at)
}

func (w *Window) pruneErrors(now time.Time) {
	cutoff := now.Add(-w.lookback)
	i := 0
	for i < len(w.errors) && w.errors[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.errors = append(w.errors[:0], w.errors[i:]...)
	}
}

func pushFloat(s []float64, v float64, capacity int) []float64 {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

// Reset empties the window, keeping its capacity and lookback.
func (w *Window) Reset() {
	w.responseTimes = w.responseTimes[:0]
	w.correctness = w.correctness[:0]
	w.pauses = w.pauses[:0]
	w.errors = nil
	w.consecutiveCorrect = 0
	w.consecutiveWrong = 0
}

// Len is the number of correctness samples held.
func (w *Window) Len() int { return len(w.correctness) }

// Capacity is the per-series bound.
func (w *Window) Capacity() int { return w.capacity }

// ConsecutiveCorrect is the current run of correct answers.
func (w *Window) ConsecutiveCorrect() int { return w.consecutiveCorrect }

// ConsecutiveWrong is the current run of wrong answers.
func (w *Window) ConsecutiveWrong() int { return w.consecutiveWrong }

// ResponseTimes returns the last n response times, oldest first (all when n <= 0).
func (w *Window) ResponseTimes(n int) []float64 { return tailFloat(w.responseTimes, n) }

// Pauses returns the last n pause durations.
func (w *Window) Pauses(n int) []float64 { return tailFloat(w.pauses, n) }

// Correctness returns the last n correctness values.
func (w *Window) Correctness(n int) []bool {
	src := w.correctness
	if n > 0 && len(src) > n {
		src = src[len(src)-n:]
	}
	return append([]bool(nil), src...)
}

// Errors returns the error tags still inside the lookback.
func (w *Window) Errors() []ErrorTag {
	return append([]ErrorTag(nil), w.errors...)
}

func tailFloat(src []float64, n int) []float64 {
	if n > 0 && len(src) > n {
		src = src[len(src)-n:]
	}
	return append([]float64(nil), src...)
}
