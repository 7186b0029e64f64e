// Package metrics provides a small instrumentation surface with a no-op
// default and a Prometheus-backed implementation.
package metrics

import "time"

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	IncSearchTotal(strategy string, success bool)
	ObserveSearchSeconds(strategy string, success bool, seconds float64)
	IncRequestTotal(route string, status int)
}

type noopRecorder struct{}

func (noopRecorder) IncSearchTotal(string, bool)                {}
func (noopRecorder) ObserveSearchSeconds(string, bool, float64) {}
func (noopRecorder) IncRequestTotal(string, int)                {}

// Noop returns a Recorder that discards everything.
func Noop() Recorder { return noopRecorder{} }

// OrNoop returns r, or a no-op recorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop()
	}
	return r
}

// TimeSearch starts a timer; the returned func records the outcome under the
// strategy chosen by the time the search finished.
func TimeSearch(r Recorder) func(strategy string, success bool) {
	start := time.Now()
	return func(strategy string, success bool) {
		r.IncSearchTotal(strategy, success)
		r.ObserveSearchSeconds(strategy, success, time.Since(start).Seconds())
	}
}
