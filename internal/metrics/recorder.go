// Package metrics provides observability hooks for page generation.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection is optional and carries no overhead
// when disabled.
package metrics

import "time"

// ResultLabel enumerates generation result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultSkipped ResultLabel = "skipped"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for generation metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveGenerationDuration(d time.Duration)
	IncPageResult(result ResultLabel)
	IncOverloadsSplit(n int)
	IncParseFailure(module string)
	SetObjectCount(module string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveGenerationDuration(time.Duration) {}
func (NoopRecorder) IncPageResult(ResultLabel)               {}
func (NoopRecorder) IncOverloadsSplit(int)                   {}
func (NoopRecorder) IncParseFailure(string)                  {}
func (NoopRecorder) SetObjectCount(string, int)              {}
