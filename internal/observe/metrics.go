// Package observe holds the OpenTelemetry instruments and tracing helpers
// used by the processing pipeline.
//
// Metrics go through the OTel Metrics API. InitProvider bridges them to the
// Prometheus registry scraped on /metrics. Tests build their own Metrics with
// NewMetrics and a ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/heartmarshall/voicedoc-backend"

// Stage names recorded on StageDuration.
const (
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StageCommit     = "commit"
)

// Job outcomes recorded on Jobs.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
	OutcomeAbandoned = "abandoned"
)

// Metrics holds the pipeline instruments. Safe for concurrent use.
type Metrics struct {
	// StageDuration is per pipeline stage, attribute "stage".
	StageDuration metric.Float64Histogram
	// JobDuration covers claim to terminal outcome.
	JobDuration metric.Float64Histogram
	// Jobs counts terminal outcomes, attribute "outcome".
	Jobs metric.Int64Counter
	// QueueDepth is the number of jobs waiting in the scheduler.
	QueueDepth metric.Int64UpDownCounter
	// ActiveJobs is the number of jobs held by workers.
	ActiveJobs metric.Int64UpDownCounter
}

// stage latencies range from sub-second LLM calls to multi-minute
// transcriptions of long recordings.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("voicedoc.pipeline.stage.duration",
		metric.WithDescription("Latency of one pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.JobDuration, err = m.Float64Histogram("voicedoc.pipeline.job.duration",
		metric.WithDescription("Latency of one job from claim to outcome."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Jobs, err = m.Int64Counter("voicedoc.pipeline.jobs",
		metric.WithDescription("Jobs by terminal outcome."),
	); err != nil {
		return nil, err
	}
	if met.QueueDepth, err = m.Int64UpDownCounter("voicedoc.pipeline.queue.depth",
		metric.WithDescription("Jobs waiting for a worker."),
	); err != nil {
		return nil, err
	}
	if met.ActiveJobs, err = m.Int64UpDownCounter("voicedoc.pipeline.active_jobs",
		metric.WithDescription("Jobs currently held by workers."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// ObserveStage records the time elapsed since start for stage.
func (m *Metrics) ObserveStage(ctx context.Context, stage string, start time.Time) {
	m.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordOutcome counts a terminal job outcome and, when start is non-zero,
// its duration.
func (m *Metrics) RecordOutcome(ctx context.Context, outcome string, start time.Time) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.Jobs.Add(ctx, 1, attrs)
	if !start.IsZero() {
		m.JobDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
