package progress

import (
	"context"

	"go.uber.org/zap"

	"github.com/curatorhq/curator/internal/metrics"
)

// LogSink emits structured logs for each extraction event. Useful during
// development or when no metrics backend is scraped.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a zap logger to the Sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event with structured fields.
func (s *LogSink) Consume(_ context.Context, evt Event) error {
	s.logger.Info("extraction progress",
		zap.String("stage", string(evt.Stage)),
		zap.String("field", evt.Field),
		zap.String("marketplace", evt.Marketplace),
		zap.String("url", evt.URL),
		zap.Duration("dur", evt.Dur),
		zap.String("note", evt.Note),
	)
	return nil
}

// MetricsSink translates events into Prometheus counters.
type MetricsSink struct{}

// NewMetricsSink returns a sink backed by the metrics package collectors.
func NewMetricsSink() *MetricsSink {
	metrics.Init()
	return &MetricsSink{}
}

// Consume records completed and degraded extractions.
func (MetricsSink) Consume(_ context.Context, evt Event) error {
	switch evt.Stage {
	case StageFetchDone:
		metrics.ObserveExtraction(evt.Field, evt.Marketplace, metrics.OutcomeOK)
	case StageDegraded:
		metrics.ObserveExtraction(evt.Field, evt.Marketplace, metrics.OutcomeDegraded)
	}
	return nil
}
