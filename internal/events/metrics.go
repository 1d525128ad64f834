package events

import (
	"context"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
)

// AuditCounter is the subset of *metrics.Metrics used by MetricsSink.
type AuditCounter interface {
	IncAuditEntry(action string)
}

// MetricsSink counts entries per action.
type MetricsSink struct {
	counter AuditCounter
}

// NewMetricsSink creates a sink incrementing counter.
func NewMetricsSink(counter AuditCounter) *MetricsSink {
	return &MetricsSink{counter: counter}
}

// Publish implements audit.Sink.
func (s *MetricsSink) Publish(_ context.Context, e audit.Entry) {
	s.counter.IncAuditEntry(string(e.Action))
}
