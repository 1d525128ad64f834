package events

import (
	"context"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
)

// PointWriter is the subset of *influxdb.Client used by InfluxSink.
type PointWriter interface {
	WriteAuditEvent(gatewayID, action string, entryID int64, at time.Time)
}

// InfluxSink records each entry as a time-series point.
// Writes are batched by the client; failures surface through its error callback.
type InfluxSink struct {
	writer PointWriter
}

// NewInfluxSink creates a sink writing through w.
func NewInfluxSink(w PointWriter) *InfluxSink {
	return &InfluxSink{writer: w}
}

// Publish implements audit.Sink.
func (s *InfluxSink) Publish(_ context.Context, e audit.Entry) {
	s.writer.WriteAuditEvent(e.GatewayID, string(e.Action), e.ID, e.CreatedAt)
}
