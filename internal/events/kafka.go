package events

import (
	"context"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
)

// KafkaPublisher is the subset of *kafka.Producer used by KafkaSink.
type KafkaPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// KafkaSink writes each entry to the audit topic keyed by gateway id.
type KafkaSink struct {
	producer KafkaPublisher
	report   reporter
}

// NewKafkaSink creates a sink writing through producer.
func NewKafkaSink(producer KafkaPublisher, logger *logging.Logger, failures FailureCounter) *KafkaSink {
	return &KafkaSink{
		producer: producer,
		report:   newReporter("kafka", logger, failures),
	}
}

// Publish implements audit.Sink.
func (s *KafkaSink) Publish(ctx context.Context, e audit.Entry) {
	payload, err := encode(e)
	if err != nil {
		s.report.fail(e, err)
		return
	}
	if err := s.producer.Publish(ctx, []byte(e.GatewayID), payload); err != nil {
		s.report.fail(e, err)
	}
}
