package events

import (
	"context"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/mqtt"
)

// MQTTPublisher is the subset of *mqtt.Client used by MQTTSink.
type MQTTPublisher interface {
	PublishEvent(topic string, payload []byte) error
	Topics() mqtt.Topics
}

// MQTTSink publishes each entry to the gateway's event topic.
type MQTTSink struct {
	client MQTTPublisher
	report reporter
}

// NewMQTTSink creates a sink publishing through client.
func NewMQTTSink(client MQTTPublisher, logger *logging.Logger, failures FailureCounter) *MQTTSink {
	return &MQTTSink{
		client: client,
		report: newReporter("mqtt", logger, failures),
	}
}

// Publish implements audit.Sink.
func (s *MQTTSink) Publish(_ context.Context, e audit.Entry) {
	payload, err := encode(e)
	if err != nil {
		s.report.fail(e, err)
		return
	}
	topic := s.client.Topics().GatewayEvent(e.GatewayID, string(e.Action))
	if err := s.client.PublishEvent(topic, payload); err != nil {
		s.report.fail(e, err)
	}
}
