package events

import (
	"encoding/json"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
)

// FailureCounter counts failed deliveries per sink.
type FailureCounter interface {
	IncSinkFailure(sink string)
}

// reporter logs and counts delivery failures for one named sink.
type reporter struct {
	name     string
	logger   *logging.Logger
	failures FailureCounter
}

func newReporter(name string, logger *logging.Logger, failures FailureCounter) reporter {
	if logger == nil {
		logger = logging.Discard()
	}
	return reporter{
		name:     name,
		logger:   logger.With("component", "events", "sink", name),
		failures: failures,
	}
}

func (r reporter) fail(e audit.Entry, err error) {
	r.logger.Warn("audit event delivery failed",
		"gateway_id", e.GatewayID,
		"action", string(e.Action),
		"entry_id", e.ID,
		"error", err,
	)
	if r.failures != nil {
		r.failures.IncSinkFailure(r.name)
	}
}

// encode renders an entry as the JSON payload shared by the message sinks.
func encode(e audit.Entry) ([]byte, error) {
	return json.Marshal(e)
}
