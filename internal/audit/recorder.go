package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidAction is returned when Record is called with an unknown action.
var ErrInvalidAction = errors.New("invalid audit action")

// Recorder persists audit entries and notifies sinks.
type Recorder struct {
	repo  Repository
	sinks []Sink
	now   func() time.Time
}

// NewRecorder creates a recorder backed by repo.
// Sinks are notified in the given order after each successful insert.
func NewRecorder(repo Repository, sinks ...Sink) *Recorder {
	return &Recorder{
		repo:  repo,
		sinks: sinks,
		now:   time.Now,
	}
}

// Record appends one entry to the gateway's trail.
//
// A storage failure is returned to the caller; the entry is never dropped
// silently. Sinks only see entries that were stored and cannot fail the call.
func (r *Recorder) Record(ctx context.Context, gatewayID string, action Action, details Details) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	entry := &Entry{
		GatewayID: gatewayID,
		Action:    action,
		Details:   details,
		CreatedAt: r.now().UTC(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("recording %s for gateway %s: %w", action, gatewayID, err)
	}

	for _, s := range r.sinks {
		s.Publish(ctx, *entry)
	}
	return nil
}
