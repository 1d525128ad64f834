// Package audit records the append-only trail of gateway lifecycle events
// (the gateway_logs table) and fans each stored entry out to event sinks.
package audit

import (
	"context"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// Action is the kind of gateway lifecycle event.
type Action string

// Gateway lifecycle actions.
const (
	ActionCreated        Action = "CREATED"
	ActionUpdated        Action = "UPDATED"
	ActionDeviceAttached Action = "DEVICE_ATTACHED"
	ActionDeviceDetached Action = "DEVICE_DETACHED"
	ActionDeleted        Action = "DELETED"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreated, ActionUpdated, ActionDeviceAttached, ActionDeviceDetached, ActionDeleted:
		return true
	}
	return false
}

// Details is the free-form JSON object stored with an entry.
type Details map[string]any

// Entry is one row of a gateway's audit trail.
type Entry struct {
	ID        int64     `json:"id"`
	GatewayID string    `json:"gatewayId"`
	Action    Action    `json:"action"`
	Details   Details   `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListResult is one page of a gateway's trail plus the total entry count.
type ListResult struct {
	Entries []Entry
	Total   int
}

// Repository stores audit entries.
type Repository interface {
	// Append inserts e, filling in its ID and, when zero, its CreatedAt.
	Append(ctx context.Context, e *Entry) error

	// ListByGateway returns a gateway's entries, newest first.
	ListByGateway(ctx context.Context, gatewayID string, q pagination.Query) (*ListResult, error)
}

// Sink receives every entry after it has been stored.
// Publish must not block for long and reports its own failures.
type Sink interface {
	Publish(ctx context.Context, e Entry)
}

func fillDefaults(e *Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}
