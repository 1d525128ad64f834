package events

import (
	"context"
	"errors"
	"sync"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
)

// DefaultQueueSize is the Async buffer used when none is given.
const DefaultQueueSize = 256

var (
	// ErrQueueFull is reported when an entry is dropped because the buffer is full.
	ErrQueueFull = errors.New("events: queue full, entry dropped")

	// ErrSinkClosed is reported when an entry arrives after Close.
	ErrSinkClosed = errors.New("events: sink closed, entry dropped")
)

type pending struct {
	ctx   context.Context
	entry audit.Entry
}

// Async delivers entries to another sink from a single background worker.
//
// Publish never blocks: when the buffer is full the entry is dropped and
// reported. Entries reach the wrapped sink in publish order.
type Async struct {
	next   audit.Sink
	queue  chan pending
	report reporter
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts a worker feeding next. name labels drop reports.
func NewAsync(next audit.Sink, name string, size int, logger *logging.Logger, failures FailureCounter) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	a := &Async{
		next:   next,
		queue:  make(chan pending, size),
		report: newReporter(name, logger, failures),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for p := range a.queue {
		a.next.Publish(p.ctx, p.entry)
	}
}

// Publish implements audit.Sink.
// The caller's cancellation is detached so delivery outlives the request.
func (a *Async) Publish(ctx context.Context, e audit.Entry) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.report.fail(e, ErrSinkClosed)
		return
	}

	select {
	case a.queue <- pending{ctx: context.WithoutCancel(ctx), entry: e}:
	default:
		a.report.fail(e, ErrQueueFull)
	}
}

// Close stops accepting entries and waits for the buffer to drain or ctx
// to end, whichever comes first.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
