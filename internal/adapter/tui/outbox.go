package tui

import (
	"context"
	"sync"

	"github.com/couchcryptid/quake-view/internal/coordinator"
)

// outbox queues user events for the event loop. push never blocks, so the
// bubbletea Update goroutine cannot stall on a full loop while the loop is
// itself waiting to Send to the program.
type outbox struct {
	mu      sync.Mutex
	pending []coordinator.Event
	wake    chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

func (o *outbox) push(ev coordinator.Event) {
	o.mu.Lock()
	o.pending = append(o.pending, ev)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// run hands queued events to deliver in push order until ctx is done.
func (o *outbox) run(ctx context.Context, deliver func(coordinator.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		}

		o.mu.Lock()
		batch := o.pending
		o.pending = nil
		o.mu.Unlock()

		for _, ev := range batch {
			deliver(ev)
		}
	}
}
