package coordinator

import (
	"context"
	"errors"
	"log/slog"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs posted functions one at a time on a single goroutine. It is the
// event queue every control surface and the animation ticker feed.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a Loop whose queue holds up to size pending functions.
func NewLoop(size int, logger *slog.Logger) *Loop {
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run drains the queue until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	l.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped")
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post enqueues fn without waiting for it to run. Functions posted after the
// loop has exited are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	task := func() {
		defer close(ran)
		fn()
	}

	select {
	case l.queue <- task:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// CheckReadiness reports whether the loop is draining its queue.
func (l *Loop) CheckReadiness(ctx context.Context) error {
	return l.Do(ctx, func() {})
}
