package animation

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Task is a cancellable periodic job driven by a clockwork ticker.
type Task struct {
	ticker clockwork.Ticker
	quit   chan struct{}
	once   sync.Once
}

// Every runs fn once per interval on a dedicated goroutine until Cancel.
// fn must hand its work to the event goroutine rather than touch shared state.
func Every(clock clockwork.Clock, interval time.Duration, fn func()) *Task {
	t := &Task{
		ticker: clock.NewTicker(interval),
		quit:   make(chan struct{}),
	}
	go t.run(fn)
	return t
}

func (t *Task) run(fn func()) {
	for {
		select {
		case <-t.quit:
			return
		case <-t.ticker.Chan():
			select {
			case <-t.quit:
				return
			default:
			}
			fn()
		}
	}
}

// Reset changes the period; the next tick fires one new interval from now.
func (t *Task) Reset(interval time.Duration) {
	t.ticker.Reset(interval)
}

// Cancel stops the task. It is safe to call more than once.
func (t *Task) Cancel() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.quit)
	})
}
