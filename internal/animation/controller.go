// Package animation steps through a filtered record set, revealing a growing
// prefix on every tick.
package animation

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/jonboulle/clockwork"
)

// State is the playback state.
type State string

const (
	Stopped State = "stopped"
	Playing State = "playing"
	Paused  State = "paused"
)

// Renderer receives every emitted prefix.
type Renderer interface {
	RenderFrame(records []domain.Record)
}

// Restorer re-renders the full filtered set once playback stops.
type Restorer interface {
	Recompute()
}

// Dispatcher runs fn on the event goroutine that owns the controller.
type Dispatcher interface {
	Post(fn func())
}

// Controller is the playback state machine:
//
//	Stopped -> Playing <-> Paused -> Stopped
//
// Every method must be called from the event goroutine; ticks are routed back
// there through the Dispatcher. At most one Task is armed at any time.
type Controller struct {
	clock    clockwork.Clock
	dispatch Dispatcher
	renderer Renderer
	restorer Restorer
	logger   *slog.Logger
	metrics  *observability.Metrics

	state    State
	frames   []domain.Record
	progress int
	interval time.Duration

	task *Task
	// generation invalidates ticks queued by a task that has since been cancelled.
	generation uint64
}

// New creates a stopped Controller with the given initial cadence.
func New(clock clockwork.Clock, d Dispatcher, r Renderer, rs Restorer, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		clock:    clock,
		dispatch: d,
		renderer: r,
		restorer: rs,
		logger:   logger,
		metrics:  metrics,
		state:    Stopped,
		interval: interval,
	}
}

// State returns the playback state.
func (c *Controller) State() State { return c.state }

// Progress returns how many records the last frame revealed.
func (c *Controller) Progress() int { return c.progress }

// Interval returns the current cadence.
func (c *Controller) Interval() time.Duration { return c.interval }

// Active reports whether playback owns the views (playing or paused).
func (c *Controller) Active() bool { return c.state != Stopped }

// Play starts or resumes emitting growing prefixes of frames every interval.
// Resuming from Paused keeps progress; calling Play while already Playing
// cancels the running task before arming a new one. If nothing is left to
// reveal the controller stops, restoring the views when it was active.
func (c *Controller) Play(frames []domain.Record, interval time.Duration) {
	if interval > 0 {
		c.interval = interval
	}
	wasActive := c.Active()
	c.cancelTask()

	if c.state == Stopped {
		c.progress = 0
	}
	c.frames = frames
	if c.progress > len(frames) {
		c.progress = len(frames)
	}

	if c.progress >= len(c.frames) {
		c.logger.Debug("nothing to animate", "records", len(frames))
		c.finish()
		if wasActive {
			c.restorer.Recompute()
		}
		return
	}

	c.state = Playing
	c.metrics.AnimationPlaying.Set(1)
	c.arm()
	c.logger.Debug("animation playing", "records", len(frames), "progress", c.progress, "interval", c.interval)
}

// Pause halts emission and keeps progress. It is a no-op unless Playing.
func (c *Controller) Pause() {
	if c.state != Playing {
		return
	}
	c.cancelTask()
	c.state = Paused
	c.metrics.AnimationPlaying.Set(0)
}

// Stop cancels playback, resets progress and asks the Restorer to show the
// full filtered set again. Stopping twice has the same effect as once.
func (c *Controller) Stop() {
	if c.state == Stopped {
		return
	}
	c.finish()
	c.restorer.Recompute()
}

// Halt cancels playback without restoring the views. Used on teardown.
func (c *Controller) Halt() {
	if c.state != Stopped {
		c.finish()
	}
}

// SetSpeed changes the cadence. While Playing it applies from the next tick;
// frames already emitted are not replayed.
func (c *Controller) SetSpeed(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.interval = interval
	if c.state == Playing && c.task != nil {
		c.task.Reset(interval)
	}
}

// Faster shortens the cadence by step while it stays above step.
func (c *Controller) Faster(step time.Duration) {
	if c.interval > step {
		c.SetSpeed(c.interval - step)
	}
}

// Slower lengthens the cadence by step.
func (c *Controller) Slower(step time.Duration) {
	c.SetSpeed(c.interval + step)
}

// Retarget swaps the record set being animated without changing state and
// renders the current prefix of the new set. Progress is clamped to the new
// length, so the prefix may be empty. It is a no-op while Stopped.
func (c *Controller) Retarget(frames []domain.Record) {
	if c.state == Stopped {
		return
	}
	c.frames = frames
	if c.progress > len(frames) {
		c.progress = len(frames)
	}
	c.renderer.RenderFrame(c.prefix())
}

func (c *Controller) arm() {
	c.generation++
	gen := c.generation
	c.task = Every(c.clock, c.interval, func() {
		c.dispatch.Post(func() { c.tick(gen) })
	})
}

func (c *Controller) cancelTask() {
	if c.task != nil {
		c.task.Cancel()
		c.task = nil
	}
	c.generation++
}

func (c *Controller) tick(gen uint64) {
	if gen != c.generation || c.state != Playing {
		return
	}
	rendered := false
	if c.progress < len(c.frames) {
		c.progress++
		c.renderer.RenderFrame(c.prefix())
		c.metrics.AnimationFrames.Inc()
		rendered = true
	}
	if c.progress >= len(c.frames) {
		c.logger.Debug("animation complete", "records", len(c.frames))
		c.finish()
		// Reached through a retarget that shrank the set; hand the views back.
		if !rendered {
			c.restorer.Recompute()
		}
	}
}

func (c *Controller) finish() {
	c.cancelTask()
	c.state = Stopped
	c.progress = 0
	c.metrics.AnimationPlaying.Set(0)
}

func (c *Controller) prefix() []domain.Record {
	return c.frames[:c.progress:c.progress]
}
