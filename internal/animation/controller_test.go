package animation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 100 * time.Millisecond

// queueDispatcher hands posted ticks to the test goroutine so that the
// controller is only ever touched from one goroutine.
type queueDispatcher struct {
	ch chan func()
}

func newQueueDispatcher() *queueDispatcher {
	return &queueDispatcher{ch: make(chan func(), 16)}
}

func (q *queueDispatcher) Post(fn func()) { q.ch <- fn }

func (q *queueDispatcher) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-q.ch:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no tick dispatched")
	}
}

func (q *queueDispatcher) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case <-q.ch:
		t.Fatal("unexpected tick dispatched")
	case <-time.After(50 * time.Millisecond):
	}
}

type recorder struct {
	frames     [][]domain.Record
	recomputes int
}

func (r *recorder) RenderFrame(records []domain.Record) { r.frames = append(r.frames, records) }
func (r *recorder) Recompute()                          { r.recomputes++ }

func (r *recorder) lengths() []int {
	out := make([]int, len(r.frames))
	for i, f := range r.frames {
		out[i] = len(f)
	}
	return out
}

func records(n int) []domain.Record {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{Time: base.Add(time.Duration(i) * time.Hour), Magnitude: float64(i)}
	}
	return out
}

type harness struct {
	clock *clockwork.FakeClock
	q     *queueDispatcher
	rec   *recorder
	c     *Controller
}

func newHarness() *harness {
	h := &harness{
		clock: clockwork.NewFakeClock(),
		q:     newQueueDispatcher(),
		rec:   &recorder{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.c = New(h.clock, h.q, h.rec, h.rec, testInterval, logger, observability.NewMetricsForTesting())
	return h
}

// step advances the fake clock by d and runs the tick it produces.
func (h *harness) step(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(d)
	h.q.runNext(t)
}

func TestPlay_MonotonicGrowthThenStops(t *testing.T) {
	h := newHarness()
	h.c.Play(records(4), testInterval)
	assert.Equal(t, Playing, h.c.State())

	for i := 0; i < 4; i++ {
		h.step(t, testInterval)
	}

	assert.Equal(t, []int{1, 2, 3, 4}, h.rec.lengths())
	assert.Equal(t, Stopped, h.c.State())
	assert.Equal(t, 0, h.c.Progress())
	assert.Zero(t, h.rec.recomputes)

	h.clock.Advance(testInterval)
	h.q.assertIdle(t)
}

func TestPlay_FramesArePrefixesInOrder(t *testing.T) {
	h := newHarness()
	set := records(3)
	h.c.Play(set, testInterval)
	h.step(t, testInterval)
	h.step(t, testInterval)

	require.Len(t, h.rec.frames, 2)
	assert.Equal(t, set[:2], h.rec.frames[1])
}

func TestPlay_EmptySetStaysStopped(t *testing.T) {
	h := newHarness()
	h.c.Play(nil, testInterval)
	assert.Equal(t, Stopped, h.c.State())
	assert.Zero(t, h.rec.recomputes, "views already show the set")

	h.clock.Advance(testInterval)
	h.q.assertIdle(t)
}

func TestPlay_TwiceKeepsSingleTaskWithSecondInterval(t *testing.T) {
	h := newHarness()
	set := records(5)
	h.c.Play(set, testInterval)
	h.c.Play(set, 300*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))

	h.clock.Advance(testInterval)
	h.q.assertIdle(t)

	h.clock.Advance(200 * time.Millisecond)
	h.q.runNext(t)
	h.q.assertIdle(t)

	assert.Equal(t, []int{1}, h.rec.lengths())
	assert.Equal(t, 300*time.Millisecond, h.c.Interval())
}

func TestPauseResumeKeepsProgress(t *testing.T) {
	h := newHarness()
	set := records(4)
	h.c.Play(set, testInterval)
	h.step(t, testInterval)
	h.step(t, testInterval)

	h.c.Pause()
	assert.Equal(t, Paused, h.c.State())
	assert.Equal(t, 2, h.c.Progress())
	h.clock.Advance(testInterval)
	h.q.assertIdle(t)

	h.c.Play(set, 0)
	assert.Equal(t, Playing, h.c.State())
	h.step(t, testInterval)
	assert.Equal(t, []int{1, 2, 3}, h.rec.lengths())
}

func TestStop_ResetsAndRestoresOnce(t *testing.T) {
	h := newHarness()
	set := records(4)
	h.c.Play(set, testInterval)
	h.step(t, testInterval)

	h.c.Stop()
	h.c.Stop()

	assert.Equal(t, Stopped, h.c.State())
	assert.Equal(t, 0, h.c.Progress())
	assert.Equal(t, 1, h.rec.recomputes)

	h.clock.Advance(testInterval)
	h.q.assertIdle(t)

	h.c.Play(set, testInterval)
	h.step(t, testInterval)
	assert.Equal(t, []int{1, 1}, h.rec.lengths())
}

func TestStaleTickIgnored(t *testing.T) {
	h := newHarness()
	h.c.Play(records(3), testInterval)
	stale := h.c.generation
	h.c.Pause()
	h.c.Play(records(3), testInterval)

	h.c.tick(stale)
	assert.Empty(t, h.rec.frames)
}

func TestSetSpeed_AppliesFromNextTick(t *testing.T) {
	h := newHarness()
	h.c.Play(records(5), testInterval)
	h.step(t, testInterval)

	h.c.SetSpeed(400 * time.Millisecond)
	h.clock.Advance(testInterval)
	h.q.assertIdle(t)
	h.clock.Advance(300 * time.Millisecond)
	h.q.runNext(t)

	assert.Equal(t, []int{1, 2}, h.rec.lengths())
}

func TestFasterSlower(t *testing.T) {
	h := newHarness()
	step := 50 * time.Millisecond

	h.c.Faster(step)
	assert.Equal(t, 50*time.Millisecond, h.c.Interval())
	h.c.Faster(step)
	assert.Equal(t, 50*time.Millisecond, h.c.Interval(), "never drops to zero")

	h.c.Slower(step)
	h.c.Slower(step)
	assert.Equal(t, 150*time.Millisecond, h.c.Interval())

	h.c.SetSpeed(-time.Second)
	assert.Equal(t, 150*time.Millisecond, h.c.Interval())
}

func TestRetarget(t *testing.T) {
	h := newHarness()
	h.c.Play(records(5), testInterval)
	h.step(t, testInterval)
	h.step(t, testInterval)
	h.step(t, testInterval)
	h.c.Pause()

	h.c.Retarget(records(2))
	assert.Equal(t, 2, h.c.Progress())
	assert.Equal(t, 2, len(h.rec.frames[len(h.rec.frames)-1]))

	h.c.Play(records(2), 0)
	assert.Equal(t, Stopped, h.c.State(), "nothing left to reveal")
	assert.Equal(t, 1, h.rec.recomputes)
}

func TestRetarget_ToEmptyWhilePaused(t *testing.T) {
	h := newHarness()
	h.c.Play(records(3), testInterval)
	h.step(t, testInterval)
	h.c.Pause()

	h.c.Retarget(nil)
	assert.Equal(t, 0, h.c.Progress())
	assert.Empty(t, h.rec.frames[len(h.rec.frames)-1])
	assert.Equal(t, Paused, h.c.State())

	h.c.Play(nil, 0)
	assert.Equal(t, Stopped, h.c.State())
	assert.Equal(t, 1, h.rec.recomputes)
}

func TestRetarget_ShrinkWhilePlayingRestoresOnNextTick(t *testing.T) {
	h := newHarness()
	h.c.Play(records(5), testInterval)
	h.step(t, testInterval)
	h.step(t, testInterval)

	h.c.Retarget(records(1))
	assert.Equal(t, 1, h.c.Progress())
	assert.Equal(t, []int{1, 2, 1}, h.rec.lengths())
	assert.Equal(t, Playing, h.c.State())

	h.step(t, testInterval)
	assert.Equal(t, Stopped, h.c.State())
	assert.Equal(t, 1, h.rec.recomputes)
	assert.Equal(t, []int{1, 2, 1}, h.rec.lengths(), "no frame beyond the new set")
}

func TestRetarget_StoppedIsNoop(t *testing.T) {
	h := newHarness()
	h.c.Retarget(records(2))
	assert.Empty(t, h.rec.frames)
	assert.Equal(t, 0, h.rec.recomputes)
}

func TestHalt_DoesNotRestore(t *testing.T) {
	h := newHarness()
	h.c.Play(records(3), testInterval)
	h.step(t, testInterval)

	h.c.Halt()

	assert.Equal(t, Stopped, h.c.State())
	assert.Equal(t, 0, h.rec.recomputes)
	h.clock.Advance(testInterval)
	h.q.assertIdle(t)
}
