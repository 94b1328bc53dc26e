// Package coordinator owns the application state and keeps the map and
// timeline views showing the same filtered record set.
package coordinator

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-view/internal/animation"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/couchcryptid/quake-view/internal/view"
	"github.com/jonboulle/clockwork"
)

// RecordSource returns the records of one year in source order.
type RecordSource interface {
	Get(year int) []domain.Record
}

// Options configures a Coordinator.
type Options struct {
	MinYear     int
	MaxYear     int
	DefaultYear int
	// Interval is the initial animation cadence; Step is the speed +/- increment.
	Interval time.Duration
	Step     time.Duration
	Clock    clockwork.Clock
	Sinks    []FrameSink
}

// Coordinator reacts to user events by updating the predicates and pushing
// one freshly evaluated set to every view. It is not safe for concurrent use:
// every method must run on the goroutine that drains the Dispatcher.
type Coordinator struct {
	records  RecordSource
	mapView  MapView
	timeline TimelineView
	sinks    []FrameSink
	anim     *animation.Controller

	minYear int
	maxYear int
	step    time.Duration

	state   state
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Coordinator showing opts.DefaultYear. Animation ticks are
// delivered through d. Call Start to render the first frame.
func New(records RecordSource, m MapView, tl TimelineView, d animation.Dispatcher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	c := &Coordinator{
		records:  records,
		mapView:  m,
		timeline: tl,
		sinks:    opts.Sinks,
		minYear:  opts.MinYear,
		maxYear:  opts.MaxYear,
		step:     opts.Step,
		logger:   logger,
		metrics:  metrics,
	}
	c.state.year = opts.DefaultYear
	c.state.tileStyle = domain.LookupTileStyle(domain.DefaultTileStyle)
	c.anim = animation.New(opts.Clock, d, c, c, opts.Interval, logger, metrics)
	return c
}

// Start puts the views in their initial mode and renders the default year.
func (c *Coordinator) Start() {
	c.mapView.SetTileStyle(c.state.tileStyle)
	c.applyBrushMode(false)
	c.Recompute()
	c.logger.Info("coordinator started", "year", c.state.year, "records", len(c.state.filtered))
}

// Close cancels any scheduled animation work.
func (c *Coordinator) Close() {
	c.anim.Halt()
}

// Handle applies one event.
func (c *Coordinator) Handle(ev Event) {
	ev.apply(c)
}

// Year returns the displayed year.
func (c *Coordinator) Year() int { return c.state.year }

// Visible returns the last frame pushed to the views.
func (c *Coordinator) Visible() []domain.Record { return c.state.visible }

// Filtered returns the last predicate evaluation.
func (c *Coordinator) Filtered() []domain.Record { return c.state.filtered }

// Predicates returns a copy of the active predicates.
func (c *Coordinator) Predicates() domain.Snapshot { return c.state.predicates.Snapshot() }

// Animation returns the playback state.
func (c *Coordinator) Animation() animation.State { return c.anim.State() }

// Snapshot copies the application state.
func (c *Coordinator) Snapshot() Snapshot {
	return Snapshot{
		Seq:        c.state.seq,
		Year:       c.state.year,
		MinYear:    c.minYear,
		MaxYear:    c.maxYear,
		Predicates: c.state.predicates.Snapshot(),
		Bounds:     c.state.bounds,
		Filtered:   len(c.state.filtered),
		Visible:    c.state.visible,
		BrushMode:  c.state.brushMode,
		TileStyle:  c.state.tileStyle,
		Animation: AnimationSnapshot{
			State:    c.anim.State(),
			Progress: c.anim.Progress(),
			Interval: c.anim.Interval(),
		},
	}
}

// Recompute evaluates the predicates over the displayed year and pushes the
// result to every view. While an animation owns the views the new set is
// handed to the animation instead.
func (c *Coordinator) Recompute() {
	start := time.Now()
	filtered := c.state.predicates.Evaluate(c.records.Get(c.state.year))
	c.metrics.EvaluateDuration.Observe(time.Since(start).Seconds())
	c.metrics.Recomputes.Inc()

	c.state.filtered = filtered
	if c.anim.Active() {
		c.anim.Retarget(filtered)
		return
	}
	c.broadcast(filtered, false)
}

// RenderFrame pushes one animation prefix to every view.
func (c *Coordinator) RenderFrame(records []domain.Record) {
	c.broadcast(records, true)
}

// broadcast is the only place views are rendered, so both views always
// receive the same slice.
func (c *Coordinator) broadcast(records []domain.Record, animated bool) {
	c.state.seq++
	c.state.visible = records
	c.state.bounds = c.timelineBounds()

	c.mapView.Render(records)
	c.timeline.Render(records, c.state.bounds)
	c.metrics.VisibleRecords.Set(float64(len(records)))

	if len(c.sinks) == 0 {
		return
	}
	frame := Frame{
		Seq:      c.state.seq,
		Year:     c.state.year,
		Animated: animated,
		Bounds:   c.state.bounds,
		Records:  records,
	}
	for _, s := range c.sinks {
		s.Publish(frame)
	}
}

// timelineBounds is the temporal predicate when one is active, otherwise the
// whole displayed year.
func (c *Coordinator) timelineBounds() domain.TemporalBound {
	if b, ok := c.state.predicates.Temporal(); ok {
		return b
	}
	return domain.YearBounds(c.state.year)
}

// OnMapBrushEnd turns a committed map rectangle into the spatial predicate.
// The drawn rectangle is cleared whether or not it was applied.
func (c *Coordinator) OnMapBrushEnd(rect view.PixelRect, proj GeoProjector) {
	defer c.mapView.ClearBrush()

	if rect.Empty() {
		c.ignore("empty_brush")
		return
	}
	if proj == nil {
		proj = c.mapView
	}
	a := proj.ProjectPixelToGeo(view.Point{X: rect.X0, Y: rect.Y0})
	b := proj.ProjectPixelToGeo(view.Point{X: rect.X1, Y: rect.Y1})
	bound := domain.BoundFromCorners(a, b)

	c.state.predicates.SetSpatial(&bound)
	c.metrics.SelectionEvents.WithLabelValues("map").Inc()
	c.logger.Debug("spatial brush applied", "bound", bound)
	c.Recompute()
}

// OnTimelineBrushEnd sets the temporal predicate to the span of the marks
// whose pixel position falls inside the committed extent. An extent covering
// no mark changes nothing.
func (c *Coordinator) OnTimelineBrushEnd(rng view.PixelRange, proj TimeProjector, marks []view.Mark) {
	defer c.timeline.ClearBrush()

	if rng.Empty() {
		c.ignore("empty_brush")
		return
	}
	if proj == nil {
		proj = c.timeline
	}
	if marks == nil {
		marks = c.timeline.CurrentMarks()
	}

	lo, hi := rng.Ordered()
	var first, last time.Time
	found := false
	for _, m := range marks {
		x := proj.ProjectTimeToPixel(m.Time)
		if x < lo || x > hi {
			continue
		}
		if !found || m.Time.Before(first) {
			first = m.Time
		}
		if !found || m.Time.After(last) {
			last = m.Time
		}
		found = true
	}
	if !found {
		c.ignore("no_marks")
		return
	}

	bound := domain.TemporalBound{Start: first, End: last}
	c.state.predicates.SetTemporal(&bound)
	c.metrics.SelectionEvents.WithLabelValues("timeline").Inc()
	c.logger.Debug("temporal brush applied", "start", first, "end", last)
	c.Recompute()
}

// OnLegendClick applies a legend class immediately.
func (c *Coordinator) OnLegendClick(class domain.Range) {
	c.state.predicates.SetLegendClass(&class)
	c.metrics.SelectionEvents.WithLabelValues("legend").Inc()
	c.Recompute()
}

// OnApplyFilters applies the enabled numeric filters and clears the disabled
// ones, whatever bounds their inputs still hold.
func (c *Coordinator) OnApplyFilters(mag, depth FilterInput) {
	if mag.Enabled {
		c.state.predicates.SetMagnitude(&mag.Range)
	} else {
		c.state.predicates.SetMagnitude(nil)
	}
	if depth.Enabled {
		c.state.predicates.SetDepth(&depth.Range)
	} else {
		c.state.predicates.SetDepth(nil)
	}
	c.metrics.SelectionEvents.WithLabelValues("filters").Inc()
	c.Recompute()
}

// OnClearFilters removes every predicate.
func (c *Coordinator) OnClearFilters() {
	c.state.predicates.ClearAll()
	c.Recompute()
}

// OnResetBrushes removes the spatial and temporal predicates only.
func (c *Coordinator) OnResetBrushes() {
	c.state.predicates.SetSpatial(nil)
	c.state.predicates.SetTemporal(nil)
	c.mapView.ClearBrush()
	c.timeline.ClearBrush()
	c.Recompute()
}

// OnYearChange switches the displayed year. Years outside the navigable
// range are ignored. An active temporal predicate moves by the same number
// of years so that it keeps selecting the same part of the year.
func (c *Coordinator) OnYearChange(year int) {
	if year < c.minYear || year > c.maxYear {
		c.ignore("year_out_of_range")
		c.logger.Debug("year change ignored", "year", year, "min", c.minYear, "max", c.maxYear)
		return
	}
	if year == c.state.year {
		return
	}
	if b, ok := c.state.predicates.Temporal(); ok {
		shifted := b.ShiftYears(year - c.state.year)
		c.state.predicates.SetTemporal(&shifted)
	}
	c.state.year = year
	c.logger.Info("year changed", "year", year)
	c.Recompute()
}

// OnBrushModeToggle enables map brushing and disables panning, or the reverse.
func (c *Coordinator) OnBrushModeToggle(enabled bool) {
	c.applyBrushMode(enabled)
}

func (c *Coordinator) applyBrushMode(enabled bool) {
	c.state.brushMode = enabled
	c.mapView.SetBrushEnabled(enabled)
	c.mapView.SetPanningEnabled(!enabled)
}

// OnTileStyleChange switches the map base layer. Unknown names select the
// default style.
func (c *Coordinator) OnTileStyleChange(name string) {
	c.state.tileStyle = domain.LookupTileStyle(name)
	c.mapView.SetTileStyle(c.state.tileStyle)
}

// OnMarkerHover highlights the timeline mark sharing the marker's key.
func (c *Coordinator) OnMarkerHover(key string, on bool) {
	for _, r := range c.state.visible {
		if domain.KeyOf(r) == key {
			c.timeline.Highlight(key, on)
			return
		}
	}
	c.ignore("unknown_key")
}

// Play animates the filtered set, resuming if paused.
func (c *Coordinator) Play() {
	c.anim.Play(c.state.filtered, c.anim.Interval())
}

// TogglePlay pauses while playing and plays otherwise.
func (c *Coordinator) TogglePlay() {
	if c.anim.State() == animation.Playing {
		c.Pause()
		return
	}
	c.Play()
}

// Pause halts the animation, keeping the current prefix on screen.
func (c *Coordinator) Pause() { c.anim.Pause() }

// Stop cancels the animation and restores the filtered set.
func (c *Coordinator) Stop() { c.anim.Stop() }

// Faster shortens the animation cadence by one step.
func (c *Coordinator) Faster() { c.anim.Faster(c.step) }

// Slower lengthens the animation cadence by one step.
func (c *Coordinator) Slower() { c.anim.Slower(c.step) }

func (c *Coordinator) ignore(reason string) {
	c.metrics.IgnoredEvents.WithLabelValues(reason).Inc()
	c.logger.Debug("event ignored", "reason", reason, "year", c.state.year)
}
