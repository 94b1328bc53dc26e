package view

import (
	"time"

	"github.com/couchcryptid/quake-view/internal/domain"
)

// Map is a headless map view. It renders nothing; it keeps the last set and
// the interaction state so that API clients can draw it themselves.
type Map struct {
	viewport     Viewport
	records      []domain.Record
	style        domain.TileStyle
	brushEnabled bool
	panning      bool
	brushClears  int
}

// NewMap creates a headless map over the given viewport.
func NewMap(vp Viewport) *Map {
	return &Map{viewport: vp, style: domain.LookupTileStyle(domain.DefaultTileStyle), panning: true}
}

// Render keeps records as the displayed markers.
func (m *Map) Render(records []domain.Record) { m.records = records }

// ProjectPixelToGeo converts a container point through the current viewport.
func (m *Map) ProjectPixelToGeo(p Point) domain.GeoPoint {
	return m.viewport.ProjectPixelToGeo(p)
}

// ClearBrush removes the drawn rectangle.
func (m *Map) ClearBrush() { m.brushClears++ }

// SetBrushEnabled allows or forbids drawing a rectangle.
func (m *Map) SetBrushEnabled(enabled bool) { m.brushEnabled = enabled }

// SetPanningEnabled allows or forbids dragging the map.
func (m *Map) SetPanningEnabled(enabled bool) { m.panning = enabled }

// SetTileStyle switches the base layer.
func (m *Map) SetTileStyle(style domain.TileStyle) { m.style = style }

// SetViewport records a pan or zoom done by the client.
func (m *Map) SetViewport(vp Viewport) { m.viewport = vp }

// Viewport returns the current viewport.
func (m *Map) Viewport() Viewport { return m.viewport }

// Records returns the last rendered set.
func (m *Map) Records() []domain.Record { return m.records }

// TileStyle returns the active base layer.
func (m *Map) TileStyle() domain.TileStyle { return m.style }

// BrushEnabled reports whether drawing a rectangle is allowed.
func (m *Map) BrushEnabled() bool { return m.brushEnabled }

// PanningEnabled reports whether dragging pans the map.
func (m *Map) PanningEnabled() bool { return m.panning }

// BrushClears counts how many times the drawn rectangle was cleared.
func (m *Map) BrushClears() int { return m.brushClears }

// timelineMargin is the horizontal inset of the time axis.
const timelineMargin = 50

// Timeline is a headless timeline view with a linear time axis inset by a
// fixed margin on both sides.
type Timeline struct {
	width       float64
	scale       TimeScale
	records     []domain.Record
	marks       []Mark
	highlighted map[string]bool
	brushClears int
}

// NewTimeline creates a headless timeline of the given pixel width.
func NewTimeline(width float64) *Timeline {
	return &Timeline{
		width:       width,
		highlighted: make(map[string]bool),
	}
}

// Render lays out one mark per record over bounds and drops every highlight.
func (t *Timeline) Render(records []domain.Record, bounds domain.TemporalBound) {
	t.records = records
	t.scale = TimeScale{Domain: bounds, RangeMin: timelineMargin, RangeMax: t.width - timelineMargin}
	t.marks = make([]Mark, len(records))
	for i, r := range records {
		t.marks[i] = Mark{Key: domain.KeyOf(r), Time: r.Time, X: t.scale.Project(r.Time)}
	}
	clear(t.highlighted)
}

// ProjectTimeToPixel maps ts onto the axis of the last render.
func (t *Timeline) ProjectTimeToPixel(ts time.Time) float64 { return t.scale.Project(ts) }

// ClearBrush removes the drawn extent.
func (t *Timeline) ClearBrush() { t.brushClears++ }

// CurrentMarks returns the marks of the last render in record order.
func (t *Timeline) CurrentMarks() []Mark { return t.marks }

// Highlight turns the highlight of the mark with key on or off.
func (t *Timeline) Highlight(key string, on bool) {
	if on {
		t.highlighted[key] = true
		return
	}
	delete(t.highlighted, key)
}

// Records returns the last rendered set.
func (t *Timeline) Records() []domain.Record { return t.records }

// Bounds returns the time domain of the last render.
func (t *Timeline) Bounds() domain.TemporalBound { return t.scale.Domain }

// Highlighted reports whether the mark with key is highlighted.
func (t *Timeline) Highlighted(key string) bool { return t.highlighted[key] }

// BrushClears counts how many times the drawn rectangle was cleared.
func (t *Timeline) BrushClears() int { return t.brushClears }
