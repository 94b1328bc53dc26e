package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
)

// Sender delivers messages to the running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

type mapRenderMsg struct{ records []domain.Record }

type timelineRenderMsg struct {
	records []domain.Record
	bounds  domain.TemporalBound
}

type brushClearedMsg struct{ target string }

type brushModeMsg struct{ brush, panning bool }

type tileStyleMsg struct{ style domain.TileStyle }

type highlightMsg struct {
	key string
	on  bool
}

// grid is the character-cell geometry shared by the model and the views.
type grid struct {
	mu   sync.Mutex
	cols int
	rows int
}

func (g *grid) set(cols, rows int) {
	g.mu.Lock()
	g.cols, g.rows = cols, rows
	g.mu.Unlock()
}

func (g *grid) get() (cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cols, g.rows
}

// MapView forwards map instructions from the event loop to the program.
type MapView struct {
	send Sender
	grid *grid
}

func (v *MapView) Render(records []domain.Record) { v.send.Send(mapRenderMsg{records: records}) }

func (v *MapView) ProjectPixelToGeo(p view.Point) domain.GeoPoint {
	cols, rows := v.grid.get()
	return view.Equirect{Cols: cols, Rows: rows}.ProjectPixelToGeo(p)
}

func (v *MapView) ClearBrush() { v.send.Send(brushClearedMsg{target: "map"}) }

func (v *MapView) SetBrushEnabled(enabled bool) {
	v.send.Send(brushModeMsg{brush: enabled, panning: !enabled})
}

// SetPanningEnabled is implied by SetBrushEnabled; the whole globe is always shown.
func (v *MapView) SetPanningEnabled(bool) {}

func (v *MapView) SetTileStyle(style domain.TileStyle) { v.send.Send(tileStyleMsg{style: style}) }

// TimelineView forwards timeline instructions from the event loop to the
// program. Its pixel unit is one terminal column.
type TimelineView struct {
	send  Sender
	grid  *grid
	scale view.TimeScale
	marks []view.Mark
}

func (v *TimelineView) Render(records []domain.Record, bounds domain.TemporalBound) {
	cols, _ := v.grid.get()
	v.scale = stripScale(bounds, cols)
	v.marks = marksFor(records, v.scale)
	v.send.Send(timelineRenderMsg{records: records, bounds: bounds})
}

func (v *TimelineView) ProjectTimeToPixel(t time.Time) float64 { return v.scale.Project(t) }
func (v *TimelineView) ClearBrush()                           { v.send.Send(brushClearedMsg{target: "timeline"}) }
func (v *TimelineView) CurrentMarks() []view.Mark              { return v.marks }

func (v *TimelineView) Highlight(key string, on bool) {
	v.send.Send(highlightMsg{key: key, on: on})
}

func stripScale(bounds domain.TemporalBound, cols int) view.TimeScale {
	return view.TimeScale{Domain: bounds, RangeMin: 0, RangeMax: float64(max(cols-1, 1))}
}

func marksFor(records []domain.Record, scale view.TimeScale) []view.Mark {
	marks := make([]view.Mark, len(records))
	for i, r := range records {
		marks[i] = view.Mark{Key: domain.KeyOf(r), Time: r.Time, X: scale.Project(r.Time)}
	}
	return marks
}
