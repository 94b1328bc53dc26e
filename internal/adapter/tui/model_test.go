package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct{ events []coordinator.Event }

func (l *eventLog) post(ev coordinator.Event) { l.events = append(l.events, ev) }

func (l *eventLog) last(t *testing.T) coordinator.Event {
	t.Helper()
	require.NotEmpty(t, l.events)
	return l.events[len(l.events)-1]
}

func newTestModel(t *testing.T) (Model, *eventLog) {
	t.Helper()
	log := &eventLog{}
	m := newModel(log.post, &grid{})
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30}), log
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		{Time: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), Latitude: 35, Longitude: 139, Magnitude: 5.8},
		{Time: time.Date(2020, 8, 1, 0, 0, 0, 0, time.UTC), Latitude: -33, Longitude: -71, Magnitude: 3.4},
	}
}

func TestLayout(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, 21, m.mapRows())
	assert.Equal(t, 22, m.stripY())
	cols, rows := m.grid.get()
	assert.Equal(t, 80, cols)
	assert.Equal(t, 21, rows)

	assert.Equal(t, areaNone, m.areaAt(3, 0))
	assert.Equal(t, areaMap, m.areaAt(3, 1))
	assert.Equal(t, areaStrip, m.areaAt(3, 22))
	assert.Equal(t, areaNone, m.areaAt(80, 5))
}

func TestKeys(t *testing.T) {
	cases := []struct {
		name string
		key  tea.KeyMsg
		want coordinator.Event
	}{
		{"previous year", tea.KeyMsg{Type: tea.KeyLeft}, coordinator.YearStepped{Delta: -1}},
		{"next year", tea.KeyMsg{Type: tea.KeyRight}, coordinator.YearStepped{Delta: 1}},
		{"play pause", tea.KeyMsg{Type: tea.KeySpace}, coordinator.AnimationToggled{}},
		{"stop", runes("s"), coordinator.AnimationStopped{}},
		{"faster", runes("+"), coordinator.AnimationSpeedChanged{Faster: true}},
		{"slower", runes("-"), coordinator.AnimationSpeedChanged{Faster: false}},
		{"clear", runes("c"), coordinator.FiltersCleared{}},
		{"reset brushes", runes("r"), coordinator.BrushesReset{}},
		{"brush mode", runes("b"), coordinator.BrushModeToggled{Enabled: true}},
		{"next style", runes("m"), coordinator.TileStyleSelected{Name: "OpenTopoMap"}},
		{"legend", runes("3"), coordinator.LegendClicked{Class: domain.LegendClasses[2].Range}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, log := newTestModel(t)
			update(t, m, tc.key)
			assert.Equal(t, tc.want, log.last(t))
		})
	}

	t.Run("quit", func(t *testing.T) {
		m, log := newTestModel(t)
		_, cmd := m.Update(runes("q"))
		require.NotNil(t, cmd)
		assert.Empty(t, log.events)
	})
}

func TestMapBrushDrag(t *testing.T) {
	m, log := newTestModel(t)

	m = update(t, m, mouse(tea.MouseActionPress, 10, 5))
	assert.Empty(t, log.events)
	assert.False(t, m.drag.active)

	m = update(t, m, brushModeMsg{brush: true})
	m = update(t, m, mouse(tea.MouseActionPress, 10, 5))
	m = update(t, m, mouse(tea.MouseActionMotion, 19, 9))
	assert.True(t, m.inDrag(areaMap, 15, 7))
	update(t, m, mouse(tea.MouseActionRelease, 19, 9))

	want := coordinator.MapBrushEnded{
		Rect:      view.PixelRect{X0: 10, Y0: 4, X1: 20, Y1: 9},
		Projector: view.Equirect{Cols: 80, Rows: 21},
	}
	assert.Equal(t, want, log.last(t))
}

func TestMapClickIsEmptyBrush(t *testing.T) {
	m, log := newTestModel(t)
	m = update(t, m, brushModeMsg{brush: true})
	m = update(t, m, mouse(tea.MouseActionPress, 10, 5))
	update(t, m, mouse(tea.MouseActionRelease, 10, 5))

	ev, ok := log.last(t).(coordinator.MapBrushEnded)
	require.True(t, ok)
	assert.True(t, ev.Rect.Empty())
}

func TestStripBrushDrag(t *testing.T) {
	m, log := newTestModel(t)
	m = update(t, m, timelineRenderMsg{records: sampleRecords(), bounds: domain.YearBounds(2020)})
	require.Len(t, m.marks, 2)

	m = update(t, m, mouse(tea.MouseActionPress, 30, 22))
	update(t, m, mouse(tea.MouseActionRelease, 5, 3))

	ev, ok := log.last(t).(coordinator.TimelineBrushEnded)
	require.True(t, ok)
	assert.Equal(t, view.PixelRange{X0: 4.5, X1: 30.5}, ev.Range)
	assert.Equal(t, m.marks, ev.Marks)
	assert.Equal(t, stripScale(domain.YearBounds(2020), 80), ev.Projector)
}

func TestRenderMessages(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, mapRenderMsg{records: sampleRecords()})
	m = update(t, m, timelineRenderMsg{records: sampleRecords(), bounds: domain.YearBounds(2020)})
	m = update(t, m, tileStyleMsg{style: domain.LookupTileStyle("Stamen.Terrain")})
	m = update(t, m, statusMsg(coordinator.Snapshot{Year: 2020, Filtered: 2}))

	out := m.View()
	assert.Contains(t, out, "quakeview")
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, "Stamen.Terrain")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "2020-01-01")
	assert.Len(t, m.cells(), 2)

	key := domain.KeyOf(sampleRecords()[0])
	m = update(t, m, highlightMsg{key: key, on: true})
	assert.Equal(t, key, m.highlighted)
	m = update(t, m, highlightMsg{key: key, on: false})
	assert.Empty(t, m.highlighted)
}

func TestHoverPostsHighlight(t *testing.T) {
	m, log := newTestModel(t)
	recs := sampleRecords()
	m = update(t, m, mapRenderMsg{records: recs})

	col, row := view.Equirect{Cols: 80, Rows: 21}.Cell(domain.GeoPoint{Lat: recs[0].Latitude, Lon: recs[0].Longitude})
	m = update(t, m, tea.MouseMsg{X: col, Y: row + m.mapTop(), Action: tea.MouseActionMotion})

	assert.Equal(t, coordinator.MarkerHovered{Key: domain.KeyOf(recs[0]), On: true}, log.last(t))
	assert.True(t, strings.HasPrefix(m.notice, "Time: "))

	update(t, m, tea.MouseMsg{X: 0, Y: m.mapTop(), Action: tea.MouseActionMotion})
	assert.Equal(t, coordinator.MarkerHovered{Key: domain.KeyOf(recs[0]), On: false}, log.last(t))
}

type captureSender struct{ msgs []tea.Msg }

func (c *captureSender) Send(msg tea.Msg) { c.msgs = append(c.msgs, msg) }

func TestViewsForwardToProgram(t *testing.T) {
	s := &captureSender{}
	g := &grid{}
	g.set(100, 20)
	mv := &MapView{send: s, grid: g}
	tv := &TimelineView{send: s, grid: g}

	mv.Render(sampleRecords())
	mv.SetBrushEnabled(true)
	mv.ClearBrush()
	tv.Render(sampleRecords(), domain.YearBounds(2020))
	tv.Highlight("quake-1", true)

	require.Len(t, s.msgs, 5)
	assert.Equal(t, brushModeMsg{brush: true, panning: false}, s.msgs[1])
	assert.Equal(t, brushClearedMsg{target: "map"}, s.msgs[2])
	assert.Equal(t, highlightMsg{key: "quake-1", on: true}, s.msgs[4])

	marks := tv.CurrentMarks()
	require.Len(t, marks, 2)
	assert.Less(t, marks[0].X, marks[1].X)
	assert.InDelta(t, 0, tv.ProjectTimeToPixel(domain.YearBounds(2020).Start), 1e-9)
	assert.InDelta(t, 99, tv.ProjectTimeToPixel(domain.YearBounds(2020).End), 1e-9)

	assert.Equal(t, domain.GeoPoint{Lat: 90, Lon: -180}, mv.ProjectPixelToGeo(view.Point{}))
}
