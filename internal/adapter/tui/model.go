// Package tui is a terminal front-end: a whole-globe character map above a
// timeline strip, both driven by the coordinator.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
)

// statusMsg carries the coordinator state after an event was applied.
type statusMsg coordinator.Snapshot

type area int

const (
	areaNone area = iota
	areaMap
	areaStrip
)

type drag struct {
	active bool
	area   area
	x0, y0 int
	x1, y1 int
}

// Model is the bubbletea model. It never touches the coordinator directly:
// user input becomes events handed to post, and the views send back what to
// draw.
type Model struct {
	post func(coordinator.Event)
	grid *grid

	width  int
	height int

	mapRecords  []domain.Record
	tlRecords   []domain.Record
	bounds      domain.TemporalBound
	marks       []view.Mark
	highlighted string
	hovered     string

	brushMode bool
	style     domain.TileStyle
	status    coordinator.Snapshot
	drag      drag
	notice    string
}

func newModel(post func(coordinator.Event), g *grid) Model {
	m := Model{
		post:   post,
		grid:   g,
		width:  80,
		height: 24,
		style:  domain.LookupTileStyle(domain.DefaultTileStyle),
	}
	g.set(m.cols(), m.mapRows())
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.grid.set(m.cols(), m.mapRows())
		m.marks = marksFor(m.tlRecords, stripScale(m.bounds, m.cols()))
	case mapRenderMsg:
		m.mapRecords = msg.records
	case timelineRenderMsg:
		m.tlRecords = msg.records
		m.bounds = msg.bounds
		m.marks = marksFor(msg.records, stripScale(msg.bounds, m.cols()))
		m.highlighted = ""
	case brushClearedMsg:
		if m.drag.area == areaMap && msg.target == "map" || m.drag.area == areaStrip && msg.target == "timeline" {
			m.drag = drag{}
		}
	case brushModeMsg:
		m.brushMode = msg.brush
	case tileStyleMsg:
		m.style = msg.style
	case highlightMsg:
		if msg.on {
			m.highlighted = msg.key
		} else if m.highlighted == msg.key {
			m.highlighted = ""
		}
	case statusMsg:
		m.status = coordinator.Snapshot(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.post(coordinator.YearStepped{Delta: -1})
	case "right", "l":
		m.post(coordinator.YearStepped{Delta: 1})
	case " ":
		m.post(coordinator.AnimationToggled{})
	case "s":
		m.post(coordinator.AnimationStopped{})
	case "+", "=":
		m.post(coordinator.AnimationSpeedChanged{Faster: true})
	case "-", "_":
		m.post(coordinator.AnimationSpeedChanged{Faster: false})
	case "c":
		m.post(coordinator.FiltersCleared{})
	case "r":
		m.post(coordinator.BrushesReset{})
	case "b":
		m.post(coordinator.BrushModeToggled{Enabled: !m.brushMode})
	case "m":
		m.post(coordinator.TileStyleSelected{Name: domain.NextTileStyle(m.style.Name).Name})
	case "1", "2", "3", "4", "5", "6":
		class := domain.LegendClasses[int(key[0]-'1')]
		m.post(coordinator.LegendClicked{Class: class.Range})
		m.notice = "legend " + class.Name
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	at := m.areaAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || at == areaNone {
			return m
		}
		if at == areaMap && !m.brushMode {
			m.notice = "press b to brush the map"
			return m
		}
		m.drag = drag{active: true, area: at, x0: msg.X, y0: msg.Y, x1: msg.X, y1: msg.Y}
	case tea.MouseActionMotion:
		if m.drag.active {
			m.drag.x1, m.drag.y1 = m.clampTo(m.drag.area, msg.X, msg.Y)
			return m
		}
		if at == areaMap {
			m = m.hover(msg.X, msg.Y-m.mapTop())
		}
	case tea.MouseActionRelease:
		if !m.drag.active {
			return m
		}
		d := m.drag
		d.x1, d.y1 = m.clampTo(d.area, msg.X, msg.Y)
		d.active = false
		m.drag = d
		m.commit(d)
	}
	return m
}

// commit turns a finished drag into a brush event. A press and release on
// the same cell produces an empty extent, which the coordinator ignores.
func (m Model) commit(d drag) {
	lo, hi := min(d.x0, d.x1), max(d.x0, d.x1)
	switch d.area {
	case areaMap:
		top, bottom := min(d.y0, d.y1)-m.mapTop(), max(d.y0, d.y1)-m.mapTop()
		rect := view.PixelRect{X0: float64(lo), Y0: float64(top), X1: float64(lo), Y1: float64(top)}
		if lo != hi || top != bottom {
			rect = view.PixelRect{X0: float64(lo), Y0: float64(top), X1: float64(hi + 1), Y1: float64(bottom + 1)}
		}
		m.post(coordinator.MapBrushEnded{Rect: rect, Projector: view.Equirect{Cols: m.cols(), Rows: m.mapRows()}})
	case areaStrip:
		rng := view.PixelRange{X0: float64(lo), X1: float64(lo)}
		if lo != hi {
			rng = view.PixelRange{X0: float64(lo) - 0.5, X1: float64(hi) + 0.5}
		}
		m.post(coordinator.TimelineBrushEnded{
			Range:     rng,
			Projector: stripScale(m.bounds, m.cols()),
			Marks:     m.marks,
		})
	}
}

func (m Model) hover(col, row int) Model {
	key := ""
	if r, ok := m.strongestIn(col, row); ok {
		key = domain.KeyOf(r)
	}
	if key == m.hovered {
		return m
	}
	if m.hovered != "" {
		m.post(coordinator.MarkerHovered{Key: m.hovered, On: false})
	}
	if key != "" {
		m.post(coordinator.MarkerHovered{Key: key, On: true})
		if r, ok := m.strongestIn(col, row); ok {
			m.notice = domain.Describe(r)
		}
	}
	m.hovered = key
	return m
}

// Layout, top to bottom: header, map grid, mark strip, axis labels, graph, help.
const (
	headerRows  = 1
	graphHeight = 4
)

func (m Model) cols() int    { return max(m.width, 20) }
func (m Model) mapTop() int  { return headerRows }
func (m Model) stripY() int  { return m.mapTop() + m.mapRows() }
func (m Model) mapRows() int { return max(m.height-headerRows-1-1-(graphHeight+1)-1, 4) }

func (m Model) areaAt(x, y int) area {
	if x < 0 || x >= m.cols() {
		return areaNone
	}
	switch {
	case y >= m.mapTop() && y < m.stripY():
		return areaMap
	case y == m.stripY():
		return areaStrip
	}
	return areaNone
}

func (m Model) clampTo(a area, x, y int) (int, int) {
	x = max(0, min(x, m.cols()-1))
	if a == areaMap {
		y = max(m.mapTop(), min(y, m.stripY()-1))
	} else {
		y = m.stripY()
	}
	return x, y
}

// App wires a Model to a running bubbletea program and the coordinator's
// event loop.
type App struct {
	program  *tea.Program
	grid     *grid
	mapView  *MapView
	timeline *TimelineView
	bind     func(func(coordinator.Event) coordinator.Snapshot)
}

// NewApp creates the program. User events are queued, posted to loop in
// order and applied to the coordinator given to Bind.
func NewApp(ctx context.Context, loop *coordinator.Loop) *App {
	a := &App{grid: &grid{}}
	var handle func(coordinator.Event) coordinator.Snapshot
	out := newOutbox()
	go out.run(ctx, func(ev coordinator.Event) {
		loop.Post(func() {
			if handle == nil {
				return
			}
			a.program.Send(statusMsg(handle(ev)))
		})
	})
	a.bind = func(h func(coordinator.Event) coordinator.Snapshot) { handle = h }

	a.program = tea.NewProgram(newModel(out.push, a.grid),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	a.mapView = &MapView{send: a.program, grid: a.grid}
	a.timeline = &TimelineView{send: a.program, grid: a.grid}
	return a
}

// MapView returns the map collaborator for the coordinator.
func (a *App) MapView() *MapView { return a.mapView }

// TimelineView returns the timeline collaborator for the coordinator.
func (a *App) TimelineView() *TimelineView { return a.timeline }

// Bind routes user events to c. Call it before the loop starts.
func (a *App) Bind(c *coordinator.Coordinator) {
	a.bind(func(ev coordinator.Event) coordinator.Snapshot {
		c.Handle(ev)
		return c.Snapshot()
	})
}

// Refresh pushes the current state of c to the status line. Call it on the
// event loop.
func (a *App) Refresh(c *coordinator.Coordinator) {
	a.program.Send(statusMsg(c.Snapshot()))
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run() error {
	if _, err := a.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
