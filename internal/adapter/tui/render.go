package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
	"github.com/guptarohit/asciigraph"
)

var (
	title     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	white     = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim       = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	selection = lipgloss.NewStyle().Background(lipgloss.Color("24"))
	highlight = lipgloss.NewStyle().Reverse(true)
)

// classColors maps legend colour names to terminal colours.
var classColors = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("33"),
	"green":  lipgloss.Color("40"),
	"yellow": lipgloss.Color("226"),
	"gold":   lipgloss.Color("178"),
	"orange": lipgloss.Color("208"),
	"red":    lipgloss.Color("196"),
}

func markerStyle(mag float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(classColors[domain.ClassFor(mag).Color])
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')
	b.WriteString(m.mapGrid())
	b.WriteString(m.strip())
	b.WriteByte('\n')
	b.WriteString(m.axis())
	b.WriteByte('\n')
	b.WriteString(m.graph())
	b.WriteByte('\n')
	b.WriteString(m.help())
	return b.String()
}

func (m Model) header() string {
	s := m.status
	anim := string(s.Animation.State)
	if anim == "" {
		anim = "stopped"
	}
	if s.Animation.Progress > 0 {
		anim = fmt.Sprintf("%s %d/%d", anim, s.Animation.Progress, s.Filtered)
	}
	brush := "pan"
	if m.brushMode {
		brush = "brush"
	}
	parts := []string{
		title.Render("quakeview"),
		white.Render(fmt.Sprintf("%d", s.Year)),
		dim.Render(fmt.Sprintf("%d shown", len(m.mapRecords))),
		dim.Render(m.style.Name),
		dim.Render(brush),
		dim.Render(fmt.Sprintf("%s @%s", anim, s.Animation.Interval)),
	}
	if m.notice != "" {
		parts = append(parts, white.Render(m.notice))
	}
	return strings.Join(parts, "  ")
}

// cellKey indexes one map grid cell.
type cellKey struct{ col, row int }

func (m Model) cells() map[cellKey]domain.Record {
	proj := view.Equirect{Cols: m.cols(), Rows: m.mapRows()}
	out := make(map[cellKey]domain.Record, len(m.mapRecords))
	for _, r := range m.mapRecords {
		col, row := proj.Cell(domain.GeoPoint{Lat: r.Latitude, Lon: r.Longitude})
		k := cellKey{col, row}
		if prev, ok := out[k]; !ok || r.Magnitude > prev.Magnitude {
			out[k] = r
		}
	}
	return out
}

// strongestIn returns the largest-magnitude record drawn in a map cell.
func (m Model) strongestIn(col, row int) (domain.Record, bool) {
	r, ok := m.cells()[cellKey{col, row}]
	return r, ok
}

func (m Model) inDrag(a area, x, y int) bool {
	d := m.drag
	if !d.active || d.area != a {
		return false
	}
	return x >= min(d.x0, d.x1) && x <= max(d.x0, d.x1) && y >= min(d.y0, d.y1) && y <= max(d.y0, d.y1)
}

func (m Model) mapGrid() string {
	cells := m.cells()
	var b strings.Builder
	for row := range m.mapRows() {
		for col := range m.cols() {
			ch := dimmer.Render("·")
			if r, ok := cells[cellKey{col, row}]; ok {
				st := markerStyle(r.Magnitude)
				if m.highlighted != "" && domain.KeyOf(r) == m.highlighted {
					st = st.Inherit(highlight)
				}
				ch = st.Render("●")
			}
			if m.inDrag(areaMap, col, row+m.mapTop()) {
				ch = selection.Render(ch)
			}
			b.WriteString(ch)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// strip draws one tick per column holding at least one mark.
func (m Model) strip() string {
	cols := m.cols()
	ticks := make([]int, cols)
	hot := -1
	for _, mk := range m.marks {
		c := int(mk.X + 0.5)
		if c < 0 || c >= cols {
			continue
		}
		ticks[c]++
		if mk.Key == m.highlighted {
			hot = c
		}
	}
	var b strings.Builder
	for c, n := range ticks {
		ch := dimmer.Render("─")
		switch {
		case c == hot:
			ch = highlight.Render("┃")
		case n > 0:
			ch = white.Render("│")
		}
		if m.inDrag(areaStrip, c, m.stripY()) {
			ch = selection.Render(ch)
		}
		b.WriteString(ch)
	}
	return b.String()
}

func (m Model) axis() string {
	if m.bounds.Start.IsZero() {
		return ""
	}
	left := m.bounds.Start.Format("2006-01-02")
	right := m.bounds.End.Format("2006-01-02")
	gap := max(m.cols()-len(left)-len(right), 1)
	return dim.Render(left + strings.Repeat(" ", gap) + right)
}

// histogram counts marks per column.
func (m Model) histogram() []float64 {
	hist := make([]float64, m.cols())
	for _, mk := range m.marks {
		c := int(mk.X + 0.5)
		if c >= 0 && c < len(hist) {
			hist[c]++
		}
	}
	return hist
}

func (m Model) graph() string {
	return asciigraph.Plot(m.histogram(),
		asciigraph.Height(graphHeight),
		asciigraph.Width(max(m.cols()-10, 10)),
		asciigraph.Precision(0),
	)
}

func (m Model) help() string {
	return dim.Render("←/→ year  space play/pause  s stop  +/- speed  1-6 legend  c clear  r reset brushes  b brush  m style  q quit")
}
