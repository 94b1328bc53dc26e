package view

import (
	"testing"
	"time"

	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewport_CentreRoundTrip(t *testing.T) {
	vp := Viewport{Center: domain.GeoPoint{Lat: 30, Lon: 10}, Zoom: 3, Width: 800, Height: 400}

	centre := vp.ContainerPointToGeo(Point{X: 400, Y: 200})
	assert.InDelta(t, 30, centre.Lat, 1e-9)
	assert.InDelta(t, 10, centre.Lon, 1e-9)

	p := vp.GeoToContainerPoint(domain.GeoPoint{Lat: -12.5, Lon: 77})
	back := vp.ContainerPointToGeo(p)
	assert.InDelta(t, -12.5, back.Lat, 1e-9)
	assert.InDelta(t, 77, back.Lon, 1e-9)
}

func TestViewport_Orientation(t *testing.T) {
	vp := DefaultViewport()
	topLeft := vp.ContainerPointToGeo(Point{X: 0, Y: 0})
	bottomRight := vp.ContainerPointToGeo(Point{X: float64(vp.Width), Y: float64(vp.Height)})

	assert.Greater(t, topLeft.Lat, bottomRight.Lat)
	assert.Less(t, topLeft.Lon, bottomRight.Lon)
	// At zoom 2 the world is 1024px wide, so a 1024px container spans 360 degrees.
	assert.InDelta(t, 360, bottomRight.Lon-topLeft.Lon, 1e-9)
}

func TestEquirect(t *testing.T) {
	e := Equirect{Cols: 72, Rows: 36}

	assert.Equal(t, domain.GeoPoint{Lat: 90, Lon: -180}, e.ContainerPointToGeo(Point{}))
	assert.Equal(t, domain.GeoPoint{Lat: -90, Lon: 180}, e.ContainerPointToGeo(Point{X: 72, Y: 36}))

	col, row := e.Cell(domain.GeoPoint{Lat: 0, Lon: 0})
	assert.Equal(t, 36, col)
	assert.Equal(t, 18, row)

	col, row = e.Cell(domain.GeoPoint{Lat: -90, Lon: 180})
	assert.Equal(t, 71, col)
	assert.Equal(t, 35, row)
}

func TestTimeScale(t *testing.T) {
	b := domain.YearBounds(2020)
	s := TimeScale{Domain: b, RangeMin: 50, RangeMax: 1148}

	assert.InDelta(t, 50, s.Project(b.Start), 1e-9)
	assert.InDelta(t, 1148, s.Project(b.End), 1e-9)
	mid := b.Start.Add(b.End.Sub(b.Start) / 2)
	assert.InDelta(t, 599, s.Project(mid), 1e-6)

	degenerate := TimeScale{Domain: domain.TemporalBound{Start: b.Start, End: b.Start}, RangeMin: 50, RangeMax: 100}
	assert.Equal(t, 50.0, degenerate.Project(b.End))
}

func TestPixelExtents(t *testing.T) {
	assert.True(t, PixelRect{X0: 1, Y0: 2, X1: 1, Y1: 9}.Empty())
	assert.False(t, PixelRect{X0: 1, Y0: 2, X1: 3, Y1: 9}.Empty())
	assert.True(t, PixelRange{X0: 4, X1: 4}.Empty())

	lo, hi := PixelRange{X0: 9, X1: 3}.Ordered()
	assert.Equal(t, 3.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestTimeline_RenderBuildsMarks(t *testing.T) {
	tl := NewTimeline(1198)
	records := []domain.Record{
		{Time: time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), Magnitude: 4},
		{Time: time.Date(2020, time.September, 1, 0, 0, 0, 0, time.UTC), Magnitude: 5},
	}

	tl.Render(records, domain.YearBounds(2020))

	marks := tl.CurrentMarks()
	require.Len(t, marks, 2)
	assert.Equal(t, domain.KeyOf(records[0]), marks[0].Key)
	assert.Less(t, marks[0].X, marks[1].X)
	assert.Equal(t, marks[1].X, tl.ProjectTimeToPixel(records[1].Time))

	tl.Highlight(marks[0].Key, true)
	assert.True(t, tl.Highlighted(marks[0].Key))
	tl.Render(records, domain.YearBounds(2020))
	assert.False(t, tl.Highlighted(marks[0].Key))
}

func TestMap_State(t *testing.T) {
	m := NewMap(DefaultViewport())
	assert.True(t, m.PanningEnabled())
	assert.Equal(t, domain.DefaultTileStyle, m.TileStyle().Name)

	m.SetBrushEnabled(true)
	m.SetPanningEnabled(false)
	m.ClearBrush()
	m.Render([]domain.Record{{Magnitude: 3}})

	assert.True(t, m.BrushEnabled())
	assert.False(t, m.PanningEnabled())
	assert.Equal(t, 1, m.BrushClears())
	assert.Len(t, m.Records(), 1)
}
