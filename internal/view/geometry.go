// Package view provides the pixel geometry shared by the map and timeline
// views, plus headless implementations of both that keep the last rendered
// set in memory.
package view

import (
	"math"
	"time"

	"github.com/couchcryptid/quake-view/internal/domain"
)

// Point is a position in view-container pixels, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PixelRect is a committed brush rectangle from (X0,Y0) to (X1,Y1).
type PixelRect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Empty reports a click without a drag.
func (r PixelRect) Empty() bool {
	return r.X0 == r.X1 || r.Y0 == r.Y1
}

// PixelRange is a committed horizontal brush extent.
type PixelRange struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
}

// Empty reports a click without a drag.
func (r PixelRange) Empty() bool { return r.X0 == r.X1 }

// Ordered returns the extent with X0 <= X1.
func (r PixelRange) Ordered() (lo, hi float64) {
	return math.Min(r.X0, r.X1), math.Max(r.X0, r.X1)
}

// Mark is one rendered timeline mark.
type Mark struct {
	Key  string    `json:"key"`
	Time time.Time `json:"time"`
	X    float64   `json:"x"`
}

// tileSize is the Web Mercator tile edge in pixels at zoom 0.
const tileSize = 256

// Viewport describes a Web Mercator map container, the way slippy-map
// libraries position it: a centre, a zoom level and a pixel size.
type Viewport struct {
	Center domain.GeoPoint `json:"center"`
	Zoom   float64         `json:"zoom"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
}

// DefaultViewport matches the initial world view: centred on 30N 0E at zoom 2.
func DefaultViewport() Viewport {
	return Viewport{Center: domain.GeoPoint{Lat: 30, Lon: 0}, Zoom: 2, Width: 1024, Height: 600}
}

func (v Viewport) worldSize() float64 {
	return tileSize * math.Pow(2, v.Zoom)
}

func (v Viewport) project(p domain.GeoPoint) Point {
	size := v.worldSize()
	lat := math.Max(math.Min(p.Lat, maxMercatorLat), -maxMercatorLat) * math.Pi / 180
	return Point{
		X: (p.Lon + 180) / 360 * size,
		Y: (1 - math.Log(math.Tan(lat)+1/math.Cos(lat))/math.Pi) / 2 * size,
	}
}

func (v Viewport) unproject(p Point) domain.GeoPoint {
	size := v.worldSize()
	n := math.Pi * (1 - 2*p.Y/size)
	return domain.GeoPoint{
		Lat: math.Atan(math.Sinh(n)) * 180 / math.Pi,
		Lon: p.X/size*360 - 180,
	}
}

// maxMercatorLat is where Web Mercator is clipped.
const maxMercatorLat = 85.0511287798

func (v Viewport) origin() Point {
	c := v.project(v.Center)
	return Point{X: c.X - float64(v.Width)/2, Y: c.Y - float64(v.Height)/2}
}

// ContainerPointToGeo converts a container pixel to a coordinate.
func (v Viewport) ContainerPointToGeo(p Point) domain.GeoPoint {
	o := v.origin()
	return v.unproject(Point{X: o.X + p.X, Y: o.Y + p.Y})
}

// ProjectPixelToGeo is ContainerPointToGeo under the map projector name.
func (v Viewport) ProjectPixelToGeo(p Point) domain.GeoPoint { return v.ContainerPointToGeo(p) }

// GeoToContainerPoint converts a coordinate to a container pixel.
func (v Viewport) GeoToContainerPoint(g domain.GeoPoint) Point {
	o := v.origin()
	w := v.project(g)
	return Point{X: w.X - o.X, Y: w.Y - o.Y}
}

// Equirect maps a cols x rows character grid onto the whole globe.
type Equirect struct {
	Cols int
	Rows int
}

// ContainerPointToGeo converts a cell-edge position to a coordinate.
func (e Equirect) ContainerPointToGeo(p Point) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: 90 - p.Y/float64(e.Rows)*180,
		Lon: -180 + p.X/float64(e.Cols)*360,
	}
}

// ProjectPixelToGeo is ContainerPointToGeo under the map projector name.
func (e Equirect) ProjectPixelToGeo(p Point) domain.GeoPoint { return e.ContainerPointToGeo(p) }

// Cell returns the grid cell holding a coordinate, clamped to the grid.
func (e Equirect) Cell(g domain.GeoPoint) (col, row int) {
	col = int((g.Lon + 180) / 360 * float64(e.Cols))
	row = int((90 - g.Lat) / 180 * float64(e.Rows))
	return clamp(col, 0, e.Cols-1), clamp(row, 0, e.Rows-1)
}

// TimeScale is a linear time-to-pixel scale over a temporal domain.
type TimeScale struct {
	Domain   domain.TemporalBound
	RangeMin float64
	RangeMax float64
}

// Project maps t to a pixel position; t outside the domain extrapolates.
func (s TimeScale) Project(t time.Time) float64 {
	span := s.Domain.End.Sub(s.Domain.Start)
	if span <= 0 {
		return s.RangeMin
	}
	frac := float64(t.Sub(s.Domain.Start)) / float64(span)
	return s.RangeMin + frac*(s.RangeMax-s.RangeMin)
}

// ProjectTimeToPixel is Project under the timeline projector name.
func (s TimeScale) ProjectTimeToPixel(t time.Time) float64 { return s.Project(t) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
