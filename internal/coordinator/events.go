package coordinator

import (
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
)

// Event is a user interaction delivered to the coordinator. Control surfaces
// build events and hand them to Handle on the event goroutine.
type Event interface {
	apply(c *Coordinator)
}

// MapBrushEnded commits a rectangle drawn on the map. A nil Projector uses
// the coordinator's map view.
type MapBrushEnded struct {
	Rect      view.PixelRect
	Projector GeoProjector
}

// TimelineBrushEnded commits a horizontal extent on the timeline. Nil
// Projector and Marks use the coordinator's timeline view.
type TimelineBrushEnded struct {
	Range     view.PixelRange
	Projector TimeProjector
	Marks     []view.Mark
}

// LegendClicked selects one magnitude class.
type LegendClicked struct {
	Class domain.Range
}

// FilterInput is one numeric filter row: a checkbox and two bounds.
type FilterInput struct {
	Enabled bool         `json:"enabled"`
	Range   domain.Range `json:"range"`
}

// FiltersApplied commits the magnitude and depth filter rows.
type FiltersApplied struct {
	Magnitude FilterInput
	Depth     FilterInput
}

// FiltersCleared removes every predicate.
type FiltersCleared struct{}

// BrushesReset removes the spatial and temporal predicates.
type BrushesReset struct{}

// YearChanged switches the displayed year.
type YearChanged struct {
	Year int
}

// YearStepped moves the displayed year by Delta.
type YearStepped struct {
	Delta int
}

// BrushModeToggled switches the map between brushing and panning.
type BrushModeToggled struct {
	Enabled bool
}

// TileStyleSelected switches the map base layer.
type TileStyleSelected struct {
	Name string
}

// MarkerHovered reports the pointer entering or leaving a map marker.
type MarkerHovered struct {
	Key string
	On  bool
}

// AnimationPlayed starts or resumes playback of the filtered set.
type AnimationPlayed struct{}

// AnimationToggled plays when not playing and pauses otherwise.
type AnimationToggled struct{}

// AnimationPaused pauses playback.
type AnimationPaused struct{}

// AnimationStopped stops playback and restores the filtered set.
type AnimationStopped struct{}

// AnimationSpeedChanged steps the cadence faster or slower.
type AnimationSpeedChanged struct {
	Faster bool
}

func (e MapBrushEnded) apply(c *Coordinator)      { c.OnMapBrushEnd(e.Rect, e.Projector) }
func (e TimelineBrushEnded) apply(c *Coordinator) { c.OnTimelineBrushEnd(e.Range, e.Projector, e.Marks) }
func (e LegendClicked) apply(c *Coordinator)      { c.OnLegendClick(e.Class) }
func (e FiltersApplied) apply(c *Coordinator)     { c.OnApplyFilters(e.Magnitude, e.Depth) }
func (FiltersCleared) apply(c *Coordinator)       { c.OnClearFilters() }
func (BrushesReset) apply(c *Coordinator)         { c.OnResetBrushes() }
func (e YearChanged) apply(c *Coordinator)        { c.OnYearChange(e.Year) }
func (e YearStepped) apply(c *Coordinator)        { c.OnYearChange(c.state.year + e.Delta) }
func (e BrushModeToggled) apply(c *Coordinator)   { c.OnBrushModeToggle(e.Enabled) }
func (e TileStyleSelected) apply(c *Coordinator)  { c.OnTileStyleChange(e.Name) }
func (e MarkerHovered) apply(c *Coordinator)      { c.OnMarkerHover(e.Key, e.On) }
func (AnimationPlayed) apply(c *Coordinator)      { c.Play() }
func (AnimationToggled) apply(c *Coordinator)     { c.TogglePlay() }
func (AnimationPaused) apply(c *Coordinator)      { c.Pause() }
func (AnimationStopped) apply(c *Coordinator)     { c.Stop() }

func (e AnimationSpeedChanged) apply(c *Coordinator) {
	if e.Faster {
		c.Faster()
		return
	}
	c.Slower()
}
