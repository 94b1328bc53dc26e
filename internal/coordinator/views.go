package coordinator

import (
	"time"

	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
)

// MapView is the geographic view the coordinator drives.
type MapView interface {
	GeoProjector
	Render(records []domain.Record)
	ClearBrush()
	SetBrushEnabled(enabled bool)
	SetPanningEnabled(enabled bool)
	SetTileStyle(style domain.TileStyle)
}

// TimelineView is the time-axis view the coordinator drives.
type TimelineView interface {
	TimeProjector
	Render(records []domain.Record, bounds domain.TemporalBound)
	ClearBrush()
	CurrentMarks() []view.Mark
	Highlight(key string, on bool)
}

// GeoProjector converts map container pixels to coordinates.
type GeoProjector interface {
	ProjectPixelToGeo(p view.Point) domain.GeoPoint
}

// TimeProjector converts times to timeline pixels.
type TimeProjector interface {
	ProjectTimeToPixel(t time.Time) float64
}

// Frame is one set pushed to the views.
type Frame struct {
	Seq      uint64               `json:"seq"`
	Year     int                  `json:"year"`
	Animated bool                 `json:"animated"`
	Bounds   domain.TemporalBound `json:"bounds"`
	Records  []domain.Record      `json:"records"`
}

// FrameSink observes every frame pushed to the views. Publish runs on the
// event goroutine and must not block.
type FrameSink interface {
	Publish(frame Frame)
}
