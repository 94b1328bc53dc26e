package coordinator

import (
	"time"

	"github.com/couchcryptid/quake-view/internal/animation"
	"github.com/couchcryptid/quake-view/internal/domain"
)

// state is the single mutable application state. Only the event goroutine
// touches it.
type state struct {
	year       int
	predicates domain.PredicateSet
	// filtered is the last predicate evaluation; visible is the last frame
	// pushed to the views, which is a prefix of filtered while animating.
	filtered  []domain.Record
	visible   []domain.Record
	bounds    domain.TemporalBound
	brushMode bool
	tileStyle domain.TileStyle
	seq       uint64
}

// Snapshot is a copy of the application state for API clients.
type Snapshot struct {
	Seq        uint64               `json:"seq"`
	Year       int                  `json:"year"`
	MinYear    int                  `json:"min_year"`
	MaxYear    int                  `json:"max_year"`
	Predicates domain.Snapshot      `json:"predicates"`
	Bounds     domain.TemporalBound `json:"bounds"`
	Filtered   int                  `json:"filtered"`
	Visible    []domain.Record      `json:"visible"`
	BrushMode  bool                 `json:"brush_mode"`
	TileStyle  domain.TileStyle     `json:"tile_style"`
	Animation  AnimationSnapshot    `json:"animation"`
}

// AnimationSnapshot reports playback progress.
type AnimationSnapshot struct {
	State    animation.State `json:"state"`
	Progress int             `json:"progress"`
	Interval time.Duration   `json:"interval_ns"`
}
