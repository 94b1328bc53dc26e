package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// maxBodyBytes caps control request bodies.
const maxBodyBytes = 1 << 16

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/legend", handleLegend)
	mux.HandleFunc("GET /api/styles", handleStyles)

	mux.HandleFunc("POST /api/filters", s.handleFilters)
	mux.HandleFunc("POST /api/filters/clear", s.fixed(coordinator.FiltersCleared{}))
	mux.HandleFunc("POST /api/legend", s.handleLegendClick)
	mux.HandleFunc("POST /api/brushes/reset", s.fixed(coordinator.BrushesReset{}))
	mux.HandleFunc("POST /api/brush/map", s.handleMapBrush)
	mux.HandleFunc("POST /api/brush/timeline", s.handleTimelineBrush)
	mux.HandleFunc("POST /api/brush/mode", s.handleBrushMode)
	mux.HandleFunc("POST /api/map/viewport", s.handleViewport)
	mux.HandleFunc("POST /api/hover", s.handleHover)
	mux.HandleFunc("POST /api/year", s.handleYear)
	mux.HandleFunc("POST /api/style", s.handleStyle)
	mux.HandleFunc("POST /api/animation/{action}", s.handleAnimation)
}

// bound accepts a JSON number, a numeric string or null. Anything that does
// not parse as a number is unconstrained.
type bound float64

func (b *bound) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*b = bound(x)
	case string:
		*b = bound(domain.ParseBound(x))
	default:
		*b = bound(math.NaN())
	}
	return nil
}

type filterRow struct {
	Enabled bool   `json:"enabled"`
	Min     *bound `json:"min"`
	Max     *bound `json:"max"`
}

func (f filterRow) input() coordinator.FilterInput {
	r := domain.Unbounded()
	if f.Min != nil {
		r.Min = float64(*f.Min)
	}
	if f.Max != nil {
		r.Max = float64(*f.Max)
	}
	return coordinator.FilterInput{Enabled: f.Enabled, Range: r}
}

type filtersRequest struct {
	Magnitude filterRow `json:"magnitude"`
	Depth     filterRow `json:"depth"`
}

type legendRequest struct {
	Class int `json:"class"`
}

type mapBrushRequest struct {
	view.PixelRect
	// Viewport is the client's map state when the brush was committed.
	Viewport *view.Viewport `json:"viewport,omitempty"`
}

type brushModeRequest struct {
	Enabled bool `json:"enabled"`
}

type hoverRequest struct {
	Key string `json:"key"`
	On  bool   `json:"on"`
}

type yearRequest struct {
	Year  *int `json:"year,omitempty"`
	Delta int  `json:"delta,omitempty"`
}

type styleRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var snap coordinator.Snapshot
	if err := s.loop.Do(r.Context(), func() { snap = s.coord.Snapshot() }); err != nil {
		s.writeLoopError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func handleLegend(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.LegendClasses)
}

func handleStyles(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.TileStyles())
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.apply(w, r, coordinator.FiltersApplied{Magnitude: req.Magnitude.input(), Depth: req.Depth.input()})
}

func (s *Server) handleLegendClick(w http.ResponseWriter, r *http.Request) {
	var req legendRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Class < 0 || req.Class >= len(domain.LegendClasses) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("legend class %d out of range", req.Class))
		return
	}
	s.apply(w, r, coordinator.LegendClicked{Class: domain.LegendClasses[req.Class].Range})
}

func (s *Server) handleMapBrush(w http.ResponseWriter, r *http.Request) {
	var req mapBrushRequest
	if !s.decode(w, r, &req) {
		return
	}
	ev := coordinator.MapBrushEnded{Rect: req.PixelRect}
	if req.Viewport != nil {
		ev.Projector = *req.Viewport
	}
	s.apply(w, r, ev)
}

func (s *Server) handleTimelineBrush(w http.ResponseWriter, r *http.Request) {
	var req view.PixelRange
	if !s.decode(w, r, &req) {
		return
	}
	s.apply(w, r, coordinator.TimelineBrushEnded{Range: req})
}

func (s *Server) handleBrushMode(w http.ResponseWriter, r *http.Request) {
	var req brushModeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.apply(w, r, coordinator.BrushModeToggled{Enabled: req.Enabled})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req view.Viewport
	if !s.decode(w, r, &req) {
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("viewport width and height must be positive"))
		return
	}
	if err := s.loop.Do(r.Context(), func() { s.mapView.SetViewport(req) }); err != nil {
		s.writeLoopError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, req)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.apply(w, r, coordinator.MarkerHovered{Key: req.Key, On: req.On})
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	var req yearRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Year != nil {
		s.apply(w, r, coordinator.YearChanged{Year: *req.Year})
		return
	}
	s.apply(w, r, coordinator.YearStepped{Delta: req.Delta})
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	var req styleRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.apply(w, r, coordinator.TileStyleSelected{Name: req.Name})
}

func (s *Server) handleAnimation(w http.ResponseWriter, r *http.Request) {
	var ev coordinator.Event
	switch action := r.PathValue("action"); action {
	case "play":
		ev = coordinator.AnimationPlayed{}
	case "toggle":
		ev = coordinator.AnimationToggled{}
	case "pause":
		ev = coordinator.AnimationPaused{}
	case "stop":
		ev = coordinator.AnimationStopped{}
	case "faster":
		ev = coordinator.AnimationSpeedChanged{Faster: true}
	case "slower":
		ev = coordinator.AnimationSpeedChanged{Faster: false}
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown animation action %q", action))
		return
	}
	s.apply(w, r, ev)
}

// fixed handles routes whose event carries no payload.
func (s *Server) fixed(ev coordinator.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { s.apply(w, r, ev) }
}

// apply hands ev to the coordinator on the event loop and replies with the
// resulting state.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, ev coordinator.Event) {
	var snap coordinator.Snapshot
	err := s.loop.Do(r.Context(), func() {
		s.coord.Handle(ev)
		snap = s.coord.Snapshot()
	})
	if err != nil {
		s.writeLoopError(w, err)
		return
	}
	s.logger.Debug("event applied", "event", fmt.Sprintf("%T", ev), "seq", snap.Seq)
	sharedobs.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

func (s *Server) writeLoopError(w http.ResponseWriter, err error) {
	s.logger.Warn("event loop unavailable", "error", err)
	writeError(w, http.StatusServiceUnavailable, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
