package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Range bounds one numeric dimension. A NaN bound is unconstrained.
type Range struct {
	Min float64
	Max float64
	// MaxExclusive turns the upper bound from <= into <. Legend classes use it.
	MaxExclusive bool
}

// Unbounded returns a Range that accepts every value.
func Unbounded() Range {
	return Range{Min: math.NaN(), Max: math.NaN()}
}

// Between returns the inclusive range [min, max]. Either bound may be NaN.
func Between(min, max float64) Range {
	return Range{Min: min, Max: max}
}

// HalfOpen returns [min, max). Either bound may be NaN.
func HalfOpen(min, max float64) Range {
	return Range{Min: min, Max: max, MaxExclusive: true}
}

// ParseBound parses a user-entered bound. Anything that is not a number
// yields NaN, which leaves that side of the range unconstrained.
func ParseBound(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Contains reports whether v satisfies the range.
func (r Range) Contains(v float64) bool {
	if !math.IsNaN(r.Min) && v < r.Min {
		return false
	}
	if math.IsNaN(r.Max) {
		return true
	}
	if r.MaxExclusive {
		return v < r.Max
	}
	return v <= r.Max
}

type rangeJSON struct {
	Min          *float64 `json:"min"`
	Max          *float64 `json:"max"`
	MaxExclusive bool     `json:"max_exclusive,omitempty"`
}

// MarshalJSON encodes NaN bounds as null.
func (r Range) MarshalJSON() ([]byte, error) {
	out := rangeJSON{MaxExclusive: r.MaxExclusive}
	if !math.IsNaN(r.Min) {
		out.Min = &r.Min
	}
	if !math.IsNaN(r.Max) {
		out.Max = &r.Max
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null or missing bounds as NaN.
func (r *Range) UnmarshalJSON(data []byte) error {
	var in rangeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Unbounded()
	r.MaxExclusive = in.MaxExclusive
	if in.Min != nil {
		r.Min = *in.Min
	}
	if in.Max != nil {
		r.Max = *in.Max
	}
	return nil
}

// GeoPoint is a WGS-84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SpatialBound is a geographic rectangle drawn on the map.
type SpatialBound struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// BoundFromCorners builds a SpatialBound from two opposite corners in any order.
func BoundFromCorners(a, b GeoPoint) SpatialBound {
	return SpatialBound{
		LatMin: math.Min(a.Lat, b.Lat),
		LatMax: math.Max(a.Lat, b.Lat),
		LonMin: math.Min(a.Lon, b.Lon),
		LonMax: math.Max(a.Lon, b.Lon),
	}
}

// Contains applies lonMin <= lon < lonMax and latMin < lat <= latMax.
// The asymmetry follows the pixel-to-geo conversion of the map brush and is
// kept for boundary-identical results.
func (b SpatialBound) Contains(lat, lon float64) bool {
	if lon < b.LonMin || lon >= b.LonMax {
		return false
	}
	return lat > b.LatMin && lat <= b.LatMax
}

// TemporalBound is a time window with both ends exclusive.
type TemporalBound struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// YearBounds returns the default window of a calendar year in UTC:
// Jan 1 00:00:00 through Dec 31 23:59:59.
func YearBounds(year int) TemporalBound {
	return TemporalBound{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
}

// Contains reports whether start < t < end.
func (b TemporalBound) Contains(t time.Time) bool {
	return t.After(b.Start) && t.Before(b.End)
}

// ShiftYears moves both ends by n calendar years, keeping the day-of-year span.
func (b TemporalBound) ShiftYears(n int) TemporalBound {
	return TemporalBound{
		Start: b.Start.AddDate(n, 0, 0),
		End:   b.End.AddDate(n, 0, 0),
	}
}
