package domain

// MagnitudeSource records which control last set the magnitude constraint.
type MagnitudeSource string

const (
	MagnitudeNone   MagnitudeSource = ""
	MagnitudeFilter MagnitudeSource = "filter"
	MagnitudeLegend MagnitudeSource = "legend"
)

// PredicateSet holds at most one active predicate per dimension and combines
// them with logical AND. The zero value is fully unconstrained.
//
// The numeric magnitude filter and the legend class share one slot: whichever
// was written last is the active magnitude constraint.
type PredicateSet struct {
	spatial         *SpatialBound
	temporal        *TemporalBound
	magnitude       *Range
	magnitudeSource MagnitudeSource
	depth           *Range
}

// SetSpatial replaces the spatial predicate; nil clears it.
func (p *PredicateSet) SetSpatial(b *SpatialBound) {
	p.spatial = clonePtr(b)
}

// SetTemporal replaces the temporal predicate; nil clears it.
func (p *PredicateSet) SetTemporal(b *TemporalBound) {
	p.temporal = clonePtr(b)
}

// SetMagnitude replaces the magnitude constraint with a numeric filter range.
// nil clears the magnitude dimension, including a legend class.
func (p *PredicateSet) SetMagnitude(r *Range) {
	p.magnitude = clonePtr(r)
	p.magnitudeSource = MagnitudeNone
	if r != nil {
		p.magnitudeSource = MagnitudeFilter
	}
}

// SetLegendClass replaces the magnitude constraint with a legend class range.
// nil clears the constraint only when it came from a legend class.
func (p *PredicateSet) SetLegendClass(r *Range) {
	if r == nil {
		if p.magnitudeSource == MagnitudeLegend {
			p.magnitude = nil
			p.magnitudeSource = MagnitudeNone
		}
		return
	}
	p.magnitude = clonePtr(r)
	p.magnitudeSource = MagnitudeLegend
}

// SetDepth replaces the depth predicate; nil clears it.
func (p *PredicateSet) SetDepth(r *Range) {
	p.depth = clonePtr(r)
}

// ClearAll resets every dimension.
func (p *PredicateSet) ClearAll() {
	*p = PredicateSet{}
}

// Spatial returns the active spatial predicate, if any.
func (p *PredicateSet) Spatial() (SpatialBound, bool) { return deref(p.spatial) }

// Temporal returns the active temporal predicate, if any.
func (p *PredicateSet) Temporal() (TemporalBound, bool) { return deref(p.temporal) }

// Magnitude returns the active magnitude constraint and where it came from.
func (p *PredicateSet) Magnitude() (Range, MagnitudeSource, bool) {
	r, ok := deref(p.magnitude)
	return r, p.magnitudeSource, ok
}

// Depth returns the active depth predicate, if any.
func (p *PredicateSet) Depth() (Range, bool) { return deref(p.depth) }

// Matches reports whether a single record passes every active predicate.
func (p *PredicateSet) Matches(r Record) bool {
	if p.spatial != nil && !p.spatial.Contains(r.Latitude, r.Longitude) {
		return false
	}
	if p.temporal != nil && !p.temporal.Contains(r.Time) {
		return false
	}
	if p.magnitude != nil && !p.magnitude.Contains(r.Magnitude) {
		return false
	}
	if p.depth != nil && !p.depth.Contains(r.Depth) {
		return false
	}
	return true
}

// Evaluate returns the records that pass every active predicate, in input
// order. The input slice is not modified and the result never aliases it.
func (p *PredicateSet) Evaluate(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if p.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot is a serializable view of the active predicates.
type Snapshot struct {
	Spatial         *SpatialBound   `json:"spatial,omitempty"`
	Temporal        *TemporalBound  `json:"temporal,omitempty"`
	Magnitude       *Range          `json:"magnitude,omitempty"`
	MagnitudeSource MagnitudeSource `json:"magnitude_source,omitempty"`
	Depth           *Range          `json:"depth,omitempty"`
}

// Snapshot copies the active predicates.
func (p *PredicateSet) Snapshot() Snapshot {
	return Snapshot{
		Spatial:         clonePtr(p.spatial),
		Temporal:        clonePtr(p.temporal),
		Magnitude:       clonePtr(p.magnitude),
		MagnitudeSource: p.magnitudeSource,
		Depth:           clonePtr(p.depth),
	}
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func deref[T any](v *T) (T, bool) {
	if v == nil {
		var zero T
		return zero, false
	}
	return *v, true
}
