package domain

import (
	"fmt"
	"strconv"
	"time"
)

// RawRow is one tabular input row keyed by column name.
type RawRow map[string]string

// Record is a single earthquake event. Records are immutable once loaded.
type Record struct {
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Magnitude float64   `json:"mag"`
	Depth     float64   `json:"depth"`
}

// KeyOf returns the cross-view key of a record, matching the id the timeline
// gives each mark.
func KeyOf(r Record) string {
	return fmt.Sprintf("quake-%d", r.Time.UnixMilli())
}

// CompositeKeyOf extends KeyOf with the epicentre so that simultaneous events
// at different places stay distinct.
func CompositeKeyOf(r Record) string {
	return fmt.Sprintf("quake-%d-%.4f-%.4f", r.Time.UnixMilli(), r.Latitude, r.Longitude)
}

// KeyCollisions returns every KeyOf value shared by more than one record,
// mapped to the number of records sharing it.
func KeyCollisions(records []Record) map[string]int {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[KeyOf(r)]++
	}
	collisions := make(map[string]int)
	for k, n := range counts {
		if n > 1 {
			collisions[k] = n
		}
	}
	return collisions
}

// Describe formats a record for tooltips and log lines.
func Describe(r Record) string {
	return fmt.Sprintf("Time: %s | Magnitude: %.2f | Depth: %s km",
		r.Time.UTC().Format("January 02, 2006 03:04 PM"),
		r.Magnitude,
		strconv.FormatFloat(r.Depth, 'f', -1, 64),
	)
}
