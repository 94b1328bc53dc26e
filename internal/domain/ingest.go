package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names read from the tabular input.
const (
	FieldTime      = "time"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldMagnitude = "mag"
	FieldDepth     = "depth"
)

var (
	// ErrMissingField marks a required column that is absent or blank.
	ErrMissingField = errors.New("missing field")
	// ErrNotNumeric marks a numeric column whose value does not parse.
	ErrNotNumeric = errors.New("not numeric")
	// ErrBadTimestamp marks a time column that matches no accepted layout.
	ErrBadTimestamp = errors.New("unparseable timestamp")
)

// timeLayouts are tried in order when parsing the time column.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseError describes one coerced field of a raw row.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRecord converts a raw row into a Record. It never drops the row:
// unusable numeric fields become 0 and an unusable time becomes the zero
// instant. The returned error joins one *ParseError per coerced field and is
// nil when every field parsed cleanly.
func ParseRecord(row RawRow) (Record, error) {
	var errs []error

	number := func(field string) float64 {
		v, err := parseFloatOrZero(field, row[field])
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	rec := Record{
		Latitude:  number(FieldLatitude),
		Longitude: number(FieldLongitude),
		Magnitude: number(FieldMagnitude),
		Depth:     number(FieldDepth),
	}

	ts, err := parseTimestamp(row[FieldTime])
	if err != nil {
		errs = append(errs, err)
	}
	rec.Time = ts

	return rec, errors.Join(errs...)
}

// parseFloatOrZero parses a finite numeric column, returning 0 and a
// *ParseError otherwise.
func parseFloatOrZero(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ParseError{Field: field, Value: raw, Err: ErrMissingField}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Field: field, Value: raw, Err: ErrNotNumeric}
	}
	return v, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ParseError{Field: FieldTime, Value: raw, Err: ErrMissingField}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ParseError{Field: FieldTime, Value: raw, Err: ErrBadTimestamp}
}
