// Package store holds the per-year record sets loaded at start-up.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"

	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/couchcryptid/quake-view/internal/observability"
)

// ErrYearNotLoaded is returned by Err for years that were never requested.
var ErrYearNotLoaded = errors.New("year not loaded")

// TabularLoader yields the raw rows of one year's input.
type TabularLoader interface {
	Parse(ctx context.Context, year int) ([]domain.RawRow, error)
}

// YearStats summarizes the ingestion of one year.
type YearStats struct {
	Year       int   `json:"year"`
	Records    int   `json:"records"`
	Warnings   int   `json:"warnings"`
	Collisions int   `json:"key_collisions"`
	Err        error `json:"-"`
}

// Store maps a year to its records in source order. It is populated once by
// Load and never mutated afterwards, so concurrent reads are safe.
type Store struct {
	records map[int][]domain.Record
	stats   map[int]YearStats
}

// Load ingests every requested year. A year whose input cannot be read is
// logged and left empty; the other years are unaffected.
func Load(ctx context.Context, loader TabularLoader, years []int, logger *slog.Logger, metrics *observability.Metrics) *Store {
	s := &Store{
		records: make(map[int][]domain.Record, len(years)),
		stats:   make(map[int]YearStats, len(years)),
	}

	for _, year := range years {
		st := s.loadYear(ctx, loader, year, logger, metrics)
		s.stats[year] = st
		metrics.RecordsLoaded.WithLabelValues(strconv.Itoa(year)).Set(float64(st.Records))
		if st.Err != nil {
			logger.Error("year ingestion failed", "year", year, "error", st.Err)
			continue
		}
		logger.Info("year loaded", "year", year, "records", st.Records, "warnings", st.Warnings)
	}

	return s
}

func (s *Store) loadYear(ctx context.Context, loader TabularLoader, year int, logger *slog.Logger, metrics *observability.Metrics) YearStats {
	st := YearStats{Year: year}

	rows, err := loader.Parse(ctx, year)
	if err != nil {
		st.Err = fmt.Errorf("load year %d: %w", year, err)
		return st
	}

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := domain.ParseRecord(row)
		if err != nil {
			st.Warnings += logParseWarnings(logger, year, i, err)
		}
		records = append(records, rec)
	}
	metrics.IngestWarnings.Add(float64(st.Warnings))

	if collisions := domain.KeyCollisions(records); len(collisions) > 0 {
		st.Collisions = len(collisions)
		logger.Warn("cross-view keys are not unique within year",
			"year", year,
			"colliding_keys", len(collisions),
		)
	}

	s.records[year] = records
	st.Records = len(records)
	return st
}

// logParseWarnings emits one warning per coerced field and returns how many
// were logged.
func logParseWarnings(logger *slog.Logger, year, row int, err error) int {
	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}

	n := 0
	for _, e := range errs {
		var pe *domain.ParseError
		if !errors.As(e, &pe) {
			continue
		}
		msg := "field coerced to zero"
		if pe.Field == domain.FieldMagnitude && errors.Is(pe, domain.ErrMissingField) {
			msg = "missing mag value"
		}
		logger.Warn(msg, "year", year, "row", row, "field", pe.Field, "value", pe.Value, "error", pe.Err)
		n++
	}
	return n
}

// Get returns a copy of the unfiltered records of a year in source order.
// Unknown or failed years yield an empty set.
func (s *Store) Get(year int) []domain.Record {
	return slices.Clone(s.records[year])
}

// Has reports whether a year was loaded successfully.
func (s *Store) Has(year int) bool {
	_, ok := s.records[year]
	return ok
}

// Err returns the ingestion error of a year, ErrYearNotLoaded if the year was
// never requested, or nil on success.
func (s *Store) Err(year int) error {
	st, ok := s.stats[year]
	if !ok {
		return ErrYearNotLoaded
	}
	return st.Err
}

// Stats returns the ingestion summary of every requested year, ascending.
func (s *Store) Stats() []YearStats {
	out := make([]YearStats, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Years returns the successfully loaded years, ascending.
func (s *Store) Years() []int {
	out := make([]int, 0, len(s.records))
	for y := range s.records {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
