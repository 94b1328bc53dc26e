// Package sqlite reads and writes yearly earthquake rows in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/couchcryptid/quake-view/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS quakes (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	year      INTEGER NOT NULL,
	time      TEXT,
	latitude  TEXT,
	longitude TEXT,
	mag       TEXT,
	depth     TEXT
);
CREATE INDEX IF NOT EXISTS idx_quakes_year ON quakes(year, id);
`

// Source holds rows exactly as they were imported, so the same coercion
// rules apply as for CSV input.
type Source struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection; SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Source{db: db}, nil
}

// Close closes the database.
func (s *Source) Close() error {
	return s.db.Close()
}

// Parse returns the rows of year in import order. It implements
// store.TabularLoader. NULL cells are reported as blank.
func (s *Source) Parse(ctx context.Context, year int) ([]domain.RawRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, latitude, longitude, mag, depth FROM quakes WHERE year = ? ORDER BY id`, year)
	if err != nil {
		return nil, fmt.Errorf("query year %d: %w", year, err)
	}
	defer rows.Close()

	var out []domain.RawRow
	for rows.Next() {
		var ts, lat, lon, mag, depth sql.NullString
		if err := rows.Scan(&ts, &lat, &lon, &mag, &depth); err != nil {
			return nil, fmt.Errorf("scan year %d: %w", year, err)
		}
		out = append(out, domain.RawRow{
			domain.FieldTime:      ts.String,
			domain.FieldLatitude:  lat.String,
			domain.FieldLongitude: lon.String,
			domain.FieldMagnitude: mag.String,
			domain.FieldDepth:     depth.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate year %d: %w", year, err)
	}
	return out, nil
}

// Import replaces the rows of year in one transaction.
func (s *Source) Import(ctx context.Context, year int, rows []domain.RawRow) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback() //nolint:errcheck // the import error is what matters
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM quakes WHERE year = ?`, year); err != nil {
		return fmt.Errorf("clear year %d: %w", year, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quakes (year, time, latitude, longitude, mag, depth) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err = stmt.ExecContext(ctx, year,
			nullable(r, domain.FieldTime),
			nullable(r, domain.FieldLatitude),
			nullable(r, domain.FieldLongitude),
			nullable(r, domain.FieldMagnitude),
			nullable(r, domain.FieldDepth),
		)
		if err != nil {
			return fmt.Errorf("insert year %d row %d: %w", year, i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Years returns the years present in the database, ascending.
func (s *Source) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM quakes ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// CheckReadiness pings the database.
func (s *Source) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullable(r domain.RawRow, field string) sql.NullString {
	v, ok := r[field]
	return sql.NullString{String: v, Valid: ok}
}
