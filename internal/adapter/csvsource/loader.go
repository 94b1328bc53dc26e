// Package csvsource reads yearly earthquake CSV files.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-view/internal/domain"
	"gopkg.in/yaml.v3"
)

// Loader resolves a year to a CSV file and parses it into raw rows. By
// default year Y is read from <dir>/Y.csv; a manifest can override the file
// of any year.
type Loader struct {
	dir   string
	files map[int]string
}

// New creates a Loader reading <dir>/<year>.csv.
func New(dir string) *Loader {
	return &Loader{dir: dir, files: map[int]string{}}
}

// Manifest maps years to CSV files. Relative paths resolve against Dir, and
// a relative Dir resolves against the manifest's own directory.
type Manifest struct {
	Dir   string         `yaml:"dir"`
	Years map[int]string `yaml:"years"`
}

// LoadManifest reads a YAML manifest and returns a Loader for it.
func LoadManifest(path string) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	dir := m.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(path), dir)
	}
	l := New(dir)
	for year, file := range m.Years {
		l.files[year] = file
	}
	return l, nil
}

// Path returns the file read for year.
func (l *Loader) Path(year int) string {
	file, ok := l.files[year]
	if !ok {
		file = strconv.Itoa(year) + ".csv"
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.dir, file)
}

// Parse reads the CSV of year. It implements store.TabularLoader.
func (l *Loader) Parse(ctx context.Context, year int) ([]domain.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path(year))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

// ErrNoHeader is returned for input without a header row.
var ErrNoHeader = errors.New("csv has no header row")

// ReadRows parses header-keyed CSV. Short rows leave their trailing columns
// absent; extra cells are ignored.
func ReadRows(r io.Reader) ([]domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []domain.RawRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		row := make(domain.RawRow, len(header))
		for i, cell := range rec {
			if i < len(header) {
				row[header[i]] = cell
			}
		}
		rows = append(rows, row)
	}
}
