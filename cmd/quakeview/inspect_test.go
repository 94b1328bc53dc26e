package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/couchcryptid/quake-view/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() []store.YearStats {
	return []store.YearStats{
		{Year: 2023, Records: 120, Warnings: 2, Collisions: 1},
		{Year: 2024, Err: errors.New("open data/2024.csv: no such file")},
	}
}

func TestWriteStatsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatsTable(&buf, sampleStats()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"YEAR", "RECORDS", "WARNINGS", "COLLISIONS", "ERROR"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"2023", "120", "2", "1", "-"}, strings.Fields(lines[1]))
	assert.Contains(t, lines[2], "no such file")
}

func TestWriteStatsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeStatsJSON(&buf, sampleStats()))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.InDelta(t, 120, rows[0]["records"], 0)
	assert.InDelta(t, 1, rows[0]["key_collisions"], 0)
	assert.NotContains(t, rows[0], "error")
	assert.Equal(t, "open data/2024.csv: no such file", rows[1]["error"])
}
