package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/couchcryptid/quake-view/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("year loaded", "year", 2024)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "year loaded", entry["msg"])
	assert.Equal(t, float64(2024), entry["year"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "TEXT")

	logger.Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &config.Config{LogLevel: "warn", LogFormat: "text"})

	logger.Info("hidden")
	logger.Warn("missing mag value", "row", 3)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "row=3")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	require.NotNil(t, m)
	m.Recomputes.Inc()
	m.SelectionEvents.WithLabelValues("map").Inc()
	m.RecordsLoaded.WithLabelValues("2024").Set(3)
}
