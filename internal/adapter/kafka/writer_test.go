package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/quake-view/internal/config"
	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeFrame(t *testing.T) {
	ts := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	frame := coordinator.Frame{
		Seq:      7,
		Year:     2024,
		Animated: true,
		Bounds:   domain.YearBounds(2024),
		Records:  []domain.Record{{Time: ts, Latitude: 35, Longitude: -97, Magnitude: 4.6, Depth: 12}},
	}

	msg, err := serializeFrame("session-1", frame)
	require.NoError(t, err)

	assert.Equal(t, []byte("session-1"), msg.Key)
	require.Len(t, msg.Headers, 4)
	assert.Equal(t, "year", msg.Headers[0].Key)
	assert.Equal(t, []byte("2024"), msg.Headers[0].Value)
	assert.Equal(t, []byte("7"), msg.Headers[1].Value)
	assert.Equal(t, []byte("true"), msg.Headers[2].Value)
	assert.Equal(t, []byte("1"), msg.Headers[3].Value)

	var got coordinator.Frame
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, uint64(7), got.Seq)
	require.Len(t, got.Records, 1)
	assert.Equal(t, ts, got.Records[0].Time)
	assert.InDelta(t, 4.6, got.Records[0].Magnitude, 1e-9)
}

func TestNewFrameWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaFrameTopic: "quake-frames"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w := NewFrameWriter(cfg, logger)
	defer w.Close()

	assert.NotEmpty(t, w.Session())
	assert.NotEqual(t, w.Session(), NewFrameWriter(cfg, logger).Session())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.Error(t, w.CheckReadiness(ctx))
}

func TestCheckReadiness_NoBrokers(t *testing.T) {
	w := NewFrameWriter(&config.Config{KafkaFrameTopic: "t"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.EqualError(t, w.CheckReadiness(context.Background()), "no kafka brokers configured")
}
