package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-view/internal/config"
	"github.com/couchcryptid/quake-view/internal/coordinator"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// FrameWriter publishes every frame pushed to the views to a Kafka topic.
// It implements coordinator.FrameSink. Writes are asynchronous so that the
// event loop never waits on the broker; delivery errors are logged.
type FrameWriter struct {
	writer  *kafkago.Writer
	brokers []string
	session string
	logger  *slog.Logger
}

// NewFrameWriter creates a producer for the configured frame topic. All
// frames from one process share a session id, used as the message key so
// that they land on one partition in order.
func NewFrameWriter(cfg *config.Config, logger *slog.Logger) *FrameWriter {
	fw := &FrameWriter{
		brokers: cfg.KafkaBrokers,
		session: uuid.NewString(),
		logger:  logger,
	}
	fw.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaFrameTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   fw.completion,
	}
	return fw
}

// Session returns the key stamped on every message.
func (w *FrameWriter) Session() string { return w.session }

// Publish enqueues one frame. It does not block.
func (w *FrameWriter) Publish(frame coordinator.Frame) {
	msg, err := serializeFrame(w.session, frame)
	if err != nil {
		w.logger.Error("frame serialization failed", "seq", frame.Seq, "error", err)
		return
	}
	if err := w.writer.WriteMessages(context.Background(), msg); err != nil {
		w.logger.Error("frame enqueue failed", "seq", frame.Seq, "error", err)
	}
}

func (w *FrameWriter) completion(msgs []kafkago.Message, err error) {
	if err != nil {
		w.logger.Warn("frame delivery failed", "messages", len(msgs), "error", err)
	}
}

// CheckReadiness dials the first reachable broker.
func (w *FrameWriter) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, addr := range w.brokers {
		conn, err := kafkago.DialContext(ctx, "tcp", addr)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return conn.Close()
	}
	if len(errs) == 0 {
		return errors.New("no kafka brokers configured")
	}
	return fmt.Errorf("kafka unreachable: %w", errors.Join(errs...))
}

// WaitForBroker retries CheckReadiness with exponential backoff until it
// succeeds or ctx is done.
func (w *FrameWriter) WaitForBroker(ctx context.Context) error {
	backoff := 200 * time.Millisecond
	for {
		err := w.CheckReadiness(ctx)
		if err == nil {
			return nil
		}
		w.logger.Warn("kafka not ready, retrying", "backoff", backoff, "error", err)
		if !sharedretry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("wait for kafka: %w", ctx.Err())
		}
		backoff = sharedretry.NextBackoff(backoff, 5*time.Second)
	}
}

// Close flushes pending frames and closes the producer.
func (w *FrameWriter) Close() error {
	return w.writer.Close()
}

// serializeFrame marshals a Frame into a Kafka message keyed by session.
func serializeFrame(session string, frame coordinator.Frame) (kafkago.Message, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize frame: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(session),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(frame.Year))},
			{Key: "seq", Value: []byte(strconv.FormatUint(frame.Seq, 10))},
			{Key: "animated", Value: []byte(strconv.FormatBool(frame.Animated))},
			{Key: "records", Value: []byte(strconv.Itoa(len(frame.Records)))},
		},
	}, nil
}
