package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-view/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/quake-view/internal/adapter/kafka"
	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/couchcryptid/quake-view/internal/view"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// timelineWidth is the pixel width of the headless timeline.
const timelineWidth = 1198

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the JSON control API with health, readiness and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := loadStore(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	loop := coordinator.NewLoop(256, logger)
	checks := httpadapter.Checks{
		loop,
		httpadapter.ReadinessFunc(func(context.Context) error { return st.Err(cfg.DefaultYear) }),
	}

	// Initialize frame publishing (feature-flagged via KAFKA_ENABLED).
	var sinks []coordinator.FrameSink
	var frames *kafkaadapter.FrameWriter
	if cfg.KafkaEnabled {
		frames = kafkaadapter.NewFrameWriter(cfg, logger)
		if err := frames.WaitForBroker(ctx); err != nil {
			_ = frames.Close()
			return err
		}
		sinks = append(sinks, frames)
		checks = append(checks, frames)
		logger.Info("kafka frame publishing enabled", "topic", cfg.KafkaFrameTopic, "session", frames.Session())
	} else {
		logger.Info("kafka frame publishing disabled")
	}

	mapView := view.NewMap(view.DefaultViewport())
	coord := coordinator.New(st, mapView, view.NewTimeline(timelineWidth), loop, coordinator.Options{
		MinYear:     cfg.MinYear,
		MaxYear:     cfg.MaxYear,
		DefaultYear: cfg.DefaultYear,
		Interval:    cfg.AnimationInterval,
		Step:        cfg.AnimationStep,
		Clock:       clockwork.NewRealClock(),
		Sinks:       sinks,
	}, logger, metrics)

	// The loop outlives ctx so that shutdown work can still run on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)
	loop.Post(coord.Start)

	srv := httpadapter.NewServer(cfg.HTTPAddr, coord, loop, mapView, checks, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := loop.Do(shutdownCtx, coord.Close); err != nil {
		logger.Error("coordinator close error", "error", err)
	}
	stopLoop()
	<-loop.Done()
	if frames != nil {
		if err := frames.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
