package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-view/internal/adapter/tui"
	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newTUICmd() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "explore the records in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(logFile)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of discarding them")
	return cmd
}

func runTUI(logFile string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := observability.NewLoggerTo(out, cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := loadStore(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}

	loop := coordinator.NewLoop(256, logger)
	app := tui.NewApp(ctx, loop)
	coord := coordinator.New(st, app.MapView(), app.TimelineView(), loop, coordinator.Options{
		MinYear:     cfg.MinYear,
		MaxYear:     cfg.MaxYear,
		DefaultYear: cfg.DefaultYear,
		Interval:    cfg.AnimationInterval,
		Step:        cfg.AnimationStep,
		Clock:       clockwork.NewRealClock(),
	}, logger, metrics)
	app.Bind(coord)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)
	loop.Post(func() {
		coord.Start()
		app.Refresh(coord)
	})

	runErr := app.Run()

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := loop.Do(closeCtx, coord.Close); err != nil {
		logger.Error("coordinator close error", "error", err)
	}
	return runErr
}
