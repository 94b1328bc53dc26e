package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/quake-view/internal/adapter/csvsource"
	"github.com/couchcryptid/quake-view/internal/adapter/sqlite"
	"github.com/couchcryptid/quake-view/internal/config"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/couchcryptid/quake-view/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "quakeview",
		Short:         "coordinated map and timeline views over yearly earthquake records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")

	rootCmd.AddCommand(newServeCmd(), newTUICmd(), newInspectCmd(), newImportCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment after the dotenv file has been applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// tabularLoader opens the record source selected by DATA_SOURCE. The
// returned closer releases it.
func tabularLoader(ctx context.Context, cfg *config.Config) (store.TabularLoader, io.Closer, error) {
	switch cfg.DataSource {
	case config.SourceSQLite:
		src, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	default:
		l, err := csvLoader(cfg)
		if err != nil {
			return nil, nil, err
		}
		return l, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func csvLoader(cfg *config.Config) (*csvsource.Loader, error) {
	if cfg.DataManifest != "" {
		return csvsource.LoadManifest(cfg.DataManifest)
	}
	return csvsource.New(cfg.DataDir), nil
}

// loadStore ingests every navigable year.
func loadStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*store.Store, error) {
	loader, closer, err := tabularLoader(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s source: %w", cfg.DataSource, err)
	}
	defer closer.Close()

	st := store.Load(ctx, loader, cfg.Years(), logger, metrics)
	if err := st.Err(cfg.DefaultYear); err != nil {
		logger.Warn("default year has no data", "year", cfg.DefaultYear, "error", err)
	}
	return st, nil
}
