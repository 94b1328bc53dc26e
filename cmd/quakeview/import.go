package main

import (
	"fmt"

	"github.com/couchcryptid/quake-view/internal/adapter/sqlite"
	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "copy the yearly CSV files into a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.SQLitePath
			}
			logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
			ctx := cmd.Context()

			src, err := csvLoader(cfg)
			if err != nil {
				return err
			}
			db, err := sqlite.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			imported := 0
			for _, year := range cfg.Years() {
				rows, err := src.Parse(ctx, year)
				if err != nil {
					logger.Warn("skipping year", "year", year, "error", err)
					continue
				}
				if err := db.Import(ctx, year, rows); err != nil {
					return fmt.Errorf("import %d: %w", year, err)
				}
				logger.Info("year imported", "year", year, "rows", len(rows))
				imported++
			}
			if imported == 0 {
				return fmt.Errorf("no years imported from %s", cfg.DataDir)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d years into %s\n", imported, dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (defaults to SQLITE_PATH)")
	return cmd
}
