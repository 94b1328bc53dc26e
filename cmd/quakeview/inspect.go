package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/quake-view/internal/observability"
	"github.com/couchcryptid/quake-view/internal/store"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "load every configured year and report ingestion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
			st, err := loadStore(cmd.Context(), cfg, logger, observability.NewMetrics())
			if err != nil {
				return err
			}
			if asJSON {
				return writeStatsJSON(cmd.OutOrStdout(), st.Stats())
			}
			return writeStatsTable(cmd.OutOrStdout(), st.Stats())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

type statsRow struct {
	store.YearStats
	Error string `json:"error,omitempty"`
}

func writeStatsJSON(w io.Writer, stats []store.YearStats) error {
	rows := make([]statsRow, len(stats))
	for i, s := range stats {
		rows[i] = statsRow{YearStats: s}
		if s.Err != nil {
			rows[i].Error = s.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeStatsTable(w io.Writer, stats []store.YearStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tRECORDS\tWARNINGS\tCOLLISIONS\tERROR")
	for _, s := range stats {
		errText := "-"
		if s.Err != nil {
			errText = s.Err.Error()
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\n", s.Year, s.Records, s.Warnings, s.Collisions, errText)
	}
	return tw.Flush()
}

