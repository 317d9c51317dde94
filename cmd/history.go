package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/helioplan/helioplan/config"
	"github.com/helioplan/helioplan/core/scheduler/history"
)

var (
	historySince     string
	historyMicrogrid string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scheduling runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "only runs created after this RFC3339 timestamp")
	historyCmd.Flags().StringVar(&historyMicrogrid, "microgrid", "", "filter by microgrid id")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	var store history.Store
	switch cfg.History.Backend {
	case "sqlite":
		store, err = history.NewSQLiteStore(cfg.History.Path)
	default:
		store, err = history.NewJSONLStore(cfg.History.Path)
	}
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "close store: %v\n", err)
		}
	}()

	q := history.Query{MicrogridID: historyMicrogrid}
	if historySince != "" {
		start, err := time.Parse(time.RFC3339, historySince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		q.Start = start
	}

	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range records {
		fmt.Fprintf(out, "%s  %s  %s  slots=%d  final_soc=%.2f  savings=%.2f\n",
			r.CreatedAt.Format(time.RFC3339), r.RunID, r.MicrogridID,
			len(r.Result.Slots), r.Result.FinalSoC, r.Result.Metrics.EstimatedCostSavings)
	}
	return nil
}
