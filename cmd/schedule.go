package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helioplan/helioplan/app"
	"github.com/helioplan/helioplan/config"
	"github.com/helioplan/helioplan/infra/logger"
	"github.com/helioplan/helioplan/pkg/export"
)

var (
	scheduleOut    string
	scheduleFormat string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate one schedule and export it",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleOut, "output", "o", "", "output file (defaults to stdout)")
	scheduleCmd.Flags().StringVarP(&scheduleFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("schedule-command").Errorf("service close: %v", err)
		}
	}()

	rec, err := svc.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if scheduleOut != "" {
		f, err := os.Create(scheduleOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "close output: %v\n", err)
			}
		}()
		out = f
	}

	switch scheduleFormat {
	case "json":
		return export.WriteJSON(out, rec.Result)
	case "csv":
		return export.WriteCSV(out, rec.Result.Slots)
	default:
		return fmt.Errorf("unsupported format: %s", scheduleFormat)
	}
}
