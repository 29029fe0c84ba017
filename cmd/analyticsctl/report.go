package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sectionpulse/api/analytics"
	"sectionpulse/api/config"
	"sectionpulse/api/models"
	"sectionpulse/api/store"
	"sectionpulse/api/utils"
)

func newReportCmd() *cobra.Command {
	var (
		days      int
		rawFormat string
		section   string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate stored sessions from the configured store and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, ok := utils.NormalizeFormat(rawFormat)
			if !ok {
				return fmt.Errorf("unknown --format %q, want summary or detailed", rawFormat)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.DefaultDays
			}
			if days < 0 {
				return fmt.Errorf("--days must be >= 0")
			}
			days = min(days, cfg.RetentionDays)

			ctx := cmd.Context()
			sessions, closeStore, err := store.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := sessions.LoadSince(ctx, time.Now().UTC().AddDate(0, 0, -days))
			if err != nil {
				return err
			}

			var report any = analytics.Summary(entries)
			if format == utils.FormatDetailed {
				report = analytics.Detailed(entries, section)
			}
			return writeJSON(cmd.OutOrStdout(), models.QueryResponse{
				Success:       true,
				PeriodDays:    days,
				TotalSessions: len(entries),
				Analytics:     report,
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "lookback window in days")
	cmd.Flags().StringVar(&rawFormat, "format", utils.FormatSummary, "summary or detailed")
	cmd.Flags().StringVar(&section, "section", "", "section to analyze in detailed reports")
	return cmd
}
