package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shahabsali127/shiftplan/planner"
	"github.com/shahabsali127/shiftplan/store/sqlite"
)

func reportCmd() *cobra.Command {
	var (
		year   int
		month  int
		dbPath string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the monthly stats of the stored plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 1 || month > 12 {
				return fmt.Errorf("month %d out of range", month)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Database.Path
			}

			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			snap, found, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("load plan: %w", err)
			}

			// No persister: a report never writes to the database.
			p, err := planner.Open(ctx, planner.Options{
				MaxConcurrentVacations: cfg.Rules.MaxConcurrentVacations,
				Logger:                 newLogger(cfg, "report"),
			})
			if err != nil {
				return err
			}
			if found {
				if err := p.Import(ctx, snap); err != nil {
					return fmt.Errorf("stored plan: %w", err)
				}
			}

			rep := p.MonthlyReport(year, time.Month(month))
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintf(w, "%s %d\n", time.Month(month), year)
			fmt.Fprintln(w, "Employee\tRegion\tTarget\tActual\tVariance\tVacation\tSick\t")
			for _, row := range rep.Rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t\n",
					row.Employee.Name, row.Employee.Region,
					row.Stats.TargetHours.StringFixed(2), row.Stats.ActualHours.StringFixed(2),
					row.Variance.StringFixed(2), row.Stats.VacationDays, row.Stats.SickDays)
			}
			fmt.Fprintf(w, "Weekend hours\t\t\t%s\t\t\t\t\n", rep.WeekendTotal.StringFixed(2))
			return w.Flush()
		},
	}
	now := time.Now()
	cmd.Flags().IntVar(&year, "year", now.Year(), "calendar year")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month (1-12)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default: database.path from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func init() {
	rootCmd.AddCommand(reportCmd())
}
