package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shahabsali127/shiftplan/calendar"
)

func holidaysCmd() *cobra.Command {
	var (
		year   int
		region string
	)
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Print the public holidays of a region",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := calendar.ParseRegion(region)
			if err != nil {
				return err
			}
			holidays := calendar.New().Holidays(year, r)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%d %s (%s)\n", year, r.Name(), r)
			for _, h := range holidays {
				fmt.Fprintf(w, "%s\t%s\t%s\n", h.Date, h.Date.Weekday().String()[:2], h.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year")
	cmd.Flags().StringVar(&region, "region", "", "region code or state name (e.g. BY, Bayern)")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func init() {
	rootCmd.AddCommand(holidaysCmd())
}
