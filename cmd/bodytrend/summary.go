package main

import (
	"fmt"
	"io"
	"math"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/body-trend-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/body-trend-etl/internal/domain"
)

func (a *app) newSummaryCmd() *cobra.Command {
	var rangeName string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print weight statistics for the daily samples",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, err := domain.ParseRange(rangeName)
			if err != nil {
				return err
			}
			samples, err := jsonfile.ReadRecords(a.cfg.SamplesJSON)
			if err != nil {
				return err
			}
			s := domain.Summarize(domain.FilterRange(samples, rng, domain.Now()))

			if asJSON {
				data, err := jsonfile.Encode(s)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			printSummary(cmd.OutOrStdout(), rng, s)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeName, "range", "all", "time range: all, 3m, 1m or 2w")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printSummary(w io.Writer, rng domain.Range, s domain.Summary) {
	label := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint("Range"), rng)
	if s.Count == 0 {
		fmt.Fprintln(w, color.YellowString("no samples in range"))
		return
	}
	fmt.Fprintf(w, "%s %d\n", label("samples       "), s.Count)
	fmt.Fprintf(w, "%s %d\n", label("days          "), s.TotalDays)
	fmt.Fprintf(w, "%s %s\n", label("start         "), kg(s.StartWeight))
	fmt.Fprintf(w, "%s %s\n", label("current       "), kg(s.CurrentWeight))
	fmt.Fprintf(w, "%s %s\n", label("min / max     "), kg(s.MinWeight)+" / "+kg(s.MaxWeight))
	fmt.Fprintf(w, "%s %s\n", label("average       "), kg(s.AvgWeight))
	fmt.Fprintf(w, "%s %s\n", label("change        "), change(s.WeightChange))
	fmt.Fprintf(w, "%s %s\n", label("current BMI   "), number(s.CurrentBMI))
	fmt.Fprintf(w, "%s %s\n", label("last update   "), s.LastUpdate)
}

func kg(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f kg", v)
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

// change colors losses green and gains red.
func change(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case v < 0:
		return color.GreenString("%+.1f kg", v)
	case v > 0:
		return color.RedString("%+.1f kg", v)
	default:
		return "0.0 kg"
	}
}
