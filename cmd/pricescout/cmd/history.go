package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
)

var historyCmd = &cobra.Command{
	Use:   "history <source> <cigar_id>",
	Short: "Show the recorded change events for one offer.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		events, err := hist.Query(cmd.Context(), offer.Identity{
			Source:    args[0],
			ProductID: args[1],
		})
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"observed", "kind", "field", "old", "new"})
		for _, e := range events {
			t.AppendRow(table.Row{
				e.ObservedAt.Format(time.RFC3339),
				string(e.Kind),
				e.Field,
				e.Old,
				e.New,
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent pipeline runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		runs, err := hist.RecentRuns(cmd.Context(), 20)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"run", "started", "duration", "processed", "failed"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.Id,
				r.StartedAt.Format(time.RFC3339),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
				r.Processed,
				r.Failed,
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(runsCmd)
}
