package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cigarpricescout/cigar-price-scout/services/updater"
)

// stdoutNotifier prints the run report; real deployments swap in a mail
// or chat notifier.
type stdoutNotifier struct{}

func (stdoutNotifier) Notify(ctx context.Context, report updater.Report) error {
	fmt.Println(report.Render())
	return nil
}

var runCmd = &cobra.Command{
	Use:   "run [source...]",
	Short: "Run the pricing pipeline over the configured sources.",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return fmt.Errorf("open history database: %w", err)
		}
		cat, err := loadCatalog()
		if err != nil {
			return fmt.Errorf("load master catalog: %w", err)
		}
		if err := os.MkdirAll(config.StoreDir, 0o755); err != nil {
			return err
		}

		sources := config.Sources
		if len(args) > 0 {
			sources = args
		}

		svc := updater.NewService(updater.Options{
			Store:         recordStore(),
			Registry:      newRegistry(),
			History:       hist,
			Catalog:       cat,
			Fetch:         fetchOptions(),
			Pricing:       pricingConfig(),
			SourcePricing: config.SourcePricing,
			Sources:       sources,
			RunTimeout:    time.Duration(config.RunTimeoutMs) * time.Millisecond,
			Notifier:      stdoutNotifier{},
		})

		report, err := svc.Run(cmd.Context())
		if err != nil {
			return err
		}
		for _, sr := range report.Sources {
			if sr.Status == updater.StatusFailed {
				return fmt.Errorf("%d of %d sources failed", countFailed(report), len(report.Sources))
			}
		}
		return nil
	},
}

func countFailed(report updater.Report) int {
	failed := 0
	for _, sr := range report.Sources {
		if sr.Status == updater.StatusFailed {
			failed++
		}
	}
	return failed
}

func init() {
	rootCmd.AddCommand(runCmd)
}
