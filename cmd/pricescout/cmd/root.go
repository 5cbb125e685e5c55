package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cigarpricescout/cigar-price-scout/lib/catalog"
	"github.com/cigarpricescout/cigar-price-scout/lib/configutil"
	"github.com/cigarpricescout/cigar-price-scout/lib/configutil/sqldb"
	"github.com/cigarpricescout/cigar-price-scout/lib/csvstore"
	"github.com/cigarpricescout/cigar-price-scout/lib/fetch"
	"github.com/cigarpricescout/cigar-price-scout/lib/history"
	"github.com/cigarpricescout/cigar-price-scout/lib/pricing"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers/foxcigar"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers/hilands"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers/holts"
)

type Config struct {
	// StoreDir holds the per-source CSV record stores.
	StoreDir string `json:"store_dir"`
	// MasterCatalog is the path to the master cigars TSV; empty disables
	// metadata normalization.
	MasterCatalog string `json:"master_catalog"`
	// Database is the change-history database.
	Database sqldb.Struct `json:"database"`

	UserAgent    string `json:"user_agent"`
	DelayMs      int    `json:"delay_ms"`
	TimeoutMs    int    `json:"timeout_ms"`
	RunTimeoutMs int    `json:"run_timeout_ms"`

	Pricing       *pricing.Config           `json:"pricing"`
	SourcePricing map[string]pricing.Config `json:"source_pricing"`

	// Sources limits runs to a subset of registered sources.
	Sources []string `json:"sources"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "pricescout",
	Short: "pricescout maintains the per-retailer cigar price stores.",
}

func Execute(ctx context.Context) {
	var err error
	config, err = configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "failed to read config.json5:", err)
		os.Exit(1)
	}
	if config.StoreDir == "" {
		config.StoreDir = "data"
	}
	if config.Database.File == "" && config.Database.Url == "" {
		config.Database.File = "history.db"
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRegistry() scrapers.Registry {
	return scrapers.NewRegistry(hilands.New(), foxcigar.New(), holts.New())
}

func openHistory() (history.Store, error) {
	db, err := config.Database.OpenDB(history.Schema)
	if err != nil {
		return history.Store{}, err
	}
	return history.NewStore(db), nil
}

func recordStore() csvstore.Store {
	return csvstore.Store{Dir: config.StoreDir}
}

func loadCatalog() (*catalog.Catalog, error) {
	if config.MasterCatalog == "" {
		return nil, nil
	}
	return catalog.LoadTSV(config.MasterCatalog)
}

func fetchOptions() fetch.Options {
	return fetch.Options{
		UserAgent: config.UserAgent,
		Delay:     time.Duration(config.DelayMs) * time.Millisecond,
		Timeout:   time.Duration(config.TimeoutMs) * time.Millisecond,
	}
}

func pricingConfig() pricing.Config {
	if config.Pricing != nil {
		return *config.Pricing
	}
	return pricing.DefaultConfig()
}
