package main

import (
	"context"
	"os"

	"github.com/cigarpricescout/cigar-price-scout/cmd/pricescout/cmd"
	"github.com/cigarpricescout/cigar-price-scout/lib/serviceutil"
	"github.com/cigarpricescout/cigar-price-scout/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)

	// telemetry config is optional for CLI use
	t, err := telemetry.SetupFromEnv(ctx, "pricescout")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if err == nil {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	cmd.Execute(ctx)
}
