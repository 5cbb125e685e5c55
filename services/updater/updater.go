// Package updater runs the full pricing pipeline: for every configured
// source it fetches each known offer page, extracts and normalizes a
// record, then merges the results into that source's store behind a
// backup and appends the change events. One offer's failure never stops
// its source; one source's failure never stops the run.
package updater

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cigarpricescout/cigar-price-scout/lib/catalog"
	"github.com/cigarpricescout/cigar-price-scout/lib/csvstore"
	"github.com/cigarpricescout/cigar-price-scout/lib/fetch"
	"github.com/cigarpricescout/cigar-price-scout/lib/history"
	"github.com/cigarpricescout/cigar-price-scout/lib/normalize"
	"github.com/cigarpricescout/cigar-price-scout/lib/offer"
	"github.com/cigarpricescout/cigar-price-scout/lib/pricing"
	"github.com/cigarpricescout/cigar-price-scout/lib/scrapers"
)

type Options struct {
	Store    csvstore.Store
	Registry scrapers.Registry
	History  history.Store

	// Catalog, when set, canonicalizes wrapper metadata on merged
	// records and fills their empty construction columns from the
	// master entries.
	Catalog *catalog.Catalog

	Fetch   fetch.Options
	Pricing pricing.Config
	// SourcePricing overrides Pricing per source id, for per-source
	// noise denylists and the premium-singular policy.
	SourcePricing map[string]pricing.Config

	// Sources restricts the run; empty means every registered source.
	Sources []string

	// RunTimeout bounds the whole run. Sources that were never reached
	// are reported as not_attempted. Zero disables the bound.
	RunTimeout time.Duration

	Notifier Notifier
}

type Service struct {
	opts Options
}

func NewService(opts Options) Service {
	return Service{opts: opts}
}

// Run executes the pipeline over every source in sorted order and
// returns the aggregated report. The error covers run-level bookkeeping
// only; per-source and per-offer failures live inside the report.
func (s Service) Run(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	sources := s.opts.Sources
	if len(sources) == 0 {
		sources = s.opts.Registry.Sources()
	}
	sources = append([]string{}, sources...)
	sort.Strings(sources)

	report := Report{StartedAt: time.Now()}
	for _, source := range sources {
		if runExpired(ctx) {
			report.Sources = append(report.Sources, SourceReport{
				Source:    source,
				Status:    StatusNotAttempted,
				StartedAt: time.Now(),
			})
			continue
		}
		report.Sources = append(report.Sources, s.runSource(ctx, source))
	}
	report.FinishedAt = time.Now()

	// run bookkeeping failures are reported to the caller but never
	// undo the merges that already happened
	var err error
	if _, recordErr := s.opts.History.RecordRun(
		context.WithoutCancel(ctx), report.StartedAt, report.FinishedAt, report.sourceRuns()); recordErr != nil {
		err = fmt.Errorf("record run: %w", recordErr)
	}
	if s.opts.Notifier != nil {
		if notifyErr := s.opts.Notifier.Notify(context.WithoutCancel(ctx), report); notifyErr != nil {
			slog.ErrorContext(ctx, "failed to deliver run report", "err", notifyErr)
		}
	}
	return report, err
}

func (s Service) runSource(ctx context.Context, source string) SourceReport {
	ctx, span := tracer.Start(ctx, "runSource")
	span.SetAttributes(attribute.String("source", source))
	defer span.End()

	sr := SourceReport{Source: source, Status: StatusOk, StartedAt: time.Now()}
	defer func() {
		sr.Duration = time.Since(sr.StartedAt)
	}()
	fail := func(err error) SourceReport {
		slog.ErrorContext(ctx, "source run failed", "source", source, "err", err)
		sr.Status = StatusFailed
		sr.Error = err.Error()
		return sr
	}

	extractor, ok := s.opts.Registry.Lookup(source)
	if !ok {
		return fail(fmt.Errorf("no extractor registered for %q", source))
	}

	release, err := s.opts.Store.Lock(source)
	if err != nil {
		return fail(err)
	}
	defer release()

	table, err := s.opts.Store.Load(source)
	if err != nil {
		return fail(err)
	}

	cfg := s.opts.Pricing
	if override, ok := s.opts.SourcePricing[source]; ok {
		cfg = override
	}

	client := fetch.NewClient(s.opts.Fetch)
	var records []offer.Record

	// offers go in stored row order so repeated runs report
	// deterministically
	ids := table.IDs()
	for n, productId := range ids {
		if runExpired(ctx) {
			// the remainder must not vanish from the totals
			for _, skipped := range ids[n:] {
				if row, _ := table.Row(skipped); row["url"] == "" {
					continue
				}
				sr.Failed++
				sr.Failures = append(sr.Failures, OfferFailure{
					ProductID: skipped,
					Err:       "not attempted: run deadline exceeded",
				})
			}
			break
		}
		row, _ := table.Row(productId)
		url := row["url"]
		if url == "" {
			continue
		}
		id := offer.Identity{Source: source, ProductID: productId}

		rec, err := s.processOffer(ctx, client, extractor, cfg, id, url)
		if err != nil {
			slog.WarnContext(ctx, "offer failed", "offer", id.String(), "err", err)
			sr.Failed++
			sr.Failures = append(sr.Failures, OfferFailure{ProductID: productId, Err: err.Error()})
			continue
		}
		records = append(records, rec)
		sr.Processed++
	}

	// no snapshot, no write
	if _, err := s.opts.Store.Backup(source, time.Now()); err != nil {
		return fail(err)
	}

	var events []offer.ChangeEvent
	for _, rec := range records {
		// a seeded row that was never written by the pipeline (hand-entered
		// url, no observation yet) is still a new offer
		var prior *offer.Record
		if old, ok := table.Record(source, rec.ProductID); ok && !old.LastCheckedAt.IsZero() {
			prior = &old
		}
		events = append(events, history.Diff(prior, rec)...)
		table.Merge(rec)
	}
	if err := s.opts.Store.Save(source, table); err != nil {
		return fail(err)
	}
	sr.Changes = len(events)

	if err := s.opts.History.Append(context.WithoutCancel(ctx), events); err != nil {
		// the store write already happened; surface the gap instead of
		// failing the source
		slog.ErrorContext(ctx, "failed to append change events", "source", source, "err", err)
		sr.Error = fmt.Sprintf("append change events: %v", err)
	}

	slog.InfoContext(ctx, "source run finished",
		"source", source,
		"processed", sr.Processed,
		"failed", sr.Failed,
		"changes", sr.Changes,
	)
	return sr
}

// runExpired reports whether the run deadline has passed, without
// waiting for the context's timer to have fired.
func runExpired(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	deadline, ok := ctx.Deadline()
	return ok && !time.Now().Before(deadline)
}

func (s Service) processOffer(
	ctx context.Context,
	client *fetch.Client,
	extractor scrapers.Extractor,
	cfg pricing.Config,
	id offer.Identity,
	url string,
) (offer.Record, error) {
	body, err := client.Fetch(ctx, url)
	if err != nil {
		return offer.Record{}, err
	}
	cand, err := extractor.Extract(id, url, body, time.Now())
	if err != nil {
		return offer.Record{}, err
	}
	rec, err := normalize.Candidate(cand, cfg)
	if err != nil {
		return offer.Record{}, err
	}

	if err := catalog.Backfill(&rec); err != nil {
		slog.DebugContext(ctx, "skipping metadata backfill", "offer", id.String(), "err", err)
	} else if s.opts.Catalog != nil {
		s.opts.Catalog.Enrich(&rec)
	}
	return rec, nil
}
