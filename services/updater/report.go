package updater

import (
	"context"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cigarpricescout/cigar-price-scout/lib/history"
)

type SourceStatus string

const (
	StatusOk           SourceStatus = "ok"
	StatusFailed       SourceStatus = "failed"
	StatusNotAttempted SourceStatus = "not_attempted"
)

type OfferFailure struct {
	ProductID string
	Err       string
}

// SourceReport is one source's outcome within a run.
type SourceReport struct {
	Source    string
	Status    SourceStatus
	StartedAt time.Time
	Duration  time.Duration
	Processed int
	Failed    int
	// Changes counts the change events the run produced for this source.
	Changes  int
	Failures []OfferFailure
	Error    string
}

// Report aggregates a whole pipeline run. It is handed to the Notifier
// and logged; persistence happens through the history store's run
// tables.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []SourceReport
}

// Notifier receives the finished run report. Implementations live
// outside the pipeline (mail, chat, stdout); errors are logged, never
// retried here.
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

func (r Report) Processed() int {
	total := 0
	for _, sr := range r.Sources {
		total += sr.Processed
	}
	return total
}

func (r Report) Failed() int {
	total := 0
	for _, sr := range r.Sources {
		total += sr.Failed
	}
	return total
}

// Render formats the report as a table for logs and terminal output.
func (r Report) Render() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"source", "status", "processed", "failed", "changes", "duration", "error"})
	for _, sr := range r.Sources {
		t.AppendRow(table.Row{
			sr.Source,
			string(sr.Status),
			sr.Processed,
			sr.Failed,
			sr.Changes,
			sr.Duration.Round(time.Millisecond).String(),
			sr.Error,
		})
	}
	t.AppendFooter(table.Row{
		"total", "", r.Processed(), r.Failed(), "",
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(), "",
	})
	return t.Render()
}

func (r Report) sourceRuns() []history.SourceRun {
	runs := make([]history.SourceRun, len(r.Sources))
	for i, sr := range r.Sources {
		runs[i] = history.SourceRun{
			Source:    sr.Source,
			Status:    string(sr.Status),
			StartedAt: sr.StartedAt,
			Duration:  sr.Duration,
			Processed: sr.Processed,
			Failed:    sr.Failed,
			Error:     sr.Error,
		}
	}
	return runs
}
